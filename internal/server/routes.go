package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"portfolio/internal/handlers"
	"portfolio/internal/handlers/api"
)

// Deps are the services the routes are served by.
type Deps struct {
	Store   handlers.Pinger
	Visits  api.VisitIncrementer
	Contact api.ContactSubmitter
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	dev := s.Cfg.IsDev()

	probeHandler := handlers.NewProbeHandler(d.Store)
	visitHandler := api.NewVisitHandler(d.Visits, dev, s.logger)
	contactHandler := api.NewContactHandler(d.Contact, dev, s.logger)

	// Probes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	if d.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Visitor counter
	s.App.Get("/api/visits", visitHandler.Increment)
	s.App.Post("/api/visits", visitHandler.Increment)
	s.App.All("/api/visits", api.MethodNotAllowed("GET, POST, OPTIONS", api.MsgVisitsMethodOnly))

	// Contact form
	if lim := s.contactLimiter(); lim != nil {
		s.App.Use("/api/contact", lim)
	}
	s.App.Post("/api/contact", contactHandler.Submit)
	s.App.All("/api/contact", api.MethodNotAllowed("POST, OPTIONS", api.MsgContactMethodOnly))

	// Built site, registered last so API routes win
	if s.Cfg.StaticDir != "" {
		s.App.Get("/*", static.New(s.Cfg.StaticDir))
		s.logger.Info("serving static site", zap.String("dir", s.Cfg.StaticDir))
	}
}
