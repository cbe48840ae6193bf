package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"go.uber.org/zap"

	"portfolio/internal/config"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
)

// MsgRateLimited is returned when a client exceeds the contact rate limit.
const MsgRateLimited = "Too many requests. Please try again later."

// Server wraps the Fiber app and configuration.
type Server struct {
	App    *fiber.App
	Cfg    *config.Config
	logger *zap.Logger

	limiterStorage fiber.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		Cfg:    cfg,
		logger: log.With(zap.String("component", "server")),
	}

	s.App = fiber.New(fiber.Config{
		AppName:      cfg.SiteTitle,
		ErrorHandler: s.errorHandler,
	})

	// Global middleware
	s.App.Use(recover.New())
	s.App.Use(requestid.New())
	s.App.Use(logger.New(logger.Config{
		Format: "${time} ${respHeader:X-Request-ID} ${status} - ${latency} ${method} ${path}\n",
	}))
	s.App.Use(middleware.CORS(cfg.CORSOrigins))

	if cfg.RateLimitRedisURL != "" {
		s.limiterStorage = fiberredis.New(fiberredis.Config{
			URL: cfg.RateLimitRedisURL,
		})
		s.logger.Info("contact rate limit backed by redis")
	}

	return s
}

// errorHandler renders unmatched routes, panics and other framework errors
// with the JSON error envelope.
func (s *Server) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("unhandled request error",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Error(err),
		)
	}

	resp := models.ErrorResponse{Status: "error", Message: message}
	if s.Cfg.IsDev() && code >= fiber.StatusInternalServerError {
		resp.Error = err.Error()
	}
	return c.Status(code).JSON(resp)
}

// contactLimiter limits contact submissions per connecting peer. Forwarding
// headers are client controlled and never select the bucket. It returns nil
// when rate limiting is disabled.
func (s *Server) contactLimiter() fiber.Handler {
	if s.Cfg.ContactRateLimit <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        s.Cfg.ContactRateLimit,
		Expiration: s.Cfg.ContactRateWindow,
		Storage:    s.limiterStorage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Status:  "error",
				Message: MsgRateLimited,
			})
		},
	})
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.Cfg.ServerAddr))
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Shutdown gracefully shuts down the server and releases the limiter storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.App.ShutdownWithContext(ctx)
	if s.limiterStorage != nil {
		err = errors.Join(err, s.limiterStorage.Close())
	}
	return err
}

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second
