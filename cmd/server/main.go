package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/email"
	"portfolio/internal/jobs"
	"portfolio/internal/metrics"
	"portfolio/internal/server"
	"portfolio/internal/visits"
)

func main() {
	logger := initLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("server_addr", cfg.ServerAddr),
	)
	if cfg.IsDev() {
		logger.Warn("running in development mode; error details are returned to clients", zap.String("env", cfg.Env))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewVisitCollector(st, cfg.VisitRecordID, cfg.StoreTimeout, logger),
	)
	m := metrics.New(reg)

	visitSvc, err := visits.NewService(st, visits.Options{
		RecordID:    cfg.VisitRecordID,
		Timeout:     cfg.StoreTimeout,
		MaxAttempts: cfg.VisitMaxAttempts,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to create visit service", zap.Error(err))
	}

	contactOpts := contact.Options{
		Timeout: cfg.StoreTimeout,
		Metrics: m,
		Logger:  logger,
	}
	if notifier := email.NewNotifier(cfg, logger); notifier.IsEnabled() {
		contactOpts.Notifier = notifier
	}
	contactSvc := contact.NewService(st, contactOpts)

	srv := server.New(cfg, logger)
	deps := server.Deps{
		Store:   st,
		Visits:  visitSvc,
		Contact: contactSvc,
	}
	if cfg.MetricsEnabled {
		deps.Gatherer = reg
	}
	srv.RegisterRoutes(deps)

	monitor := jobs.NewStoreMonitor(st, cfg.StoreMonitorInterval, cfg.StoreTimeout, m, logger)
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitor.Start(monitorCtx)
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errChan:
		logger.Error("server error", zap.Error(err))
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()

	shutdown(shutdownCtx, srv, stopMonitor, monitorDone, st, logger)

	logger.Info("server exited")
}

// initLogger initializes the zap logger.
func initLogger(logLevel, logFormat string) *zap.Logger {
	var level zapcore.Level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if logFormat == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		// Fallback to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
