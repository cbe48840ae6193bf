package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/metrics"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitor periodically pings the store and publishes its health.
type StoreMonitor struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger

	up    bool
	known bool
}

// NewStoreMonitor creates a new store monitor.
func NewStoreMonitor(store Pinger, interval, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *StoreMonitor {
	return &StoreMonitor{
		store:    store,
		interval: interval,
		timeout:  timeout,
		metrics:  m,
		logger:   logger.With(zap.String("component", "store_monitor")),
	}
}

// Start begins the monitor loop and returns when ctx is done.
func (s *StoreMonitor) Start(ctx context.Context) {
	s.logger.Info("store monitor started", zap.Duration("interval", s.interval))

	// Run immediately on start
	s.check(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("store monitor stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check pings once and logs when the state changes.
func (s *StoreMonitor) check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.Ping(pingCtx)
	up := err == nil
	s.metrics.SetStoreUp(up)

	if !s.known || up != s.up {
		if up {
			s.logger.Info("store reachable")
		} else {
			s.logger.Warn("store unreachable", zap.Error(err))
		}
	}
	s.up, s.known = up, true
	return up
}
