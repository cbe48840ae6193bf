package main

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops the server, then the background jobs, and waits for them
// to return before closing the store they use.
func shutdown(ctx context.Context, srv shutdowner, stopJobs context.CancelFunc, jobsDone <-chan struct{}, st io.Closer, logger *zap.Logger) {
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("failed to shutdown server", zap.Error(err))
	}

	stopJobs()
	select {
	case <-jobsDone:
	case <-ctx.Done():
		logger.Warn("background jobs did not stop before the shutdown deadline")
	}

	if err := st.Close(); err != nil {
		logger.Error("failed to close store", zap.Error(err))
	}
}
