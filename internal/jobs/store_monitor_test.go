package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"portfolio/internal/metrics"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func storeUpValue(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "portfolio_store_up" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("portfolio_store_up not gathered")
	return 0
}

func TestStoreMonitor_CheckTransitions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()
	pinger := &fakePinger{}
	mon := NewStoreMonitor(pinger, time.Minute, time.Second, metrics.New(reg), zap.New(core))
	ctx := context.Background()

	if !mon.check(ctx) {
		t.Fatal("check() = false, want true")
	}
	if got := storeUpValue(t, reg); got != 1 {
		t.Errorf("portfolio_store_up = %v, want 1", got)
	}

	// Same state again is not logged.
	mon.check(ctx)
	if n := logs.FilterMessage("store reachable").Len(); n != 1 {
		t.Errorf("logged %d reachable entries, want 1", n)
	}

	pinger.setErr(errors.New("connection refused"))
	if mon.check(ctx) {
		t.Fatal("check() = true, want false")
	}
	if got := storeUpValue(t, reg); got != 0 {
		t.Errorf("portfolio_store_up = %v, want 0", got)
	}
	if n := logs.FilterMessage("store unreachable").Len(); n != 1 {
		t.Errorf("logged %d unreachable entries, want 1", n)
	}

	pinger.setErr(nil)
	mon.check(ctx)
	if n := logs.FilterMessage("store reachable").Len(); n != 2 {
		t.Errorf("logged %d reachable entries, want 2", n)
	}
}

func TestStoreMonitor_StartStopsWithContext(t *testing.T) {
	pinger := &fakePinger{}
	mon := NewStoreMonitor(pinger, 5*time.Millisecond, time.Second, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for pinger.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d pings before deadline", pinger.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
