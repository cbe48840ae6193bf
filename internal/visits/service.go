// Package visits implements the visitor counter.
package visits

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/metrics"
	"portfolio/internal/models"
	"portfolio/internal/store"
)

// UnknownAddress stands in for a requester whose address is not known.
const UnknownAddress = "unknown"

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 5
)

// Result is the outcome of one successful increment.
type Result struct {
	VisitCount int64
	Timestamp  time.Time
	// First is true when this call created the record.
	First bool
}

// Options configure a Service.
type Options struct {
	RecordID    string
	Timeout     time.Duration
	MaxAttempts int
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

type strategy int

const (
	strategyAtomic strategy = iota
	strategyTransactional
	strategyVersioned
)

func (s strategy) String() string {
	switch s {
	case strategyAtomic:
		return "atomic"
	case strategyTransactional:
		return "transactional"
	default:
		return "versioned"
	}
}

// Service increments the singleton visit record without lost updates.
type Service struct {
	store       store.Store
	strategy    strategy
	recordID    string
	timeout     time.Duration
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService picks the increment strategy from the store's capabilities.
func NewService(st store.Store, opts Options) (*Service, error) {
	s := &Service{
		store:       st,
		recordID:    opts.RecordID,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         opts.Now,
	}

	switch st.(type) {
	case store.AtomicIncrementer:
		s.strategy = strategyAtomic
	case store.TransactionalUpdater:
		s.strategy = strategyTransactional
	case store.VersionedStore:
		s.strategy = strategyVersioned
	default:
		return nil, fmt.Errorf("store %T supports no safe increment", st)
	}

	if s.recordID == "" {
		s.recordID = models.DefaultVisitRecordID
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With(zap.String("component", "visits"), zap.Stringer("strategy", s.strategy))

	return s, nil
}

// Increment adds one visit from requesterAddress and returns the new count.
// Errors wrap apperr.ErrStorageUnavailable or apperr.ErrStorageConflict.
func (s *Service) Increment(ctx context.Context, requesterAddress string) (*Result, error) {
	if requesterAddress == "" {
		requesterAddress = UnknownAddress
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		rec *models.VisitRecord
		err error
	)
	switch s.strategy {
	case strategyAtomic:
		rec, err = s.store.(store.AtomicIncrementer).IncrementVisits(ctx, s.recordID, requesterAddress, s.now().UTC())
	case strategyTransactional:
		rec, err = s.store.(store.TransactionalUpdater).UpdateVisitRecord(ctx, s.recordID, func(r *models.VisitRecord) error {
			r.Increment(requesterAddress, s.now().UTC())
			return nil
		})
	default:
		rec, err = s.compareAndSwap(ctx, s.store.(store.VersionedStore), requesterAddress)
	}

	if err != nil {
		if errors.Is(err, apperr.ErrStorageConflict) {
			s.metrics.RecordVisit(metrics.OutcomeConflict)
			return nil, err
		}
		s.metrics.RecordVisit(metrics.OutcomeUnavailable)
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorageUnavailable, err)
	}

	s.metrics.RecordVisit(metrics.OutcomeSuccess)
	return &Result{
		VisitCount: rec.VisitCount,
		Timestamp:  rec.LastVisit,
		First:      rec.VisitCount == 1,
	}, nil
}

// compareAndSwap reads the record and its version, then writes count+1 only
// if nobody else wrote in between, retrying up to maxAttempts times.
func (s *Service) compareAndSwap(ctx context.Context, vs store.VersionedStore, ip string) (*models.VisitRecord, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		rec, err := s.store.GetVisitRecord(ctx, s.recordID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			rec = &models.VisitRecord{ID: s.recordID}
		case err != nil:
			return nil, err
		}

		expected := rec.Version
		rec.Increment(ip, s.now().UTC())

		err = vs.PutVisitRecord(ctx, rec, expected)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}

		s.metrics.RecordVisitRetry()
		s.logger.Debug("visit record version conflict",
			zap.Int("attempt", attempt),
			zap.Int64("expected_version", expected),
		)
		if attempt < s.maxAttempts {
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %d attempts on %s", apperr.ErrStorageConflict, s.maxAttempts, s.recordID)
}

// backoff returns a jittered delay that grows with the attempt number.
func backoff(attempt int) time.Duration {
	return time.Duration(rand.Int64N(int64(attempt) * int64(2*time.Millisecond)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
