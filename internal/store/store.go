// Package store defines the persistence capabilities the services depend on.
//
// Every binding implements Store plus exactly one way of incrementing the
// visit counter without lost updates: AtomicIncrementer, TransactionalUpdater
// or VersionedStore.
package store

import (
	"context"
	"errors"
	"time"

	"portfolio/internal/models"
)

// Storage error sentinels.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("record id already exists")
	ErrVersionConflict = errors.New("record version changed")
)

// Store is the capability set shared by every backend.
type Store interface {
	// GetVisitRecord returns ErrNotFound when the record does not exist.
	GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error)
	// CreateContactMessage returns ErrDuplicateID if msg.ID is taken.
	CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error
	Ping(ctx context.Context) error
	Close() error
}

// AtomicIncrementer increments the counter in a single store operation,
// creating the record with count 1 if absent.
type AtomicIncrementer interface {
	IncrementVisits(ctx context.Context, id, ip string, at time.Time) (*models.VisitRecord, error)
}

// UpdateFunc mutates a record inside a transaction. The record is zero-valued
// apart from ID when it does not exist yet.
type UpdateFunc func(rec *models.VisitRecord) error

// TransactionalUpdater runs read-modify-write in a serialized transaction.
type TransactionalUpdater interface {
	UpdateVisitRecord(ctx context.Context, id string, fn UpdateFunc) (*models.VisitRecord, error)
}

// VersionedStore writes a record only if its stored version equals
// expectedVersion, and returns ErrVersionConflict otherwise. An
// expectedVersion of zero requires the record to be absent. On success
// rec.Version holds the new version.
type VersionedStore interface {
	PutVisitRecord(ctx context.Context, rec *models.VisitRecord, expectedVersion int64) error
}
