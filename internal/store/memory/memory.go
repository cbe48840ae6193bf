// Package memory is an in-process Store for development and tests.
package memory

import (
	"context"
	"sync"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// Store keeps records in maps guarded by a mutex. It implements
// store.VersionedStore.
type Store struct {
	mu       sync.Mutex
	visits   map[string]models.VisitRecord
	messages map[string]models.ContactMessage
	order    []string
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.VersionedStore = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		visits:   make(map[string]models.VisitRecord),
		messages: make(map[string]models.ContactMessage),
	}
}

// GetVisitRecord returns a copy of the record including its version.
func (s *Store) GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.visits[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

// PutVisitRecord stores rec if the current version matches.
func (s *Store) PutVisitRecord(ctx context.Context, rec *models.VisitRecord, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.visits[rec.ID]
	switch {
	case !ok && expectedVersion != 0:
		return store.ErrVersionConflict
	case ok && current.Version != expectedVersion:
		return store.ErrVersionConflict
	}

	rec.Version = expectedVersion + 1
	s.visits[rec.ID] = *rec
	return nil
}

// CreateContactMessage stores a copy of msg.
func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; ok {
		return store.ErrDuplicateID
	}
	s.messages[msg.ID] = *msg
	s.order = append(s.order, msg.ID)
	return nil
}

// ContactMessages returns stored messages in insertion order.
func (s *Store) ContactMessages() []models.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ContactMessage, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.messages[id])
	}
	return out
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
