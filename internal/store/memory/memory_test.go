package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

func TestStore_VisitRecordVersioning(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetVisitRecord(ctx, "visits")
	require.ErrorIs(t, err, store.ErrNotFound)

	rec := &models.VisitRecord{ID: "visits"}
	rec.Increment("1.2.3.4", time.Now())
	require.NoError(t, s.PutVisitRecord(ctx, rec, 0))
	assert.Equal(t, int64(1), rec.Version)

	// A second create must not overwrite.
	dup := &models.VisitRecord{ID: "visits", VisitCount: 1}
	require.ErrorIs(t, s.PutVisitRecord(ctx, dup, 0), store.ErrVersionConflict)

	// Stale version is rejected.
	stale := &models.VisitRecord{ID: "visits", VisitCount: 7}
	require.ErrorIs(t, s.PutVisitRecord(ctx, stale, 5), store.ErrVersionConflict)

	got, err := s.GetVisitRecord(ctx, "visits")
	require.NoError(t, err)
	got.Increment("5.6.7.8", time.Now())
	require.NoError(t, s.PutVisitRecord(ctx, got, got.Version))

	final, err := s.GetVisitRecord(ctx, "visits")
	require.NoError(t, err)
	assert.Equal(t, int64(2), final.VisitCount)
	assert.Equal(t, int64(2), final.Version)
	assert.Equal(t, "5.6.7.8", final.LastVisitorIP)
}

func TestStore_PutMissingWithVersion(t *testing.T) {
	s := New()
	rec := &models.VisitRecord{ID: "visits", VisitCount: 1}
	require.ErrorIs(t, s.PutVisitRecord(context.Background(), rec, 3), store.ErrVersionConflict)
}

func TestStore_ContactMessages(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateContactMessage(ctx, &models.ContactMessage{ID: "a", Name: "A"}))
	require.NoError(t, s.CreateContactMessage(ctx, &models.ContactMessage{ID: "b", Name: "B"}))
	require.ErrorIs(t, s.CreateContactMessage(ctx, &models.ContactMessage{ID: "a"}), store.ErrDuplicateID)

	msgs := s.ContactMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[0].Name)
	assert.Equal(t, "B", msgs[1].Name)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	_, err := s.GetVisitRecord(ctx, "visits")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
