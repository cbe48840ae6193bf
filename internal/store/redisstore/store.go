// Package redisstore is the Redis binding of the store capabilities. The
// visit record is a hash updated with WATCH/MULTI compare-and-swap on its
// version field.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// Hash fields of a visit record.
const (
	fieldCount     = "visitCount"
	fieldVersion   = "version"
	fieldCreatedAt = "createdAt"
	fieldLastVisit = "lastVisit"
	fieldLastIP    = "lastVisitorIP"
)

// Store implements store.Store and store.VersionedStore on Redis.
type Store struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.VersionedStore = (*Store)(nil)
)

// New connects to Redis at addr. namespace prefixes every key.
func New(addr, password, namespace string, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, namespace, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, namespace string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		namespace: namespace,
		logger:    logger.With(zap.String("component", "redis_store")),
	}
}

func (s *Store) visitKey(id string) string {
	return s.namespace + ":visits:" + id
}

func (s *Store) contactKey(id string) string {
	return s.namespace + ":contact:" + id
}

func (s *Store) contactIndexKey() string {
	return s.namespace + ":contact"
}

// GetVisitRecord reads the record hash including its version.
func (s *Store) GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.visitKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}
	return decodeVisitRecord(id, fields)
}

// PutVisitRecord writes rec if the stored version still equals expectedVersion.
func (s *Store) PutVisitRecord(ctx context.Context, rec *models.VisitRecord, expectedVersion int64) error {
	key := s.visitKey(rec.ID)
	next := expectedVersion + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return store.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeVisitRecord(rec, next))
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		s.logger.Debug("visit record changed during transaction", zap.String("id", rec.ID))
		return store.ErrVersionConflict
	}
	if err != nil {
		return err
	}

	rec.Version = next
	return nil
}

// CreateContactMessage stores the message hash and indexes it by time.
func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	key := s.contactKey(msg.ID)

	created, err := s.client.HSetNX(ctx, key, "id", msg.ID).Result()
	if err != nil {
		return err
	}
	if !created {
		return store.ErrDuplicateID
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"name":      msg.Name,
			"email":     msg.Email,
			"subject":   msg.Subject,
			"message":   msg.Message,
			"timestamp": models.FormatTimestamp(msg.Timestamp),
			"ipAddress": msg.IPAddress,
			"userAgent": msg.UserAgent,
			"status":    msg.Status,
		})
		pipe.ZAdd(ctx, s.contactIndexKey(), redis.Z{
			Score:  float64(msg.Timestamp.UnixMilli()),
			Member: msg.ID,
		})
		return nil
	})
	return err
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

func encodeVisitRecord(rec *models.VisitRecord, version int64) map[string]any {
	return map[string]any{
		fieldCount:     rec.VisitCount,
		fieldVersion:   version,
		fieldCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldLastVisit: rec.LastVisit.UTC().Format(time.RFC3339Nano),
		fieldLastIP:    rec.LastVisitorIP,
	}
}

func decodeVisitRecord(id string, fields map[string]string) (*models.VisitRecord, error) {
	rec := &models.VisitRecord{ID: id, LastVisitorIP: fields[fieldLastIP]}

	var err error
	if rec.VisitCount, err = strconv.ParseInt(fields[fieldCount], 10, 64); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldCount, err)
	}
	if rec.Version, err = strconv.ParseInt(fields[fieldVersion], 10, 64); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldVersion, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldCreatedAt, err)
	}
	if rec.LastVisit, err = time.Parse(time.RFC3339Nano, fields[fieldLastVisit]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldLastVisit, err)
	}
	return rec, nil
}
