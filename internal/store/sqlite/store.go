// Package sqlite is the SQLite binding of the store capabilities, for
// single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"portfolio/internal/models"
	"portfolio/internal/store"
	"portfolio/migrations"
)

// Store persists visits and contact messages in one SQLite file. Writes are
// serialized through a single connection opened with immediate transactions.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ store.Store                = (*Store)(nil)
	_ store.TransactionalUpdater = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	source, err := iofs.New(migrations.FS, migrations.SQLiteDir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitRecord(row rowScanner) (*models.VisitRecord, error) {
	var (
		rec                  models.VisitRecord
		createdAt, lastVisit int64
	)
	err := row.Scan(&rec.ID, &rec.VisitCount, &createdAt, &lastVisit, &rec.LastVisitorIP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.LastVisit = fromMillis(lastVisit)
	return &rec, nil
}

const selectVisitRecord = `SELECT id, visit_count, created_at, last_visit, last_visitor_ip FROM visit_records WHERE id = ?`

// GetVisitRecord returns the visit record by ID.
func (s *Store) GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error) {
	return scanVisitRecord(s.sqlDB.QueryRowContext(ctx, selectVisitRecord, id))
}

// UpdateVisitRecord reads the record, applies fn and writes it back inside
// one immediate transaction.
func (s *Store) UpdateVisitRecord(ctx context.Context, id string, fn store.UpdateFunc) (*models.VisitRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := scanVisitRecord(tx.QueryRowContext(ctx, selectVisitRecord, id))
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec = &models.VisitRecord{ID: id}
	case err != nil:
		return nil, fmt.Errorf("read visit record: %w", err)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visit_records (id, visit_count, created_at, last_visit, last_visitor_ip)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			visit_count = excluded.visit_count,
			last_visit = excluded.last_visit,
			last_visitor_ip = excluded.last_visitor_ip`,
		rec.ID, rec.VisitCount, toMillis(rec.CreatedAt), toMillis(rec.LastVisit), rec.LastVisitorIP,
	)
	if err != nil {
		return nil, fmt.Errorf("write visit record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// CreateContactMessage inserts a contact form submission.
func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, created_at, ip_address, user_agent, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message,
		toMillis(msg.Timestamp), msg.IPAddress, msg.UserAgent, msg.Status,
	)
	if isConstraintPrimaryKey(err) {
		return store.ErrDuplicateID
	}
	return err
}

func isConstraintPrimaryKey(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}
