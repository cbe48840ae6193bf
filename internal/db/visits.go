package db

import (
	"context"
	"time"

	"portfolio/internal/models"
)

const visitRecordColumns = `id, visit_count, created_at, last_visit, last_visitor_ip`

// IncrementVisits upserts the visit record and returns the new row. The
// conflict branch increments in place, so concurrent callers never read the
// same base count.
func (d *DB) IncrementVisits(ctx context.Context, id, ip string, at time.Time) (*models.VisitRecord, error) {
	var rec models.VisitRecord
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO visit_records (id, visit_count, created_at, last_visit, last_visitor_ip)
		VALUES ($1, 1, $2, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET visit_count = visit_records.visit_count + 1,
		    last_visit = EXCLUDED.last_visit,
		    last_visitor_ip = EXCLUDED.last_visitor_ip
		RETURNING `+visitRecordColumns,
		id, at, ip,
	).Scan(&rec.ID, &rec.VisitCount, &rec.CreatedAt, &rec.LastVisit, &rec.LastVisitorIP)
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// GetVisitRecord returns the visit record by ID.
func (d *DB) GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error) {
	var rec models.VisitRecord
	err := d.Pool.QueryRow(ctx,
		`SELECT `+visitRecordColumns+` FROM visit_records WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.VisitCount, &rec.CreatedAt, &rec.LastVisit, &rec.LastVisitorIP)
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}
