package models

import "time"

// DefaultVisitRecordID is the identifier of the singleton visit counter.
const DefaultVisitRecordID = "portfolio-visits"

// VisitRecord is the per-deployment visitor counter.
type VisitRecord struct {
	ID            string    `json:"id"`
	VisitCount    int64     `json:"visitCount"`
	CreatedAt     time.Time `json:"createdAt"`
	LastVisit     time.Time `json:"lastVisit"`
	LastVisitorIP string    `json:"lastVisitorIP"`

	// Version is the optimistic concurrency token. Zero means the record
	// has never been written by a versioned store.
	Version int64 `json:"-"`
}

// Increment applies one visit to the record.
func (r *VisitRecord) Increment(ip string, at time.Time) {
	if r.VisitCount == 0 || r.CreatedAt.IsZero() {
		r.CreatedAt = at
	}
	r.VisitCount++
	r.LastVisit = at
	r.LastVisitorIP = ip
}
