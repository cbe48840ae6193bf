package models

import (
	"testing"
	"time"
)

func TestVisitRecord_Increment(t *testing.T) {
	first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(time.Minute)

	rec := &VisitRecord{ID: DefaultVisitRecordID}
	rec.Increment("10.0.0.1", first)
	rec.Increment("10.0.0.2", second)

	if rec.VisitCount != 2 {
		t.Errorf("VisitCount = %d, want 2", rec.VisitCount)
	}
	if !rec.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, first)
	}
	if !rec.LastVisit.Equal(second) {
		t.Errorf("LastVisit = %v, want %v", rec.LastVisit, second)
	}
	if rec.LastVisitorIP != "10.0.0.2" {
		t.Errorf("LastVisitorIP = %q, want %q", rec.LastVisitorIP, "10.0.0.2")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 123456789, time.FixedZone("CEST", 2*60*60))
	got := FormatTimestamp(ts)
	want := "2025-06-07T06:09:10.123Z"
	if got != want {
		t.Errorf("FormatTimestamp() = %q, want %q", got, want)
	}
}
