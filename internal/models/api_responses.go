package models

import "time"

// TimestampLayout renders timestamps as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp formats t for API responses.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// VisitResponse is the success body of /api/visits.
type VisitResponse struct {
	Status     string `json:"status"`
	VisitCount int64  `json:"visitCount"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// ContactResponse is the success body of /api/contact.
type ContactResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every failed API call. Error carries the
// internal cause and is only populated in development.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
