package models

import "time"

// Contact message status constants
const (
	ContactStatusNew = "new"
)

// DefaultContactSubject is used when a submission has no subject.
const DefaultContactSubject = "Contact Form Submission"

// ContactMessage is one contact form submission.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Status    string    `json:"status"`
}
