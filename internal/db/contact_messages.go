package db

import (
	"context"

	"portfolio/internal/models"
)

// CreateContactMessage inserts a contact form submission.
func (d *DB) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, created_at, ip_address, user_agent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.Timestamp,
		msg.IPAddress,
		msg.UserAgent,
		msg.Status,
	)
	return translateError(err)
}
