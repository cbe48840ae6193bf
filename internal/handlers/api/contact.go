package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/contact"
	"portfolio/internal/models"
)

// Contact response messages.
const (
	MsgContactReceived   = "Thank you for your message! I'll get back to you soon."
	MsgContactFailed     = "Unable to process your message at this time. Please try again later."
	MsgContactMethodOnly = "Method not allowed. Use POST."
	MsgInvalidBody       = "Invalid request body."
)

// ContactSubmitter stores contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, sub contact.Submission, req contact.Requester) (*models.ContactMessage, error)
}

// ContactHandler serves /api/contact.
type ContactHandler struct {
	contact ContactSubmitter
	dev     bool
	logger  *zap.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(svc ContactSubmitter, dev bool, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contact: svc,
		dev:     dev,
		logger:  logger.With(zap.String("component", "contact_handler")),
	}
}

// Submit accepts one contact form submission.
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	var sub contact.Submission
	if err := json.Unmarshal(c.Body(), &sub); err != nil {
		return jsonError(c, fiber.StatusBadRequest, MsgInvalidBody, err, h.dev)
	}

	msg, err := h.contact.Submit(c.Context(), sub, contact.Requester{
		Address:   ClientAddress(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		var inputErr *apperr.InputError
		if errors.As(err, &inputErr) {
			return jsonError(c, fiber.StatusBadRequest, inputErr.Message, nil, false)
		}
		h.logger.Error("failed to store contact message",
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return jsonError(c, apperr.HTTPStatus(err), MsgContactFailed, err, h.dev)
	}

	return c.JSON(models.ContactResponse{
		Status:    statusSuccess,
		Message:   MsgContactReceived,
		MessageID: msg.ID,
		Timestamp: models.FormatTimestamp(msg.Timestamp),
	})
}
