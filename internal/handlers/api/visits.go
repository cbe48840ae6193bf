package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/models"
	"portfolio/internal/validation"
	"portfolio/internal/visits"
)

// Visit response messages.
const (
	MsgFirstVisitor     = "Welcome! You are the first visitor!"
	MsgVisitFailed      = "Unable to track visit count"
	MsgVisitsMethodOnly = "Method not allowed. Use GET or POST."
)

// VisitIncrementer increments the visitor counter.
type VisitIncrementer interface {
	Increment(ctx context.Context, requesterAddress string) (*visits.Result, error)
}

// VisitHandler serves /api/visits.
type VisitHandler struct {
	visits VisitIncrementer
	dev    bool
	logger *zap.Logger
}

// NewVisitHandler creates a new visit handler.
func NewVisitHandler(svc VisitIncrementer, dev bool, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{
		visits: svc,
		dev:    dev,
		logger: logger.With(zap.String("component", "visit_handler")),
	}
}

// Increment counts one visit and returns the new total.
func (h *VisitHandler) Increment(c fiber.Ctx) error {
	addr := ClientAddress(c)

	res, err := h.visits.Increment(c.Context(), addr)
	if err != nil {
		h.logger.Error("failed to increment visit count",
			zap.String("ip", addr),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return jsonError(c, apperr.HTTPStatus(err), MsgVisitFailed, err, h.dev)
	}

	return c.JSON(models.VisitResponse{
		Status:     statusSuccess,
		VisitCount: res.VisitCount,
		Message:    visitMessage(res),
		Timestamp:  models.FormatTimestamp(res.Timestamp),
	})
}

func visitMessage(res *visits.Result) string {
	if res.First {
		return MsgFirstVisitor
	}
	return fmt.Sprintf("Thank you for visiting! You are visitor #%d", res.VisitCount)
}

// ClientAddress returns the best-effort requester address.
func ClientAddress(c fiber.Ctx) string {
	return validation.ClientAddress(
		c.Get(fiber.HeaderXForwardedFor),
		c.Get("X-Real-IP"),
		c.IP(),
	)
}

func requestID(c fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
