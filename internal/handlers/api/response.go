package api

import (
	"github.com/gofiber/fiber/v3"

	"portfolio/internal/apperr"
	"portfolio/internal/models"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// jsonError returns an error response with the given HTTP status code.
// The cause is only exposed when detail is true.
func jsonError(c fiber.Ctx, status int, message string, cause error, detail bool) error {
	resp := models.ErrorResponse{
		Status:  statusError,
		Message: message,
	}
	if detail && cause != nil {
		resp.Error = cause.Error()
	}
	return c.Status(status).JSON(resp)
}

// MethodNotAllowed answers unsupported methods with 405 and an Allow header.
func MethodNotAllowed(allow, message string) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, allow)
		return jsonError(c, apperr.HTTPStatus(apperr.ErrMethodNotAllowed), message, nil, false)
	}
}
