// Package middleware holds the HTTP middleware shared by all routes.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "Content-Type"
)

// CORS sets the cross-origin headers on every response and answers
// preflight requests with 200 and an empty body. A "*" entry allows any
// origin; otherwise a matching Origin header is echoed back.
func CORS(allowedOrigins []string) fiber.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{})

	for _, origin := range allowedOrigins {
		origin = normalizeOrigin(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			break
		}
		allowed[origin] = struct{}{}
	}

	return func(c fiber.Ctx) error {
		if allowAll {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		} else {
			c.Vary(fiber.HeaderOrigin)
			if origin := normalizeOrigin(c.Get(fiber.HeaderOrigin)); origin != "" {
				if _, ok := allowed[origin]; ok {
					c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
				}
			}
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return nil
		}
		return c.Next()
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
