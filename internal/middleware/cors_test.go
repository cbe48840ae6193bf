package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func newCORSApp(origins []string) *fiber.App {
	app := fiber.New()
	app.Use(CORS(origins))
	app.Get("/api/visits", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		path       string
		origin     string
		wantStatus int
		wantOrigin string
		wantBody   string
	}{
		{
			name:       "wildcard without origin header",
			origins:    []string{"*"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantOrigin: "*",
			wantBody:   "ok",
		},
		{
			name:       "empty list allows any origin",
			method:     http.MethodGet,
			origin:     "https://elsewhere.example",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
			wantBody:   "ok",
		},
		{
			name:       "allowed origin echoed",
			origins:    []string{"https://ada.example.com/", "https://www.ada.example.com"},
			method:     http.MethodGet,
			origin:     "https://ada.example.com",
			wantStatus: http.StatusOK,
			wantOrigin: "https://ada.example.com",
			wantBody:   "ok",
		},
		{
			name:       "unlisted origin gets no allow origin",
			origins:    []string{"https://ada.example.com"},
			method:     http.MethodGet,
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "preflight answered with empty 200",
			origins:    []string{"*"},
			method:     http.MethodOptions,
			origin:     "https://ada.example.com",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:       "preflight on unknown route",
			origins:    []string{"*"},
			method:     http.MethodOptions,
			path:       "/nowhere",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newCORSApp(tt.origins)

			path := tt.path
			if path == "" {
				path = "/api/visits"
			}
			req := httptest.NewRequest(tt.method, path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
				t.Errorf("Allow-Methods = %q", got)
			}
			if got := resp.Header.Get("Access-Control-Allow-Headers"); got != "Content-Type" {
				t.Errorf("Allow-Headers = %q", got)
			}

			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
