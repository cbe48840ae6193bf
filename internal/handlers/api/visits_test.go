package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/visits"
)

type fakeIncrementer struct {
	res      *visits.Result
	err      error
	lastAddr string
}

func (f *fakeIncrementer) Increment(ctx context.Context, addr string) (*visits.Result, error) {
	f.lastAddr = addr
	return f.res, f.err
}

func TestVisitMessage(t *testing.T) {
	tests := []struct {
		res  visits.Result
		want string
	}{
		{visits.Result{VisitCount: 1, First: true}, "Welcome! You are the first visitor!"},
		{visits.Result{VisitCount: 2}, "Thank you for visiting! You are visitor #2"},
		{visits.Result{VisitCount: 1048576}, "Thank you for visiting! You are visitor #1048576"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := visitMessage(&tt.res); got != tt.want {
				t.Errorf("visitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVisitHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		dev        bool
		wantStatus int
		wantDetail bool
	}{
		{"conflict", fmt.Errorf("%w: 5 attempts", apperr.ErrStorageConflict), false, http.StatusInternalServerError, false},
		{"unavailable", fmt.Errorf("%w: timeout", apperr.ErrStorageUnavailable), false, http.StatusInternalServerError, false},
		{"unavailable in development", fmt.Errorf("%w: timeout", apperr.ErrStorageUnavailable), true, http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewVisitHandler(&fakeIncrementer{err: tt.err}, tt.dev, zap.NewNop())
			app.Get("/api/visits", h.Increment)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/visits", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["message"] != MsgVisitFailed {
				t.Errorf("message = %q, want %q", body["message"], MsgVisitFailed)
			}
			if _, ok := body["error"]; ok != tt.wantDetail {
				t.Errorf("error field present = %v, want %v", ok, tt.wantDetail)
			}
		})
	}
}

func TestVisitHandler_PassesClientAddress(t *testing.T) {
	inc := &fakeIncrementer{res: &visits.Result{VisitCount: 7, Timestamp: time.Now()}}
	app := fiber.New()
	app.Get("/api/visits", NewVisitHandler(inc, false, zap.NewNop()).Increment)

	req := httptest.NewRequest(http.MethodGet, "/api/visits", nil)
	req.Header.Set("X-Real-IP", "198.51.100.23")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if inc.lastAddr != "198.51.100.23" {
		t.Errorf("address = %q, want 198.51.100.23", inc.lastAddr)
	}
}
