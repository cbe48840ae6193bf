// Package testutil provides test utilities and helpers.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio/internal/config"
)

// Config returns a development configuration on the memory backend with
// the defaults Load would apply.
func Config() *config.Config {
	return &config.Config{
		Env:                  "development",
		ServerAddr:           ":0",
		BaseURL:              "http://localhost:3000",
		LogLevel:             "debug",
		LogFormat:            "console",
		StoreBackend:         config.BackendMemory,
		StoreTimeout:         5 * time.Second,
		VisitRecordID:        "portfolio-visits",
		VisitMaxAttempts:     5,
		CORSOrigins:          []string{"*"},
		ContactRateLimit:     5,
		ContactRateWindow:    time.Minute,
		MetricsEnabled:       true,
		StoreMonitorInterval: 30 * time.Second,
		SMTPPort:             587,
		SMTPTLS:              "starttls",
		SiteTitle:            "Portfolio",
	}
}

// JSONRequest builds a request whose body is body encoded as JSON. A string
// body is sent verbatim.
func JSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DecodeJSON reads and decodes a JSON object response body.
func DecodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

// ReadBody returns the full response body.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
