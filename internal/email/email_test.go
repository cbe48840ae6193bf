package email

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"portfolio/internal/config"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
	}{
		{
			name: "enabled when all SMTP settings configured",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
			wantEnabled: true,
		},
		{
			name: "disabled when SMTPEnabled is false",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
				SMTPFrom: "noreply@example.com",
			},
		},
		{
			name: "disabled when SMTPHost is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
		},
		{
			name: "disabled when SMTPFrom is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
			},
		},
		{
			name: "disabled with empty config",
			cfg:  &config.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg, nil)
			if svc.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", svc.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestService_Send_Disabled(t *testing.T) {
	svc := NewService(&config.Config{}, nil)

	err := svc.Send(context.Background(), Message{To: []string{"test@example.com"}, Subject: "Test", TextBody: "Text"})
	if err != nil {
		t.Errorf("Send() with disabled service should return nil, got %v", err)
	}
}

func TestService_Send_NoRecipients(t *testing.T) {
	svc := NewService(&config.Config{
		SMTPEnabled: true,
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
		SMTPFrom:    "noreply@example.com",
	}, nil)

	if err := svc.Send(context.Background(), Message{Subject: "Test", TextBody: "Text"}); err != nil {
		t.Errorf("Send() with no recipients should return nil, got %v", err)
	}
}

func TestService_FromHeader(t *testing.T) {
	tests := []struct {
		name       string
		fromName   string
		wantHeader string
	}{
		{"with display name", "Portfolio", "Portfolio <noreply@example.com>"},
		{"without display name", "", "noreply@example.com"},
		{"display name with newline", "Port\r\nBcc: x@evil.test", "Port  Bcc: x@evil.test <noreply@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&config.Config{SMTPFrom: "noreply@example.com", SMTPFromName: tt.fromName}, nil)
			if got := svc.fromHeader(); got != tt.wantHeader {
				t.Errorf("fromHeader() = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		checks  []string
		missing []string
	}{
		{
			name: "multipart message format",
			msg:  Message{To: []string{"to@example.com"}, Subject: "Test", HTMLBody: "<p>HTML</p>", TextBody: "Plain text"},
			checks: []string{
				"From: Site <site@example.com>\r\n",
				"To: to@example.com\r\n",
				"Subject: Test\r\n",
				"MIME-Version: 1.0",
				"Content-Type: multipart/alternative; boundary=\"portfolio-",
				"Content-Type: text/plain; charset=UTF-8",
				"Content-Type: text/html; charset=UTF-8",
			},
			missing: []string{"Reply-To:"},
		},
		{
			name:    "html only format",
			msg:     Message{To: []string{"to@example.com"}, Subject: "HTML", HTMLBody: "<p>HTML</p>"},
			checks:  []string{"Content-Type: text/html; charset=UTF-8", "<p>HTML</p>"},
			missing: []string{"multipart", "text/plain"},
		},
		{
			name:    "text only format",
			msg:     Message{To: []string{"to@example.com"}, Subject: "Text", TextBody: "Plain text"},
			checks:  []string{"Content-Type: text/plain; charset=UTF-8", "Plain text"},
			missing: []string{"multipart", "text/html"},
		},
		{
			name:   "reply to and several recipients",
			msg:    Message{To: []string{"a@example.com", "b@example.com"}, ReplyTo: "ada@example.com", Subject: "Hi", TextBody: "x"},
			checks: []string{"To: a@example.com, b@example.com\r\n", "Reply-To: ada@example.com\r\n"},
		},
		{
			name:    "subject header injection stripped",
			msg:     Message{To: []string{"to@example.com"}, Subject: "Hi\r\nBcc: victim@example.com", TextBody: "x"},
			checks:  []string{"Subject: Hi  Bcc: victim@example.com\r\n"},
			missing: []string{"\r\nBcc:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildMessage("Site <site@example.com>", tt.msg)
			for _, check := range tt.checks {
				if !strings.Contains(got, check) {
					t.Errorf("message missing %q\nMessage:\n%s", check, got)
				}
			}
			for _, m := range tt.missing {
				if strings.Contains(got, m) {
					t.Errorf("message should not contain %q\nMessage:\n%s", m, got)
				}
			}
		})
	}
}

func TestService_SendAsync_Disabled(t *testing.T) {
	svc := NewService(&config.Config{}, nil)

	// Should not panic when disabled
	svc.SendAsync(context.Background(), Message{To: []string{"test@example.com"}, Subject: "Test", TextBody: "Text"})
}

func enabledConfig(host string, port int) *config.Config {
	return &config.Config{
		SMTPEnabled: true,
		SMTPHost:    host,
		SMTPPort:    port,
		SMTPFrom:    "noreply@example.com",
		SMTPTLS:     "none",
	}
}

func TestService_Send_CancelledContext(t *testing.T) {
	svc := NewService(enabledConfig("smtp.example.com", 25), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Send(ctx, Message{To: []string{"test@example.com"}, Subject: "Test", TextBody: "Text"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
}

func TestService_Send_StopsAtDeadline(t *testing.T) {
	// The server accepts but never sends its greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	svc := NewService(enabledConfig("127.0.0.1", port), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = svc.Send(ctx, Message{To: []string{"test@example.com"}, Subject: "Test", TextBody: "Text"})
	if err == nil {
		t.Fatal("Send() expected an error from a silent server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Send() returned after %v, want it bounded by the context deadline", elapsed)
	}
}
