package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/config"
)

// SendTimeout bounds one background delivery.
const SendTimeout = 30 * time.Second

// Message is one outgoing email.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Service handles sending email notifications.
type Service struct {
	cfg     *config.Config
	enabled bool
	logger  *zap.Logger
}

// NewService creates a new email service.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
		logger:  logger.With(zap.String("component", "email")),
	}

	if s.enabled {
		s.logger.Info("email notifications enabled",
			zap.String("smtp_host", cfg.SMTPHost),
			zap.Int("smtp_port", cfg.SMTPPort),
		)
	} else {
		s.logger.Info("email notifications disabled (SMTP not configured)")
	}

	return s
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Send delivers msg synchronously. The dial and the SMTP exchange stop at
// the ctx deadline.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.enabled || len(msg.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMessage(s.fromHeader(), msg)
	addr := net.JoinHostPort(s.cfg.SMTPHost, fmt.Sprint(s.cfg.SMTPPort))

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	switch s.cfg.SMTPTLS {
	case "tls":
		return s.sendWithTLS(ctx, addr, auth, msg.To, body)
	case "starttls":
		return s.sendWithStartTLS(ctx, addr, auth, msg.To, body)
	default: // "none"
		return s.sendPlain(ctx, addr, auth, msg.To, body)
	}
}

// SendAsync sends msg in the background and logs the result. Delivery is
// skipped when ctx is already done and is bounded by SendTimeout.
func (s *Service) SendAsync(ctx context.Context, msg Message) {
	if !s.enabled || len(msg.To) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(ctx, SendTimeout)
		defer cancel()

		if err := s.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send email", zap.Strings("to", msg.To), zap.Error(err))
			return
		}
		s.logger.Info("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	}()
}

func (s *Service) fromHeader() string {
	if s.cfg.SMTPFromName != "" {
		return fmt.Sprintf("%s <%s>", headerValue(s.cfg.SMTPFromName), s.cfg.SMTPFrom)
	}
	return s.cfg.SMTPFrom
}

// buildMessage renders the MIME message. Bodies present in both forms are
// sent as multipart/alternative.
func buildMessage(from string, m Message) string {
	var msg strings.Builder

	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	if m.ReplyTo != "" {
		msg.WriteString("Reply-To: " + headerValue(m.ReplyTo) + "\r\n")
	}
	msg.WriteString("Subject: " + headerValue(m.Subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case m.HTMLBody != "" && m.TextBody != "":
		boundary := "portfolio-" + uuid.NewString()
		msg.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString("--" + boundary + "\r\n")
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.TextBody + "\r\n")
		msg.WriteString("--" + boundary + "\r\n")
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.HTMLBody + "\r\n")
		msg.WriteString("--" + boundary + "--\r\n")
	case m.HTMLBody != "":
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.HTMLBody + "\r\n")
	default:
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.TextBody + "\r\n")
	}

	return msg.String()
}

// headerValue strips line breaks so user input cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func (s *Service) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
}

// dial opens the connection and applies the ctx deadline to it.
func dial(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if tlsConfig != nil {
		conn, err = (&tls.Dialer{Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// sendWithTLS sends email using implicit TLS (port 465).
func (s *Service) sendWithTLS(ctx context.Context, addr string, auth smtp.Auth, to []string, msg string) error {
	conn, err := dial(ctx, addr, s.tlsConfig())
	if err != nil {
		return fmt.Errorf("TLS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	return s.deliver(client, auth, to, msg)
}

// sendWithStartTLS sends email using STARTTLS (port 587).
func (s *Service) sendWithStartTLS(ctx context.Context, addr string, auth smtp.Auth, to []string, msg string) error {
	conn, err := dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("SMTP dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(s.tlsConfig()); err != nil {
		return fmt.Errorf("STARTTLS failed: %w", err)
	}

	return s.deliver(client, auth, to, msg)
}

// sendPlain sends email without TLS.
func (s *Service) sendPlain(ctx context.Context, addr string, auth smtp.Auth, to []string, msg string) error {
	conn, err := dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("SMTP dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	return s.deliver(client, auth, to, msg)
}

func (s *Service) deliver(client *smtp.Client, auth smtp.Auth, to []string, msg string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return client.Quit()
}
