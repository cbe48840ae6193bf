package email

import (
	"context"

	"go.uber.org/zap"

	"portfolio/internal/config"
	"portfolio/internal/models"
)

type sender interface {
	IsEnabled() bool
	SendAsync(ctx context.Context, msg Message)
}

// Notifier emails the site owner about new contact messages.
type Notifier struct {
	service   sender
	templates *Templates
	cfg       *config.Config
	logger    *zap.Logger
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		service:   NewService(cfg, logger),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "notifier")),
	}
}

// IsEnabled reports whether notifications will be sent.
func (n *Notifier) IsEnabled() bool {
	return n.service.IsEnabled() && n.cfg.ContactNotifyTo != ""
}

// NotifyContactReceived emails the owner in the background. Replies go to
// the sender. Nothing is sent once ctx is done.
func (n *Notifier) NotifyContactReceived(ctx context.Context, msg *models.ContactMessage) {
	if !n.IsEnabled() {
		return
	}
	if err := ctx.Err(); err != nil {
		n.logger.Warn("contact notification skipped", zap.String("message_id", msg.ID), zap.Error(err))
		return
	}

	subject, htmlBody, textBody := n.templates.ContactReceived(msg)
	n.service.SendAsync(ctx, Message{
		To:       []string{n.cfg.ContactNotifyTo},
		ReplyTo:  msg.Email,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	n.logger.Debug("contact notification queued", zap.String("message_id", msg.ID))
}
