// Package contact accepts contact form submissions.
package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/metrics"
	"portfolio/internal/models"
	"portfolio/internal/store"
	"portfolio/internal/validation"
)

// UnknownUserAgent is stored when the client sent no User-Agent.
const UnknownUserAgent = "unknown"

// DefaultTimeout bounds one submission when Options leaves it zero.
const DefaultTimeout = 5 * time.Second

// Submission is the client supplied part of a contact message.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Requester describes who sent the submission.
type Requester struct {
	Address   string
	UserAgent string
}

// Notifier is told about every stored message. Implementations must not block.
type Notifier interface {
	NotifyContactReceived(ctx context.Context, msg *models.ContactMessage)
}

// Options configure a Service.
type Options struct {
	Timeout  time.Duration
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Now      func() time.Time
	NewID    func() string
}

// Service validates and stores contact messages.
type Service struct {
	store    store.Store
	timeout  time.Duration
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService creates a contact service over st.
func NewService(st store.Store, opts Options) *Service {
	s := &Service{
		store:    st,
		timeout:  opts.Timeout,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.logger = s.logger.With(zap.String("component", "contact"))
	return s
}

// Submit validates sub and stores it as a new message. Validation failures
// are *apperr.InputError; store failures wrap apperr.ErrStorageUnavailable.
func (s *Service) Submit(ctx context.Context, sub Submission, req Requester) (*models.ContactMessage, error) {
	c := validation.Contact{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
	}.Normalize()

	if err := validation.ValidateContact(c); err != nil {
		s.metrics.RecordContact(metrics.OutcomeInvalid)
		return nil, err
	}

	if c.Subject == "" {
		c.Subject = models.DefaultContactSubject
	}
	if req.Address == "" {
		req.Address = validation.UnknownAddress
	}
	if req.UserAgent == "" {
		req.UserAgent = UnknownUserAgent
	}

	msg := &models.ContactMessage{
		ID:        s.newID(),
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Timestamp: s.now().UTC(),
		IPAddress: req.Address,
		UserAgent: req.UserAgent,
		Status:    models.ContactStatusNew,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.CreateContactMessage(ctx, msg); err != nil {
		s.metrics.RecordContact(metrics.OutcomeUnavailable)
		return nil, fmt.Errorf("%w: store contact message: %w", apperr.ErrStorageUnavailable, err)
	}
	s.metrics.RecordContact(metrics.OutcomeSuccess)

	s.logger.Info("contact message stored",
		zap.String("message_id", msg.ID),
		zap.String("ip", msg.IPAddress),
	)

	if s.notifier != nil {
		// The request context ends with the response.
		s.notifier.NotifyContactReceived(context.WithoutCancel(ctx), msg)
	}

	return msg, nil
}
