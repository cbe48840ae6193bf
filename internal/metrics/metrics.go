package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// Outcome label values.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
)

var visitsTotalDesc = prometheus.NewDesc(
	"portfolio_visits_total",
	"Visit count stored in the visit record",
	nil,
	nil,
)

// Metrics holds the process collectors. A nil *Metrics records nothing.
type Metrics struct {
	visitIncrements    *prometheus.CounterVec
	visitRetries       prometheus.Counter
	contactSubmissions *prometheus.CounterVec
	storeUp            prometheus.Gauge
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		visitIncrements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_visit_increments_total",
			Help: "Visit increment calls by outcome",
		}, []string{"outcome"}),
		visitRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_visit_increment_retries_total",
			Help: "Optimistic visit updates retried after a version conflict",
		}),
		contactSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact form submissions by outcome",
		}, []string{"outcome"}),
		storeUp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_store_up",
			Help: "1 if the last store ping succeeded",
		}),
	}
}

// RecordVisit counts one increment call.
func (m *Metrics) RecordVisit(outcome string) {
	if m == nil {
		return
	}
	m.visitIncrements.WithLabelValues(outcome).Inc()
}

// RecordVisitRetry counts one optimistic retry.
func (m *Metrics) RecordVisitRetry() {
	if m == nil {
		return
	}
	m.visitRetries.Inc()
}

// RecordContact counts one contact submission.
func (m *Metrics) RecordContact(outcome string) {
	if m == nil {
		return
	}
	m.contactSubmissions.WithLabelValues(outcome).Inc()
}

// SetStoreUp records the last store health check.
func (m *Metrics) SetStoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.storeUp.Set(1)
	} else {
		m.storeUp.Set(0)
	}
}

// VisitReader reads the visit record.
type VisitReader interface {
	GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error)
}

// VisitCollector is a custom Prometheus collector that reads the visit
// count from the store on each scrape.
type VisitCollector struct {
	reader   VisitReader
	recordID string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewVisitCollector creates a collector for the record with recordID.
func NewVisitCollector(reader VisitReader, recordID string, timeout time.Duration, logger *zap.Logger) *VisitCollector {
	return &VisitCollector{
		reader:   reader,
		recordID: recordID,
		timeout:  timeout,
		logger:   logger.With(zap.String("component", "visit_collector")),
	}
}

// Describe sends the metric descriptor to the channel.
func (c *VisitCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- visitsTotalDesc
}

// Collect queries the store and emits the current count. A missing record
// reports zero; a store failure emits nothing.
func (c *VisitCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var count int64
	rec, err := c.reader.GetVisitRecord(ctx, c.recordID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		c.logger.Error("failed to collect visit count", zap.Error(err))
		return
	default:
		count = rec.VisitCount
	}

	ch <- prometheus.MustNewConstMetric(visitsTotalDesc, prometheus.CounterValue, float64(count))
}
