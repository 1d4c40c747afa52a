package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	AuditChanges        *prometheus.CounterVec
	SessionsSynthesized prometheus.Counter
	SessionsOpened      *prometheus.CounterVec
	AuditWriteDuration  prometheus.Histogram
	AuditBreakerState   prometheus.Gauge
	TimelineEvents      *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		AuditChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_audit_changes_total",
			Help: "Observed entity changes by audit outcome",
		}, []string{"outcome"}),
		SessionsSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Name: "dossier_audit_sessions_synthesized_total",
			Help: "Sessions created automatically to attribute a change",
		}),
		SessionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_audit_sessions_opened_total",
			Help: "Explicit session boundaries recorded, by label",
		}, []string{"label"}),
		AuditWriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_audit_write_duration_seconds",
			Help:    "Latency of change record writes",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		AuditBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dossier_audit_breaker_state",
			Help: "Audit store circuit breaker state (0=closed, 1=open)",
		}),
		TimelineEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_timeline_events_total",
			Help: "Case timeline appends by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncAuditOutcome(outcome string) {
	m.AuditChanges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAuditWrite(d time.Duration) {
	m.AuditWriteDuration.Observe(d.Seconds())
}

func (m *Metrics) SetAuditBreakerOpen(open bool) {
	if open {
		m.AuditBreakerState.Set(1)
		return
	}
	m.AuditBreakerState.Set(0)
}

func (m *Metrics) IncSessionsSynthesized() {
	m.SessionsSynthesized.Inc()
}

func (m *Metrics) IncSessionsOpened(label string) {
	m.SessionsOpened.WithLabelValues(label).Inc()
}

func (m *Metrics) IncTimelineOutcome(outcome string) {
	m.TimelineEvents.WithLabelValues(outcome).Inc()
}
