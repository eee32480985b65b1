// Package metrics provides Prometheus metrics for the document
// authentication flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all document authentication metrics.
type Metrics struct {
	// Outcome counters by terminal status (SUCCESS, FAILED, ERROR)
	OutcomesTotal *prometheus.CounterVec

	// Authority call latency
	AuthorityCallDurationSeconds prometheus.Histogram

	// Event delivery counters
	EventsPublishedTotal prometheus.Counter
	PublishFailuresTotal prometheus.Counter

	// Reconciler state
	UnpublishedPending prometheus.Gauge
	RepublishedTotal   prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		OutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docauth_outcomes_total",
			Help: "Total number of authentication attempts by terminal status",
		}, []string{"status"}),

		AuthorityCallDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "docauth_authority_call_duration_seconds",
			Help:    "Duration of authority authenticity checks",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		EventsPublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docauth_events_published_total",
			Help: "Total number of result events handed to the transport",
		}),

		PublishFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docauth_publish_failures_total",
			Help: "Total number of failed result event publish attempts",
		}),

		UnpublishedPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "docauth_unpublished_pending",
			Help: "Terminal records whose result event has not been published",
		}),

		RepublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docauth_republished_total",
			Help: "Total number of result events republished by the reconciler",
		}),
	}
}

// RecordOutcome records a terminal status transition.
func (m *Metrics) RecordOutcome(status string) {
	m.OutcomesTotal.WithLabelValues(status).Inc()
}

// ObserveAuthorityCall records the duration of one authority call.
func (m *Metrics) ObserveAuthorityCall(durationSeconds float64) {
	m.AuthorityCallDurationSeconds.Observe(durationSeconds)
}

// IncEventPublished records a successful result event hand-off.
func (m *Metrics) IncEventPublished() {
	m.EventsPublishedTotal.Inc()
}

// IncPublishFailure records a failed result event publish attempt.
func (m *Metrics) IncPublishFailure() {
	m.PublishFailuresTotal.Inc()
}

// SetUnpublishedPending updates the pending-unpublished gauge.
func (m *Metrics) SetUnpublishedPending(count int) {
	m.UnpublishedPending.Set(float64(count))
}

// IncRepublished records one reconciler republish.
func (m *Metrics) IncRepublished() {
	m.RepublishedTotal.Inc()
}
