package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	IdentitiesCreated      prometheus.Counter
	AttributesAdded        prometheus.Counter
	VerifiersAuthorized    prometheus.Counter
	VerificationsRequested prometheus.Counter
	VerificationsProcessed *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_identities_created_total",
			Help: "Total number of identities registered",
		}),
		AttributesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_attributes_added_total",
			Help: "Total number of attribute upserts accepted",
		}),
		VerifiersAuthorized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifiers_authorized_total",
			Help: "Total number of verifier authorizations granted",
		}),
		VerificationsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifications_requested_total",
			Help: "Total number of verification requests opened",
		}),
		VerificationsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_verifications_processed_total",
			Help: "Total number of verification requests processed, by decision",
		}, []string{"decision"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vouch_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncrementIdentitiesCreated() {
	m.IdentitiesCreated.Inc()
}

func (m *Metrics) IncrementAttributesAdded() {
	m.AttributesAdded.Inc()
}

func (m *Metrics) IncrementVerifiersAuthorized() {
	m.VerifiersAuthorized.Inc()
}

func (m *Metrics) IncrementVerificationsRequested() {
	m.VerificationsRequested.Inc()
}

func (m *Metrics) IncrementVerificationsProcessed(approved bool) {
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	m.VerificationsProcessed.WithLabelValues(decision).Inc()
}
