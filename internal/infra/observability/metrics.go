package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the CRM API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	authFailures       *prometheus.CounterVec
	domainErrors       *prometheus.CounterVec
	leadConversions    prometheus.Counter
	duplicateConflicts *prometheus.CounterVec
	inflightRejections prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_http_requests_total",
				Help: "Total HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_auth_failures_total",
				Help: "Authentication and authorization failures by reason.",
			},
			[]string{"reason"},
		),
		domainErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_domain_errors_total",
				Help: "Errors returned to clients by kind.",
			},
			[]string{"kind"},
		),
		leadConversions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_lead_conversions_total",
				Help: "Leads converted into customers.",
			},
		),
		duplicateConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_duplicate_conflicts_total",
				Help: "Duplicate detections by field.",
			},
			[]string{"field"},
		),
		inflightRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_inflight_rejections_total",
				Help: "Requests rejected because the in-flight limit was reached.",
			},
		),
	}
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncrAuthFailure increments the auth failure counter.
func (m *Metrics) IncrAuthFailure(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}

// IncrDomainError increments the error counter for an error kind.
func (m *Metrics) IncrDomainError(kind string) {
	m.domainErrors.WithLabelValues(kind).Inc()
}

// IncrLeadConversion counts a successful conversion.
func (m *Metrics) IncrLeadConversion() {
	m.leadConversions.Inc()
}

// IncrDuplicateConflict counts a duplicate detection on field.
func (m *Metrics) IncrDuplicateConflict(field string) {
	m.duplicateConflicts.WithLabelValues(field).Inc()
}

// IncrInflightRejection counts a request shed by the bulkhead.
func (m *Metrics) IncrInflightRejection() {
	m.inflightRejections.Inc()
}

// AuthFailures returns the current count for reason.
func (m *Metrics) AuthFailures(reason string) float64 {
	return getCounterValue(m.authFailures, reason)
}

// DomainErrors returns the current count for kind.
func (m *Metrics) DomainErrors(kind string) float64 {
	return getCounterValue(m.domainErrors, kind)
}

// DuplicateConflicts returns the current count for field.
func (m *Metrics) DuplicateConflicts(field string) float64 {
	return getCounterValue(m.duplicateConflicts, field)
}

// LeadConversions returns the number of conversions recorded so far.
func (m *Metrics) LeadConversions() float64 {
	return counterValue(m.leadConversions)
}

// InflightRejections returns the number of shed requests.
func (m *Metrics) InflightRejections() float64 {
	return counterValue(m.inflightRejections)
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
