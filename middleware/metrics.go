package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erraggy/oasgate/httpvalidator"
)

// Metrics holds the Prometheus metrics of the middleware.
type Metrics struct {
	// ValidationsTotal counts validations by scope (request, response) and
	// result (valid, invalid, error).
	ValidationsTotal *prometheus.CounterVec
	// ViolationsTotal counts validation errors by scope and kind.
	ViolationsTotal *prometheus.CounterVec
	// ValidationDuration observes validation latency by scope.
	ValidationDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasgate",
				Name:      "validations_total",
				Help:      "Total number of contract validations",
			},
			[]string{"scope", "result"},
		),
		ViolationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasgate",
				Name:      "violations_total",
				Help:      "Total number of contract violations found",
			},
			[]string{"scope", "kind"},
		),
		ValidationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "oasgate",
				Name:      "validation_duration_seconds",
				Help:      "Contract validation duration in seconds",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
			},
			[]string{"scope"},
		),
	}
}

// observe records one validation. A nil receiver records nothing.
func (m *Metrics) observe(scope string, verdict *httpvalidator.Verdict, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ValidationDuration.WithLabelValues(scope).Observe(elapsed.Seconds())

	switch {
	case err != nil:
		m.ValidationsTotal.WithLabelValues(scope, "error").Inc()
	case verdict.Valid:
		m.ValidationsTotal.WithLabelValues(scope, "valid").Inc()
	default:
		m.ValidationsTotal.WithLabelValues(scope, "invalid").Inc()
		for _, e := range verdict.Errors {
			m.ViolationsTotal.WithLabelValues(scope, e.Kind.String()).Inc()
		}
	}
}
