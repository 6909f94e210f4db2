package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CodesGenerated  prometheus.Counter
	CodeFallbacks   prometheus.Counter
	InsertConflicts prometheus.Counter
	Verifications   *prometheus.CounterVec
}

// New registers on the default registry; use NewWith in tests to avoid
// duplicate-registration panics across cases.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodesGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "estategate_access_codes_generated_total",
			Help: "Total number of visitor access codes generated",
		}),
		CodeFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "estategate_access_code_fallbacks_total",
			Help: "Times the generator exhausted its retries and fell back to a timestamp-derived code",
		}),
		InsertConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "estategate_pass_insert_conflicts_total",
			Help: "Access-code collisions detected at persistence time",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estategate_verifications_total",
			Help: "Verification attempts by outcome and denial reason",
		}, []string{"outcome", "reason"}),
	}
}

func (m *Metrics) ObserveVerification(outcome, reason string) {
	m.Verifications.WithLabelValues(outcome, reason).Inc()
}
