// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the wizard's counters. Register against a fresh registry
// in tests to avoid duplicate-collector panics.
type Metrics struct {
	Submissions        prometheus.Counter
	Uploads            *prometheus.CounterVec
	SessionsStarted    prometheus.Counter
	SessionsExpired    prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	NotifyFailures     prometheus.Counter
}

// New registers the wizard's collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "wizard_submissions_total",
			Help: "Total number of applications submitted",
		}),
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_uploads_total",
			Help: "Total number of evidence upload attempts by outcome",
		}, []string{"slot", "outcome"}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "wizard_sessions_started_total",
			Help: "Total number of wizard sessions started",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "wizard_sessions_expired_total",
			Help: "Total number of sessions evicted after inactivity",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_validation_failures_total",
			Help: "Total number of form submissions rejected, by step",
		}, []string{"step"}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wizard_notify_failures_total",
			Help: "Total number of confirmation emails that failed to send",
		}),
	}
}
