// Package metrics holds Prometheus metrics for admin authentication.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts login outcomes.
type Metrics struct {
	LoginsTotal *prometheus.CounterVec
}

// New registers the auth metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Admin login attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveLogin increments the login counter for outcome.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}
