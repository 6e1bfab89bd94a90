// Package metrics holds Prometheus metrics for raffle draws.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Draw outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeNoConfig     = "no_configuration"
	OutcomeNoEligible   = "no_eligible"
	OutcomeInsufficient = "insufficient"
	OutcomeLockTimeout  = "lock_timeout"
	OutcomeError        = "error"
)

// Metrics records draw outcomes, latency and winners selected.
type Metrics struct {
	DrawsTotal   *prometheus.CounterVec
	DrawDuration prometheus.Histogram
	WinnersTotal prometheus.Counter
}

// New registers the draw metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		DrawsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "draw",
			Name:      "total",
			Help:      "Raffle draws by outcome.",
		}, []string{"outcome"}),
		DrawDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "raffle",
			Subsystem: "draw",
			Name:      "duration_seconds",
			Help:      "Time spent in a draw, including waiting for the draw lock.",
			Buckets:   prometheus.DefBuckets,
		}),
		WinnersTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "draw",
			Name:      "winners_total",
			Help:      "Participants selected as winners.",
		}),
	}
}

// ObserveDraw records one draw.
func (m *Metrics) ObserveDraw(outcome string, winners int, took time.Duration) {
	if m == nil {
		return
	}
	m.DrawsTotal.WithLabelValues(outcome).Inc()
	m.DrawDuration.Observe(took.Seconds())
	if winners > 0 {
		m.WinnersTotal.Add(float64(winners))
	}
}
