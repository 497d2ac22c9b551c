package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cv_screening"

// Metrics holds the scheduler and invoker collectors. A nil *Metrics is a no-op.
type Metrics struct {
	queued      prometheus.Gauge
	running     prometheus.Gauge
	finished    *prometheus.CounterVec
	invocations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_queued",
			Help:      "Jobs waiting for a free execution slot",
		}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Jobs currently executing the evaluation pipeline",
		}),
		finished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Jobs that reached a terminal state",
		}, []string{"status"}),
		invocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Text completion attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) setDepth(queued, running int) {
	if m == nil {
		return
	}
	m.queued.Set(float64(queued))
	m.running.Set(float64(running))
}

func (m *Metrics) jobFinished(status string) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(status).Inc()
}

// ObserveAttempt counts one completion attempt.
func (m *Metrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(outcome).Inc()
}
