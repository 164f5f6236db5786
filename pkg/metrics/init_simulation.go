package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lnrank_simulations_total",
			Help: "Number of single-edge what-if trials run",
		},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lnrank_simulation_duration_seconds",
			Help:    "Duration of one what-if trial in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	r.SimulationBestGain = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lnrank_simulation_best_gain",
			Help: "Largest target score increase found by the simulation",
		},
	)
}
