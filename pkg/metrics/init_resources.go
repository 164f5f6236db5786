package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initResourceMetrics() {
	r.RunDuration = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lnrank_run_duration_seconds",
			Help: "Wall time from registry creation to the metrics dump",
		},
	)

	r.PhaseHeapBytes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lnrank_phase_heap_bytes",
			Help: "Heap bytes in use when an analysis phase finished",
		},
		[]string{"phase"},
	)

	r.PeakGoroutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lnrank_simulation_peak_goroutines",
			Help: "Highest goroutine count seen while simulation trials ran",
		},
	)
}
