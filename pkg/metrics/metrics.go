package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordGraph records the size of the filtered graph and how many input
// channels were dropped per reason.
func (r *Registry) RecordGraph(nodes, edges int, filtered map[string]int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	for reason, n := range filtered {
		if n > 0 {
			r.EdgesFilteredTotal.WithLabelValues(reason).Add(float64(n))
		}
	}
}

// RecordTarget records the target's score and rank for a phase
// ("baseline" or "best").
func (r *Registry) RecordTarget(phase string, score float64, rank int) {
	r.TargetScore.WithLabelValues(phase).Set(score)
	r.TargetRank.WithLabelValues(phase).Set(float64(rank))
}

// RecordBestGain records the best score improvement of a simulation run.
func (r *Registry) RecordBestGain(gain float64) {
	r.SimulationBestGain.Set(gain)
}

// ObserveCentrality records one betweenness pass.
func (r *Registry) ObserveCentrality(phase string, d time.Duration) {
	r.CentralityDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// ObserveTrial records one what-if trial and the goroutine count while it
// ran. Safe for concurrent use.
func (r *Registry) ObserveTrial(_ string, d time.Duration) {
	r.SimulationsTotal.Inc()
	r.SimulationDuration.Observe(d.Seconds())

	n := runtime.NumGoroutine()
	r.mu.Lock()
	if n > r.peak {
		r.peak = n
		r.PeakGoroutines.Set(float64(n))
	}
	r.mu.Unlock()
}

// SampleHeap records the heap in use at the end of phase.
func (r *Registry) SampleHeap(phase string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.PhaseHeapBytes.WithLabelValues(phase).Set(float64(m.HeapAlloc))
}

// WriteTextfile stamps the run duration and writes every metric in the text
// exposition format, suitable for node_exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.RunDuration.Set(time.Since(r.started).Seconds())
	return prometheus.WriteToTextfile(path, r.registry)
}
