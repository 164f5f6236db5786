package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of one analysis run. Each registry owns its
// collectors, so tests and repeated runs never collide.
type Registry struct {
	// Graph Metrics
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
	EdgesFilteredTotal *prometheus.CounterVec

	// Centrality Metrics
	CentralityDuration *prometheus.HistogramVec
	TargetScore        *prometheus.GaugeVec
	TargetRank         *prometheus.GaugeVec

	// Simulation Metrics
	SimulationsTotal   prometheus.Counter
	SimulationDuration prometheus.Histogram
	SimulationBestGain prometheus.Gauge

	// Resource Metrics
	RunDuration    prometheus.Gauge
	PhaseHeapBytes *prometheus.GaugeVec
	PeakGoroutines prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time

	mu   sync.Mutex
	peak int // highest goroutine count passed to PeakGoroutines
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initGraphMetrics()
	r.initCentralityMetrics()
	r.initSimulationMetrics()
	r.initResourceMetrics()

	return r
}
