package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lnrank_graph_nodes",
			Help: "Number of nodes in the filtered graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lnrank_graph_edges",
			Help: "Number of distinct edges in the filtered graph",
		},
	)

	r.EdgesFilteredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lnrank_edges_filtered_total",
			Help: "Channels excluded while building the graph",
		},
		[]string{"reason"},
	)
}
