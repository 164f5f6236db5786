package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCentralityMetrics() {
	r.CentralityDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lnrank_centrality_duration_seconds",
			Help:    "Betweenness computation time in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"phase"},
	)

	r.TargetScore = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lnrank_target_score",
			Help: "Betweenness score of the target node",
		},
		[]string{"phase"},
	)

	r.TargetRank = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lnrank_target_rank",
			Help: "Zero-based rank of the target node",
		},
		[]string{"phase"},
	)
}
