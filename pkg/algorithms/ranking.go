package algorithms

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/lnrank/pkg/graph"
)

// ErrTargetNotFound is returned when a node id is absent from a ranking or graph.
var ErrTargetNotFound = errors.New("target node not found")

// RankedEntry is one position of a ranking. Rank is the dense 0-based index
// into the descending-sorted sequence.
type RankedEntry struct {
	NodeID string  `json:"node_id" yaml:"node_id"`
	Score  float64 `json:"score" yaml:"score"`
	Rank   int     `json:"rank" yaml:"rank"`
}

// Ranking is a total order of nodes: score descending, then pub key ascending.
type Ranking []RankedEntry

// outranks reports whether (scoreA, idA) sorts before (scoreB, idB).
func outranks(scoreA float64, idA string, scoreB float64, idB string) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return idA < idB
}

// Rank orders a centrality result. Re-ranking the same result always yields
// the same sequence.
func Rank(result CentralityResult) Ranking {
	ranking := make(Ranking, 0, len(result))
	for id, score := range result {
		ranking = append(ranking, RankedEntry{NodeID: id, Score: score})
	}

	sort.Slice(ranking, func(i, j int) bool {
		return outranks(ranking[i].Score, ranking[i].NodeID, ranking[j].Score, ranking[j].NodeID)
	})

	for i := range ranking {
		ranking[i].Rank = i
	}
	return ranking
}

// RankScores orders index-aligned scores of g. It is equivalent to
// Rank(BetweennessByID(g)) without building the intermediate map.
func RankScores(g *graph.Graph, scores []float64) Ranking {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Index order is pub-key order, so the index is the tie-breaker.
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	ranking := make(Ranking, len(order))
	for rank, i := range order {
		ranking[rank] = RankedEntry{NodeID: g.ID(i), Score: scores[i], Rank: rank}
	}
	return ranking
}

// RankOf returns the rank node i would get in RankScores without sorting:
// the number of nodes that outrank it. O(V).
func RankOf(scores []float64, i int) int {
	target := scores[i]
	rank := 0
	for j, s := range scores {
		if s > target || (s == target && j < i) {
			rank++
		}
	}
	return rank
}

// Lookup returns the entry for id or ErrTargetNotFound.
func (r Ranking) Lookup(id string) (RankedEntry, error) {
	for _, entry := range r {
		if entry.NodeID == id {
			return entry, nil
		}
	}
	return RankedEntry{}, fmt.Errorf("%w: %s", ErrTargetNotFound, id)
}

// Top returns at most n leading entries. n <= 0 returns the whole ranking.
func (r Ranking) Top(n int) Ranking {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// IDs returns node ids in rank order.
func (r Ranking) IDs() []string {
	ids := make([]string, len(r))
	for i, entry := range r {
		ids[i] = entry.NodeID
	}
	return ids
}
