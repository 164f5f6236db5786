package algorithms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/lnrank/pkg/graph"
)

func TestRank_PathScenario(t *testing.T) {
	edges := []graph.Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 1},
		{Node1Pub: "B", Node2Pub: "C", Capacity: 1},
		{Node1Pub: "C", Node2Pub: "D", Capacity: 1},
	}
	nodes := []graph.Node{{PubKey: "D", LastUpdate: 1}, {PubKey: "C", LastUpdate: 1}, {PubKey: "B", LastUpdate: 1}, {PubKey: "A", LastUpdate: 1}}
	g, _, err := graph.Build(nodes, edges, graph.BuildOptions{MinCapacity: 0})
	require.NoError(t, err)

	ranking := Rank(BetweennessByID(g))

	require.Len(t, ranking, 4)
	assert.Equal(t, []string{"B", "C", "A", "D"}, ranking.IDs())
	assert.Greater(t, ranking[1].Score, ranking[2].Score, "B and C must be strictly above A and D")
	assert.Zero(t, ranking[2].Score)
	assert.Zero(t, ranking[3].Score)
	for i, entry := range ranking {
		assert.Equal(t, i, entry.Rank)
	}
}

func TestRank_Deterministic(t *testing.T) {
	result := CentralityResult{"d": 1, "a": 1, "c": 3, "b": 0, "e": 1}

	first := Rank(result)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Rank(result))
	}
	assert.Equal(t, []string{"c", "a", "d", "e", "b"}, first.IDs())
}

func TestRankScoresMatchesRank(t *testing.T) {
	g := graph.FromPairs([][2]string{
		{"n1", "n2"}, {"n2", "n3"}, {"n3", "n4"}, {"n2", "n5"}, {"n5", "n6"}, {"n4", "n6"},
	})
	scores := Betweenness(g)

	byIndex := RankScores(g, scores)
	byID := Rank(BetweennessByID(g))
	assert.Equal(t, byID, byIndex)

	for i := 0; i < g.Len(); i++ {
		entry, err := byIndex.Lookup(g.ID(i))
		require.NoError(t, err)
		assert.Equal(t, entry.Rank, RankOf(scores, i), "RankOf(%s)", g.ID(i))
	}
}

func TestLookup(t *testing.T) {
	ranking := Rank(CentralityResult{"x": 2, "y": 1})

	entry, err := ranking.Lookup("y")
	require.NoError(t, err)
	assert.Equal(t, RankedEntry{NodeID: "y", Score: 1, Rank: 1}, entry)

	_, err = ranking.Lookup("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetNotFound))
	assert.Contains(t, err.Error(), "missing")

	_, err = Ranking(nil).Lookup("x")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestTop(t *testing.T) {
	ranking := Rank(CentralityResult{"a": 3, "b": 2, "c": 1})

	assert.Len(t, ranking.Top(2), 2)
	assert.Len(t, ranking.Top(0), 3)
	assert.Len(t, ranking.Top(10), 3)
	assert.Equal(t, "a", ranking.Top(1)[0].NodeID)
}
