package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshNodes(ids ...string) []Node {
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{PubKey: id, LastUpdate: 1000}
	}
	return nodes
}

func lenient(minCapacity int64) BuildOptions {
	return BuildOptions{MinCapacity: minCapacity}
}

// requireSymmetric checks that b in N(a) implies a in N(b) and that lists are simple.
func requireSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	for i := 0; i < g.Len(); i++ {
		prev := int32(-1)
		for _, j := range g.Neighbors(i) {
			require.NotEqual(t, int32(i), j, "self-loop on %s", g.ID(i))
			require.Greater(t, j, prev, "adjacency of %s not sorted or has duplicates", g.ID(i))
			prev = j
			require.True(t, g.HasEdge(int(j), i), "edge %s-%s not symmetric", g.ID(i), g.ID(int(j)))
		}
	}
}

func TestBuild_PathGraph(t *testing.T) {
	edges := []Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 1},
		{Node1Pub: "B", Node2Pub: "C", Capacity: 1},
		{Node1Pub: "C", Node2Pub: "D", Capacity: 1},
	}

	g, report, err := Build(freshNodes("A", "B", "C", "D"), edges, lenient(0))
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 3, report.Included)
	assert.Equal(t, []string{"A", "B", "C", "D"}, g.IDs())
	requireSymmetric(t, g)

	b, ok := g.Index("B")
	require.True(t, ok)
	assert.Equal(t, 2, g.Degree(b))
}

func TestBuild_CapacityBoundaryIsExclusive(t *testing.T) {
	edges := []Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 100},
		{Node1Pub: "B", Node2Pub: "C", Capacity: 101},
	}

	g, report, err := Build(freshNodes("A", "B", "C"), edges, lenient(100))
	require.NoError(t, err)

	assert.Equal(t, 1, report.BelowCapacity)
	assert.Equal(t, 1, report.Included)
	_, ok := g.Index("A")
	assert.False(t, ok, "edge with capacity == minCapacity must be excluded")
	assert.Equal(t, []string{"B", "C"}, g.IDs())
}

func TestBuild_LastUpdateFilter(t *testing.T) {
	nodes := []Node{
		{PubKey: "A", LastUpdate: 500},
		{PubKey: "B", LastUpdate: 1000},
		{PubKey: "C", LastUpdate: 1001},
	}
	edges := []Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 10},
		{Node1Pub: "B", Node2Pub: "C", Capacity: 10},
	}

	t.Run("stale endpoint drops edge", func(t *testing.T) {
		g, report, err := Build(nodes, edges, BuildOptions{MinLastUpdate: 600})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Stale)
		assert.Equal(t, []string{"B", "C"}, g.IDs())
	})

	t.Run("boundary is exclusive", func(t *testing.T) {
		g, report, err := Build(nodes, edges, BuildOptions{MinLastUpdate: 1000})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Stale)
		assert.Zero(t, g.Len())
	})
}

func TestBuild_InvalidEdges(t *testing.T) {
	edges := []Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 10},
		{Node1Pub: "A", Node2Pub: "ghost", Capacity: 10},
		{Node1Pub: "B", Node2Pub: "B", Capacity: 10},
	}

	t.Run("lenient skips", func(t *testing.T) {
		g, report, err := Build(freshNodes("A", "B"), edges, lenient(0))
		require.NoError(t, err)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, 1, g.EdgeCount())
		requireSymmetric(t, g)
	})

	t.Run("strict fails on unknown endpoint", func(t *testing.T) {
		_, _, err := Build(freshNodes("A", "B"), edges, BuildOptions{Strict: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidEdge))

		var edgeErr *EdgeError
		require.True(t, errors.As(err, &edgeErr))
		assert.Equal(t, 1, edgeErr.Index)
		assert.Equal(t, ReasonUnknownNode2, edgeErr.Reason)
	})

	t.Run("strict fails on self-loop", func(t *testing.T) {
		_, _, err := Build(freshNodes("B"), edges[2:], BuildOptions{Strict: true})
		var edgeErr *EdgeError
		require.True(t, errors.As(err, &edgeErr))
		assert.Equal(t, ReasonSelfLoop, edgeErr.Reason)
	})

	t.Run("strict ignores invalid edges below capacity", func(t *testing.T) {
		g, report, err := Build(freshNodes("A", "B"), edges, BuildOptions{MinCapacity: 50, Strict: true})
		require.NoError(t, err)
		assert.Equal(t, 3, report.BelowCapacity)
		assert.Zero(t, report.Skipped)
		assert.Zero(t, g.Len())
	})
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	edges := []Edge{
		{Node1Pub: "A", Node2Pub: "B", Capacity: 10},
		{Node1Pub: "B", Node2Pub: "A", Capacity: 20},
		{Node1Pub: "A", Node2Pub: "B", Capacity: 30},
	}

	g, report, err := Build(freshNodes("A", "B"), edges, lenient(0))
	require.NoError(t, err)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, report.Duplicates)
	assert.Len(t, g.Neighbors(0), 1)
	assert.Len(t, g.Neighbors(1), 1)
}

func TestBuild_DuplicateNodesKeepLatestUpdate(t *testing.T) {
	nodes := []Node{
		{PubKey: "A", LastUpdate: 2000},
		{PubKey: "A", LastUpdate: 10},
		{PubKey: "B", LastUpdate: 2000},
	}
	edges := []Edge{{Node1Pub: "A", Node2Pub: "B", Capacity: 10}}

	g, _, err := Build(nodes, edges, BuildOptions{MinLastUpdate: 1000})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestBuild_InsertionOrderIndependent(t *testing.T) {
	forward := []Edge{
		{Node1Pub: "n3", Node2Pub: "n1", Capacity: 10},
		{Node1Pub: "n1", Node2Pub: "n2", Capacity: 10},
		{Node1Pub: "n2", Node2Pub: "n4", Capacity: 10},
	}
	backward := []Edge{forward[2], forward[1], {Node1Pub: "n1", Node2Pub: "n3", Capacity: 10}}
	nodes := freshNodes("n4", "n2", "n3", "n1")

	g1, _, err := Build(nodes, forward, lenient(0))
	require.NoError(t, err)
	g2, _, err := Build(nodes, backward, lenient(0))
	require.NoError(t, err)

	require.Equal(t, g1.IDs(), g2.IDs())
	for i := 0; i < g1.Len(); i++ {
		assert.Equal(t, g1.Neighbors(i), g2.Neighbors(i))
	}
}

func TestBuild_Empty(t *testing.T) {
	g, report, err := Build(nil, nil, BuildOptions{MinCapacity: DefaultMinCapacity})
	require.NoError(t, err)
	assert.Zero(t, g.Len())
	assert.Zero(t, g.EdgeCount())
	assert.Zero(t, report.Input)
}

func TestFromPairsAndWithIsolated(t *testing.T) {
	g := FromPairs([][2]string{{"x", "y"}, {"y", "x"}, {"z", "z"}})
	assert.Equal(t, []string{"x", "y"}, g.IDs())
	assert.Equal(t, 1, g.EdgeCount())

	iso := WithIsolated(g, "z", "x")
	assert.Equal(t, []string{"x", "y", "z"}, iso.IDs())
	assert.Equal(t, 1, iso.EdgeCount())
	z, _ := iso.Index("z")
	assert.Zero(t, iso.Degree(z))
	requireSymmetric(t, iso)
}
