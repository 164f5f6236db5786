// Package graph builds the undirected, unweighted channel graph used for
// centrality analysis.
//
// Node identifiers (public keys) are mapped to dense integer indices once at
// build time. Indices follow ascending lexicographic pub-key order, so
// comparing two indices gives the same answer as comparing their ids. The
// centrality engine relies on this for deterministic tie-breaking.
package graph

import "sort"

// Node is a network participant as it appears in the raw dataset.
type Node struct {
	PubKey     string
	LastUpdate int64 // POSIX timestamp, only used while filtering
}

// Edge is an undirected channel between two nodes.
type Edge struct {
	Node1Pub string
	Node2Pub string
	Capacity int64
}

// Adjacency is the read-only view walked by the centrality engine.
// Neighbour lists must be sorted ascending and must not be modified.
type Adjacency interface {
	Len() int
	Neighbors(i int) []int32
}

// Graph is an immutable simple undirected graph stored as an index arena.
type Graph struct {
	ids   []string
	index map[string]int
	adj   [][]int32
	edges int
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.ids)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return g.edges
}

// ID returns the pub key stored at index i.
func (g *Graph) ID(i int) string {
	return g.ids[i]
}

// IDs returns a copy of all pub keys in index order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Index resolves a pub key to its dense index.
func (g *Graph) Index(pubKey string) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.index[pubKey]
	return i, ok
}

// Neighbors returns the sorted neighbour indices of node i.
// The returned slice is shared with the graph and must be treated as read-only.
func (g *Graph) Neighbors(i int) []int32 {
	return g.adj[i]
}

// Degree returns the number of neighbours of node i.
func (g *Graph) Degree(i int) int {
	return len(g.adj[i])
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	list := g.adj[a]
	j := sort.Search(len(list), func(k int) bool { return list[k] >= int32(b) })
	return j < len(list) && list[j] == int32(b)
}

// WithEdge derives a view of g with one extra undirected edge (a, b).
// Only the two affected adjacency lists are copied; g itself is untouched,
// so any number of overlays can share one base graph concurrently.
func (g *Graph) WithEdge(a, b int) *Overlay {
	o := &Overlay{base: g, a: a, b: b}
	if a == b || g.HasEdge(a, b) {
		return o
	}
	o.added = true
	o.aAdj = insertSorted(g.adj[a], int32(b))
	o.bAdj = insertSorted(g.adj[b], int32(a))
	return o
}

// Overlay is a base graph plus at most one synthetic edge.
type Overlay struct {
	base  *Graph
	a, b  int
	aAdj  []int32
	bAdj  []int32
	added bool
}

// Len returns the number of nodes; overlays never add nodes.
func (o *Overlay) Len() int {
	return o.base.Len()
}

// Neighbors returns the neighbours of i including the overlay edge.
func (o *Overlay) Neighbors(i int) []int32 {
	if o.added {
		switch i {
		case o.a:
			return o.aAdj
		case o.b:
			return o.bAdj
		}
	}
	return o.base.adj[i]
}

// Added reports whether the overlay edge is new. It is false for self
// edges and for endpoints that were already adjacent in the base graph.
func (o *Overlay) Added() bool {
	return o.added
}

func insertSorted(list []int32, v int32) []int32 {
	j := sort.Search(len(list), func(k int) bool { return list[k] >= v })
	out := make([]int32, len(list)+1)
	copy(out, list[:j])
	out[j] = v
	copy(out[j+1:], list[j:])
	return out
}
