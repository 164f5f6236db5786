package graph

import "sort"

// DefaultMinCapacity is the capacity threshold (in satoshis) applied when the
// caller does not override it.
const DefaultMinCapacity int64 = 95000

// BuildOptions configures edge filtering.
type BuildOptions struct {
	MinCapacity   int64 // Edges need Capacity > MinCapacity
	MinLastUpdate int64 // Both endpoints need LastUpdate > MinLastUpdate
	Strict        bool  // Fail on invalid edges instead of skipping them
}

// BuildReport counts what happened to every input edge.
type BuildReport struct {
	Input         int `json:"input" yaml:"input"`
	Included      int `json:"included" yaml:"included"`
	BelowCapacity int `json:"below_capacity" yaml:"below_capacity"`
	Stale         int `json:"stale" yaml:"stale"`
	Skipped       int `json:"skipped" yaml:"skipped"`
	Duplicates    int `json:"duplicates" yaml:"duplicates"`
}

// Filtered returns the excluded-edge counts keyed by reason.
func (r *BuildReport) Filtered() map[string]int {
	if r == nil {
		return nil
	}
	return map[string]int{
		"below_capacity": r.BelowCapacity,
		"stale":          r.Stale,
		"invalid":        r.Skipped,
		"duplicate":      r.Duplicates,
	}
}

type pair [2]string

// Build filters edges and constructs the analysis graph.
//
// An edge is kept iff its capacity is strictly above opts.MinCapacity and
// both endpoints have a last update strictly after opts.MinLastUpdate.
// Edges with an unknown endpoint or equal endpoints are skipped, or reported
// as an *EdgeError wrapping ErrInvalidEdge when opts.Strict is set. Only nodes
// with at least one kept edge become graph members.
//
// The capacity filter runs first, so strict mode only detects invalid edges
// among those above MinCapacity; a low-capacity edge with an unknown endpoint
// is counted as BelowCapacity.
//
// An empty result is not an error here; callers that need nodes check Len.
func Build(nodes []Node, edges []Edge, opts BuildOptions) (*Graph, *BuildReport, error) {
	lastUpdate := make(map[string]int64, len(nodes))
	for _, n := range nodes {
		if prev, ok := lastUpdate[n.PubKey]; !ok || n.LastUpdate > prev {
			lastUpdate[n.PubKey] = n.LastUpdate
		}
	}

	report := &BuildReport{Input: len(edges)}
	seen := make(map[pair]struct{}, len(edges))
	members := make(map[string]struct{})

	for i, e := range edges {
		if e.Capacity <= opts.MinCapacity {
			report.BelowCapacity++
			continue
		}

		lu1, ok1 := lastUpdate[e.Node1Pub]
		lu2, ok2 := lastUpdate[e.Node2Pub]
		reason := ""
		switch {
		case !ok1 && !ok2:
			reason = ReasonUnknownBoth
		case !ok1:
			reason = ReasonUnknownNode1
		case !ok2:
			reason = ReasonUnknownNode2
		case e.Node1Pub == e.Node2Pub:
			reason = ReasonSelfLoop
		}
		if reason != "" {
			if opts.Strict {
				return nil, report, newEdgeError(i, e, reason)
			}
			report.Skipped++
			continue
		}

		if lu1 <= opts.MinLastUpdate || lu2 <= opts.MinLastUpdate {
			report.Stale++
			continue
		}

		key := pair{e.Node1Pub, e.Node2Pub}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, dup := seen[key]; dup {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		members[key[0]] = struct{}{}
		members[key[1]] = struct{}{}
		report.Included++
	}

	return assemble(members, seen), report, nil
}

// FromPairs builds a graph directly from undirected pairs with no filtering.
// Self pairs are ignored and repeated pairs collapse.
func FromPairs(pairs [][2]string) *Graph {
	seen := make(map[pair]struct{}, len(pairs))
	members := make(map[string]struct{})
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		key := pair{p[0], p[1]}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		seen[key] = struct{}{}
		members[key[0]] = struct{}{}
		members[key[1]] = struct{}{}
	}
	return assemble(members, seen)
}

// WithIsolated returns a copy of g that also contains the given nodes
// without any edges. Ids already present are ignored.
func WithIsolated(g *Graph, ids ...string) *Graph {
	members := make(map[string]struct{}, g.Len()+len(ids))
	edges := make(map[pair]struct{}, g.EdgeCount())
	for i := 0; i < g.Len(); i++ {
		members[g.ids[i]] = struct{}{}
		for _, j := range g.adj[i] {
			if int(j) > i {
				edges[pair{g.ids[i], g.ids[j]}] = struct{}{}
			}
		}
	}
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return assemble(members, edges)
}

func assemble(members map[string]struct{}, edges map[pair]struct{}) *Graph {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	adj := make([][]int32, len(ids))
	for key := range edges {
		a, b := index[key[0]], index[key[1]]
		adj[a] = append(adj[a], int32(b))
		adj[b] = append(adj[b], int32(a))
	}
	for i := range adj {
		list := adj[i]
		sort.Slice(list, func(x, y int) bool { return list[x] < list[y] })
	}

	return &Graph{
		ids:   ids,
		index: index,
		adj:   adj,
		edges: len(edges),
	}
}
