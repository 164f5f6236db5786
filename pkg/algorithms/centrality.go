package algorithms

import (
	"context"
	"fmt"
	"math"

	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/parallel"
	"github.com/dd0wney/lnrank/pkg/pools"
)

// ScoreTolerance is the relative tolerance for comparing betweenness scores
// computed with different floating-point summation orders.
const ScoreTolerance = 1e-9

// CentralityResult maps every node's pub key to its betweenness score.
type CentralityResult map[string]float64

// brandesWorkspace holds the per-source scratch of one Brandes run. Every
// slice is indexed by node and comes from the shared pools, so repeated runs
// over graphs of the same size reuse memory.
type brandesWorkspace struct {
	dist  []int32
	sigma []float64
	delta []float64
	queue []int32 // BFS order; read backwards it is the back-propagation stack
}

func acquireWorkspace(n int) *brandesWorkspace {
	ws := &brandesWorkspace{
		dist:  pools.GetInt32s(n),
		sigma: pools.GetFloat64s(n),
		delta: pools.GetFloat64s(n),
		queue: pools.GetInt32s(n)[:0],
	}
	for i := 0; i < n; i++ {
		ws.dist[i] = -1
		ws.sigma[i] = 0
		ws.delta[i] = 0
	}
	return ws
}

func (ws *brandesWorkspace) release() {
	pools.PutInt32s(ws.dist)
	pools.PutFloat64s(ws.sigma)
	pools.PutFloat64s(ws.delta)
	pools.PutInt32s(ws.queue)
}

// accumulate runs one single-source pass from s and adds the dependency of
// every other reached node onto scores. Only entries touched by the pass are
// reset afterwards, keeping the cost proportional to the reached component.
func (ws *brandesWorkspace) accumulate(g graph.Adjacency, s int, scores []float64) {
	dist, sigma, delta := ws.dist, ws.sigma, ws.delta
	queue := ws.queue[:0]

	dist[s] = 0
	sigma[s] = 1
	queue = append(queue, int32(s))

	for head := 0; head < len(queue); head++ {
		v := queue[head]
		next := dist[v] + 1
		for _, w := range g.Neighbors(int(v)) {
			if dist[w] < 0 {
				dist[w] = next
				queue = append(queue, w)
			}
			if dist[w] == next {
				sigma[w] += sigma[v]
			}
		}
	}

	// Predecessors of w on shortest paths are exactly its neighbours one
	// level closer to s, so no predecessor lists are stored.
	for i := len(queue) - 1; i > 0; i-- {
		w := queue[i]
		prev := dist[w] - 1
		for _, v := range g.Neighbors(int(w)) {
			if dist[v] == prev {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
		}
		scores[w] += delta[w]
	}

	for _, v := range queue {
		dist[v] = -1
		sigma[v] = 0
		delta[v] = 0
	}
	ws.queue = queue
}

// sourceChunks is the number of source ranges whose partial sums are added
// to the total in a fixed order. It does not depend on the worker count, so
// Betweenness and BetweennessParallel agree bit for bit.
const sourceChunks = 64

func chunkBounds(n, c int) (lo, hi int) {
	return c * n / sourceChunks, (c + 1) * n / sourceChunks
}

// accumulateRange zeroes partial and adds the dependencies of sources
// [lo, hi) onto it.
func (ws *brandesWorkspace) accumulateRange(g graph.Adjacency, lo, hi int, partial []float64) {
	for i := range partial {
		partial[i] = 0
	}
	for s := lo; s < hi; s++ {
		ws.accumulate(g, s, partial)
	}
}

func addPartial(scores, partial []float64) {
	for i, p := range partial {
		scores[i] += p
	}
}

// Betweenness computes undirected, unweighted betweenness centrality for
// every node of g using Brandes' algorithm. The result is index-aligned with
// g; each unordered pair is counted once (raw sums are halved). Nodes on no
// shortest path, including isolated nodes, score 0.
//
// Runs in O(V·E) time. Repeated calls on the same graph give bit-for-bit
// identical results.
func Betweenness(g graph.Adjacency) []float64 {
	n := g.Len()
	scores := make([]float64, n)
	if n < 3 {
		return scores
	}

	ws := acquireWorkspace(n)
	defer ws.release()
	partial := pools.GetFloat64s(n)
	defer pools.PutFloat64s(partial)

	for c := 0; c < sourceChunks; c++ {
		lo, hi := chunkBounds(n, c)
		if lo == hi {
			continue
		}
		ws.accumulateRange(g, lo, hi, partial)
		addPartial(scores, partial)
	}

	for i := range scores {
		scores[i] /= 2
	}
	return scores
}

// BetweennessParallel is Betweenness with source ranges spread over a
// worker pool. workers <= 0 uses every CPU. The result is identical to
// Betweenness(g). Cancelling ctx skips the remaining ranges and returns
// ctx.Err().
func BetweennessParallel(ctx context.Context, g graph.Adjacency, workers int) ([]float64, error) {
	n := g.Len()
	if n < 3 {
		return make([]float64, n), nil
	}

	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, err
	}

	partials := make([][]float64, sourceChunks)
	for c := 0; c < sourceChunks; c++ {
		lo, hi := chunkBounds(n, c)
		if lo == hi || ctx.Err() != nil {
			continue
		}
		c := c
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			ws := acquireWorkspace(n)
			defer ws.release()
			partial := pools.GetFloat64s(n)
			ws.accumulateRange(g, lo, hi, partial)
			partials[c] = partial
		})
	}
	pool.Close()

	defer func() {
		for _, p := range partials {
			if p != nil {
				pools.PutFloat64s(p)
			}
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	for c, p := range partials {
		if lo, hi := chunkBounds(n, c); lo == hi {
			continue
		}
		if p == nil {
			return nil, fmt.Errorf("betweenness: source range %d did not complete", c)
		}
		addPartial(scores, p)
	}
	for i := range scores {
		scores[i] /= 2
	}
	return scores, nil
}

// BetweennessByID computes betweenness for g keyed by pub key.
func BetweennessByID(g *graph.Graph) CentralityResult {
	scores := Betweenness(g)
	result := make(CentralityResult, len(scores))
	for i, score := range scores {
		result[g.ID(i)] = score
	}
	return result
}

// ApproxEqual compares two scores within ScoreTolerance (relative, with an
// absolute floor for values near zero).
func ApproxEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= ScoreTolerance {
		return true
	}
	return diff <= ScoreTolerance*math.Max(math.Abs(a), math.Abs(b))
}
