// Package simulation measures how a target node's betweenness would change if
// it opened one extra channel to each other node of the graph.
//
// Every trial overlays a single synthetic edge (target, candidate) on the
// shared, immutable base graph and reruns the centrality engine. Trials are
// independent, so they fan out over a worker pool; results are gathered by a
// single consumer and sorted once at the end, which makes the output
// independent of completion order.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/lnrank/pkg/algorithms"
	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/parallel"
)

var (
	// ErrUnknownCandidate is returned when a candidate id is not in the base graph.
	ErrUnknownCandidate = errors.New("candidate node not in graph")
	// ErrTrialFailed is returned when a trial aborted without producing a result.
	ErrTrialFailed = errors.New("simulation trial failed")
)

// Result is the outcome of one perturbed-graph run.
type Result struct {
	Candidate   string        `json:"candidate" yaml:"candidate"`
	TargetScore float64       `json:"target_score" yaml:"target_score"`
	TargetRank  int           `json:"target_rank" yaml:"target_rank"`
	NewEdge     bool          `json:"new_edge" yaml:"new_edge"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration"`
}

// ScoreGain returns the score change relative to a baseline entry.
func (r Result) ScoreGain(baseline algorithms.RankedEntry) float64 {
	return r.TargetScore - baseline.Score
}

// RankGain returns how many places the target climbs relative to baseline.
func (r Result) RankGain(baseline algorithms.RankedEntry) int {
	return baseline.Rank - r.TargetRank
}

// Report holds the sorted results of one simulation run.
type Report struct {
	Target  string        `json:"target" yaml:"target"`
	Trials  int           `json:"trials" yaml:"trials"`
	Results []Result      `json:"results" yaml:"results"`
	Elapsed time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

// Best returns the highest-scoring result.
func (r *Report) Best() (Result, bool) {
	if r == nil || len(r.Results) == 0 {
		return Result{}, false
	}
	return r.Results[0], true
}

// PhaseTrial labels the centrality pass of a trial in Observer callbacks.
const PhaseTrial = "trial"

// Observer receives timing hooks. Implementations must be safe for
// concurrent use: ObserveTrial is called from worker goroutines.
type Observer interface {
	ObserveCentrality(phase string, d time.Duration)
	ObserveTrial(candidate string, d time.Duration)
}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) ObserveCentrality(string, time.Duration) {}
func (NopObserver) ObserveTrial(string, time.Duration)      {}

// Simulator runs what-if trials.
type Simulator struct {
	workers  int
	limit    int
	observer Observer
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the worker pool size. n <= 0 uses runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		s.workers = n
	}
}

// WithLimit caps the number of trials. n <= 0 means one per other node.
func WithLimit(n int) Option {
	return func(s *Simulator) {
		s.limit = n
	}
}

// WithObserver installs timing hooks.
func WithObserver(o Observer) Option {
	return func(s *Simulator) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a Simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		workers:  runtime.NumCPU(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run simulates one extra edge from target to each candidate, in candidate
// order. The target itself and repeated candidates are skipped, and at most
// base.Len()-1 trials run. Results are sorted by target score descending,
// then candidate ascending.
//
// The target is resolved before any work is scheduled: a target missing from
// the base graph fails fast with algorithms.ErrTargetNotFound. Cancelling ctx
// stops scheduling and returns ctx.Err().
func (s *Simulator) Run(ctx context.Context, base *graph.Graph, target string, candidates []string) (*Report, error) {
	start := time.Now()

	if base.Len() == 0 {
		return nil, graph.ErrEmptyGraph
	}
	t, ok := base.Index(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", algorithms.ErrTargetNotFound, target)
	}

	trials, err := s.plan(base, target, candidates)
	if err != nil {
		return nil, err
	}

	results, err := s.execute(ctx, base, t, trials)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TargetScore != results[j].TargetScore {
			return results[i].TargetScore > results[j].TargetScore
		}
		return results[i].Candidate < results[j].Candidate
	})

	return &Report{
		Target:  target,
		Trials:  len(results),
		Results: results,
		Elapsed: time.Since(start),
	}, nil
}

// plan resolves candidate ids to indices, dropping the target and repeats.
func (s *Simulator) plan(base *graph.Graph, target string, candidates []string) ([]int, error) {
	budget := base.Len() - 1
	if s.limit > 0 && s.limit < budget {
		budget = s.limit
	}

	trials := make([]int, 0, budget)
	seen := make(map[int]struct{}, budget)
	for _, c := range candidates {
		if len(trials) == budget {
			break
		}
		if c == target {
			continue
		}
		i, ok := base.Index(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCandidate, c)
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		trials = append(trials, i)
	}
	return trials, nil
}

func (s *Simulator) execute(ctx context.Context, base *graph.Graph, target int, trials []int) ([]Result, error) {
	var (
		panicOnce sync.Once
		panicErr  error
	)
	pool, err := parallel.NewWorkerPool(s.workers, parallel.WithPanicHandler(func(r any) {
		panicOnce.Do(func() {
			panicErr = fmt.Errorf("%w: %v", ErrTrialFailed, r)
		})
	}))
	if err != nil {
		return nil, err
	}

	out := make(chan Result, len(trials))
	collected := make([]Result, 0, len(trials))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range out {
			collected = append(collected, r)
		}
	}()

	for _, c := range trials {
		if ctx.Err() != nil {
			break
		}
		candidate := c
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			out <- s.trial(base, target, candidate)
		})
	}

	pool.Close()
	close(out)
	<-done

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if panicErr != nil {
		return nil, panicErr
	}
	if len(collected) != len(trials) {
		return nil, fmt.Errorf("%w: %d of %d trials completed", ErrTrialFailed, len(collected), len(trials))
	}
	return collected, nil
}

// trial scores the target on base plus the edge (target, candidate).
// Overlays never drop nodes, so the target index stays valid.
func (s *Simulator) trial(base *graph.Graph, target, candidate int) Result {
	start := time.Now()

	view := base.WithEdge(target, candidate)
	scores := algorithms.Betweenness(view)
	s.observer.ObserveCentrality(PhaseTrial, time.Since(start))

	r := Result{
		Candidate:   base.ID(candidate),
		TargetScore: scores[target],
		TargetRank:  algorithms.RankOf(scores, target),
		NewEdge:     view.Added(),
		Duration:    time.Since(start),
	}
	s.observer.ObserveTrial(r.Candidate, r.Duration)
	return r
}
