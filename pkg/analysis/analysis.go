// Package analysis runs the two-phase flow: rank the filtered graph by
// betweenness, then simulate one extra channel from the target to every
// other node.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/lnrank/pkg/algorithms"
	"github.com/dd0wney/lnrank/pkg/config"
	"github.com/dd0wney/lnrank/pkg/dataset"
	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/logging"
	"github.com/dd0wney/lnrank/pkg/metrics"
	"github.com/dd0wney/lnrank/pkg/simulation"
	"github.com/dd0wney/lnrank/pkg/validation"
)

// Metric phases.
const (
	PhaseBuild      = "build"
	PhaseMain       = "main"
	PhasePost       = "post"
	PhaseBaseline   = "baseline"
	PhaseBest       = "best"
	PhaseSimulation = "simulation"
)

// Params echoes the effective filter parameters of a run.
type Params struct {
	Target        string `json:"target" yaml:"target"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
	MinCapacity   int64  `json:"min_capacity" yaml:"min_capacity"`
	MinLastUpdate int64  `json:"min_last_update" yaml:"min_last_update"`
	Strict        bool   `json:"strict" yaml:"strict"`
}

// Timings holds phase durations. Main is the baseline centrality pass and
// Post the ranking and target lookup that follow it.
type Timings struct {
	Build      time.Duration `json:"build_ns" yaml:"build"`
	Main       time.Duration `json:"main_ns" yaml:"main"`
	Post       time.Duration `json:"post_ns" yaml:"post"`
	Simulation time.Duration `json:"simulation_ns" yaml:"simulation"`
}

// Connectivity summarises the connected components of the filtered graph.
// A target outside the largest component can only reach part of the network.
type Connectivity struct {
	Components int `json:"components" yaml:"components"`
	Largest    int `json:"largest" yaml:"largest"`
	Target     int `json:"target" yaml:"target"`
}

// Result is everything one run produced. Fields are filled as far as the
// run got, so a failed run still carries its parameters and build stats.
type Result struct {
	RunID      string                 `json:"run_id" yaml:"run_id"`
	Params     Params                 `json:"params" yaml:"params"`
	Stats      graph.BuildReport      `json:"stats" yaml:"stats"`
	Nodes      int                    `json:"nodes" yaml:"nodes"`
	Edges      int                    `json:"edges" yaml:"edges"`
	Connected  Connectivity           `json:"connectivity" yaml:"connectivity"`
	Baseline   algorithms.Ranking     `json:"baseline" yaml:"baseline"`
	Target     algorithms.RankedEntry `json:"target" yaml:"target"`
	Timings    Timings                `json:"timings" yaml:"timings"`
	Simulation *simulation.Report     `json:"simulation,omitempty" yaml:"simulation,omitempty"`
	Aliases    map[string]string      `json:"-" yaml:"-"`
}

// SimulationCount is the number of trials the run schedules: one per node
// other than the target, capped by the configured limit.
func (r *Result) SimulationCount(limit int) int {
	n := r.Nodes - 1
	if n < 0 {
		n = 0
	}
	if limit > 0 && limit < n {
		n = limit
	}
	return n
}

// Analyzer runs analyses. The zero value logs through logging.DefaultLogger
// and records no metrics.
type Analyzer struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	// Now is the clock used to resolve max_channel_inactivity.
	Now func() time.Time
}

// Run analyses ds under cfg.
//
// Errors: the configuration's validation error (wrapping
// config.ErrConflictingConfiguration where applicable), *graph.EdgeError in
// strict mode, graph.ErrEmptyGraph when no edge survives filtering (the
// Result is still returned), algorithms.ErrTargetNotFound (with the
// baseline filled in), and ctx.Err() when cancelled.
func (a *Analyzer) Run(ctx context.Context, ds *dataset.Dataset, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Aliases: ds.Aliases(),
	}
	log := a.logger().With(logging.RunID(res.RunID), logging.Component("analysis"))

	opts := cfg.BuildOptions(a.now())
	res.Params = Params{
		Target:        cfg.TargetNode,
		Source:        cfg.Graph,
		MinCapacity:   opts.MinCapacity,
		MinLastUpdate: opts.MinLastUpdate,
		Strict:        opts.Strict,
	}
	if !validation.IsPubKey(cfg.TargetNode) {
		log.Debug("target is not a hex public key", logging.PubKey(cfg.TargetNode))
	}

	g, err := a.build(log, res, ds, opts)
	if err != nil {
		return res, err
	}

	if err := a.baseline(ctx, log, res, g, cfg); err != nil {
		return res, err
	}

	if err := a.simulate(ctx, log, res, g, cfg); err != nil {
		return res, err
	}
	return res, nil
}

func (a *Analyzer) build(log logging.Logger, res *Result, ds *dataset.Dataset, opts graph.BuildOptions) (*graph.Graph, error) {
	start := time.Now()
	nodes, edges := ds.GraphInput()
	g, stats, err := graph.Build(nodes, edges, opts)
	res.Timings.Build = time.Since(start)
	if err != nil {
		log.Error("graph build failed", logging.Error(err))
		return nil, err
	}

	res.Stats = *stats
	res.Nodes = g.Len()
	res.Edges = g.EdgeCount()
	if a.Metrics != nil {
		a.Metrics.RecordGraph(res.Nodes, res.Edges, stats.Filtered())
		a.Metrics.SampleHeap(PhaseBuild)
	}

	if stats.Skipped > 0 {
		log.Warn("skipped invalid channels", logging.Count(stats.Skipped))
	}
	log.Info("graph built",
		logging.Int("nodes", res.Nodes),
		logging.Int("edges", res.Edges),
		logging.Int("input_edges", stats.Input),
		logging.Int64("min_capacity", opts.MinCapacity),
		logging.Int64("min_last_update", opts.MinLastUpdate),
		logging.Latency(res.Timings.Build),
	)

	if g.Len() == 0 {
		log.Warn("no channel survived filtering")
		return nil, graph.ErrEmptyGraph
	}
	return g, nil
}

func (a *Analyzer) baseline(ctx context.Context, log logging.Logger, res *Result, g *graph.Graph, cfg config.Config) error {
	target := cfg.TargetNode

	start := time.Now()
	scores, err := algorithms.BetweennessParallel(ctx, g, cfg.Workers)
	res.Timings.Main = time.Since(start)
	if err != nil {
		log.Error("baseline centrality failed", logging.Error(err))
		return err
	}

	start = time.Now()
	res.Baseline = algorithms.RankScores(g, scores)
	entry, lookupErr := res.Baseline.Lookup(target)
	res.Timings.Post = time.Since(start)

	a.observeCentrality(PhaseMain, res.Timings.Main)
	a.observeCentrality(PhasePost, res.Timings.Post)

	if lookupErr != nil {
		log.Error("target not in graph", logging.PubKey(target), logging.Error(lookupErr))
		return lookupErr
	}

	res.Target = entry
	i, _ := g.Index(target)
	comps := algorithms.ConnectedComponents(g)
	res.Connected = Connectivity{
		Components: comps.Count(),
		Largest:    comps.Largest(),
		Target:     comps.SizeOf(i),
	}
	if res.Connected.Target < res.Connected.Largest {
		log.Warn("target is outside the largest component",
			logging.Int("component_size", res.Connected.Target),
			logging.Int("largest", res.Connected.Largest))
	}
	if a.Metrics != nil {
		a.Metrics.RecordTarget(PhaseBaseline, entry.Score, entry.Rank)
		a.Metrics.SampleHeap(PhaseBaseline)
	}
	log.Info("baseline computed",
		logging.PubKey(target),
		logging.Score(entry.Score),
		logging.Rank(entry.Rank),
		logging.Duration("main", res.Timings.Main),
		logging.Duration("post", res.Timings.Post),
	)
	return nil
}

func (a *Analyzer) simulate(ctx context.Context, log logging.Logger, res *Result, g *graph.Graph, cfg config.Config) error {
	sim := simulation.New(
		simulation.WithWorkers(cfg.Workers),
		simulation.WithLimit(cfg.Limit),
		simulation.WithObserver(&observer{metrics: a.Metrics, log: log}),
	)

	timer := logging.StartTimer(log, "simulation finished", logging.Count(res.SimulationCount(cfg.Limit)))
	report, err := sim.Run(ctx, g, cfg.TargetNode, res.Baseline.IDs())
	if err != nil {
		res.Timings.Simulation = timer.EndError(err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("simulate: %w", err)
	}
	res.Simulation = report
	res.Timings.Simulation = report.Elapsed
	if a.Metrics != nil {
		a.Metrics.SampleHeap(PhaseSimulation)
	}

	best, ok := report.Best()
	if !ok {
		timer.End()
		return nil
	}
	gain := best.ScoreGain(res.Target)
	if a.Metrics != nil {
		a.Metrics.RecordTarget(PhaseBest, best.TargetScore, best.TargetRank)
		a.Metrics.RecordBestGain(gain)
	}
	timer.End(logging.Candidate(best.Candidate), logging.Score(best.TargetScore), logging.Float64("gain", gain))
	return nil
}

func (a *Analyzer) observeCentrality(phase string, d time.Duration) {
	if a.Metrics != nil {
		a.Metrics.ObserveCentrality(phase, d)
	}
}

func (a *Analyzer) logger() logging.Logger {
	if a.Logger == nil {
		return logging.DefaultLogger()
	}
	return a.Logger
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// observer forwards simulation timings to the metrics registry and the
// debug log.
type observer struct {
	metrics *metrics.Registry
	log     logging.Logger
}

func (o *observer) ObserveCentrality(phase string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.ObserveCentrality(phase, d)
	}
}

func (o *observer) ObserveTrial(candidate string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.ObserveTrial(candidate, d)
	}
	o.log.Debug("trial done", logging.Candidate(candidate), logging.Latency(d))
}
