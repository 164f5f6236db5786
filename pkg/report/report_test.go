package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/lnrank/pkg/algorithms"
	"github.com/dd0wney/lnrank/pkg/analysis"
	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/simulation"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		RunID:  "run-1",
		Params: analysis.Params{Target: "A", MinCapacity: 95000},
		Stats:  graph.BuildReport{Input: 4, Included: 3, BelowCapacity: 1},
		Nodes:  4,
		Edges:  3,
		Baseline: algorithms.Ranking{
			{NodeID: "B", Score: 2, Rank: 0},
			{NodeID: "C", Score: 2, Rank: 1},
			{NodeID: "A", Score: 0, Rank: 2},
			{NodeID: "D", Score: 0, Rank: 3},
		},
		Target:  algorithms.RankedEntry{NodeID: "A", Score: 0, Rank: 2},
		Timings: analysis.Timings{Main: 1500 * time.Microsecond, Post: 20 * time.Microsecond},
		Simulation: &simulation.Report{
			Target: "A",
			Trials: 3,
			Results: []simulation.Result{
				{Candidate: "D", TargetScore: 0.5, TargetRank: 0, NewEdge: true},
				{Candidate: "B", TargetScore: 0, TargetRank: 2, NewEdge: false},
				{Candidate: "C", TargetScore: 0, TargetRank: 1, NewEdge: true},
			},
		},
		Aliases: map[string]string{"D": "delta"},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", sampleResult(), Options{}))
	out := buf.String()

	for _, want := range []string{
		">>> About to analyze network graph <<<",
		"Min Capacity....: 95000 sats",
		"Nodes...........: 4",
		"Simulations.....: 3",
		"Filtered........: 1 below capacity, 0 stale, 0 invalid, 0 duplicate",
		"Main processing....: [main: 1.5ms | post: 20µs]",
		"0]..............: B, 2",
		"3]..............: D (delta), 0",
		"Pubkey...........: A",
		"Node rank........: 2",
		">> >> SIMULATIONS << <<",
		"A <=> D (delta), 0.5 (rank 0; +0.5, +2 places)",
		"A <=> C, 0 (rank 1; +0, +1 places)",
		"A <=> B, 0 (rank 2; +0, +0 places) existing channel",
	} {
		assert.Contains(t, out, want)
	}
}

func TestText_EachLineNamesItsCandidate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", sampleResult(), Options{}))

	_, sims, found := strings.Cut(buf.String(), "-- Results (best first) --")
	require.True(t, found)
	lines := strings.Split(strings.TrimSpace(sims), "\n")
	require.Len(t, lines, 3)
	for i, c := range []string{"D", "B", "C"} {
		assert.Contains(t, lines[i], "A <=> "+c)
	}
}

func TestText_Top(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", sampleResult(), Options{Top: 2}))
	out := buf.String()

	assert.Contains(t, out, "1]..............: C, 2")
	assert.NotContains(t, out, "2]..............: A")
	assert.Contains(t, out, "... 2 more")
	assert.NotContains(t, out, "A <=> C")
}

func TestText_EmptyGraph(t *testing.T) {
	res := &analysis.Result{Params: analysis.Params{Target: "A", MinCapacity: 1}, Stats: graph.BuildReport{Input: 2, BelowCapacity: 2}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", res, Options{}))
	out := buf.String()

	assert.Contains(t, out, "Nodes...........: 0")
	assert.Contains(t, out, "Simulations.....: 0")
	assert.Contains(t, out, "nothing to rank")
	assert.NotContains(t, out, "Node of Interest")
}

func TestText_Connectivity(t *testing.T) {
	res := sampleResult()
	res.Connected = analysis.Connectivity{Components: 2, Largest: 3, Target: 1}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", res, Options{}))
	assert.Contains(t, buf.String(), "Reachable........: 1 of 4 nodes (2 components, largest 3)")

	buf.Reset()
	require.NoError(t, Write(&buf, "text", sampleResult(), Options{}))
	assert.NotContains(t, buf.String(), "Reachable")
}

func TestText_TargetMissing(t *testing.T) {
	res := sampleResult()
	res.Params.Target = "Z"
	res.Target = algorithms.RankedEntry{}
	res.Simulation = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", res, Options{}))
	assert.Contains(t, buf.String(), "Target node Z is not in the graph.")
	assert.NotContains(t, buf.String(), "SIMULATIONS")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sampleResult(), Options{Top: 1}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Len(t, decoded["baseline"], 1)
	sim := decoded["simulation"].(map[string]any)
	results := sim["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "D", results[0].(map[string]any)["candidate"])
	assert.NotContains(t, buf.String(), "delta", "aliases are not serialised")
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "yaml", sampleResult(), Options{}))

	var decoded struct {
		RunID    string `yaml:"run_id"`
		Baseline []struct {
			NodeID string  `yaml:"node_id"`
			Score  float64 `yaml:"score"`
		} `yaml:"baseline"`
		Simulation struct {
			Results []struct {
				Candidate   string  `yaml:"candidate"`
				TargetScore float64 `yaml:"target_score"`
			} `yaml:"results"`
		} `yaml:"simulation"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Len(t, decoded.Baseline, 4)
	assert.Equal(t, "D", decoded.Simulation.Results[0].Candidate)
	assert.Equal(t, 0.5, decoded.Simulation.Results[0].TargetScore)
}

func TestWrite_Errors(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, "xml", sampleResult(), Options{}), ErrUnknownFormat)
	assert.Error(t, Write(&bytes.Buffer{}, "text", nil, Options{}))
}

func TestTruncate_DoesNotMutate(t *testing.T) {
	res := sampleResult()
	v := truncate(res, 1)

	assert.Len(t, v.Baseline, 1)
	assert.Len(t, res.Baseline, 4)
	assert.Len(t, res.Simulation.Results, 3)
	assert.Same(t, res, truncate(res, 0))
}
