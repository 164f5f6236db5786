// Package report renders analysis results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/lnrank/pkg/analysis"
	"github.com/dd0wney/lnrank/pkg/config"
	"github.com/dd0wney/lnrank/pkg/simulation"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

// Options control what is rendered.
type Options struct {
	// Top truncates the node ranking and simulation lists; 0 renders all.
	Top int
	// Limit is the configured trial cap, echoed in the parameters section.
	Limit int
}

// Write renders res to w in the given format.
func Write(w io.Writer, format string, res *analysis.Result, opts Options) error {
	if res == nil {
		return errors.New("nil result")
	}
	v := truncate(res, opts.Top)

	switch format {
	case config.FormatText, "":
		return NewTextRenderer(w).Render(v, opts)
	case config.FormatJSON:
		return JSON(w, v)
	case config.FormatYAML:
		return YAML(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSON writes res as indented JSON.
func JSON(w io.Writer, res *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// YAML writes res as a YAML document.
func YAML(w io.Writer, res *analysis.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}

// truncate returns a shallow copy of res whose lists hold at most top entries.
func truncate(res *analysis.Result, top int) *analysis.Result {
	if top <= 0 {
		return res
	}
	v := *res
	v.Baseline = v.Baseline.Top(top)
	if v.Simulation != nil && len(v.Simulation.Results) > top {
		sim := *v.Simulation
		sim.Results = sim.Results[:top]
		v.Simulation = &sim
	}
	return &v
}

// gainOf formats the change of a trial relative to the baseline.
func gainOf(res *analysis.Result, r simulation.Result) string {
	return fmt.Sprintf("%+g, %+d places", r.ScoreGain(res.Target), r.RankGain(res.Target))
}
