package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/lnrank/pkg/analysis"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

// TextRenderer writes the human-readable report. Styling follows the color
// profile of the destination, so pipes and files get plain text.
type TextRenderer struct {
	w       io.Writer
	banner  lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	note    lipgloss.Style
}

// NewTextRenderer creates a renderer for w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	r := lipgloss.NewRenderer(w)
	return &TextRenderer{
		w:       w,
		banner:  r.NewStyle().Foreground(colorAccent).Bold(true),
		heading: r.NewStyle().Foreground(colorPrimary).Bold(true),
		label:   r.NewStyle().Foreground(colorMuted),
		note:    r.NewStyle().Italic(true),
	}
}

type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format+"\n", args...)
}

// field pads a label with dots to a fixed width.
func (t *TextRenderer) field(label string, width int) string {
	if pad := width - len(label); pad > 0 {
		label += strings.Repeat(".", pad)
	}
	return t.label.Render(label + ":")
}

// Render writes every section that res has data for.
func (t *TextRenderer) Render(res *analysis.Result, opts Options) error {
	lw := &lineWriter{w: t.w}

	lw.printf("%s", t.banner.Render(">>> About to analyze network graph <<<"))
	lw.printf("%s", t.heading.Render("-- Parameters --"))
	lw.printf("%s %s", t.field("Target", 16), res.Params.Target)
	lw.printf("%s %d sats", t.field("Min Capacity", 16), res.Params.MinCapacity)
	lw.printf("%s %d", t.field("Min Last Update", 16), res.Params.MinLastUpdate)
	lw.printf("%s %d", t.field("Nodes", 16), res.Nodes)
	lw.printf("%s %d", t.field("Edges", 16), res.Edges)
	lw.printf("%s %d", t.field("Simulations", 16), res.SimulationCount(opts.Limit))
	if s := res.Stats; s.BelowCapacity+s.Stale+s.Skipped+s.Duplicates > 0 {
		lw.printf("%s %d below capacity, %d stale, %d invalid, %d duplicate",
			t.field("Filtered", 16), s.BelowCapacity, s.Stale, s.Skipped, s.Duplicates)
	}

	if len(res.Baseline) == 0 {
		lw.printf("%s", t.note.Render("No channel passed the filters; nothing to rank."))
		return lw.err
	}

	lw.printf("%s", t.heading.Render("-- Time result --"))
	lw.printf("%s [main: %s | post: %s]", t.field("Main processing", 19), round(res.Timings.Main), round(res.Timings.Post))

	lw.printf("%s", t.heading.Render("-- Node ranking --"))
	for _, e := range res.Baseline {
		lw.printf("%s %s, %g", t.field(fmt.Sprintf("%d]", e.Rank), 16), t.name(res, e.NodeID), e.Score)
	}
	if res.Nodes > len(res.Baseline) {
		lw.printf("%s", t.note.Render(fmt.Sprintf("... %d more", res.Nodes-len(res.Baseline))))
	}

	if res.Target.NodeID == "" {
		lw.printf("%s", t.note.Render("Target node "+res.Params.Target+" is not in the graph."))
		return lw.err
	}

	lw.printf("%s", t.heading.Render("-- Node of Interest --"))
	lw.printf("%s %s", t.field("Pubkey", 17), t.name(res, res.Target.NodeID))
	lw.printf("%s %g", t.field("Betweenness", 17), res.Target.Score)
	lw.printf("%s %d", t.field("Node rank", 17), res.Target.Rank)
	if c := res.Connected; c.Components > 1 {
		lw.printf("%s %d of %d nodes (%d components, largest %d)",
			t.field("Reachable", 17), c.Target, res.Nodes, c.Components, c.Largest)
	}

	if res.Simulation == nil {
		return lw.err
	}

	lw.printf("")
	lw.printf("%s", t.banner.Render(">> >> SIMULATIONS << <<"))
	lw.printf("%s %s", t.field("Simulation time", 19), round(res.Timings.Simulation))
	lw.printf("%s", t.heading.Render("-- Results (best first) --"))
	for i, r := range res.Simulation.Results {
		line := fmt.Sprintf("%s <=> %s, %g (rank %d; %s)",
			res.Params.Target, t.name(res, r.Candidate), r.TargetScore, r.TargetRank, gainOf(res, r))
		if !r.NewEdge {
			line += " " + t.note.Render("existing channel")
		}
		lw.printf("%s %s", t.field(fmt.Sprintf("%d]", i), 6), line)
	}
	return lw.err
}

// name renders a pub key with its alias when known.
func (t *TextRenderer) name(res *analysis.Result, pubKey string) string {
	if alias, ok := res.Aliases[pubKey]; ok {
		return pubKey + " (" + alias + ")"
	}
	return pubKey
}

func round(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}
