package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/score"
)

// barWidth is the number of cells of a full 100% bar
const barWidth = 20

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes a human-readable summary
func (r *Renderer) RenderMarkdown(report *Report, path string) error {
	var b strings.Builder
	r.WriteMarkdown(&b, report)
	return writeFile(path, []byte(b.String()))
}

// WriteMarkdown renders the Markdown report into w
func (r *Renderer) WriteMarkdown(w io.Writer, report *Report) {
	res := report.Result

	fmt.Fprintf(w, "# Threat picture: %s\n\n", filepath.Base(report.Source))
	fmt.Fprintf(w, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "- Events: %d loaded, %d filtered, %d in scope (%s)\n",
		report.EventCount, len(res.Filtered), len(res.Scoped), report.State.Scope.Label)
	if f := report.Facets; f.MinDate != nil && f.MaxDate != nil {
		fmt.Fprintf(w, "- Period: %s to %s\n", f.MinDate, f.MaxDate)
	}
	fmt.Fprintf(w, "- Scenario: %s, mode: %s\n\n", report.State.Scenario, res.Mode.Mode)

	fmt.Fprintf(w, "## Dimensions (%s mode, index %d)\n\n", res.Mode.Mode, res.Mode.Index)
	fmt.Fprintln(w, "```")
	for _, v := range res.Mode.Values {
		fmt.Fprintf(w, "%-13s %s %3d%%\n", v.Dimension, bar(v.Value), v.Value)
	}
	fmt.Fprintln(w, "```")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Scenarios")
	fmt.Fprintln(w)
	fmt.Fprint(w, "| Scenario |")
	for _, d := range model.Dimensions {
		fmt.Fprintf(w, " %s |", d)
	}
	fmt.Fprintln(w, " Total |")
	fmt.Fprint(w, "|---|")
	for range model.Dimensions {
		fmt.Fprint(w, "---|")
	}
	fmt.Fprintln(w, "---|")
	for _, s := range res.Scenarios {
		fmt.Fprintf(w, "| %s |", s.Scenario)
		for _, d := range model.Dimensions {
			ds := s.Dimension(d)
			fmt.Fprintf(w, " %s (n=%d) |", stat(ds.Stat), ds.Count)
		}
		fmt.Fprintf(w, " %s |\n", stat(s.Total))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Values are mean / max of risk × likelihood weight on a 0-100 scale.")
	fmt.Fprintln(w)

	if len(res.Top) > 0 {
		fmt.Fprintln(w, "## Top events")
		fmt.Fprintln(w)
		for i, t := range res.Top {
			fmt.Fprintf(w, "%d. **%s** [%s, %s] (%.1f)\n", i+1, orDash(t.Title), orDash(t.Category), orDash(t.Country), t.Score)
		}
		fmt.Fprintln(w)
	}

	if res.Graph != nil {
		gs := res.Graph.Stats
		fmt.Fprintln(w, "## Graph")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d nodes (%d events, %d categories, %d countries, %d keywords), %d links\n\n",
			gs.NodeCount, gs.EventNodes, gs.CategoryNodes, gs.CountryNodes, gs.KeywordNodes, gs.LinkCount)
	}

	if r.includeFooter {
		fmt.Fprintln(w, "---")
		fmt.Fprintln(w, "*Scores describe how the reported events map onto the assessment rubric. They are not predictions.*")
	}
}

// RenderSummary prints a short summary to w
func (r *Renderer) RenderSummary(w io.Writer, report *Report) {
	res := report.Result
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Hotbild: %s\n", filepath.Base(report.Source))
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Events: %d loaded • %d filtered • %d in scope\n", report.EventCount, len(res.Filtered), len(res.Scoped))
	fmt.Fprintf(w, "  Index (%s): %d/100\n", res.Mode.Mode, res.Mode.Index)
	fmt.Fprintf(w, "  %s scenario total: %s\n", report.State.Scenario, stat(res.Selected.Total))
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

func bar(pct int) string {
	filled := pct * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func stat(s score.Stat) string {
	return fmt.Sprintf("%d / %d", s.Mean, s.Max)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
