package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/hotbild/internal/filter"
	"github.com/ppiankov/hotbild/internal/graph"
	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/score"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(model.DefaultConfig(), nil)
	require.NoError(t, err)
	return p
}

func testRecords() []any {
	return []any{
		map[string]any{"cat": "TERROR", "country": "Sverige", "date": "2024-03-05", "title": "Bomb detonated in city centre", "source": "reuters.com"},
		map[string]any{"cat": "GPS", "land": "Finland", "dt": "2024-03-04", "rubrik": "Jamming test"},
		map[string]any{"category": "XYZ", "country": "Sverige", "title": "Unusual activity noted"},
		map[string]any{"cat": "INFRA", "country": "Sverige", "date": "2024-02-01", "title": "Cable cut", "url": "https://www.svt.se/nyheter/a"},
		"not a record",
	}
}

func newTestEngine(t *testing.T) (*Pipeline, *Engine) {
	p := newTestPipeline(t)
	ds := p.FromRecords("test", testRecords())
	return p, p.Engine(ds)
}

func TestEngine_Recompute(t *testing.T) {
	_, e := newTestEngine(t)

	st, res := e.Recompute(e.InitialState())
	require.Len(t, res.Filtered, 5)
	assert.Equal(t, res.Filtered, res.Scoped)
	assert.False(t, st.Scope.Restricted())
	assert.Equal(t, 200, st.Params.Limit)

	// Newest first, undated last by index
	var order []int
	for _, ev := range res.Filtered {
		order = append(order, ev.Index)
	}
	assert.Equal(t, []int{0, 1, 3, 2, 4}, order)

	worst := res.Selected
	assert.Equal(t, model.ScenarioWorst, worst.Scenario)
	// (5*0.85 + 3*0.225 + 3*0.225) / 3, the non-object record degrades to an
	// unclassifiable Intentions event
	assert.Equal(t, 37, worst.Dimension(model.DimIntentions).Mean)
	assert.Equal(t, 3, worst.Dimension(model.DimIntentions).Count)
	assert.Len(t, res.Scenarios, 3)
	assert.NotNil(t, res.Graph)
	assert.NotEmpty(t, res.Top)
}

func TestEngine_SelectNodeAndRefilter(t *testing.T) {
	_, e := newTestEngine(t)
	st := e.InitialState()

	st, res, err := e.SelectNode(st, graph.NodeID(graph.NodeTypeCountry, "Sverige"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, st.Scope.Sorted())
	assert.Len(t, res.Scoped, 3)
	assert.Len(t, res.Filtered, 5, "scope does not narrow the filtered list")

	// Re-filtering drops members outside the new filtered set
	p := st.Params
	p.Category = "INFRA"
	st, res = e.SetParams(st, p)
	assert.Equal(t, []int{3}, st.Scope.Sorted())
	assert.Len(t, res.Scoped, 1)

	// Scope emptied by a filter resets to all
	p.Category = "GPS"
	st, res = e.SetParams(st, p)
	assert.False(t, st.Scope.Restricted())
	assert.Len(t, res.Scoped, 1)

	_, _, err = e.SelectNode(st, "country:Atlantis")
	assert.Error(t, err)
}

func TestEngine_SelectEventAndClear(t *testing.T) {
	_, e := newTestEngine(t)

	st, res, err := e.SelectEvent(e.InitialState(), 1)
	require.NoError(t, err)
	require.Len(t, res.Scoped, 1)
	assert.Equal(t, "Jamming test", res.Scoped[0].Title)
	assert.Equal(t, "Jamming test", st.Scope.Label)

	st, res = e.ClearScope(st)
	assert.Equal(t, filter.AllLabel, st.Scope.Label)
	assert.Len(t, res.Scoped, 5)

	_, _, err = e.SelectEvent(st, 99)
	assert.Error(t, err)
}

func TestEngine_SetMode(t *testing.T) {
	_, e := newTestEngine(t)
	st := e.InitialState()

	st, res := e.SetMode(st, score.ModeBlend, score.Percentages{})
	assert.Equal(t, score.Percentages{50, 50, 50, 50}, st.Sliders)
	auto := score.Evaluate(score.AutoStrategy{}, res.Scoped)
	assert.Equal(t, auto.Values, res.Mode.Values, "neutral blend equals auto")

	st, res = e.SetMode(st, score.ModeManual, score.Percentages{10, 20, 30, 140})
	assert.Equal(t, score.ModeManual, res.Mode.Mode)
	assert.Equal(t, score.Percentages{10, 20, 30, 100}, st.Sliders)
	assert.Equal(t, 40, res.Mode.Index)

	st, res = e.SetScenario(st, model.ScenarioBest)
	assert.Equal(t, model.ScenarioBest, res.Selected.Scenario)

	st, res = e.Reset()
	assert.Equal(t, score.ModeAuto, st.Mode)
	assert.Equal(t, model.ScenarioWorst, res.Selected.Scenario)
	assert.True(t, st.Sliders.IsZero())
}

func TestEngine_Edit(t *testing.T) {
	_, e := newTestEngine(t)

	confirmed := model.TierConfirmed
	risk := 1
	require.NoError(t, e.Edit(2, model.Override{Likelihood: &confirmed, Risk: &risk}))

	ev := e.Events()[2]
	assert.Equal(t, model.TierConfirmed, ev.Likelihood)
	assert.Equal(t, 1, ev.Risk)

	_, res := e.SetScenario(e.InitialState(), model.ScenarioBest)
	assert.Equal(t, 1, res.Selected.Dimension(model.DimIntentions).Count)

	// Clearing the override restores derived values
	require.NoError(t, e.Edit(2, model.Override{}))
	ev = e.Events()[2]
	assert.Equal(t, model.TierPossible, ev.Likelihood)
	assert.Equal(t, 3, ev.Risk)

	assert.Error(t, e.Edit(-1, model.Override{}))
}

func TestOptions_State(t *testing.T) {
	_, e := newTestEngine(t)

	freq := 0
	st, err := Options{
		Query:               "cable",
		From:                "2024-01-01",
		To:                  "2024-12-31",
		Limit:               10,
		MinKeywordFrequency: &freq,
		Scenario:            "likely",
		Mode:                "blend",
	}.State(e)
	require.NoError(t, err)
	assert.Equal(t, 10, st.Params.Limit)
	assert.Equal(t, 0, st.Params.MinKeywordFrequency)
	require.NotNil(t, st.Params.From)
	assert.Equal(t, "2024-01-01", st.Params.From.String())
	assert.Equal(t, model.ScenarioLikely, st.Scenario)
	assert.Equal(t, score.Percentages{50, 50, 50, 50}, st.Sliders)

	_, err = Options{From: "March"}.State(e)
	assert.Error(t, err)
	_, err = Options{Scenario: "apocalyptic"}.State(e)
	assert.Error(t, err)
	_, err = Options{Mode: "mixed"}.State(e)
	assert.Error(t, err)
}

func TestPipeline_AssessAndRender(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(src, []byte(`[
		{"cat":"TERROR","country":"Sverige","date":"2024-03-05","title":"Bomb detonated in city centre","source":"reuters.com"},
		{"cat":"INFRA","country":"Sverige","date":"2024-03-01","title":"Cable cut","url":"https://www.svt.se/a"}
	]`), 0o644))

	report, err := p.Assess(context.Background(), src, Options{Node: graph.NodeID(graph.NodeTypeCategory, "INFRA")})
	require.NoError(t, err)
	assert.Equal(t, 2, report.EventCount)
	assert.Equal(t, []int{1}, report.State.Scope.Sorted())
	assert.Len(t, report.Phenomena.Phenomena, 1)

	jsonPath := filepath.Join(dir, "out", "report.json")
	mdPath := filepath.Join(dir, "out", "report.md")
	require.NoError(t, p.renderer.RenderJSON(report, jsonPath))
	require.NoError(t, p.renderer.RenderMarkdown(report, mdPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_indices": [`)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Threat picture: events.json")
	assert.Contains(t, string(md), "| worst |")
	assert.Contains(t, string(md), "Cable cut")

	var summary strings.Builder
	p.renderer.RenderSummary(&summary, report)
	assert.Contains(t, summary.String(), "2 loaded")

	_, err = p.Assess(context.Background(), filepath.Join(dir, "missing.json"), Options{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Assess(ctx, src, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipeline_InvalidRule(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Rules = append(cfg.Rules, model.RuleConfig{Name: "broken", Pattern: "(", Delta: 1})
	_, err := NewPipeline(cfg, nil)
	assert.Error(t, err)
}
