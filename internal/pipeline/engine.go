package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/hotbild/internal/classify"
	"github.com/ppiankov/hotbild/internal/filter"
	"github.com/ppiankov/hotbild/internal/graph"
	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/score"
)

// State is the application state threaded through every user action.
// Actions return a new State instead of mutating shared globals.
type State struct {
	Params   filter.Params     `json:"params"`
	Scope    filter.Scope      `json:"scope"`
	Mode     score.Mode        `json:"mode"`
	Sliders  score.Percentages `json:"sliders"`
	Scenario model.Scenario    `json:"scenario"`
}

// Result is everything the renderer needs after a recompute
type Result struct {
	Filtered  []model.Event         `json:"filtered"`
	Scoped    []model.Event         `json:"scoped"`
	Scenarios []score.ScenarioStats `json:"scenarios"`
	Selected  score.ScenarioStats   `json:"selected"` // The scenario chosen in State
	Mode      score.ModeResult      `json:"mode"`
	Top       []score.TopEntry      `json:"top"`
	Graph     *graph.Graph          `json:"graph"`
}

// Engine recomputes filter, scope, scores and graph over a classified dataset
type Engine struct {
	config     *model.Config
	classifier *classify.Classifier
	aggregator *score.Aggregator
	builder    *graph.Builder
	logger     *slog.Logger
	events     []model.Event
}

// NewEngine creates an engine over a copy of classified events. Event indices
// must equal their positions.
func NewEngine(cfg *model.Config, classifier *classify.Classifier, events []model.Event, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		config:     cfg,
		classifier: classifier,
		aggregator: score.NewAggregator(cfg),
		builder:    graph.NewBuilder(cfg.Graph, logger),
		logger:     logger,
		events:     append([]model.Event(nil), events...),
	}
}

// Events returns the full classified dataset
func (e *Engine) Events() []model.Event {
	return append([]model.Event(nil), e.events...)
}

// Aggregator returns the engine's scenario aggregator
func (e *Engine) Aggregator() *score.Aggregator {
	return e.aggregator
}

// InitialState returns default filters, no scope, auto mode and the worst
// case scenario
func (e *Engine) InitialState() State {
	return State{
		Params:   filter.DefaultParams(len(e.events), e.config.Filter),
		Scope:    filter.AllScope(),
		Mode:     score.ModeAuto,
		Scenario: model.ScenarioWorst,
	}
}

// Recompute runs filter, scope reconciliation, aggregation and graph building.
// The returned state carries the reconciled scope.
func (e *Engine) Recompute(st State) (State, *Result) {
	filtered := filter.Apply(e.events, st.Params)
	st.Scope = filter.Reconcile(st.Scope, filtered)
	scoped := filter.Restrict(filtered, st.Scope)

	if _, ok := model.ParseScenario(string(st.Scenario)); !ok {
		st.Scenario = model.ScenarioWorst
	}

	res := &Result{
		Filtered:  filtered,
		Scoped:    scoped,
		Scenarios: e.aggregator.AssessAll(scoped),
		Mode:      score.Evaluate(score.NewStrategy(st.Mode, st.Sliders), scoped),
		Top:       e.aggregator.TopList(scoped, 0),
		Graph:     e.builder.Build(filtered, st.Params.MinKeywordFrequency),
	}
	for _, s := range res.Scenarios {
		if s.Scenario == st.Scenario {
			res.Selected = s
		}
	}

	e.logger.Debug("recomputed",
		"filtered", len(filtered),
		"scoped", len(scoped),
		"scope", st.Scope.Label,
		"mode", st.Mode,
		"scenario", st.Scenario)
	return st, res
}

// SetParams replaces the filter params and recomputes
func (e *Engine) SetParams(st State, p filter.Params) (State, *Result) {
	st.Params = p
	return e.Recompute(st)
}

// SelectNode narrows the scope to a node of the graph built from the current
// filtered set
func (e *Engine) SelectNode(st State, nodeID string) (State, *Result, error) {
	filtered := filter.Apply(e.events, st.Params)
	g := e.builder.Build(filtered, st.Params.MinKeywordFrequency)

	scope, err := filter.NodeScope(g, nodeID)
	if err != nil {
		return st, nil, fmt.Errorf("select node: %w", err)
	}
	st.Scope = scope
	next, res := e.Recompute(st)
	return next, res, nil
}

// SelectEvent narrows the scope to one event
func (e *Engine) SelectEvent(st State, index int) (State, *Result, error) {
	if index < 0 || index >= len(e.events) {
		return st, nil, fmt.Errorf("select event: index %d out of range", index)
	}
	st.Scope = filter.EventScope(e.events[index])
	next, res := e.Recompute(st)
	return next, res, nil
}

// ClearScope removes the scope restriction
func (e *Engine) ClearScope(st State) (State, *Result) {
	st.Scope = filter.AllScope()
	return e.Recompute(st)
}

// SetMode switches the scoring strategy. Entering blend mode with every
// slider at 0 centres the sliders at 50.
func (e *Engine) SetMode(st State, mode score.Mode, sliders score.Percentages) (State, *Result) {
	sliders = sliders.Clamp()
	if mode == score.ModeBlend && sliders.IsZero() {
		sliders = score.Percentages{50, 50, 50, 50}
	}
	st.Mode = mode
	st.Sliders = sliders
	return e.Recompute(st)
}

// SetScenario selects the scenario reported as Result.Selected
func (e *Engine) SetScenario(st State, scenario model.Scenario) (State, *Result) {
	st.Scenario = scenario
	return e.Recompute(st)
}

// Edit sets manual overrides on one event and reclassifies it
func (e *Engine) Edit(index int, ov model.Override) error {
	if index < 0 || index >= len(e.events) {
		return fmt.Errorf("edit: index %d out of range", index)
	}
	ev := e.events[index]
	ev.Override = ov
	e.events[index] = e.classifier.Classify(ev)
	e.logger.Debug("edited event", "index", index, "risk", e.events[index].Risk, "likelihood", e.events[index].Likelihood)
	return nil
}

// Reset returns to the initial state
func (e *Engine) Reset() (State, *Result) {
	return e.Recompute(e.InitialState())
}
