// Package pipeline loads event datasets and runs the assessment engine.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/hotbild/internal/cache"
	"github.com/ppiankov/hotbild/internal/classify"
	"github.com/ppiankov/hotbild/internal/filter"
	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/normalize"
	"github.com/ppiankov/hotbild/internal/phenomena"
	"github.com/ppiankov/hotbild/internal/score"
)

// Pipeline orchestrates load, classification and assessment
type Pipeline struct {
	config     *model.Config
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	renderer   *Renderer
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []classify.Option{classify.WithLogger(logger)}
	if cfg.Cache.Enabled {
		opts = append(opts, classify.WithCache(cache.NewMemoryCache[classify.Classification](cfg.Cache.TTL, 2*cfg.Cache.TTL)))
	}
	classifier, err := classify.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	return &Pipeline{
		config:     cfg,
		normalizer: normalize.NewNormalizer(logger),
		classifier: classifier,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		logger:     logger,
	}, nil
}

// Dataset is a loaded, normalized and classified event file
type Dataset struct {
	Source string        `json:"source"`
	Events []model.Event `json:"events"`
	Facets filter.Facets `json:"facets"`
}

// Load reads, normalizes and classifies an event file
func (p *Pipeline) Load(ctx context.Context, path string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return p.FromRecords(path, records), nil
}

// FromRecords normalizes and classifies raw records
func (p *Pipeline) FromRecords(source string, records []any) *Dataset {
	events := p.classifier.ClassifyAll(p.normalizer.Normalize(records))
	p.logger.Debug("loaded dataset", "source", source, "records", len(records))
	return &Dataset{
		Source: source,
		Events: events,
		Facets: filter.FacetsOf(events),
	}
}

// Engine creates an engine over a dataset
func (p *Pipeline) Engine(ds *Dataset) *Engine {
	return NewEngine(p.config, p.classifier, ds.Events, p.logger)
}

// Options are the command-line inputs of one assessment
type Options struct {
	Query               string
	Category            string
	Country             string
	From                string
	To                  string
	Limit               int  // 0 uses the dataset default
	MinKeywordFrequency *int // nil uses the configured default
	Scenario            string
	Mode                string
	Sliders             score.Percentages
	Node                string // Graph node id to scope to
}

// State builds the engine state for o
func (o Options) State(e *Engine) (State, error) {
	st := e.InitialState()
	st.Params.Query = o.Query
	st.Params.Category = o.Category
	st.Params.Country = o.Country
	if o.Limit > 0 {
		st.Params.Limit = o.Limit
	}
	if o.MinKeywordFrequency != nil {
		st.Params.MinKeywordFrequency = *o.MinKeywordFrequency
	}

	for _, bound := range []struct {
		raw string
		dst **model.Date
	}{{o.From, &st.Params.From}, {o.To, &st.Params.To}} {
		if bound.raw == "" {
			continue
		}
		d, ok := normalize.ParseDate(bound.raw)
		if !ok {
			return st, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", bound.raw)
		}
		*bound.dst = &d
	}

	if o.Scenario != "" {
		s, ok := model.ParseScenario(o.Scenario)
		if !ok {
			return st, fmt.Errorf("unknown scenario %q (want best, likely or worst)", o.Scenario)
		}
		st.Scenario = s
	}

	mode, err := score.ParseMode(o.Mode)
	if err != nil {
		return st, err
	}
	st.Mode = mode
	st.Sliders = o.Sliders.Clamp()
	if mode == score.ModeBlend && st.Sliders.IsZero() {
		st.Sliders = score.Percentages{50, 50, 50, 50}
	}
	return st, nil
}

// Report is the rendered outcome of one assessment
type Report struct {
	Source      string          `json:"source"`
	GeneratedAt time.Time       `json:"generated_at"`
	EventCount  int             `json:"event_count"`
	Facets      filter.Facets   `json:"facets"`
	State       State           `json:"state"`
	Result      *Result         `json:"result"`
	Phenomena   model.Phenomena `json:"phenomena"`
}

// Assess loads a dataset and computes the report for opts
func (p *Pipeline) Assess(ctx context.Context, path string, opts Options) (*Report, error) {
	ds, err := p.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.AssessDataset(ds, opts)
}

// AssessDataset computes the report for an already loaded dataset
func (p *Pipeline) AssessDataset(ds *Dataset, opts Options) (*Report, error) {
	engine := p.Engine(ds)
	st, err := opts.State(engine)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}

	var res *Result
	if opts.Node != "" {
		st, res, err = engine.SelectNode(st, opts.Node)
		if err != nil {
			return nil, err
		}
	} else {
		st, res = engine.Recompute(st)
	}

	return &Report{
		Source:      ds.Source,
		GeneratedAt: time.Now().UTC(),
		EventCount:  len(ds.Events),
		Facets:      ds.Facets,
		State:       st,
		Result:      res,
		Phenomena:   phenomena.FromEvents(res.Scoped),
	}, nil
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(os.Stdout, report)
	return nil
}
