// Package classify derives dimension, risk score and likelihood tier for events.
package classify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/hotbild/internal/cache"
	"github.com/ppiankov/hotbild/internal/model"
)

// defaultBaseRisk applies to categories missing from the table
const defaultBaseRisk = 3

// Classification is the derived part of an event, a pure function of its content
type Classification struct {
	Dimension        model.Dimension
	Risk             int
	Likelihood       model.Tier
	LikelihoodReason string
	Triggers         []string
}

// Classifier applies the category table, risk rules and likelihood cascade
type Classifier struct {
	categories map[string]model.CategoryConfig
	rules      []Rule
	likelihood *LikelihoodClassifier
	cache      cache.Cache[Classification]
	logger     *slog.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithCache memoizes classifications by event content
func WithCache(c cache.Cache[Classification]) Option {
	return func(cl *Classifier) { cl.cache = c }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Classifier) { cl.logger = logger }
}

// New builds a classifier from config. It fails only on invalid rule patterns.
func New(cfg *model.Config, opts ...Option) (*Classifier, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	rules, err := CompileRules(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	likelihood, err := NewLikelihoodClassifier(&cfg.Likelihood)
	if err != nil {
		return nil, fmt.Errorf("likelihood: %w", err)
	}

	categories := make(map[string]model.CategoryConfig, len(cfg.Categories))
	for name, cc := range cfg.Categories {
		categories[strings.ToUpper(name)] = cc
	}

	c := &Classifier{
		categories: categories,
		rules:      rules,
		likelihood: likelihood,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Rules returns the compiled rule table
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Dimension looks up the category; unknown categories map to Intentions
func (c *Classifier) Dimension(category string) model.Dimension {
	cc, ok := c.categories[strings.ToUpper(category)]
	if !ok {
		return model.DimIntentions
	}
	dim, _ := model.ParseDimension(cc.Dimension)
	return dim
}

// BaseRisk returns the category's base risk, 3 when unknown
func (c *Classifier) BaseRisk(category string) int {
	cc, ok := c.categories[strings.ToUpper(category)]
	if !ok || cc.BaseRisk == 0 {
		return defaultBaseRisk
	}
	return cc.BaseRisk
}

// Known reports whether the category is in the table
func (c *Classifier) Known(category string) bool {
	_, ok := c.categories[strings.ToUpper(category)]
	return ok
}

// Derive computes the classification of an event, ignoring overrides
func (c *Classifier) Derive(ev model.Event) Classification {
	key := cache.CacheKey(ev.Category, ev.Title, ev.Summary, ev.SourceDomain)
	if c.cache != nil {
		if cl, ok := c.cache.Get(key); ok {
			return cl
		}
	}

	text := ev.Text()
	delta, fired := Evaluate(c.rules, ev.Category, text)
	tier, reason := c.likelihood.Classify(ev.SourceDomain, text, c.Known(ev.Category))

	cl := Classification{
		Dimension:        c.Dimension(ev.Category),
		Risk:             clamp(c.BaseRisk(ev.Category)+delta, 1, 5),
		Likelihood:       tier,
		LikelihoodReason: reason,
		Triggers:         fired,
	}

	if c.cache != nil {
		if err := c.cache.Set(key, cl, 0); err != nil {
			c.logger.Debug("classification cache write failed", "index", ev.Index, "error", err)
		}
	}
	return cl
}

// Classify returns ev with derived fields set. Manual overrides replace the
// derived risk and likelihood.
func (c *Classifier) Classify(ev model.Event) model.Event {
	cl := c.Derive(ev)

	ev.Dimension = cl.Dimension
	ev.Risk = cl.Risk
	ev.Likelihood = cl.Likelihood
	ev.Triggers = cl.Triggers

	if ev.Override.Risk != nil {
		ev.Risk = clamp(*ev.Override.Risk, 1, 5)
	}
	if ev.Override.Likelihood != nil && ev.Override.Likelihood.Valid() {
		ev.Likelihood = *ev.Override.Likelihood
	}
	return ev
}

// ClassifyAll classifies every event in place order
func (c *Classifier) ClassifyAll(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, ev := range events {
		out[i] = c.Classify(ev)
	}
	c.logger.Debug("classified events", "count", len(out))
	return out
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
