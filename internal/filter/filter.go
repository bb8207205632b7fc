// Package filter narrows the loaded events by query, category, country, date
// range and count, and tracks the graph-driven display scope.
package filter

import (
	"sort"
	"strings"

	"github.com/ppiankov/hotbild/internal/keyword"
	"github.com/ppiankov/hotbild/internal/model"
)

// Params are the user-controlled filter values
type Params struct {
	Query               string      `json:"query,omitempty"`
	Category            string      `json:"category,omitempty"`
	Country             string      `json:"country,omitempty"`
	From                *model.Date `json:"from,omitempty"`
	To                  *model.Date `json:"to,omitempty"`
	Limit               int         `json:"limit"`
	MinKeywordFrequency int         `json:"min_keyword_frequency"`
}

// DefaultLimit clamps the dataset size into the configured display window
func DefaultLimit(n int, cfg model.FilterConfig) int {
	if n < cfg.MinLimit {
		n = cfg.MinLimit
	}
	if cfg.MaxLimit > 0 && n > cfg.MaxLimit {
		n = cfg.MaxLimit
	}
	return n
}

// DefaultParams returns unconstrained params sized for a dataset of n events
func DefaultParams(n int, cfg model.FilterConfig) Params {
	return Params{
		Limit:               DefaultLimit(n, cfg),
		MinKeywordFrequency: cfg.MinKeywordFrequency,
	}
}

// isAll reports whether a select value means "no constraint"
func isAll(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all", "alla":
		return true
	}
	return false
}

// Match reports whether ev satisfies every constraint in p. Events without a
// parsed date pass the date bounds.
func (p Params) Match(ev model.Event) bool {
	if !isAll(p.Category) && !strings.EqualFold(ev.Category, strings.TrimSpace(p.Category)) {
		return false
	}
	if !isAll(p.Country) && !strings.EqualFold(ev.Country, strings.TrimSpace(p.Country)) {
		return false
	}
	if ev.Parsed != nil {
		if p.From != nil && ev.Parsed.Before(*p.From) {
			return false
		}
		if p.To != nil && ev.Parsed.After(*p.To) {
			return false
		}
	}
	if q := keyword.Fold(strings.TrimSpace(p.Query)); q != "" {
		hay := keyword.Fold(strings.Join([]string{ev.Title, ev.Summary, ev.Category, ev.Country}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Apply returns the events matching p, newest first with undated events last,
// capped at p.Limit. A non-positive limit keeps every match.
func Apply(events []model.Event, p Params) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if p.Match(ev) {
			out = append(out, ev)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Parsed, out[j].Parsed
		switch {
		case a != nil && b != nil && *a != *b:
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].Index < out[j].Index
	})

	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

// Facets lists the distinct select values and date bounds of a dataset
type Facets struct {
	Categories []string    `json:"categories"`
	Countries  []string    `json:"countries"`
	MinDate    *model.Date `json:"min_date,omitempty"`
	MaxDate    *model.Date `json:"max_date,omitempty"`
}

// FacetsOf collects sorted distinct categories and countries and the date range
func FacetsOf(events []model.Event) Facets {
	cats := make(map[string]bool)
	countries := make(map[string]bool)
	f := Facets{Categories: []string{}, Countries: []string{}}

	for _, ev := range events {
		if ev.Category != "" && !cats[ev.Category] {
			cats[ev.Category] = true
			f.Categories = append(f.Categories, ev.Category)
		}
		if ev.Country != "" && !countries[ev.Country] {
			countries[ev.Country] = true
			f.Countries = append(f.Countries, ev.Country)
		}
		if ev.Parsed != nil {
			d := *ev.Parsed
			if f.MinDate == nil || d.Before(*f.MinDate) {
				f.MinDate = &d
			}
			if f.MaxDate == nil || d.After(*f.MaxDate) {
				f.MaxDate = &d
			}
		}
	}

	sort.Strings(f.Categories)
	sort.Strings(f.Countries)
	return f
}
