// Package score computes scenario statistics, mode percentages and the
// attention list for a scoped event set.
package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/hotbild/internal/model"
)

// Stat is a mean/max pair on the 0-100 display scale
type Stat struct {
	Mean int `json:"mean"`
	Max  int `json:"max"`
}

// DimensionStat is the scenario statistic for one dimension
type DimensionStat struct {
	Dimension model.Dimension `json:"dimension"`
	Stat
	Count   int     `json:"count"` // Events included by dimension and tier cutoff
	RawMean float64 `json:"raw_mean"`
	RawMax  float64 `json:"raw_max"`
	Formula string  `json:"formula"`
}

// ScenarioStats holds all four dimensions of one scenario and their total
type ScenarioStats struct {
	Scenario   model.Scenario  `json:"scenario"`
	Cutoff     model.Tier      `json:"cutoff"`
	Dimensions []DimensionStat `json:"dimensions"`
	Total      Stat            `json:"total"`
}

// Dimension returns the statistic for d
func (s ScenarioStats) Dimension(d model.Dimension) DimensionStat {
	for _, ds := range s.Dimensions {
		if ds.Dimension == d {
			return ds
		}
	}
	return DimensionStat{Dimension: d}
}

// Aggregator computes likelihood-weighted scenario scores
type Aggregator struct {
	scoring    model.ScoringConfig
	categories map[string]model.CategoryConfig
}

// NewAggregator creates a new aggregator from the scoring and category tables
func NewAggregator(cfg *model.Config) *Aggregator {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Aggregator{
		scoring:    cfg.Scoring,
		categories: upperKeys(cfg.Categories),
	}
}

// Include returns the events counted for a dimension under a scenario
func (a *Aggregator) Include(events []model.Event, dim model.Dimension, scenario model.Scenario) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if ev.Dimension == dim && scenario.Includes(ev.Likelihood) {
			out = append(out, ev)
		}
	}
	return out
}

// WeightedRisk is risk times the likelihood weight of the event's tier
func (a *Aggregator) WeightedRisk(ev model.Event) float64 {
	return float64(ev.Risk) * a.scoring.Weight(ev.Likelihood)
}

// Scenario computes mean and max weighted risk for one dimension. An empty
// selection scores 0.
func (a *Aggregator) Scenario(events []model.Event, dim model.Dimension, scenario model.Scenario) DimensionStat {
	included := a.Include(events, dim, scenario)
	stat := DimensionStat{
		Dimension: dim,
		Count:     len(included),
		Formula:   fmt.Sprintf("round(weighted_risk / %g * 100), weighted_risk = risk * weight(tier), tier <= %s", a.denominator(), scenario.Cutoff()),
	}
	if len(included) == 0 {
		return stat
	}

	sum, hi := 0.0, 0.0
	for _, ev := range included {
		w := a.WeightedRisk(ev)
		sum += w
		if w > hi {
			hi = w
		}
	}
	stat.RawMean = a.scale(sum / float64(len(included)))
	stat.RawMax = a.scale(hi)
	stat.Mean = round(stat.RawMean)
	stat.Max = round(stat.RawMax)
	return stat
}

// Assess computes one scenario across all dimensions. The total is the mean of
// the dimension values, not of the pooled events.
func (a *Aggregator) Assess(events []model.Event, scenario model.Scenario) ScenarioStats {
	out := ScenarioStats{
		Scenario:   scenario,
		Cutoff:     scenario.Cutoff(),
		Dimensions: make([]DimensionStat, 0, len(model.Dimensions)),
	}

	meanSum, maxSum := 0.0, 0.0
	for _, dim := range model.Dimensions {
		ds := a.Scenario(events, dim, scenario)
		out.Dimensions = append(out.Dimensions, ds)
		meanSum += ds.RawMean
		maxSum += ds.RawMax
	}
	n := float64(len(model.Dimensions))
	out.Total = Stat{Mean: round(meanSum / n), Max: round(maxSum / n)}
	return out
}

// AssessAll computes every scenario, narrowest first
func (a *Aggregator) AssessAll(events []model.Event) []ScenarioStats {
	out := make([]ScenarioStats, 0, len(model.Scenarios))
	for _, s := range model.Scenarios {
		out = append(out, a.Assess(events, s))
	}
	return out
}

func (a *Aggregator) denominator() float64 {
	if a.scoring.Denominator <= 0 {
		return 5
	}
	return a.scoring.Denominator
}

func (a *Aggregator) scale(weighted float64) float64 {
	return weighted / a.denominator() * 100
}

func round(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Round(x))
}

func clampPercent(x int) int {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
