package score

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ppiankov/hotbild/internal/model"
)

// exampleEvents are the three classified events: a TERROR bombing from a major
// outlet, a GPS jamming test and an unknown category without source
func exampleEvents() []model.Event {
	return []model.Event{
		{Index: 0, Category: "TERROR", Dimension: model.DimIntentions, Risk: 5, Likelihood: model.TierProbable},
		{Index: 1, Category: "GPS", Dimension: model.DimOpportunity, Risk: 3, Likelihood: model.TierLikely},
		{Index: 2, Category: "XYZ", Dimension: model.DimIntentions, Risk: 3, Likelihood: model.TierPossible},
	}
}

func TestAggregator_Scenario_Example(t *testing.T) {
	agg := NewAggregator(nil)
	events := exampleEvents()

	stat := agg.Scenario(events, model.DimIntentions, model.ScenarioWorst)
	if stat.Count != 2 {
		t.Fatalf("Expected 2 included events, got %d", stat.Count)
	}

	wantRaw := (5*0.85 + 3*0.225) / 2 / 5 * 100
	if math.Abs(stat.RawMean-wantRaw) > 1e-9 {
		t.Errorf("Expected raw mean %v, got %v", wantRaw, stat.RawMean)
	}
	if stat.Mean != 49 {
		t.Errorf("Expected mean 49, got %d", stat.Mean)
	}
	if stat.Max != 85 {
		t.Errorf("Expected max 85, got %d", stat.Max)
	}
	if stat.Formula == "" {
		t.Error("Expected formula to be set")
	}
}

func TestAggregator_Scenario_Cutoffs(t *testing.T) {
	agg := NewAggregator(nil)
	events := exampleEvents()

	tests := []struct {
		scenario  model.Scenario
		dim       model.Dimension
		wantCount int
		wantMean  int
	}{
		{model.ScenarioBest, model.DimIntentions, 0, 0},
		{model.ScenarioLikely, model.DimIntentions, 1, 85},
		{model.ScenarioWorst, model.DimIntentions, 2, 49},
		{model.ScenarioLikely, model.DimOpportunity, 0, 0},
		{model.ScenarioWorst, model.DimOpportunity, 1, 33},
		{model.ScenarioWorst, model.DimResources, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.scenario)+"/"+string(tt.dim), func(t *testing.T) {
			stat := agg.Scenario(events, tt.dim, tt.scenario)
			if stat.Count != tt.wantCount {
				t.Errorf("Expected count %d, got %d", tt.wantCount, stat.Count)
			}
			if stat.Mean != tt.wantMean {
				t.Errorf("Expected mean %d, got %d", tt.wantMean, stat.Mean)
			}
		})
	}
}

func TestAggregator_Assess_Total(t *testing.T) {
	agg := NewAggregator(nil)
	result := agg.Assess(exampleEvents(), model.ScenarioWorst)

	if len(result.Dimensions) != 4 {
		t.Fatalf("Expected 4 dimensions, got %d", len(result.Dimensions))
	}

	// Intentions 49.25, Opportunity 3*0.55/5*100 = 33, others 0
	wantMean := int(math.Round((49.25 + 33) / 4))
	if result.Total.Mean != wantMean {
		t.Errorf("Expected total mean %d, got %d", wantMean, result.Total.Mean)
	}
	wantMax := int(math.Round((85 + 33) / 4.0))
	if result.Total.Max != wantMax {
		t.Errorf("Expected total max %d, got %d", wantMax, result.Total.Max)
	}
	if result.Cutoff != model.TierDoubtful {
		t.Errorf("Expected worst cutoff Doubtful, got %v", result.Cutoff)
	}
}

func TestAggregator_EmptySet(t *testing.T) {
	agg := NewAggregator(nil)

	for _, scenario := range model.Scenarios {
		result := agg.Assess(nil, scenario)
		if result.Total.Mean != 0 || result.Total.Max != 0 {
			t.Errorf("Expected zero total for %s, got %+v", scenario, result.Total)
		}
		for _, ds := range result.Dimensions {
			if ds.Mean != 0 || ds.Max != 0 || math.IsNaN(ds.RawMean) {
				t.Errorf("Expected zero score for %s/%s, got %+v", scenario, ds.Dimension, ds.Stat)
			}
		}
	}
}

func TestAggregator_ScenarioMonotonic(t *testing.T) {
	agg := NewAggregator(nil)
	rng := rand.New(rand.NewSource(42))

	events := make([]model.Event, 200)
	for i := range events {
		events[i] = model.Event{
			Index:      i,
			Dimension:  model.Dimensions[rng.Intn(len(model.Dimensions))],
			Risk:       1 + rng.Intn(5),
			Likelihood: model.Tiers[rng.Intn(len(model.Tiers))],
		}
	}

	for _, dim := range model.Dimensions {
		best := agg.Include(events, dim, model.ScenarioBest)
		likely := agg.Include(events, dim, model.ScenarioLikely)
		worst := agg.Include(events, dim, model.ScenarioWorst)

		if !subset(best, likely) {
			t.Errorf("Best subset not contained in Likely for %s", dim)
		}
		if !subset(likely, worst) {
			t.Errorf("Likely subset not contained in Worst for %s", dim)
		}
	}
}

func subset(a, b []model.Event) bool {
	in := make(map[int]bool, len(b))
	for _, ev := range b {
		in[ev.Index] = true
	}
	for _, ev := range a {
		if !in[ev.Index] {
			return false
		}
	}
	return true
}

func TestAggregator_CustomWeights(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Scoring.Weights = map[string]float64{"confirmed": 1, "probable": 0.5}
	agg := NewAggregator(cfg)

	ev := model.Event{Risk: 4, Likelihood: model.TierProbable}
	if got := agg.WeightedRisk(ev); got != 2 {
		t.Errorf("Expected weighted risk 2, got %v", got)
	}

	// Missing tiers fall back to the built-in weight
	ev.Likelihood = model.TierDoubtful
	if got := agg.WeightedRisk(ev); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("Expected weighted risk 0.1, got %v", got)
	}
}

func TestAggregator_AssessAll(t *testing.T) {
	result := NewAggregator(nil).AssessAll(exampleEvents())
	if len(result) != 3 {
		t.Fatalf("Expected 3 scenarios, got %d", len(result))
	}
	for i, s := range model.Scenarios {
		if result[i].Scenario != s {
			t.Errorf("Expected scenario %s at %d, got %s", s, i, result[i].Scenario)
		}
	}
	if result[0].Dimension(model.DimIntentions).Mean > result[2].Dimension(model.DimIntentions).Max {
		t.Error("Expected best mean to stay within worst max")
	}
}
