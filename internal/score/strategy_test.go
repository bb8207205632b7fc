package score

import (
	"strings"
	"testing"

	"github.com/ppiankov/hotbild/internal/model"
)

func TestAutoStrategy(t *testing.T) {
	got := AutoStrategy{}.Score(exampleEvents())
	want := Percentages{67, 0, 0, 33}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if empty := (AutoStrategy{}).Score(nil); !empty.IsZero() {
		t.Errorf("Expected zero percentages for empty set, got %v", empty)
	}
}

func TestManualStrategy(t *testing.T) {
	got := ManualStrategy{Values: Percentages{10, 120, -5, 50}}.Score(exampleEvents())
	want := Percentages{10, 100, 0, 50}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBlendStrategy(t *testing.T) {
	tests := []struct {
		name    string
		sliders Percentages
		want    Percentages
	}{
		{"neutral sliders keep auto", Percentages{50, 50, 50, 50}, Percentages{67, 0, 0, 33}},
		{"offsets add", Percentages{60, 70, 50, 40}, Percentages{77, 20, 0, 23}},
		{"clamped high", Percentages{100, 50, 50, 100}, Percentages{100, 0, 0, 83}},
		{"clamped low", Percentages{0, 0, 0, 0}, Percentages{17, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendStrategy{Sliders: tt.sliders}.Score(exampleEvents())
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	res := Evaluate(AutoStrategy{}, exampleEvents())
	if res.Mode != ModeAuto {
		t.Errorf("Expected mode auto, got %s", res.Mode)
	}
	if res.Index != 25 {
		t.Errorf("Expected index 25, got %d", res.Index)
	}
	if len(res.Values) != 4 || res.Values[0].Dimension != model.DimIntentions || res.Values[0].Value != 67 {
		t.Errorf("Unexpected values %+v", res.Values)
	}

	res = Evaluate(NewStrategy(ModeManual, Percentages{10, 20, 30, 41}), nil)
	if res.Index != 25 {
		t.Errorf("Expected index 25, got %d", res.Index)
	}
}

func TestNewStrategy(t *testing.T) {
	for _, mode := range []Mode{ModeAuto, ModeManual, ModeBlend} {
		if got := NewStrategy(mode, Percentages{}).Mode(); got != mode {
			t.Errorf("Expected %s strategy, got %s", mode, got)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"auto", ModeAuto, false},
		{"", ModeAuto, false},
		{"Manual", ModeManual, false},
		{" blend ", ModeBlend, false},
		{"mixed", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestPercentages_Get(t *testing.T) {
	p := Percentages{1, 2, 3, 4}
	if p.Get(model.DimResources) != 3 || p.Get(model.DimOpportunity) != 4 {
		t.Errorf("Unexpected lookups from %v", p)
	}
}

func TestTopList(t *testing.T) {
	agg := NewAggregator(nil)
	events := []model.Event{
		{Index: 0, Category: "POLICY", Title: "Policy"},
		{Index: 1, Category: "TERROR", Title: "Attack"},
		{Index: 2, Category: "GPS", Title: "Long", Summary: strings.Repeat("a", 900)},
		{Index: 3, Category: "XYZ", Title: "Unknown"},
		{Index: 4, Category: "gps", Title: "Short"},
	}

	top := agg.TopList(events, 3)
	if len(top) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(top))
	}
	// TERROR 10, GPS 6+3, gps 6, XYZ 5, POLICY 4
	wantOrder := []int{1, 2, 4}
	for i, idx := range wantOrder {
		if top[i].Index != idx {
			t.Errorf("Expected event %d at position %d, got %d", idx, i, top[i].Index)
		}
	}
	if top[1].Score != 9 {
		t.Errorf("Expected score 9, got %v", top[1].Score)
	}

	if got := agg.Attention(model.Event{Category: "TERROR", Summary: strings.Repeat("x", 6000)}); got != 15 {
		t.Errorf("Expected length bonus capped at 5, got %v", got)
	}

	if all := agg.TopList(events, 0); len(all) != len(events) {
		t.Errorf("Expected default size to cover %d events, got %d", len(events), len(all))
	}
}
