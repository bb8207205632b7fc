package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/hotbild/internal/model"
)

// Mode selects a scoring strategy
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
	ModeBlend  Mode = "blend"
)

// ParseMode resolves a mode name; unknown names are an error
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAuto, "":
		return ModeAuto, nil
	case ModeManual:
		return ModeManual, nil
	case ModeBlend:
		return ModeBlend, nil
	}
	return "", fmt.Errorf("unknown scoring mode %q (want auto, manual or blend)", s)
}

// Percentages holds one 0-100 value per dimension, in model.Dimensions order
type Percentages [4]int

// Get returns the value for d
func (p Percentages) Get(d model.Dimension) int {
	for i, dim := range model.Dimensions {
		if dim == d {
			return p[i]
		}
	}
	return 0
}

// IsZero reports whether every value is 0
func (p Percentages) IsZero() bool {
	return p == Percentages{}
}

// Clamp returns p with every value clamped into 0..100
func (p Percentages) Clamp() Percentages {
	for i := range p {
		p[i] = clampPercent(p[i])
	}
	return p
}

// Strategy turns a scoped event set into per-dimension percentages
type Strategy interface {
	Mode() Mode
	Score(events []model.Event) Percentages
}

// AutoStrategy scores each dimension by its share of the events
type AutoStrategy struct{}

// Mode implements Strategy
func (AutoStrategy) Mode() Mode { return ModeAuto }

// Score implements Strategy
func (AutoStrategy) Score(events []model.Event) Percentages {
	var counts Percentages
	for _, ev := range events {
		for i, dim := range model.Dimensions {
			if ev.Dimension == dim {
				counts[i]++
			}
		}
	}
	total := len(events)
	if total < 1 {
		total = 1
	}
	var out Percentages
	for i, c := range counts {
		out[i] = round(float64(c) / float64(total) * 100)
	}
	return out
}

// ManualStrategy returns user-supplied percentages
type ManualStrategy struct {
	Values Percentages
}

// Mode implements Strategy
func (ManualStrategy) Mode() Mode { return ModeManual }

// Score implements Strategy
func (m ManualStrategy) Score([]model.Event) Percentages {
	return m.Values.Clamp()
}

// BlendStrategy treats slider values as offsets around 50 on top of the
// automatic percentages
type BlendStrategy struct {
	Sliders Percentages
}

// Mode implements Strategy
func (BlendStrategy) Mode() Mode { return ModeBlend }

// Score implements Strategy
func (b BlendStrategy) Score(events []model.Event) Percentages {
	auto := AutoStrategy{}.Score(events)
	var out Percentages
	for i := range out {
		out[i] = clampPercent(auto[i] + (clampPercent(b.Sliders[i]) - 50))
	}
	return out
}

// NewStrategy builds the strategy for mode with the given slider values
func NewStrategy(mode Mode, sliders Percentages) Strategy {
	switch mode {
	case ModeManual:
		return ManualStrategy{Values: sliders}
	case ModeBlend:
		return BlendStrategy{Sliders: sliders}
	default:
		return AutoStrategy{}
	}
}

// ModeValue is one dimension's percentage under a strategy
type ModeValue struct {
	Dimension model.Dimension `json:"dimension"`
	Value     int             `json:"value"`
}

// ModeResult is the outcome of a strategy: per-dimension values plus the index
type ModeResult struct {
	Mode   Mode        `json:"mode"`
	Values []ModeValue `json:"values"`
	Index  int         `json:"index"` // Rounded mean of the four values
}

// Evaluate runs s over events
func Evaluate(s Strategy, events []model.Event) ModeResult {
	p := s.Score(events)
	res := ModeResult{Mode: s.Mode(), Values: make([]ModeValue, 0, len(p))}
	sum := 0
	for i, dim := range model.Dimensions {
		res.Values = append(res.Values, ModeValue{Dimension: dim, Value: p[i]})
		sum += p[i]
	}
	res.Index = round(float64(sum) / float64(len(p)))
	return res
}
