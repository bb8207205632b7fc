package model

import (
	"strings"
	"time"
)

// Event is the canonical shape of one raw record after normalization and classification
type Event struct {
	Index        int       `json:"index"`                 // Position in the loaded dataset (stable across filtering)
	Category     string    `json:"category"`              // Short code, e.g. "INFRA"
	Country      string    `json:"country"`               // Free-form country name
	Title        string    `json:"title"`                 // Headline
	Summary      string    `json:"summary"`               // Free text, markup stripped
	SourceURL    string    `json:"source_url"`            // Link to the report
	SourceDomain string    `json:"source_domain"`         // Source host without a leading www.
	Date         string    `json:"date"`                  // Raw date string as given
	Parsed       *Date     `json:"parsed_date,omitempty"` // Nil when Date is not a valid YYYY-MM-DD prefix
	Override     Override  `json:"override,omitempty"`    // Manual values that replace derived ones
	Dimension    Dimension `json:"dimension"`             // Derived
	Risk         int       `json:"risk"`                  // Derived, always 1..5
	Likelihood   Tier      `json:"likelihood"`            // Derived
	Triggers     []string  `json:"triggers,omitempty"`    // Names of risk rules that fired
}

// Text returns title and summary joined for rule matching
func (e Event) Text() string {
	return e.Title + " " + e.Summary
}

// Override holds session-local manual values for an event
type Override struct {
	Likelihood *Tier `json:"likelihood,omitempty"`
	Risk       *int  `json:"risk,omitempty"`
}

// IsZero reports whether no override is set
func (o Override) IsZero() bool {
	return o.Likelihood == nil && o.Risk == nil
}

// Date is a calendar date without time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date at midnight UTC
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than o
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d is strictly later than o
func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Dimension is one of the four fixed assessment dimensions
type Dimension string

const (
	DimIntentions   Dimension = "Intentions"   // Intentioner
	DimFacilitation Dimension = "Facilitation" // Facilitering
	DimResources    Dimension = "Resources"    // Resurser
	DimOpportunity  Dimension = "Opportunity"  // Tillfälle
)

// Dimensions lists the dimensions in display order
var Dimensions = []Dimension{DimIntentions, DimFacilitation, DimResources, DimOpportunity}

// ParseDimension resolves English or Swedish dimension names.
// Unknown names fall back to Intentions.
func ParseDimension(s string) (Dimension, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intentions", "intentioner", "intent":
		return DimIntentions, true
	case "facilitation", "facilitering":
		return DimFacilitation, true
	case "resources", "resurser":
		return DimResources, true
	case "opportunity", "tillfälle", "tillfalle":
		return DimOpportunity, true
	}
	return DimIntentions, false
}

// Tier is the likelihood classification, ordered most confident first
type Tier int

const (
	TierConfirmed Tier = iota // Bekräftat
	TierProbable              // Sannolikt
	TierLikely                // Troligt
	TierPossible              // Möjligt
	TierDoubtful              // Tveksamt
)

// Tiers lists all tiers from most to least confident
var Tiers = []Tier{TierConfirmed, TierProbable, TierLikely, TierPossible, TierDoubtful}

// DefaultTier is used for input that cannot be classified
const DefaultTier = TierPossible

func (t Tier) String() string {
	switch t {
	case TierConfirmed:
		return "Confirmed"
	case TierProbable:
		return "Probable"
	case TierLikely:
		return "Likely"
	case TierPossible:
		return "Possible"
	case TierDoubtful:
		return "Doubtful"
	default:
		return "Possible"
	}
}

// Valid reports whether t is one of the five tiers
func (t Tier) Valid() bool {
	return t >= TierConfirmed && t <= TierDoubtful
}

// Shift moves t by n steps (negative is more confident) clamped to the valid range
func (t Tier) Shift(n int) Tier {
	s := int(t) + n
	if s < int(TierConfirmed) {
		s = int(TierConfirmed)
	}
	if s > int(TierDoubtful) {
		s = int(TierDoubtful)
	}
	return Tier(s)
}

// MarshalText implements encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown words become DefaultTier
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, _ := ParseTier(string(b))
	*t = parsed
	return nil
}

// ParseTier resolves English tier names and the Swedish words used by the
// weekly-letter datasets. The boolean is false when the word is unknown.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confirmed", "bekraftat", "bekräftat", "bekraftad", "bekräftad":
		return TierConfirmed, true
	case "probable", "sannolikt", "sannolik", "highly likely":
		return TierProbable, true
	case "likely", "troligt", "trolig":
		return TierLikely, true
	case "possible", "mojligt", "möjligt", "mojlig", "möjlig":
		return TierPossible, true
	case "doubtful", "tveksamt", "tveksam", "osannolikt", "unlikely":
		return TierDoubtful, true
	}
	return DefaultTier, false
}

// Scenario is an aggregation policy over likelihood tiers
type Scenario string

const (
	ScenarioBest   Scenario = "best"
	ScenarioLikely Scenario = "likely"
	ScenarioWorst  Scenario = "worst"
)

// Scenarios lists scenarios from narrowest to widest inclusion
var Scenarios = []Scenario{ScenarioBest, ScenarioLikely, ScenarioWorst}

// Cutoff returns the least confident tier the scenario still includes
func (s Scenario) Cutoff() Tier {
	switch s {
	case ScenarioBest:
		return TierConfirmed
	case ScenarioLikely:
		return TierProbable
	default:
		return TierDoubtful
	}
}

// Includes reports whether an event of tier t counts in this scenario
func (s Scenario) Includes(t Tier) bool {
	return t <= s.Cutoff()
}

// ParseScenario resolves a scenario name; unknown names select Worst
func ParseScenario(s string) (Scenario, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best", "bast", "bästa":
		return ScenarioBest, true
	case "likely", "troligt", "trolig":
		return ScenarioLikely, true
	case "worst", "varst", "värsta":
		return ScenarioWorst, true
	}
	return ScenarioWorst, false
}
