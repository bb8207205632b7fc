package score

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/hotbild/internal/model"
)

// defaultCategoryWeight applies to categories missing from the table
const defaultCategoryWeight = 5

// TopEntry is one event on the attention list
type TopEntry struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Country  string  `json:"country"`
	Score    float64 `json:"score"`
}

// Attention scores an event by category weight plus a summary length bonus
// of up to 5 points
func (a *Aggregator) Attention(ev model.Event) float64 {
	weight := float64(defaultCategoryWeight)
	if cc, ok := a.categories[strings.ToUpper(ev.Category)]; ok && cc.Weight > 0 {
		weight = cc.Weight
	}
	bonus := float64(utf8.RuneCountInString(ev.Summary)) / 300
	if bonus > 5 {
		bonus = 5
	}
	return weight + bonus
}

// TopList returns the n highest attention events, ties by index.
// n <= 0 uses the configured list size.
func (a *Aggregator) TopList(events []model.Event, n int) []TopEntry {
	if n <= 0 {
		n = a.scoring.TopListSize
	}
	out := make([]TopEntry, 0, len(events))
	for _, ev := range events {
		out = append(out, TopEntry{
			Index:    ev.Index,
			Title:    ev.Title,
			Category: ev.Category,
			Country:  ev.Country,
			Score:    a.Attention(ev),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func upperKeys(in map[string]model.CategoryConfig) map[string]model.CategoryConfig {
	out := make(map[string]model.CategoryConfig, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}
