// Package phenomena derives, imports and exports the phenomena/links model.
package phenomena

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ppiankov/hotbild/internal/model"
)

// ErrInvalidImport is wrapped by every import rejection
var ErrInvalidImport = errors.New("invalid phenomena import")

// namespace seeds the name-based phenomenon ids
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/hotbild/phenomena"))

// PhenomenonID derives a stable id from an event's dataset index and title
func PhenomenonID(ev model.Event) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%d\x00%s", ev.Index, ev.Title))).String()
}

// FromEvents builds the phenomena model for classified events. Events sharing
// both category and country are linked to the first event of that group.
func FromEvents(events []model.Event) model.Phenomena {
	out := model.Phenomena{
		Phenomena: make([]model.Phenomenon, 0, len(events)),
		Links:     []model.PhenomenonLink{},
	}
	groups := make(map[string]string)

	for _, ev := range events {
		id := PhenomenonID(ev)
		name := ev.Title
		if name == "" {
			name = fmt.Sprintf("Event %d", ev.Index)
		}
		out.Phenomena = append(out.Phenomena, model.Phenomenon{
			ID:         id,
			Dimension:  ev.Dimension,
			Name:       name,
			Likelihood: ev.Likelihood,
			Risk:       ev.Risk,
			Note:       note(ev),
		})

		if ev.Category == "" || ev.Country == "" {
			continue
		}
		key := strings.ToUpper(ev.Category) + "\x00" + strings.ToLower(ev.Country)
		if first, ok := groups[key]; ok {
			if first != id {
				out.Links = append(out.Links, model.PhenomenonLink{Source: first, Target: id})
			}
			continue
		}
		groups[key] = id
	}
	return out
}

func note(ev model.Event) string {
	var parts []string
	for _, p := range []string{ev.Category, ev.Country, ev.Date, ev.SourceDomain} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// Export encodes m as indented JSON
func Export(m model.Phenomena) ([]byte, error) {
	if m.Phenomena == nil {
		m.Phenomena = []model.Phenomenon{}
	}
	if m.Links == nil {
		m.Links = []model.PhenomenonLink{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode phenomena: %w", err)
	}
	return data, nil
}

// rawPhenomenon accepts loosely typed fields
type rawPhenomenon struct {
	ID         string          `json:"id"`
	Dimension  string          `json:"dimension"`
	Name       string          `json:"name"`
	Likelihood string          `json:"likelihood"`
	Risk       json.RawMessage `json:"risk"`
	Note       string          `json:"note"`
}

type rawModel struct {
	Phenomena *[]rawPhenomenon       `json:"phenomena"` // Nil when the key is missing or null
	Links     []model.PhenomenonLink `json:"links"`
}

// Parse decodes an exported model. The document is either an object with
// phenomena and links or a bare array of phenomena. An object without a
// phenomena array is rejected; only an explicit [] is an empty model.
// Missing or duplicate ids and links to unknown ids reject the whole
// document; unknown dimensions and tiers degrade to their defaults and risk
// is clamped to 1..5.
func Parse(data []byte) (model.Phenomena, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.Phenomena{}, errors.Wrap(ErrInvalidImport, "empty document")
	}

	var raw rawModel
	var items []rawPhenomenon
	switch trimmed[0] {
	case '{':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "decode object: %v", err)
		}
		if raw.Phenomena == nil {
			return model.Phenomena{}, errors.Wrap(ErrInvalidImport, "object has no phenomena array")
		}
		items = *raw.Phenomena
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "decode array: %v", err)
		}
	default:
		return model.Phenomena{}, errors.Wrap(ErrInvalidImport, "document is neither an object nor an array")
	}

	out := model.Phenomena{
		Phenomena: make([]model.Phenomenon, 0, len(items)),
		Links:     make([]model.PhenomenonLink, 0, len(raw.Links)),
	}
	ids := make(map[string]bool, len(items))

	for i, rp := range items {
		id := strings.TrimSpace(rp.ID)
		if id == "" {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "phenomenon %d has no id", i)
		}
		if ids[id] {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "duplicate phenomenon id %q", id)
		}
		ids[id] = true

		dim, _ := model.ParseDimension(rp.Dimension)
		tier, _ := model.ParseTier(rp.Likelihood)
		risk, err := parseRisk(rp.Risk)
		if err != nil {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "phenomenon %q: %v", id, err)
		}

		out.Phenomena = append(out.Phenomena, model.Phenomenon{
			ID:         id,
			Dimension:  dim,
			Name:       rp.Name,
			Likelihood: tier,
			Risk:       risk,
			Note:       rp.Note,
		})
	}

	seen := make(map[string]bool, len(raw.Links))
	for i, l := range raw.Links {
		if !ids[l.Source] || !ids[l.Target] {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "link %d references unknown id (%q -> %q)", i, l.Source, l.Target)
		}
		if l.Source == l.Target {
			return model.Phenomena{}, errors.Wrapf(ErrInvalidImport, "link %d is a self-link on %q", i, l.Source)
		}
		key := linkKey(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Links = append(out.Links, l)
	}
	return out, nil
}

// parseRisk accepts a JSON number or numeric string; absent means the default 3
func parseRisk(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 3, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("risk %s is not a number", raw)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("risk %q is not a number", s)
		}
		f = parsed
	}
	r := int(math.Round(f))
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r, nil
}

func linkKey(l model.PhenomenonLink) string {
	if l.Source < l.Target {
		return l.Source + "\x00" + l.Target
	}
	return l.Target + "\x00" + l.Source
}
