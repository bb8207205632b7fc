package filter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ppiankov/hotbild/internal/graph"
	"github.com/ppiankov/hotbild/internal/model"
)

// AllLabel is the label of the unrestricted scope
const AllLabel = "All"

// Scope restricts the display to a set of stable event indices.
// A nil or empty set means no restriction.
type Scope struct {
	Label   string           `json:"label"`
	Indices map[int]struct{} `json:"-"`
}

// AllScope returns the unrestricted scope
func AllScope() Scope {
	return Scope{Label: AllLabel}
}

// NewScope returns a scope over the given indices
func NewScope(label string, indices ...int) Scope {
	if len(indices) == 0 {
		return AllScope()
	}
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return Scope{Label: label, Indices: set}
}

// Restricted reports whether the scope narrows the event set
func (s Scope) Restricted() bool {
	return len(s.Indices) > 0
}

// Contains reports whether the event at index is in scope
func (s Scope) Contains(index int) bool {
	if !s.Restricted() {
		return true
	}
	_, ok := s.Indices[index]
	return ok
}

// Sorted returns the member indices in ascending order
func (s Scope) Sorted() []int {
	out := make([]int, 0, len(s.Indices))
	for i := range s.Indices {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// MarshalJSON renders the index set as a sorted array, null when unrestricted
func (s Scope) MarshalJSON() ([]byte, error) {
	var indices []int
	if s.Restricted() {
		indices = s.Sorted()
	}
	return json.Marshal(struct {
		Label   string `json:"label"`
		Indices []int  `json:"event_indices"`
	}{s.Label, indices})
}

// EventScope narrows to a single event
func EventScope(ev model.Event) Scope {
	label := ev.Title
	if label == "" {
		label = fmt.Sprintf("Event %d", ev.Index)
	}
	return NewScope(label, ev.Index)
}

// NodeScope computes the scope for a click on a graph node. Event nodes scope
// to that event; other nodes scope to the events one link away in g.
func NodeScope(g *graph.Graph, nodeID string) (Scope, error) {
	node, ok := g.Node(nodeID)
	if !ok {
		return Scope{}, fmt.Errorf("unknown graph node %q", nodeID)
	}

	if node.Type == graph.NodeTypeEvent {
		idx, ok := graph.ParseEventNodeID(node.ID)
		if !ok {
			return Scope{}, fmt.Errorf("malformed event node id %q", nodeID)
		}
		return NewScope(node.Label, idx), nil
	}

	var indices []int
	for _, id := range g.Neighbors(nodeID) {
		if idx, ok := graph.ParseEventNodeID(id); ok {
			indices = append(indices, idx)
		}
	}
	return NewScope(node.Label, indices...), nil
}

// Reconcile drops scope members missing from filtered. A scope left empty
// resets to AllScope. The result is always a subset of s.
func Reconcile(s Scope, filtered []model.Event) Scope {
	if !s.Restricted() {
		return s
	}
	present := make(map[int]bool, len(filtered))
	for _, ev := range filtered {
		present[ev.Index] = true
	}

	kept := make(map[int]struct{}, len(s.Indices))
	for i := range s.Indices {
		if present[i] {
			kept[i] = struct{}{}
		}
	}
	if len(kept) == 0 {
		return AllScope()
	}
	return Scope{Label: s.Label, Indices: kept}
}

// Restrict returns the events of filtered that are in scope, order preserved
func Restrict(filtered []model.Event, s Scope) []model.Event {
	if !s.Restricted() {
		return filtered
	}
	out := make([]model.Event, 0, len(s.Indices))
	for _, ev := range filtered {
		if s.Contains(ev.Index) {
			out = append(out, ev)
		}
	}
	return out
}
