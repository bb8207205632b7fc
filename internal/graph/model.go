// Package graph builds the event/category/country/keyword relationship graph.
package graph

import (
	"strconv"
	"strings"
)

// NodeType constants.
const (
	NodeTypeEvent    = "event"
	NodeTypeCategory = "category"
	NodeTypeCountry  = "country"
	NodeTypeKeyword  = "keyword"
)

// Node represents a node in the relationship graph.
type Node struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Label      string `json:"label"`
	EventIndex *int   `json:"event_index,omitempty"` // set for event nodes
	Degree     int    `json:"degree"`
}

// Link is an undirected edge between two node ids.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// key returns the undirected identity of the link.
func (l Link) key() string {
	if l.Source < l.Target {
		return l.Source + "|" + l.Target
	}
	return l.Target + "|" + l.Source
}

// Graph is the node/link model handed to the renderer.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Stats Stats  `json:"stats"`
}

// Stats contains graph statistics.
type Stats struct {
	NodeCount     int `json:"node_count"`
	LinkCount     int `json:"link_count"`
	EventNodes    int `json:"event_nodes"`
	CategoryNodes int `json:"category_nodes"`
	CountryNodes  int `json:"country_nodes"`
	KeywordNodes  int `json:"keyword_nodes"`
	PrunedNodes   int `json:"pruned_nodes"`
}

// NodeID derives the composite id of a node from its type and label.
func NodeID(nodeType, label string) string {
	return nodeType + ":" + label
}

// EventNodeID returns the id of the node for the event at index.
func EventNodeID(index int) string {
	return NodeID(NodeTypeEvent, strconv.Itoa(index))
}

// ParseEventNodeID extracts the event index from an event node id.
func ParseEventNodeID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, NodeTypeEvent+":")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Neighbors returns the ids of nodes sharing a link with id, in link order.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	for _, l := range g.Links {
		switch id {
		case l.Source:
			out = append(out, l.Target)
		case l.Target:
			out = append(out, l.Source)
		}
	}
	return out
}
