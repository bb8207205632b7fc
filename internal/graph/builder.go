package graph

import (
	"io"
	"log/slog"

	"github.com/ppiankov/hotbild/internal/keyword"
	"github.com/ppiankov/hotbild/internal/model"
)

// Builder builds relationship graphs from filtered events.
type Builder struct {
	config model.GraphConfig
	logger *slog.Logger
}

// NewBuilder creates a new Builder; a nil logger discards output.
func NewBuilder(config model.GraphConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{config: config, logger: logger}
}

// builder accumulates nodes and links with dedupe by composite key.
type builder struct {
	graph *Graph
	nodes map[string]int // id -> position in graph.Nodes
	links map[string]bool
}

func newBuilder() *builder {
	return &builder{
		graph: &Graph{Nodes: []Node{}, Links: []Link{}},
		nodes: make(map[string]int),
		links: make(map[string]bool),
	}
}

func (b *builder) addNode(n Node) {
	if _, ok := b.nodes[n.ID]; ok {
		return
	}
	b.nodes[n.ID] = len(b.graph.Nodes)
	b.graph.Nodes = append(b.graph.Nodes, n)
}

func (b *builder) addLink(source, target string) bool {
	if source == target {
		return false
	}
	_, okS := b.nodes[source]
	_, okT := b.nodes[target]
	if !okS || !okT {
		return false
	}
	l := Link{Source: source, Target: target}
	if b.links[l.key()] {
		return false
	}
	b.links[l.key()] = true
	b.graph.Links = append(b.graph.Links, l)
	b.graph.Nodes[b.nodes[source]].Degree++
	b.graph.Nodes[b.nodes[target]].Degree++
	return true
}

// Build constructs the graph. Keyword nodes are added only when
// minKeywordFrequency > 0, for tokens appearing in at least that many events.
func (bl *Builder) Build(events []model.Event, minKeywordFrequency int) *Graph {
	b := newBuilder()

	// Category and country nodes first, in first-seen order
	for _, ev := range events {
		if ev.Category != "" {
			b.addNode(Node{ID: NodeID(NodeTypeCategory, ev.Category), Type: NodeTypeCategory, Label: ev.Category})
		}
	}
	for _, ev := range events {
		if ev.Country != "" {
			b.addNode(Node{ID: NodeID(NodeTypeCountry, ev.Country), Type: NodeTypeCountry, Label: ev.Country})
		}
	}

	for _, ev := range events {
		idx := ev.Index
		label := ev.Title
		if label == "" {
			label = "Event"
		}
		id := EventNodeID(idx)
		b.addNode(Node{ID: id, Type: NodeTypeEvent, Label: label, EventIndex: &idx})

		if ev.Category != "" {
			b.addLink(id, NodeID(NodeTypeCategory, ev.Category))
		}
		if ev.Country != "" {
			b.addLink(id, NodeID(NodeTypeCountry, ev.Country))
		}
	}

	if minKeywordFrequency > 0 {
		bl.addKeywords(b, events, minKeywordFrequency)
	}

	g := b.graph
	if bl.config.PruneIsolated {
		g.Stats.PrunedNodes = prune(g)
	}
	g.Stats = countStats(g)

	bl.logger.Debug("built graph", "nodes", g.Stats.NodeCount, "links", g.Stats.LinkCount, "keywords", g.Stats.KeywordNodes)
	return g
}

func (bl *Builder) addKeywords(b *builder, events []model.Event, minFreq int) {
	perEvent := make([][]string, len(events))
	for i, ev := range events {
		perEvent[i] = keyword.Tokens(ev.Title+" "+ev.Summary+" "+ev.SourceDomain, bl.config.KeywordsPerEvent)
	}
	freq := keyword.DocumentFrequency(perEvent)

	maxLinks := bl.config.KeywordLinksPerEvent
	for i, ev := range events {
		linked := 0
		for _, tok := range perEvent[i] {
			if maxLinks > 0 && linked >= maxLinks {
				break
			}
			if freq[tok] < minFreq {
				continue
			}
			kid := NodeID(NodeTypeKeyword, tok)
			b.addNode(Node{ID: kid, Type: NodeTypeKeyword, Label: tok})
			if b.addLink(EventNodeID(ev.Index), kid) {
				linked++
			}
		}
	}
}

// prune drops non-event nodes without links and returns how many were removed.
func prune(g *Graph) int {
	kept := g.Nodes[:0]
	removed := 0
	for _, n := range g.Nodes {
		if n.Type != NodeTypeEvent && n.Degree == 0 {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	g.Nodes = kept
	return removed
}

func countStats(g *Graph) Stats {
	s := Stats{
		NodeCount:   len(g.Nodes),
		LinkCount:   len(g.Links),
		PrunedNodes: g.Stats.PrunedNodes,
	}
	for _, n := range g.Nodes {
		switch n.Type {
		case NodeTypeEvent:
			s.EventNodes++
		case NodeTypeCategory:
			s.CategoryNodes++
		case NodeTypeCountry:
			s.CountryNodes++
		case NodeTypeKeyword:
			s.KeywordNodes++
		}
	}
	return s
}
