package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/hotbild/internal/model"
)

func testEvents() []model.Event {
	return []model.Event{
		{Index: 0, Category: "INFRA", Country: "Sverige", Title: "Kabelsabotage utanför Gotland", Summary: "Undervattenskabel skadad"},
		{Index: 1, Category: "INFRA", Country: "Finland", Title: "Kabelsabotage i Finska viken", Summary: "Undervattenskabel skadad igen"},
		{Index: 2, Category: "DRONE", Country: "Sverige", Title: "Drönare över flygplats", Summary: "Kabelsabotage misstänks inte"},
		{Index: 3, Category: "GPS", Country: "", Title: "", Summary: ""},
	}
}

func defaultBuilder() *Builder {
	return NewBuilder(model.DefaultConfig().Graph, nil)
}

func TestBuild_Empty(t *testing.T) {
	g := defaultBuilder().Build(nil, 3)
	require.NotNil(t, g)
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Links)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
	assert.Equal(t, 0, g.Stats.NodeCount)
}

func TestBuild_StructuralNodes(t *testing.T) {
	g := defaultBuilder().Build(testEvents(), 0)

	assert.Equal(t, 4, g.Stats.EventNodes)
	assert.Equal(t, 3, g.Stats.CategoryNodes)
	assert.Equal(t, 2, g.Stats.CountryNodes)
	assert.Equal(t, 0, g.Stats.KeywordNodes, "keyword nodes disabled at frequency 0")

	n, ok := g.Node(EventNodeID(3))
	require.True(t, ok)
	assert.Equal(t, "Event", n.Label)
	require.NotNil(t, n.EventIndex)
	assert.Equal(t, 3, *n.EventIndex)

	infra, ok := g.Node(NodeID(NodeTypeCategory, "INFRA"))
	require.True(t, ok)
	assert.Equal(t, 2, infra.Degree)

	assert.ElementsMatch(t,
		[]string{NodeID(NodeTypeCategory, "INFRA"), NodeID(NodeTypeCountry, "Sverige")},
		g.Neighbors(EventNodeID(0)))
}

func TestBuild_KeywordThreshold(t *testing.T) {
	events := testEvents()

	g := defaultBuilder().Build(events, 3)
	kw, ok := g.Node(NodeID(NodeTypeKeyword, "kabelsabotage"))
	require.True(t, ok, "token present in 3 events should become a node")
	assert.Equal(t, 3, kw.Degree)

	_, ok = g.Node(NodeID(NodeTypeKeyword, "undervattenskabel"))
	assert.False(t, ok, "token present in 2 events is below threshold")

	g = defaultBuilder().Build(events, 2)
	_, ok = g.Node(NodeID(NodeTypeKeyword, "undervattenskabel"))
	assert.True(t, ok)
}

func TestBuild_Integrity(t *testing.T) {
	g := defaultBuilder().Build(testEvents(), 2)

	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		assert.False(t, ids[n.ID], "duplicate node %s", n.ID)
		ids[n.ID] = true
	}

	seen := make(map[string]bool)
	for _, l := range g.Links {
		assert.True(t, ids[l.Source], "dangling source %s", l.Source)
		assert.True(t, ids[l.Target], "dangling target %s", l.Target)
		assert.NotEqual(t, l.Source, l.Target)
		assert.False(t, seen[l.key()], "duplicate link %s", l.key())
		seen[l.key()] = true
	}

	for _, n := range g.Nodes {
		if n.Type != NodeTypeEvent {
			assert.Positive(t, n.Degree, "isolated %s node survived pruning", n.ID)
		}
	}
	assert.Equal(t, len(g.Nodes), g.Stats.NodeCount)
	assert.Equal(t, len(g.Links), g.Stats.LinkCount)
}

func TestBuild_LinkCapPerEvent(t *testing.T) {
	cfg := model.DefaultConfig().Graph
	cfg.KeywordLinksPerEvent = 1
	events := []model.Event{
		{Index: 0, Title: "alpha bravo charlie"},
		{Index: 1, Title: "alpha bravo charlie"},
	}

	g := NewBuilder(cfg, nil).Build(events, 1)
	assert.Len(t, g.Neighbors(EventNodeID(0)), 1)
	assert.Equal(t, 1, g.Stats.KeywordNodes)
}

func TestParseEventNodeID(t *testing.T) {
	idx, ok := ParseEventNodeID(EventNodeID(42))
	assert.True(t, ok)
	assert.Equal(t, 42, idx)

	_, ok = ParseEventNodeID("category:INFRA")
	assert.False(t, ok)
	_, ok = ParseEventNodeID("event:abc")
	assert.False(t, ok)
	_, ok = ParseEventNodeID("event:-1")
	assert.False(t, ok)
}
