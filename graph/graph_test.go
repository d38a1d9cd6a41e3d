package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraphAddAndLookup(t *testing.T) {
	g := New()

	v := g.AddVertex("person", map[string]any{"name": "alice"})
	require.Equal(t, int64(1), v.ID())
	require.Equal(t, "person", v.Label())

	got, ok := g.Vertex(1)
	require.True(t, ok)
	require.Same(t, v, got)

	// int32 ids normalize like int ones.
	got, ok = g.Vertex(int32(1))
	require.True(t, ok)
	require.Same(t, v, got)

	require.Equal(t, 1, g.VertexCount())
	require.Equal(t, 0, g.EdgeCount())
}

func TestGraphExplicitIDs(t *testing.T) {
	g := New()

	v, err := g.AddVertexWithID("custom", "thing", nil)
	require.NoError(t, err)
	require.Equal(t, "custom", v.ID())

	_, err = g.AddVertexWithID("custom", "thing", nil)
	require.ErrorContains(t, err, "already exists")
}

func TestGraphEdges(t *testing.T) {
	g := New()
	a := g.AddVertex("person", nil)
	b := g.AddVertex("person", nil)

	e, err := g.AddEdge("knows", a, b, map[string]any{"weight": 1.0})
	require.NoError(t, err)
	require.Same(t, a, e.OutVertex())
	require.Same(t, b, e.InVertex())

	require.Equal(t, []*Edge{e}, a.OutEdges())
	require.Equal(t, []*Edge{e}, b.InEdges())
	require.Empty(t, a.OutEdges("created"))
	require.Equal(t, []*Edge{e}, a.BothEdges("knows"))
}

func TestGraphEdgeEndpointErrors(t *testing.T) {
	g := New()
	other := New()
	a := g.AddVertex("person", nil)
	b := other.AddVertex("person", nil)

	_, err := g.AddEdge("knows", a, nil, nil)
	require.Error(t, err)

	_, err = g.AddEdge("knows", a, b, nil)
	require.ErrorContains(t, err, "another graph")
}

func TestGraphRemoveVertexCascades(t *testing.T) {
	g := Modern()

	require.True(t, g.RemoveVertex(1))
	require.False(t, g.RemoveVertex(1))

	require.Equal(t, 5, g.VertexCount())
	require.Equal(t, 3, g.EdgeCount())

	vadas, _ := g.Vertex(2)
	require.Empty(t, vadas.InEdges())
}

func TestGraphRemovedVertexIsInert(t *testing.T) {
	g := Modern()
	marko, _ := g.Vertex(1)
	g.RemoveVertex(1)

	_, ok := marko.Property("name")
	require.False(t, ok)
	require.Empty(t, marko.OutEdges())
	marko.SetProperty("name", "ghost")
	_, ok = marko.Property("name")
	require.False(t, ok)
}

func TestGraphProperties(t *testing.T) {
	g := New()
	v := g.AddVertex("person", map[string]any{"name": "alice", "age": 30})

	require.Equal(t, []string{"age", "name"}, v.PropertyKeys())

	props := v.Properties()
	props["name"] = "mutated"
	name, _ := v.Property("name")
	require.Equal(t, "alice", name)

	v.SetProperty("age", 31)
	age, _ := v.Property("age")
	require.Equal(t, 31, age)
}

func TestGraphSnapshotsAreCopies(t *testing.T) {
	g := Modern()

	vs := g.Vertices()
	vs[0] = nil
	first := g.Vertices()[0]
	require.NotNil(t, first)
	require.Equal(t, int64(1), first.ID())
}

func TestGraphStrings(t *testing.T) {
	g := Modern()
	marko, _ := g.Vertex(1)
	e, _ := g.Edge(7)

	require.Equal(t, "v[1]", marko.String())
	require.Equal(t, "e[7][1-knows->2]", e.String())
}
