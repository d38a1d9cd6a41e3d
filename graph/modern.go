package graph

// Modern returns the small sample graph used across documentation and
// tests: four people and two pieces of software connected by knows and
// created edges, with fixed identifiers so traversals over it are
// reproducible.
func Modern() *Graph {
	g := New()

	marko := mustVertex(g, 1, "person", map[string]any{"name": "marko", "age": 29})
	vadas := mustVertex(g, 2, "person", map[string]any{"name": "vadas", "age": 27})
	lop := mustVertex(g, 3, "software", map[string]any{"name": "lop", "lang": "java"})
	josh := mustVertex(g, 4, "person", map[string]any{"name": "josh", "age": 32})
	ripple := mustVertex(g, 5, "software", map[string]any{"name": "ripple", "lang": "java"})
	peter := mustVertex(g, 6, "person", map[string]any{"name": "peter", "age": 35})

	mustEdge(g, 7, "knows", marko, vadas, map[string]any{"weight": 0.5})
	mustEdge(g, 8, "knows", marko, josh, map[string]any{"weight": 1.0})
	mustEdge(g, 9, "created", marko, lop, map[string]any{"weight": 0.4})
	mustEdge(g, 10, "created", josh, ripple, map[string]any{"weight": 1.0})
	mustEdge(g, 11, "created", josh, lop, map[string]any{"weight": 0.4})
	mustEdge(g, 12, "created", peter, lop, map[string]any{"weight": 0.2})

	return g
}

func mustVertex(g *Graph, id any, label string, properties map[string]any) *Vertex {
	v, err := g.AddVertexWithID(id, label, properties)
	if err != nil {
		panic(err)
	}
	return v
}

func mustEdge(g *Graph, id any, label string, out, in *Vertex, properties map[string]any) *Edge {
	e, err := g.AddEdgeWithID(id, label, out, in, properties)
	if err != nil {
		panic(err)
	}
	return e
}
