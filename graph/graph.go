// Package graph is a reference in-memory property graph with a traversal
// engine. The engine implements the applier surface the step translator
// drives, so bytecode recordings can be translated into traversals that
// execute against a live graph.
package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Graph is a concurrency-safe in-memory property graph. Elements keep
// insertion order so traversals over the whole graph are deterministic.
type Graph struct {
	mu         sync.RWMutex
	nextID     int64
	vertices   map[any]*Vertex
	vertexList []*Vertex
	edges      map[any]*Edge
	edgeList   []*Edge
	log        zerolog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used by traversal execution. The default
// discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Graph) {
		g.log = log
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		vertices: map[any]*Vertex{},
		edges:    map[any]*Edge{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddVertex creates a vertex with an auto-assigned id.
func (g *Graph) AddVertex(label string, properties map[string]any) *Vertex {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, _ := g.addVertex(g.autoID(), label, properties)
	return v
}

// AddVertexWithID creates a vertex with a caller-supplied id. Adding a
// duplicate id is an error.
func (g *Graph) AddVertexWithID(id any, label string, properties map[string]any) (*Vertex, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addVertex(normalizeID(id), label, properties)
}

func (g *Graph) addVertex(id any, label string, properties map[string]any) (*Vertex, error) {
	if _, exists := g.vertices[id]; exists {
		return nil, fmt.Errorf("vertex id %v already exists", id)
	}
	v := &Vertex{
		graph:      g,
		id:         id,
		label:      label,
		properties: copyProperties(properties),
	}
	g.vertices[id] = v
	g.vertexList = append(g.vertexList, v)
	return v, nil
}

// AddEdge creates an edge with an auto-assigned id from out to in.
func (g *Graph) AddEdge(label string, out, in *Vertex, properties map[string]any) (*Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addEdge(g.autoID(), label, out, in, properties)
}

// AddEdgeWithID creates an edge with a caller-supplied id.
func (g *Graph) AddEdgeWithID(id any, label string, out, in *Vertex, properties map[string]any) (*Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addEdge(normalizeID(id), label, out, in, properties)
}

func (g *Graph) addEdge(id any, label string, out, in *Vertex, properties map[string]any) (*Edge, error) {
	if out == nil || in == nil {
		return nil, fmt.Errorf("edge %v requires both endpoints", id)
	}
	if out.graph != g || in.graph != g {
		return nil, fmt.Errorf("edge %v endpoints belong to another graph", id)
	}
	if _, exists := g.edges[id]; exists {
		return nil, fmt.Errorf("edge id %v already exists", id)
	}
	e := &Edge{
		graph:      g,
		id:         id,
		label:      label,
		out:        out,
		in:         in,
		properties: copyProperties(properties),
	}
	g.edges[id] = e
	g.edgeList = append(g.edgeList, e)
	out.outEdges = append(out.outEdges, e)
	in.inEdges = append(in.inEdges, e)
	return e, nil
}

// Vertex looks a vertex up by id.
func (g *Graph) Vertex(id any) (*Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[normalizeID(id)]
	return v, ok
}

// Edge looks an edge up by id.
func (g *Graph) Edge(id any) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[normalizeID(id)]
	return e, ok
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Vertex, len(g.vertexList))
	copy(out, g.vertexList)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Edge, len(g.edgeList))
	copy(out, g.edgeList)
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertexList)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edgeList)
}

// RemoveVertex deletes a vertex and its incident edges.
func (g *Graph) RemoveVertex(id any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.vertices[normalizeID(id)]
	if !ok {
		return false
	}
	for _, e := range append(append([]*Edge{}, v.outEdges...), v.inEdges...) {
		g.removeEdge(e.id)
	}
	delete(g.vertices, v.id)
	g.vertexList = removeVertexFrom(g.vertexList, v)
	v.graph = nil
	return true
}

// RemoveEdge deletes an edge.
func (g *Graph) RemoveEdge(id any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeEdge(normalizeID(id))
}

func (g *Graph) removeEdge(id any) bool {
	e, ok := g.edges[id]
	if !ok {
		return false
	}
	delete(g.edges, id)
	g.edgeList = removeEdgeFrom(g.edgeList, e)
	e.out.outEdges = removeEdgeFrom(e.out.outEdges, e)
	e.in.inEdges = removeEdgeFrom(e.in.inEdges, e)
	e.graph = nil
	return true
}

func (g *Graph) autoID() any {
	g.nextID++
	return g.nextID
}

// Vertex is a labeled graph element with properties and incident edges.
type Vertex struct {
	graph      *Graph
	id         any
	label      string
	properties map[string]any
	outEdges   []*Edge
	inEdges    []*Edge
}

func (v *Vertex) ID() any       { return v.id }
func (v *Vertex) Label() string { return v.label }

// Property returns the value stored under key. Removed vertices have no
// properties.
func (v *Vertex) Property(key string) (any, bool) {
	if v.graph == nil {
		return nil, false
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	val, ok := v.properties[key]
	return val, ok
}

// Properties returns a copy of the property map.
func (v *Vertex) Properties() map[string]any {
	if v.graph == nil {
		return map[string]any{}
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	return copyProperties(v.properties)
}

// PropertyKeys returns the property keys in sorted order.
func (v *Vertex) PropertyKeys() []string {
	if v.graph == nil {
		return nil
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	return sortedKeys(v.properties)
}

// SetProperty stores value under key, replacing any existing value.
func (v *Vertex) SetProperty(key string, value any) {
	if v.graph == nil {
		return
	}
	v.graph.mu.Lock()
	defer v.graph.mu.Unlock()
	v.properties[key] = value
}

// OutEdges returns outgoing edges, filtered to the given labels when any
// are supplied.
func (v *Vertex) OutEdges(labels ...string) []*Edge {
	if v.graph == nil {
		return nil
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	return filterEdges(v.outEdges, labels)
}

// InEdges returns incoming edges, filtered to the given labels when any
// are supplied.
func (v *Vertex) InEdges(labels ...string) []*Edge {
	if v.graph == nil {
		return nil
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	return filterEdges(v.inEdges, labels)
}

// BothEdges returns incident edges in either direction.
func (v *Vertex) BothEdges(labels ...string) []*Edge {
	if v.graph == nil {
		return nil
	}
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()
	out := filterEdges(v.outEdges, labels)
	return append(out, filterEdges(v.inEdges, labels)...)
}

func (v *Vertex) String() string {
	return fmt.Sprintf("v[%v]", v.id)
}

// Edge is a directed, labeled connection from its out (tail) vertex to its
// in (head) vertex.
type Edge struct {
	graph      *Graph
	id         any
	label      string
	out        *Vertex
	in         *Vertex
	properties map[string]any
}

func (e *Edge) ID() any       { return e.id }
func (e *Edge) Label() string { return e.label }

// OutVertex returns the tail of the edge.
func (e *Edge) OutVertex() *Vertex { return e.out }

// InVertex returns the head of the edge.
func (e *Edge) InVertex() *Vertex { return e.in }

// Property returns the value stored under key. Removed edges have no
// properties.
func (e *Edge) Property(key string) (any, bool) {
	if e.graph == nil {
		return nil, false
	}
	e.graph.mu.RLock()
	defer e.graph.mu.RUnlock()
	val, ok := e.properties[key]
	return val, ok
}

// Properties returns a copy of the property map.
func (e *Edge) Properties() map[string]any {
	if e.graph == nil {
		return map[string]any{}
	}
	e.graph.mu.RLock()
	defer e.graph.mu.RUnlock()
	return copyProperties(e.properties)
}

// PropertyKeys returns the property keys in sorted order.
func (e *Edge) PropertyKeys() []string {
	if e.graph == nil {
		return nil
	}
	e.graph.mu.RLock()
	defer e.graph.mu.RUnlock()
	return sortedKeys(e.properties)
}

// SetProperty stores value under key, replacing any existing value.
func (e *Edge) SetProperty(key string, value any) {
	if e.graph == nil {
		return
	}
	e.graph.mu.Lock()
	defer e.graph.mu.Unlock()
	e.properties[key] = value
}

func (e *Edge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.out.id, e.label, e.in.id)
}

// normalizeID widens small integer kinds so lookups match stored ids
// regardless of the caller's literal type.
func normalizeID(id any) any {
	switch v := id.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	}
	return id
}

func copyProperties(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func removeVertexFrom(list []*Vertex, v *Vertex) []*Vertex {
	for i, item := range list {
		if item == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeEdgeFrom(list []*Edge, e *Edge) []*Edge {
	for i, item := range list {
		if item == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func filterEdges(edges []*Edge, labels []string) []*Edge {
	out := make([]*Edge, 0, len(edges))
	for _, e := range edges {
		if len(labels) == 0 || containsString(labels, e.label) {
			out = append(out, e)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
