// Package traversal is the fluent recording surface: sources, steps,
// enums, and predicates that write instructions into a bytecode recording
// instead of touching a graph. A recording is handed to a translator to
// become a script or an executable traversal.
package traversal

import (
	"github.com/wander-lang/wander/bytecode"
)

// Traversal accumulates step instructions. Step methods record in call
// order and return the receiver for chaining. Traversals recorded here do
// not execute anything; Bytecode exposes the recording for translation.
type Traversal struct {
	bc *bytecode.Bytecode
}

// Bytecode returns the live recording. Further step calls keep appending
// to it; Clone first to get a stable snapshot.
func (t *Traversal) Bytecode() *bytecode.Bytecode {
	return t.bc
}

// Clone returns an independent copy of the traversal recorded so far.
func (t *Traversal) Clone() *Traversal {
	return &Traversal{bc: t.bc.Clone()}
}

func (t *Traversal) String() string {
	return t.bc.String()
}

func (t *Traversal) add(op string, args ...any) *Traversal {
	t.bc.AddStep(op, args...)
	return t
}

// V moves to the graph's vertices, optionally filtered to the given ids.
func (t *Traversal) V(ids ...any) *Traversal {
	return t.add(OpV, unwrapArgs(ids)...)
}

// Inject adds the given literal values to the stream.
func (t *Traversal) Inject(values ...any) *Traversal {
	return t.add(OpInject, unwrapArgs(values)...)
}

// AddV creates a vertex, with an optional label.
func (t *Traversal) AddV(labels ...string) *Traversal {
	return t.add(OpAddV, stringArgs(labels)...)
}

// AddE creates an edge with the given label between the endpoints selected
// by from() and to().
func (t *Traversal) AddE(label string) *Traversal {
	return t.add(OpAddE, label)
}

// Property sets a property on the current element. Accepts key/value, or
// a leading Cardinality for vertex properties.
func (t *Traversal) Property(args ...any) *Traversal {
	return t.add(OpProperty, unwrapArgs(args)...)
}

// Drop removes the current elements from the graph.
func (t *Traversal) Drop() *Traversal {
	return t.add(OpDrop)
}

// Has filters elements. Forms: has(key), has(key, value), has(key, P),
// has(label, key, value), has(T, value).
func (t *Traversal) Has(args ...any) *Traversal {
	return t.add(OpHas, unwrapArgs(args)...)
}

// HasLabel keeps elements whose label is among the given labels.
func (t *Traversal) HasLabel(labels ...string) *Traversal {
	return t.add(OpHasLabel, stringArgs(labels)...)
}

// HasID keeps elements whose id is among the given ids.
func (t *Traversal) HasID(ids ...any) *Traversal {
	return t.add(OpHasID, unwrapArgs(ids)...)
}

// Where filters by a predicate or by whether a child traversal yields any
// result for the current traverser.
func (t *Traversal) Where(args ...any) *Traversal {
	return t.add(OpWhere, unwrapArgs(args)...)
}

// Is keeps traversers whose current value equals the argument, or passes
// the given predicate.
func (t *Traversal) Is(value any) *Traversal {
	return t.add(OpIs, unwrapArg(value))
}

// Not keeps traversers for which the child traversal yields nothing.
func (t *Traversal) Not(child *Traversal) *Traversal {
	return t.add(OpNot, child.bc)
}

// And keeps traversers for which every child traversal yields a result.
func (t *Traversal) And(children ...*Traversal) *Traversal {
	return t.add(OpAnd, traversalArgs(children)...)
}

// Or keeps traversers for which at least one child traversal yields a
// result.
func (t *Traversal) Or(children ...*Traversal) *Traversal {
	return t.add(OpOr, traversalArgs(children)...)
}

// Dedup removes duplicate values from the stream.
func (t *Traversal) Dedup() *Traversal {
	return t.add(OpDedup)
}

// Limit keeps the first n traversers.
func (t *Traversal) Limit(n int) *Traversal {
	return t.add(OpLimit, n)
}

// Skip drops the first n traversers.
func (t *Traversal) Skip(n int) *Traversal {
	return t.add(OpSkip, n)
}

// Range keeps traversers with positions in [low, high).
func (t *Traversal) Range(low, high int) *Traversal {
	return t.add(OpRange, low, high)
}

// SimplePath drops traversers whose path revisits an element.
func (t *Traversal) SimplePath() *Traversal {
	return t.add(OpSimplePath)
}

// Out moves to out-adjacent vertices, optionally over the given edge
// labels.
func (t *Traversal) Out(labels ...string) *Traversal {
	return t.add(OpOut, stringArgs(labels)...)
}

// In moves to in-adjacent vertices.
func (t *Traversal) In(labels ...string) *Traversal {
	return t.add(OpIn, stringArgs(labels)...)
}

// Both moves to adjacent vertices in either direction.
func (t *Traversal) Both(labels ...string) *Traversal {
	return t.add(OpBoth, stringArgs(labels)...)
}

// OutE moves to outgoing edges.
func (t *Traversal) OutE(labels ...string) *Traversal {
	return t.add(OpOutE, stringArgs(labels)...)
}

// InE moves to incoming edges.
func (t *Traversal) InE(labels ...string) *Traversal {
	return t.add(OpInE, stringArgs(labels)...)
}

// BothE moves to incident edges in either direction.
func (t *Traversal) BothE(labels ...string) *Traversal {
	return t.add(OpBothE, stringArgs(labels)...)
}

// InV moves from an edge to its head vertex.
func (t *Traversal) InV() *Traversal {
	return t.add(OpInV)
}

// OutV moves from an edge to its tail vertex.
func (t *Traversal) OutV() *Traversal {
	return t.add(OpOutV)
}

// BothV moves from an edge to both endpoint vertices.
func (t *Traversal) BothV() *Traversal {
	return t.add(OpBothV)
}

// OtherV moves from an edge to the endpoint the traverser did not come
// from.
func (t *Traversal) OtherV() *Traversal {
	return t.add(OpOtherV)
}

// Values extracts property values, optionally restricted to the given
// keys.
func (t *Traversal) Values(keys ...string) *Traversal {
	return t.add(OpValues, stringArgs(keys)...)
}

// ValueMap extracts a map of property keys to values.
func (t *Traversal) ValueMap(keys ...string) *Traversal {
	return t.add(OpValueMap, stringArgs(keys)...)
}

// ID extracts element ids.
func (t *Traversal) ID() *Traversal {
	return t.add(OpID)
}

// Label extracts element labels.
func (t *Traversal) Label() *Traversal {
	return t.add(OpLabel)
}

// Constant replaces the current value with the given one.
func (t *Traversal) Constant(value any) *Traversal {
	return t.add(OpConstant, unwrapArg(value))
}

// Select yields values bound earlier with as(), or a map of them when
// several labels are given. A Column argument selects one side of a map.
func (t *Traversal) Select(args ...any) *Traversal {
	return t.add(OpSelect, unwrapArgs(args)...)
}

// As binds the current value to the given labels for later select().
func (t *Traversal) As(labels ...string) *Traversal {
	return t.add(OpAs, stringArgs(labels)...)
}

// By modulates the previous step (order, dedup, groupCount, project, ...)
// with a key, enum, or child traversal.
func (t *Traversal) By(args ...any) *Traversal {
	return t.add(OpBy, unwrapArgs(args)...)
}

// Order sorts the stream; by() modulators select the sort key and
// direction.
func (t *Traversal) Order() *Traversal {
	return t.add(OpOrder)
}

// Fold collects the stream into a single list value.
func (t *Traversal) Fold() *Traversal {
	return t.add(OpFold)
}

// Unfold flattens list and map values back into the stream.
func (t *Traversal) Unfold() *Traversal {
	return t.add(OpUnfold)
}

// Count reduces the stream to the number of traversers.
func (t *Traversal) Count() *Traversal {
	return t.add(OpCount)
}

// Sum reduces the stream to the sum of its numeric values.
func (t *Traversal) Sum() *Traversal {
	return t.add(OpSum)
}

// Min reduces the stream to its minimum value.
func (t *Traversal) Min() *Traversal {
	return t.add(OpMin)
}

// Max reduces the stream to its maximum value.
func (t *Traversal) Max() *Traversal {
	return t.add(OpMax)
}

// Mean reduces the stream to the mean of its numeric values.
func (t *Traversal) Mean() *Traversal {
	return t.add(OpMean)
}

// Path yields the ordered list of objects each traverser moved through.
func (t *Traversal) Path() *Traversal {
	return t.add(OpPath)
}

// Coalesce yields the results of the first child traversal that produces
// any.
func (t *Traversal) Coalesce(children ...*Traversal) *Traversal {
	return t.add(OpCoalesce, traversalArgs(children)...)
}

// Union yields the results of every child traversal, in child order.
func (t *Traversal) Union(children ...*Traversal) *Traversal {
	return t.add(OpUnion, traversalArgs(children)...)
}

// Repeat loops the child traversal; times() or until() bound the loop and
// emit() exposes intermediate values.
func (t *Traversal) Repeat(child *Traversal) *Traversal {
	return t.add(OpRepeat, child.bc)
}

// Times bounds the preceding repeat() to n iterations.
func (t *Traversal) Times(n int) *Traversal {
	return t.add(OpTimes, n)
}

// Emit lets repeat() emit traversers each iteration, optionally only those
// matching the child traversal.
func (t *Traversal) Emit(children ...*Traversal) *Traversal {
	return t.add(OpEmit, traversalArgs(children)...)
}

// Until stops the preceding repeat() once the child traversal yields a
// result.
func (t *Traversal) Until(child *Traversal) *Traversal {
	return t.add(OpUntil, child.bc)
}

// GroupCount counts occurrences of each value; by() selects the grouping
// key.
func (t *Traversal) GroupCount() *Traversal {
	return t.add(OpGroupCount)
}

// Aggregate stores the current values into the named side effect.
func (t *Traversal) Aggregate(key string) *Traversal {
	return t.add(OpAggregate, key)
}

// Cap ends the stream with the value of the named side effect.
func (t *Traversal) Cap(key string) *Traversal {
	return t.add(OpCap, key)
}

// From selects the tail of an addE() edge: an as() label, a child
// traversal, or a vertex value.
func (t *Traversal) From(target any) *Traversal {
	return t.add(OpFrom, unwrapArg(target))
}

// To selects the head of an addE() edge.
func (t *Traversal) To(target any) *Traversal {
	return t.add(OpTo, unwrapArg(target))
}

// Project maps the current value to a map with the given keys; one by()
// modulator per key supplies the values.
func (t *Traversal) Project(keys ...string) *Traversal {
	return t.add(OpProject, stringArgs(keys)...)
}

// Map transforms each traverser with the first result of the child
// traversal.
func (t *Traversal) Map(child *Traversal) *Traversal {
	return t.add(OpMap, child.bc)
}

// Identity passes traversers through unchanged.
func (t *Traversal) Identity() *Traversal {
	return t.add(OpIdentity)
}

// unwrapArg records a nested traversal as its bytecode so recordings stay
// self-contained.
func unwrapArg(arg any) any {
	if child, ok := arg.(*Traversal); ok {
		return child.bc
	}
	return arg
}

func unwrapArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = unwrapArg(a)
	}
	return out
}

func traversalArgs(children []*Traversal) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c.bc
	}
	return out
}
