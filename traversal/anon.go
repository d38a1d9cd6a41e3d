package traversal

import (
	"github.com/wander-lang/wander/bytecode"
)

// Anonymous traversal starts. These begin an unbound traversal for use as
// an argument to steps like where(), union(), repeat(), and by(). Each
// function records the same instruction as the Traversal method of the
// same name.

func newAnon(op string, args ...any) *Traversal {
	t := &Traversal{bc: bytecode.New()}
	return t.add(op, args...)
}

func V(ids ...any) *Traversal           { return newAnon(OpV, unwrapArgs(ids)...) }
func Out(labels ...string) *Traversal   { return newAnon(OpOut, stringArgs(labels)...) }
func In(labels ...string) *Traversal    { return newAnon(OpIn, stringArgs(labels)...) }
func Both(labels ...string) *Traversal  { return newAnon(OpBoth, stringArgs(labels)...) }
func OutE(labels ...string) *Traversal  { return newAnon(OpOutE, stringArgs(labels)...) }
func InE(labels ...string) *Traversal   { return newAnon(OpInE, stringArgs(labels)...) }
func BothE(labels ...string) *Traversal { return newAnon(OpBothE, stringArgs(labels)...) }
func Has(args ...any) *Traversal        { return newAnon(OpHas, unwrapArgs(args)...) }
func HasLabel(labels ...string) *Traversal {
	return newAnon(OpHasLabel, stringArgs(labels)...)
}
func HasID(ids ...any) *Traversal     { return newAnon(OpHasID, unwrapArgs(ids)...) }
func Where(args ...any) *Traversal    { return newAnon(OpWhere, unwrapArgs(args)...) }
func Is(value any) *Traversal         { return newAnon(OpIs, unwrapArg(value)) }
func Not(child *Traversal) *Traversal { return newAnon(OpNot, child.bc) }
func And(children ...*Traversal) *Traversal {
	return newAnon(OpAnd, traversalArgs(children)...)
}
func Or(children ...*Traversal) *Traversal {
	return newAnon(OpOr, traversalArgs(children)...)
}
func Values(keys ...string) *Traversal   { return newAnon(OpValues, stringArgs(keys)...) }
func ValueMap(keys ...string) *Traversal { return newAnon(OpValueMap, stringArgs(keys)...) }
func ID() *Traversal                     { return newAnon(OpID) }
func Label() *Traversal                  { return newAnon(OpLabel) }
func Count() *Traversal                  { return newAnon(OpCount) }
func Sum() *Traversal                    { return newAnon(OpSum) }
func Min() *Traversal                    { return newAnon(OpMin) }
func Max() *Traversal                    { return newAnon(OpMax) }
func Mean() *Traversal                   { return newAnon(OpMean) }
func Fold() *Traversal                   { return newAnon(OpFold) }
func Unfold() *Traversal                 { return newAnon(OpUnfold) }
func Constant(value any) *Traversal      { return newAnon(OpConstant, unwrapArg(value)) }
func Select(args ...any) *Traversal      { return newAnon(OpSelect, unwrapArgs(args)...) }
func Path() *Traversal                   { return newAnon(OpPath) }
func Dedup() *Traversal                  { return newAnon(OpDedup) }
func Limit(n int) *Traversal             { return newAnon(OpLimit, n) }
func SimplePath() *Traversal             { return newAnon(OpSimplePath) }
func Identity() *Traversal               { return newAnon(OpIdentity) }
func Union(children ...*Traversal) *Traversal {
	return newAnon(OpUnion, traversalArgs(children)...)
}
func Coalesce(children ...*Traversal) *Traversal {
	return newAnon(OpCoalesce, traversalArgs(children)...)
}
func Repeat(child *Traversal) *Traversal { return newAnon(OpRepeat, child.bc) }
func AddV(labels ...string) *Traversal   { return newAnon(OpAddV, stringArgs(labels)...) }
func AddE(label string) *Traversal       { return newAnon(OpAddE, label) }
func Inject(values ...any) *Traversal    { return newAnon(OpInject, unwrapArgs(values)...) }
func Map(child *Traversal) *Traversal    { return newAnon(OpMap, child.bc) }
func Project(keys ...string) *Traversal  { return newAnon(OpProject, stringArgs(keys)...) }
func GroupCount() *Traversal             { return newAnon(OpGroupCount) }
func Aggregate(key string) *Traversal    { return newAnon(OpAggregate, key) }
func Cap(key string) *Traversal          { return newAnon(OpCap, key) }
