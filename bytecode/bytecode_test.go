package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordingOrder(t *testing.T) {
	bc := New()
	bc.AddSource("withSideEffect", "x", []any{1, 2})
	bc.AddSource("with", "evaluationTimeout", 500)
	bc.AddStep("V")
	bc.AddStep("has", "name", "marko")
	bc.AddStep("values", "age")

	require.Equal(t, 2, bc.SourceCount())
	require.Equal(t, 3, bc.StepCount())
	require.Equal(t, "withSideEffect", bc.SourceAt(0).Operation())
	require.Equal(t, "with", bc.SourceAt(1).Operation())
	require.Equal(t, "V", bc.StepAt(0).Operation())
	require.Equal(t, "has", bc.StepAt(1).Operation())
	require.Equal(t, "values", bc.StepAt(2).Operation())
}

func TestInstructionArgs(t *testing.T) {
	in := NewInstruction("has", "name", "marko")
	require.Equal(t, "has", in.Operation())
	require.Equal(t, 2, in.ArgCount())
	require.Equal(t, "name", in.ArgAt(0))
	require.Equal(t, "marko", in.ArgAt(1))

	// Args returns a copy: mutating it must not affect the instruction.
	args := in.Args()
	args[0] = "age"
	require.Equal(t, "name", in.ArgAt(0))
}

func TestInstructionArgIsolation(t *testing.T) {
	args := []any{"name", "marko"}
	bc := New()
	bc.AddStep("has", args...)
	args[1] = "vadas"
	require.Equal(t, "marko", bc.StepAt(0).ArgAt(1))
}

func TestIsEmpty(t *testing.T) {
	bc := New()
	require.True(t, bc.IsEmpty())
	bc.AddStep("V")
	require.False(t, bc.IsEmpty())
}

func TestClone(t *testing.T) {
	bc := New()
	bc.AddSource("withSideEffect", "x", 1)
	bc.AddStep("V")

	clone := bc.Clone()
	require.True(t, bc.Equal(clone))

	clone.AddStep("count")
	require.Equal(t, 1, bc.StepCount())
	require.Equal(t, 2, clone.StepCount())
	require.False(t, bc.Equal(clone))
}

func TestEqual(t *testing.T) {
	build := func() *Bytecode {
		child := New()
		child.AddStep("out", "knows")
		bc := New()
		bc.AddStep("V")
		bc.AddStep("where", child)
		return bc
	}
	a := build()
	b := build()
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.False(t, a.Equal(nil))

	b.AddStep("count")
	require.False(t, a.Equal(b))
}

func TestEqualComparesNestedBytecode(t *testing.T) {
	childA := New()
	childA.AddStep("out", "knows")
	childB := New()
	childB.AddStep("out", "created")

	a := New()
	a.AddStep("where", childA)
	b := New()
	b.AddStep("where", childB)
	require.False(t, a.Equal(b))

	childC := New()
	childC.AddStep("out", "knows")
	c := New()
	c.AddStep("where", childC)
	require.True(t, a.Equal(c))
}

func TestString(t *testing.T) {
	bc := New()
	bc.AddSource("withSideEffect", "x", 1)
	bc.AddStep("V")
	bc.AddStep("has", "name", "marko")
	require.Equal(t, `[[withSideEffect("x", 1)], [V(), has("name", "marko")]]`, bc.String())
}

func TestStringNested(t *testing.T) {
	child := New()
	child.AddStep("out")
	bc := New()
	bc.AddStep("where", child)
	require.Equal(t, `[[], [where([[], [out()]])]]`, bc.String())
}

func TestBinding(t *testing.T) {
	b := Bind("name", "marko")
	require.Equal(t, "name", b.Key())
	require.Equal(t, "marko", b.Value())
	require.Equal(t, `name="marko"`, b.String())
}
