package translate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wander-lang/wander/bytecode"
)

type recordedSource struct {
	ops []string
}

type recordedTraversal struct {
	anonymous bool
	ops       []string
}

// recordingApplier captures applications as strings so tests can assert on
// exactly what the step translator drove, in what order.
type recordingApplier struct {
	failStep string
}

var _ Applier[*recordedSource, *recordedTraversal] = (*recordingApplier)(nil)

func (a *recordingApplier) ApplySource(src *recordedSource, op string, args []any) (*recordedSource, error) {
	ops := append(append([]string(nil), src.ops...), formatApplication(op, args))
	return &recordedSource{ops: ops}, nil
}

func (a *recordingApplier) Spawn(src *recordedSource) *recordedTraversal {
	return &recordedTraversal{ops: append([]string(nil), src.ops...)}
}

func (a *recordingApplier) SpawnAnonymous() *recordedTraversal {
	return &recordedTraversal{anonymous: true}
}

func (a *recordingApplier) ApplyStep(t *recordedTraversal, op string, args []any) (*recordedTraversal, error) {
	if op == a.failStep {
		return nil, &Error{Kind: ErrUnsupportedOperation, Message: "no such step"}
	}
	ops := append(append([]string(nil), t.ops...), formatApplication(op, args))
	return &recordedTraversal{anonymous: t.anonymous, ops: ops}, nil
}

func formatApplication(op string, args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if child, ok := arg.(*recordedTraversal); ok {
			parts[i] = "anon{" + strings.Join(child.ops, " ") + "}"
			continue
		}
		parts[i] = fmt.Sprintf("%v", arg)
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(parts, " "))
}

func newRecordingStep() *Step[*recordedSource, *recordedTraversal] {
	return NewStep[*recordedSource, *recordedTraversal]("recorder", &recordedSource{}, &recordingApplier{})
}

func TestStepScenario(t *testing.T) {
	tr := newRecordingStep()
	got, err := tr.Translate(scenarioBytecode())
	require.NoError(t, err)

	// Equivalent to applying source.V().has("name","marko").values("age")
	// by hand against the same applier.
	require.Equal(t, []string{"V()", "has(name marko)", "values(age)"}, got.ops)
	require.False(t, got.anonymous)
}

func TestStepContract(t *testing.T) {
	src := &recordedSource{}
	tr := NewStep[*recordedSource, *recordedTraversal]("recorder", src, &recordingApplier{})
	require.Same(t, src, tr.TraversalSource())
	require.Equal(t, "recorder", tr.TargetLanguage())

	var _ Translator[*recordedSource, *recordedTraversal] = tr
}

func TestStepOrderPreservation(t *testing.T) {
	bc := bytecode.New()
	bc.AddSource("withSideEffect", "a", 1)
	bc.AddSource("with", "b", 2)
	bc.AddStep("V")
	bc.AddStep("out", "knows")
	bc.AddStep("count")

	got, err := newRecordingStep().Translate(bc)
	require.NoError(t, err)
	require.Equal(t, []string{
		"withSideEffect(a 1)",
		"with(b 2)",
		"V()",
		"out(knows)",
		"count()",
	}, got.ops)
}

func TestStepWithSourceConsumed(t *testing.T) {
	bc := bytecode.New()
	bc.AddSource(bytecode.OpWithSource, "x")
	bc.AddSource("with", "b", 2)
	bc.AddStep("V")

	got, err := newRecordingStep().Translate(bc)
	require.NoError(t, err)
	require.Equal(t, []string{"with(b 2)", "V()"}, got.ops)
}

func TestStepNestedBytecode(t *testing.T) {
	child := bytecode.New()
	child.AddStep("out", "knows")
	child.AddStep("count")

	bc := bytecode.New()
	bc.AddStep("V")
	bc.AddStep("where", child)

	got, err := newRecordingStep().Translate(bc)
	require.NoError(t, err)
	require.Equal(t, []string{"V()", "where(anon{out(knows) count()})"}, got.ops)
}

func TestStepBindingSubstitution(t *testing.T) {
	bc := bytecode.New()
	bc.AddStep("has", "name", bytecode.Bind("n", "marko"))

	got, err := newRecordingStep().Translate(bc)
	require.NoError(t, err)
	require.Equal(t, []string{"has(name marko)"}, got.ops)
}

func TestStepApplierFailure(t *testing.T) {
	tr := NewStep[*recordedSource, *recordedTraversal](
		"recorder", &recordedSource{}, &recordingApplier{failStep: "has"})

	_, err := tr.Translate(scenarioBytecode())
	require.Error(t, err)
	require.True(t, IsUnsupportedOperation(err))
	require.Contains(t, err.Error(), "step instruction 1 (has)")
}

func TestStepNestedSourcesMalformed(t *testing.T) {
	child := bytecode.New()
	child.AddSource("withSideEffect", "x", 1)
	child.AddStep("out")

	bc := bytecode.New()
	bc.AddStep("where", child)

	_, err := newRecordingStep().Translate(bc)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))
}

func TestStepDoesNotMutateInput(t *testing.T) {
	bc := scenarioBytecode()
	snapshot := bc.Clone()

	_, err := newRecordingStep().Translate(bc)
	require.NoError(t, err)
	require.True(t, bc.Equal(snapshot))
}

func TestStepMalformedInput(t *testing.T) {
	_, err := newRecordingStep().Translate(nil)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))

	bad := bytecode.New()
	bad.AddStep("")
	_, err = newRecordingStep().Translate(bad)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))
}
