package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceDefaults(t *testing.T) {
	g := New()
	s := g.Traversal()

	require.Same(t, g, s.Graph())
	opts := s.Options()
	require.Equal(t, int64(0), opts.EvaluationTimeout)
	require.Equal(t, 0, opts.MaxTraversers)
	require.Equal(t, 100, opts.MaxRepeatLoops)
}

func TestSourceWithDecodesWeakly(t *testing.T) {
	g := New()

	s, err := g.Traversal().With("evaluationTimeout", "500")
	require.NoError(t, err)
	require.Equal(t, int64(500), s.Options().EvaluationTimeout)

	s, err = s.With("maxTraversers", 10.0)
	require.NoError(t, err)
	require.Equal(t, 10, s.Options().MaxTraversers)
	require.Equal(t, int64(500), s.Options().EvaluationTimeout)
}

func TestSourceWithRejectsBadValues(t *testing.T) {
	g := New()

	_, err := g.Traversal().With("evaluationTimeout", "soon")
	require.ErrorContains(t, err, "invalid evaluation option")

	_, err = g.Traversal().With("maxRepeatLoops", -1)
	require.ErrorContains(t, err, "must not be negative")
}

func TestSourceWithUnknownKeyIsCarried(t *testing.T) {
	g := New()

	s, err := g.Traversal().With("materializeProperties", "tokens")
	require.NoError(t, err)
	require.Equal(t, 100, s.Options().MaxRepeatLoops)
}

func TestSourceConfigurationIsImmutable(t *testing.T) {
	g := New()
	base := g.Traversal()

	derived := base.WithSideEffect("x", 1)
	_, ok := base.SideEffect("x")
	require.False(t, ok)

	list, ok := derived.SideEffect("x")
	require.True(t, ok)
	require.Equal(t, []any{1}, list)
}

func TestSourceSideEffectListsAreCopied(t *testing.T) {
	g := New()
	seed := []any{"a", "b"}

	s := g.Traversal().WithSideEffect("x", seed)
	seed[0] = "mutated"

	list, _ := s.SideEffect("x")
	require.Equal(t, []any{"a", "b"}, list)

	list[1] = "mutated"
	again, _ := s.SideEffect("x")
	require.Equal(t, []any{"a", "b"}, again)
}

func TestSourceSideEffectScalarBecomesList(t *testing.T) {
	g := New()

	s := g.Traversal().WithSideEffect("x", 42)
	list, ok := s.SideEffect("x")
	require.True(t, ok)
	require.Equal(t, []any{42}, list)
}
