package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilar(t *testing.T) {
	ops := []string{"has", "hasLabel", "hasId", "out", "outE", "values", "valueMap", "repeat"}

	require.Equal(t, []string{"has"}, Similar("haz", ops))
	require.Equal(t, []string{"values"}, Similar("value", ops))
	require.Equal(t, []string{"out", "outE"}, Similar("out2", ops))
	require.Empty(t, Similar("aggregate", ops))
	require.Empty(t, Similar("", ops))
	require.Empty(t, Similar("has", nil))
}

func TestSimilarExactMatchSkipped(t *testing.T) {
	require.Empty(t, Similar("out", []string{"out"}))
	require.Equal(t, []string{"outE"}, Similar("OUT", []string{"out", "outE"}))
}

func TestSimilarCapsResults(t *testing.T) {
	got := Similar("steps", []string{"step1", "step2", "step3", "step4"})
	require.Len(t, got, 3)
	require.Equal(t, []string{"step1", "step2", "step3"}, got)
}

func TestHint(t *testing.T) {
	require.Equal(t, "", Hint(nil))
	require.Equal(t, `did you mean "has"?`, Hint([]string{"has"}))
	require.Equal(t, `did you mean one of "has", "hasId"?`, Hint([]string{"has", "hasId"}))
}
