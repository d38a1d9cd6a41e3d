package translate

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wander-lang/wander/bytecode"
	"github.com/wander-lang/wander/traversal"
)

func scenarioBytecode() *bytecode.Bytecode {
	bc := bytecode.New()
	bc.AddSource(bytecode.OpWithSource, "x")
	bc.AddStep("V")
	bc.AddStep("has", "name", "marko")
	bc.AddStep("values", "age")
	return bc
}

func TestScriptScenario(t *testing.T) {
	tr := NewScript("g")
	out, err := tr.Translate(scenarioBytecode())
	require.NoError(t, err)
	require.Equal(t, `x.V().has("name","marko").values("age")`, out)

	// The withSource alias rebinds the root for this recording only; the
	// translator's own source is untouched.
	require.Equal(t, "g", tr.TraversalSource())
}

func TestScriptDefaultRoot(t *testing.T) {
	bc := bytecode.New()
	bc.AddStep("V")
	bc.AddStep("count")

	out, err := NewScript("g").Translate(bc)
	require.NoError(t, err)
	require.Equal(t, "g.V().count()", out)
}

func TestScriptTargetLanguage(t *testing.T) {
	require.Equal(t, "wander-lang", NewScript("g").TargetLanguage())
	require.Equal(t, "wander-python", NewScript("g", WithSyntax(PythonSyntax())).TargetLanguage())
}

func TestScriptDoesNotMutateInput(t *testing.T) {
	child := bytecode.New()
	child.AddStep("out", "knows")

	bc := bytecode.New()
	bc.AddSource("withSideEffect", "seen", []any{1, 2})
	bc.AddStep("V")
	bc.AddStep("where", child)
	bc.AddStep("has", "age", traversal.Gt(29))

	snapshot := bc.Clone()
	_, err := NewScript("g").Translate(bc)
	require.NoError(t, err)
	require.True(t, bc.Equal(snapshot))
}

func TestScriptDeterministic(t *testing.T) {
	bc := bytecode.New()
	bc.AddStep("inject", map[string]any{"b": 2, "a": 1, "c": 3})
	bc.AddStep("inject", map[any]any{5: "e", 1: "a", 3: "c"})

	tr := NewScript("g")
	first, err := tr.Translate(bc)
	require.NoError(t, err)
	require.Equal(t, `g.inject({"a":1,"b":2,"c":3}).inject({1:"a",3:"c",5:"e"})`, first)

	for i := 0; i < 50; i++ {
		again, err := tr.Translate(bc)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestScriptOrderPreservation(t *testing.T) {
	bc := bytecode.New()
	bc.AddSource("withSideEffect", "a", 1)
	bc.AddSource("with", "b", 2)
	bc.AddStep("V")
	bc.AddStep("out", "knows")
	bc.AddStep("count")

	out, err := NewScript("g").Translate(bc)
	require.NoError(t, err)
	require.Equal(t, `g.withSideEffect("a",1).with("b",2).V().out("knows").count()`, out)
}

type unrenderable struct {
	payload string
}

func TestScriptHandledShortCircuit(t *testing.T) {
	hook := func(value any) Result {
		if v, ok := value.(unrenderable); ok {
			return Handled(fmt.Sprintf("custom(%s)", v.payload))
		}
		return Continue()
	}

	bc := bytecode.New()
	bc.AddStep("inject", unrenderable{payload: "p1"})

	out, err := NewScript("g", WithTypeTranslator(hook)).Translate(bc)
	require.NoError(t, err)
	require.Equal(t, "g.inject(custom(p1))", out)

	// Without the hook the same value has no rendering rule.
	_, err = NewScript("g").Translate(bc)
	require.Error(t, err)
	require.True(t, IsUnsupportedArgument(err))
}

func TestScriptHandledInsideCollection(t *testing.T) {
	hook := func(value any) Result {
		if _, ok := value.(unrenderable); ok {
			return Handled("X")
		}
		return Continue()
	}

	bc := bytecode.New()
	bc.AddStep("inject", []any{1, unrenderable{}, 3})

	out, err := NewScript("g", WithTypeTranslator(hook)).Translate(bc)
	require.NoError(t, err)
	require.Equal(t, "g.inject([1,X,3])", out)
}

func TestScriptSubstitute(t *testing.T) {
	hook := func(value any) Result {
		if v, ok := value.(unrenderable); ok {
			return Substitute(v.payload)
		}
		return Continue()
	}

	bc := bytecode.New()
	bc.AddStep("inject", unrenderable{payload: "swapped"})

	out, err := NewScript("g", WithTypeTranslator(hook)).Translate(bc)
	require.NoError(t, err)
	require.Equal(t, `g.inject("swapped")`, out)
}

func TestScriptNestedBytecode(t *testing.T) {
	child := bytecode.New()
	child.AddStep("out", "knows")

	bc := bytecode.New()
	bc.AddStep("V")
	bc.AddStep("where", child)

	out, err := NewScript("g").Translate(bc)
	require.NoError(t, err)
	require.Equal(t, `g.V().where(__.out("knows"))`, out)
}

func TestScriptNestedBytecodeWithSourcesIsMalformed(t *testing.T) {
	child := bytecode.New()
	child.AddSource("withSideEffect", "x", 1)
	child.AddStep("out")

	bc := bytecode.New()
	bc.AddStep("where", child)

	_, err := NewScript("g").Translate(bc)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))
}

func TestScriptUnknownOperation(t *testing.T) {
	bc := bytecode.New()
	bc.AddStep("V")
	bc.AddStep("explode")

	_, err := NewScript("g").Translate(bc)
	require.Error(t, err)
	require.True(t, IsUnsupportedOperation(err))
	require.Contains(t, err.Error(), `"explode"`)

	var te *Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, "explode", te.Op)
}

func TestScriptMalformedInput(t *testing.T) {
	bc := bytecode.New()
	bc.AddStep("")
	_, err := NewScript("g").Translate(bc)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))

	_, err = NewScript("g").Translate(nil)
	require.Error(t, err)
	require.True(t, IsMalformedBytecode(err))
}

func TestScriptLiterals(t *testing.T) {
	id := uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	when := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "nil"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"string", "marko", `"marko"`},
		{"string escaped", `say "hi"`, `"say \"hi\""`},
		{"int", 32, "32"},
		{"int32", int32(-7), "-7"},
		{"int64", int64(9000000000), "9000000000"},
		{"float", 2.5, "2.5"},
		{"float integral", 29.0, "29.0"},
		{"float32", float32(1.5), "1.5"},
		{"uuid", id, `UUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")`},
		{"time", when, `datetime("2023-05-01T12:00:00Z")`},
		{"binding", bytecode.Bind("n", "marko"), "n"},
		{"enum", traversal.OrderDesc, "Order.desc"},
		{"enum T", traversal.TLabel, "T.label"},
		{"predicate", traversal.Within("a", "b"), `within("a","b")`},
		{"predicate composed", traversal.Gt(1).And(traversal.Lt(10)), "and(gt(1),lt(10))"},
		{"list", []any{1, "a", true}, `[1,"a",true]`},
		{"empty list", []any{}, "[]"},
		{"string map", map[string]any{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{"any map", map[any]any{2: "b", 1: "a"}, `{1:"a",2:"b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := bytecode.New()
			bc.AddStep("inject", tt.value)
			out, err := NewScript("g").Translate(bc)
			require.NoError(t, err)
			require.Equal(t, "g.inject("+tt.want+")", out)
		})
	}
}

func TestScriptPythonSyntax(t *testing.T) {
	tr := NewScript("g", WithSyntax(PythonSyntax()))

	out, err := tr.Translate(scenarioBytecode())
	require.NoError(t, err)
	require.Equal(t, "x.V().has('name', 'marko').values('age')", out)

	bc := bytecode.New()
	bc.AddSource("with", "evaluationTimeout", 500)
	bc.AddStep("V")
	bc.AddStep("as", "a")
	bc.AddStep("has", "age", traversal.Gt(20).And(traversal.Lt(30)))
	bc.AddStep("addE", "knows")
	bc.AddStep("from", "a")
	bc.AddStep("inject", true, nil)

	out, err = tr.Translate(bc)
	require.NoError(t, err)
	require.Equal(t,
		"g.with_('evaluationTimeout', 500).V().as_('a').has('age', P.and_(P.gt(20), P.lt(30))).addE('knows').from_('a').inject(True, None)",
		out)
}

func TestScriptConcurrentUse(t *testing.T) {
	tr := NewScript("g")
	results := make([]string, 8)
	errs := make([]error, 8)

	var wg sync.WaitGroup
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bc := bytecode.New()
			bc.AddStep("inject", n)
			results[n], errs[n] = tr.Translate(bc)
		}(i)
	}
	wg.Wait()

	for i := 0; i < len(results); i++ {
		require.NoError(t, errs[i])
		require.Equal(t, fmt.Sprintf("g.inject(%d)", i), results[i])
	}
}
