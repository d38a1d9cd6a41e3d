package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/wander-lang/wander/bytecode"
)

func TestDisassemble(t *testing.T) {
	nested := bytecode.New()
	nested.AddStep("out", "knows")

	bc := bytecode.New()
	bc.AddSource("withSideEffect", "x", 1)
	bc.AddStep("where", nested)
	bc.AddStep("has", "name", bytecode.Bind("n", "marko"))
	bc.AddStep("inject", nil)

	rows, err := Disassemble(bc)
	require.NoError(t, err)
	require.Equal(t, []Row{
		{Offset: 0, Section: "source", Operation: "withSideEffect", Arguments: `"x", 1`},
		{Offset: 0, Section: "step", Operation: "where", Arguments: `[[], [out("knows")]]`},
		{Offset: 1, Section: "step", Operation: "has", Arguments: `"name", n="marko"`},
		{Offset: 2, Section: "step", Operation: "inject", Arguments: "nil"},
	}, rows)
}

func TestDisassembleNil(t *testing.T) {
	rows, err := Disassemble(nil)
	require.Error(t, err)
	require.Nil(t, rows)
	require.Error(t, Fprint(&bytes.Buffer{}, nil))
}

func TestDisassembleEmpty(t *testing.T) {
	rows, err := Disassemble(bytecode.New())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestPrint(t *testing.T) {
	// Disable colors for consistent test output
	color.NoColor = true
	defer func() { color.NoColor = false }()

	bc := bytecode.New()
	bc.AddSource("withSideEffect", "x", 1)
	bc.AddStep("V")
	bc.AddStep("has", "name", "marko")
	bc.AddStep("limit", 2)

	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, bc))

	expected := strings.TrimSpace(`
+--------+---------+----------------+-----------------+
| OFFSET | SECTION |   OPERATION    |    ARGUMENTS    |
+--------+---------+----------------+-----------------+
|      0 | source  | withSideEffect | "x", 1          |
|      0 | step    | V              |                 |
|      1 | step    | has            | "name", "marko" |
|      2 | step    | limit          | 2               |
+--------+---------+----------------+-----------------+
`)
	require.Equal(t, expected+"\n", buf.String())
}
