package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateOK(t *testing.T) {
	bc := New()
	bc.AddSource(OpWithSource, "x")
	bc.AddSource("withSideEffect", "seen", []any{})
	bc.AddStep("V")
	bc.AddStep("has", "name", Bind("n", "marko"))
	require.NoError(t, bc.Validate())
}

func TestValidateEmpty(t *testing.T) {
	require.NoError(t, New().Validate())
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Bytecode
		wantErr string
	}{
		{
			name: "empty source operation",
			build: func() *Bytecode {
				bc := New()
				bc.AddSource("", 1)
				return bc
			},
			wantErr: "source instruction 0: empty operation name",
		},
		{
			name: "empty step operation",
			build: func() *Bytecode {
				bc := New()
				bc.AddStep("")
				return bc
			},
			wantErr: "step instruction 0: empty operation name",
		},
		{
			name: "withSource not first",
			build: func() *Bytecode {
				bc := New()
				bc.AddSource("withSideEffect", "x", 1)
				bc.AddSource(OpWithSource, "g")
				return bc
			},
			wantErr: "withSource must be the first source instruction",
		},
		{
			name: "withSource arity",
			build: func() *Bytecode {
				bc := New()
				bc.AddSource(OpWithSource, "g", "h")
				return bc
			},
			wantErr: "withSource takes exactly one argument, got 2",
		},
		{
			name: "withSource argument type",
			build: func() *Bytecode {
				bc := New()
				bc.AddSource(OpWithSource, 42)
				return bc
			},
			wantErr: "withSource argument must be a string, got int",
		},
		{
			name: "withSource as step",
			build: func() *Bytecode {
				bc := New()
				bc.AddStep(OpWithSource, "g")
				return bc
			},
			wantErr: "withSource is a source instruction, not a step",
		},
		{
			name: "nil nested bytecode",
			build: func() *Bytecode {
				bc := New()
				bc.AddStep("where", (*Bytecode)(nil))
				return bc
			},
			wantErr: "argument 0 is nil nested bytecode",
		},
		{
			name: "binding with empty key",
			build: func() *Bytecode {
				bc := New()
				bc.AddStep("has", "name", Bind("", "marko"))
				return bc
			},
			wantErr: "argument 1 is a binding with an empty key",
		},
		{
			name: "invalid nested bytecode",
			build: func() *Bytecode {
				child := New()
				child.AddStep("")
				bc := New()
				bc.AddStep("union", child)
				return bc
			},
			wantErr: "step instruction 0 (union): argument 0: 1 error occurred",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	bc := New()
	bc.AddSource("withSideEffect", "x", 1)
	bc.AddSource(OpWithSource) // misplaced and missing its argument
	bc.AddStep("")
	bc.AddStep(OpWithSource, "g")
	err := bc.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 errors occurred")
}
