package bytecode

import (
	"fmt"
	"reflect"
	"strings"
)

// OpWithSource is the reserved source operation that binds the traversal
// source symbol for a recording. Script translators consume it to rebind
// the root symbol instead of rendering a call; step translators accept and
// ignore it. If present it must be the first source instruction and carry
// exactly one string argument.
const OpWithSource = "withSource"

// Bytecode is an ordered recording of source instructions followed by step
// instructions. The zero value is usable; New is provided for symmetry
// with the rest of the module.
type Bytecode struct {
	sources []Instruction
	steps   []Instruction
}

// New returns an empty recording.
func New() *Bytecode {
	return &Bytecode{}
}

// AddSource appends a source instruction (traversal-source configuration).
func (b *Bytecode) AddSource(operation string, args ...any) {
	b.sources = append(b.sources, NewInstruction(operation, args...))
}

// AddStep appends a step instruction (a traversal step application).
func (b *Bytecode) AddStep(operation string, args ...any) {
	b.steps = append(b.steps, NewInstruction(operation, args...))
}

// SourceCount returns the number of source instructions.
func (b *Bytecode) SourceCount() int {
	return len(b.sources)
}

// SourceAt returns the source instruction at the given index.
func (b *Bytecode) SourceAt(index int) Instruction {
	return b.sources[index]
}

// StepCount returns the number of step instructions.
func (b *Bytecode) StepCount() int {
	return len(b.steps)
}

// StepAt returns the step instruction at the given index.
func (b *Bytecode) StepAt(index int) Instruction {
	return b.steps[index]
}

// IsEmpty returns true if the recording holds no instructions at all.
func (b *Bytecode) IsEmpty() bool {
	return len(b.sources) == 0 && len(b.steps) == 0
}

// Clone returns a recording with copied instruction lists. Argument values
// are shared: they are treated as immutable throughout the module.
func (b *Bytecode) Clone() *Bytecode {
	return &Bytecode{
		sources: copyInstructions(b.sources),
		steps:   copyInstructions(b.steps),
	}
}

// Equal reports structural equality: same instructions, same operations,
// same argument values, in the same order. Nested *Bytecode arguments are
// compared structurally as well.
func (b *Bytecode) Equal(other *Bytecode) bool {
	if other == nil {
		return false
	}
	return equalInstructions(b.sources, other.sources) &&
		equalInstructions(b.steps, other.steps)
}

// String returns a compact debug form: [[sources], [steps]].
func (b *Bytecode) String() string {
	var sb strings.Builder
	sb.WriteString("[[")
	for i, in := range b.sources {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String())
	}
	sb.WriteString("], [")
	for i, in := range b.steps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String())
	}
	sb.WriteString("]]")
	return sb.String()
}

// Instruction is one operation application: a name plus an ordered
// argument list. Instructions are value types; Args returns a copy.
type Instruction struct {
	operation string
	args      []any
}

// NewInstruction returns an instruction with the given operation and
// arguments. The argument slice is copied.
func NewInstruction(operation string, args ...any) Instruction {
	return Instruction{operation: operation, args: copyArgs(args)}
}

// Operation returns the operation name.
func (in Instruction) Operation() string {
	return in.operation
}

// ArgCount returns the number of arguments.
func (in Instruction) ArgCount() int {
	return len(in.args)
}

// ArgAt returns the argument at the given index.
func (in Instruction) ArgAt(index int) any {
	return in.args[index]
}

// Args returns a copy of the argument list.
func (in Instruction) Args() []any {
	return copyArgs(in.args)
}

// String returns a debug form like has("name", "marko").
func (in Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.operation)
	sb.WriteByte('(')
	for i, arg := range in.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatArg(arg))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Binding is a named value. Script translators render the bare key (a
// script-side variable reference); step translation substitutes the value.
type Binding struct {
	key   string
	value any
}

// Bind returns a Binding associating key with value.
func Bind(key string, value any) Binding {
	return Binding{key: key, value: value}
}

// Key returns the binding's variable name.
func (b Binding) Key() string {
	return b.key
}

// Value returns the bound value.
func (b Binding) Value() any {
	return b.value
}

func (b Binding) String() string {
	return fmt.Sprintf("%s=%s", b.key, formatArg(b.value))
}

func copyInstructions(src []Instruction) []Instruction {
	if src == nil {
		return nil
	}
	dst := make([]Instruction, len(src))
	copy(dst, src)
	return dst
}

func copyArgs(src []any) []any {
	if src == nil {
		return nil
	}
	dst := make([]any, len(src))
	copy(dst, src)
	return dst
}

func equalInstructions(a, b []Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].operation != b[i].operation {
			return false
		}
		if len(a[i].args) != len(b[i].args) {
			return false
		}
		for j := range a[i].args {
			if !equalArg(a[i].args[j], b[i].args[j]) {
				return false
			}
		}
	}
	return true
}

func equalArg(a, b any) bool {
	if na, ok := a.(*Bytecode); ok {
		nb, ok := b.(*Bytecode)
		if !ok {
			return false
		}
		if na == nil || nb == nil {
			return na == nb
		}
		return na.Equal(nb)
	}
	return reflect.DeepEqual(a, b)
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	case *Bytecode:
		if v == nil {
			return "<nil bytecode>"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
