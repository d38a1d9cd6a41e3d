package translate

import (
	"errors"
	"fmt"

	"github.com/wander-lang/wander/bytecode"
)

// Applier is the execution-engine surface the step translator drives. An
// engine applies source configuration to sources and steps to traversals;
// argument adaptation is its concern, and failures surface as translation
// errors.
type Applier[S, T any] interface {
	// ApplySource applies a source configuration operation.
	ApplySource(source S, op string, args []any) (S, error)

	// Spawn starts an empty traversal bound to the source.
	Spawn(source S) T

	// SpawnAnonymous starts an unbound traversal for nested arguments.
	SpawnAnonymous() T

	// ApplyStep applies a step operation to a traversal.
	ApplyStep(t T, op string, args []any) (T, error)
}

// Step translates bytecode into an executable traversal by applying each
// instruction against a live source through an Applier, bypassing any
// textual form. Application during translation constructs the traversal
// only; nothing touches the graph until the result is iterated, so a
// mid-chain failure aborts with no effects to undo.
type Step[S, T any] struct {
	language string
	source   S
	applier  Applier[S, T]
}

// NewStep returns a step translator rooted at the given live source.
func NewStep[S, T any](language string, source S, applier Applier[S, T]) *Step[S, T] {
	return &Step[S, T]{
		language: language,
		source:   source,
		applier:  applier,
	}
}

func (s *Step[S, T]) TraversalSource() S {
	return s.source
}

func (s *Step[S, T]) TargetLanguage() string {
	return s.language
}

// Translate applies source instructions to the source, spawns a traversal,
// then applies step instructions in recorded order. A leading withSource
// instruction names a script symbol; the live source is already bound, so
// it is consumed without effect. Nested bytecode arguments become unbound
// traversals before the enclosing operation is applied.
func (s *Step[S, T]) Translate(bc *bytecode.Bytecode) (T, error) {
	var zero T
	if bc == nil {
		return zero, Errorf(ErrMalformedBytecode, "nil bytecode")
	}
	if err := bc.Validate(); err != nil {
		return zero, &Error{Kind: ErrMalformedBytecode, Message: "invalid recording", Cause: err}
	}

	source := s.source
	for i := 0; i < bc.SourceCount(); i++ {
		in := bc.SourceAt(i)
		if in.Operation() == bytecode.OpWithSource {
			continue
		}
		args, err := s.resolveArgs(in, "source", i)
		if err != nil {
			return zero, err
		}
		next, err := s.applier.ApplySource(source, in.Operation(), args)
		if err != nil {
			return zero, applyError(err, "source", i, in.Operation())
		}
		source = next
	}

	return s.applySteps(s.applier.Spawn(source), bc)
}

func (s *Step[S, T]) applySteps(t T, bc *bytecode.Bytecode) (T, error) {
	var zero T
	for i := 0; i < bc.StepCount(); i++ {
		in := bc.StepAt(i)
		args, err := s.resolveArgs(in, "step", i)
		if err != nil {
			return zero, err
		}
		next, err := s.applier.ApplyStep(t, in.Operation(), args)
		if err != nil {
			return zero, applyError(err, "step", i, in.Operation())
		}
		t = next
	}
	return t, nil
}

func (s *Step[S, T]) resolveArgs(in bytecode.Instruction, section string, index int) ([]any, error) {
	if in.ArgCount() == 0 {
		return nil, nil
	}
	args := make([]any, in.ArgCount())
	for j := 0; j < in.ArgCount(); j++ {
		resolved, err := s.resolveArg(in.ArgAt(j))
		if err != nil {
			return nil, argError(err, section, index, in.Operation(), j)
		}
		args[j] = resolved
	}
	return args, nil
}

// resolveArg substitutes bound values and translates nested bytecode into
// anonymous traversals. All other values pass through untouched; adapting
// them is the applier's concern.
func (s *Step[S, T]) resolveArg(arg any) (any, error) {
	switch v := arg.(type) {
	case bytecode.Binding:
		return s.resolveArg(v.Value())
	case *bytecode.Bytecode:
		return s.translateAnonymous(v)
	}
	return arg, nil
}

func (s *Step[S, T]) translateAnonymous(bc *bytecode.Bytecode) (T, error) {
	var zero T
	if bc.SourceCount() > 0 {
		return zero, Errorf(ErrMalformedBytecode, "nested bytecode must not carry source instructions")
	}
	return s.applySteps(s.applier.SpawnAnonymous(), bc)
}

// applyError adds instruction coordinates to an applier failure, keeping
// the translation error kind when the applier reported one.
func applyError(err error, section string, index int, op string) error {
	var te *Error
	if errors.As(err, &te) {
		return &Error{
			Kind:    te.Kind,
			Op:      op,
			Arg:     te.Arg,
			Message: fmt.Sprintf("%s instruction %d (%s): %s", section, index, op, te.Message),
			Cause:   te.Cause,
		}
	}
	return fmt.Errorf("%s instruction %d (%s): %w", section, index, op, err)
}
