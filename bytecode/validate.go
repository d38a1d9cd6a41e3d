package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the recording for structural problems and reports all of
// them at once. It covers the container contract only: empty operation
// names, a misplaced or malformed withSource instruction, nil nested
// bytecode, and bindings with empty keys. Whether an operation or argument
// type is supported by a given target is a translation concern, not a
// structural one.
//
// Nested bytecode arguments are validated recursively. Cyclic recordings
// are caller error and are not detected.
func (b *Bytecode) Validate() error {
	var result *multierror.Error
	for i, in := range b.sources {
		where := fmt.Sprintf("source instruction %d", i)
		if in.operation == "" {
			result = multierror.Append(result, fmt.Errorf("%s: empty operation name", where))
			continue
		}
		if in.operation == OpWithSource {
			if i != 0 {
				result = multierror.Append(result, fmt.Errorf("%s: %s must be the first source instruction", where, OpWithSource))
			}
			if len(in.args) != 1 {
				result = multierror.Append(result, fmt.Errorf("%s: %s takes exactly one argument, got %d", where, OpWithSource, len(in.args)))
			} else if _, ok := in.args[0].(string); !ok {
				result = multierror.Append(result, fmt.Errorf("%s: %s argument must be a string, got %T", where, OpWithSource, in.args[0]))
			}
		}
		result = appendArgProblems(result, fmt.Sprintf("%s (%s)", where, in.operation), in.args)
	}
	for i, in := range b.steps {
		where := fmt.Sprintf("step instruction %d", i)
		if in.operation == "" {
			result = multierror.Append(result, fmt.Errorf("%s: empty operation name", where))
			continue
		}
		if in.operation == OpWithSource {
			result = multierror.Append(result, fmt.Errorf("%s: %s is a source instruction, not a step", where, OpWithSource))
		}
		result = appendArgProblems(result, fmt.Sprintf("%s (%s)", where, in.operation), in.args)
	}
	return result.ErrorOrNil()
}

func appendArgProblems(result *multierror.Error, where string, args []any) *multierror.Error {
	for j, arg := range args {
		switch v := arg.(type) {
		case *Bytecode:
			if v == nil {
				result = multierror.Append(result, fmt.Errorf("%s: argument %d is nil nested bytecode", where, j))
				continue
			}
			if err := v.Validate(); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: argument %d: %w", where, j, err))
			}
		case Binding:
			if v.key == "" {
				result = multierror.Append(result, fmt.Errorf("%s: argument %d is a binding with an empty key", where, j))
			}
			if nested, ok := v.value.(*Bytecode); ok {
				if nested == nil {
					result = multierror.Append(result, fmt.Errorf("%s: argument %d binds nil nested bytecode", where, j))
				} else if err := nested.Validate(); err != nil {
					result = multierror.Append(result, fmt.Errorf("%s: argument %d: %w", where, j, err))
				}
			}
		}
	}
	return result
}
