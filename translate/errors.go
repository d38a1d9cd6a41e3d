package translate

import (
	"errors"
	"fmt"
)

// Kind categorizes a translation failure.
type Kind int

const (
	// ErrUnsupportedOperation indicates an instruction whose operation name
	// has no mapping in the target language or engine.
	ErrUnsupportedOperation Kind = iota
	// ErrUnsupportedArgument indicates an argument whose runtime type has no
	// rendering or adaptation rule.
	ErrUnsupportedArgument
	// ErrMalformedBytecode indicates structurally invalid input. Translation
	// aborts rather than producing a partial result.
	ErrMalformedBytecode
)

func (k Kind) String() string {
	switch k {
	case ErrUnsupportedOperation:
		return "unsupported operation"
	case ErrUnsupportedArgument:
		return "unsupported argument"
	case ErrMalformedBytecode:
		return "malformed bytecode"
	default:
		return "translation error"
	}
}

// Error is a translation failure. Op and Arg identify the offending
// instruction operation and argument value when known.
type Error struct {
	Kind    Kind
	Op      string
	Arg     any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf builds a translation failure of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsUnsupportedOperation reports whether err is a translation failure for
// an unknown operation name.
func IsUnsupportedOperation(err error) bool {
	return hasKind(err, ErrUnsupportedOperation)
}

// IsUnsupportedArgument reports whether err is a translation failure for an
// argument type with no rendering or adaptation rule.
func IsUnsupportedArgument(err error) bool {
	return hasKind(err, ErrUnsupportedArgument)
}

// IsMalformedBytecode reports whether err is a translation failure for
// structurally invalid input.
func IsMalformedBytecode(err error) bool {
	return hasKind(err, ErrMalformedBytecode)
}

func hasKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}
