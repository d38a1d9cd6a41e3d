package translate

import (
	"strconv"
	"strings"

	"github.com/wander-lang/wander/traversal"
)

// Syntax parameterizes script rendering for one target dialect: literal
// spellings, string quoting, enum qualification, collection delimiters, and
// the set of operations the dialect knows. A dialect is a Syntax value, not
// a new translator.
type Syntax struct {
	// Language is the identifier reported by TargetLanguage.
	Language string

	True  string
	False string
	Nil   string

	// QuoteString renders a string literal with dialect escaping.
	QuoteString func(s string) string

	// QualifyEnum renders a symbolic constant, e.g. "Order.desc".
	QualifyEnum func(enumType, name string) string

	// RenameOp maps an operation name to the dialect's method name. Nil
	// leaves names unchanged.
	RenameOp func(op string) string

	ListOpen    string
	ListClose   string
	MapOpen     string
	MapClose    string
	KeyValueSep string
	ItemSep     string

	// AnonPrefix roots a nested anonymous traversal expression.
	AnonPrefix string

	// PredicatePrefix qualifies predicate operators; "P." renders P.eq(5).
	PredicatePrefix string

	// Operations is the set of operation names the dialect renders. An
	// operation outside the set fails with ErrUnsupportedOperation.
	Operations map[string]struct{}
}

func (s Syntax) knows(op string) bool {
	_, ok := s.Operations[op]
	return ok
}

func (s Syntax) methodName(op string) string {
	if s.RenameOp == nil {
		return op
	}
	return s.RenameOp(op)
}

// KnownOperations returns the operation set of the traversal package, the
// default for new Syntax values.
func KnownOperations() map[string]struct{} {
	ops := make(map[string]struct{})
	for _, op := range traversal.SourceOperations() {
		ops[op] = struct{}{}
	}
	for _, op := range traversal.StepOperations() {
		ops[op] = struct{}{}
	}
	return ops
}

// DefaultSyntax returns the canonical wander dialect: method chaining with
// ".", double-quoted strings, compact argument lists, dotted enums.
func DefaultSyntax() Syntax {
	return Syntax{
		Language:    "wander-lang",
		True:        "true",
		False:       "false",
		Nil:         "nil",
		QuoteString: strconv.Quote,
		QualifyEnum: dottedEnum,
		ListOpen:    "[",
		ListClose:   "]",
		MapOpen:     "{",
		MapClose:    "}",
		KeyValueSep: ":",
		ItemSep:     ",",
		AnonPrefix:  "__",
		Operations:  KnownOperations(),
	}
}

// PythonSyntax returns a python-flavored dialect: True/None spellings,
// single-quoted strings, keyword-colliding operations suffixed with "_".
func PythonSyntax() Syntax {
	return Syntax{
		Language:        "wander-python",
		True:            "True",
		False:           "False",
		Nil:             "None",
		QuoteString:     pythonQuote,
		QualifyEnum:     dottedEnum,
		RenameOp:        pythonMethodName,
		ListOpen:        "[",
		ListClose:       "]",
		MapOpen:         "{",
		MapClose:        "}",
		KeyValueSep:     ": ",
		ItemSep:         ", ",
		AnonPrefix:      "__",
		PredicatePrefix: "P.",
		Operations:      KnownOperations(),
	}
}

func dottedEnum(enumType, name string) string {
	return enumType + "." + name
}

var pythonKeywords = map[string]bool{
	"and":  true,
	"as":   true,
	"from": true,
	"in":   true,
	"is":   true,
	"not":  true,
	"or":   true,
	"with": true,
}

func pythonMethodName(op string) string {
	if pythonKeywords[op] {
		return op + "_"
	}
	return op
}

func pythonQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
