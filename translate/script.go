package translate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/wander-lang/wander/bytecode"
	"github.com/wander-lang/wander/traversal"
)

// Script renders bytecode as a method-chained script in one target dialect.
// The rendering walk visits source instructions then step instructions in
// recorded order; each argument value passes through the installed
// TypeTranslator before the structural rules apply.
type Script struct {
	source string
	syntax Syntax
	hook   TypeTranslator
}

var _ ScriptTranslator = (*Script)(nil)

// ScriptOption configures a Script at construction.
type ScriptOption func(*Script)

// WithSyntax selects the target dialect. DefaultSyntax applies otherwise.
func WithSyntax(syntax Syntax) ScriptOption {
	return func(s *Script) {
		s.syntax = syntax
	}
}

// WithTypeTranslator installs the per-value rendering hook.
func WithTypeTranslator(hook TypeTranslator) ScriptOption {
	return func(s *Script) {
		if hook != nil {
			s.hook = hook
		}
	}
}

// NewScript returns a script translator rooted at the given source symbol.
func NewScript(source string, opts ...ScriptOption) *Script {
	s := &Script{
		source: source,
		syntax: DefaultSyntax(),
		hook:   Identity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Script) TraversalSource() string {
	return s.source
}

func (s *Script) TargetLanguage() string {
	return s.syntax.Language
}

// Translate renders the recording as a script string. A leading withSource
// instruction rebinds the root symbol in place of the translator's own; it
// is consumed, not rendered.
func (s *Script) Translate(bc *bytecode.Bytecode) (string, error) {
	if bc == nil {
		return "", Errorf(ErrMalformedBytecode, "nil bytecode")
	}
	if err := bc.Validate(); err != nil {
		return "", &Error{Kind: ErrMalformedBytecode, Message: "invalid recording", Cause: err}
	}

	root := s.source
	first := 0
	if bc.SourceCount() > 0 && bc.SourceAt(0).Operation() == bytecode.OpWithSource {
		root = bc.SourceAt(0).ArgAt(0).(string)
		first = 1
	}

	var sb strings.Builder
	sb.WriteString(root)
	for i := first; i < bc.SourceCount(); i++ {
		if err := s.writeCall(&sb, "source", i, bc.SourceAt(i)); err != nil {
			return "", err
		}
	}
	for i := 0; i < bc.StepCount(); i++ {
		if err := s.writeCall(&sb, "step", i, bc.StepAt(i)); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (s *Script) writeCall(sb *strings.Builder, section string, index int, in bytecode.Instruction) error {
	op := in.Operation()
	if !s.syntax.knows(op) {
		return &Error{
			Kind:    ErrUnsupportedOperation,
			Op:      op,
			Message: fmt.Sprintf("%s instruction %d: %s has no mapping for %q", section, index, s.syntax.Language, op),
		}
	}
	sb.WriteByte('.')
	sb.WriteString(s.syntax.methodName(op))
	sb.WriteByte('(')
	for j := 0; j < in.ArgCount(); j++ {
		if j > 0 {
			sb.WriteString(s.syntax.ItemSep)
		}
		frag, err := s.renderArg(in.ArgAt(j))
		if err != nil {
			return argError(err, section, index, op, j)
		}
		sb.WriteString(frag)
	}
	sb.WriteByte(')')
	return nil
}

// renderArg runs the hook, then renders the (possibly substituted) value.
func (s *Script) renderArg(value any) (string, error) {
	res := s.hook(value)
	if res.IsHandled() {
		return res.Translation(), nil
	}
	if sub, ok := res.substituted(); ok {
		value = sub
	}
	return s.renderValue(value)
}

func (s *Script) renderValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return s.syntax.Nil, nil
	case bool:
		if v {
			return s.syntax.True, nil
		}
		return s.syntax.False, nil
	case string:
		return s.syntax.QuoteString(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	case uuid.UUID:
		return fmt.Sprintf("UUID(%s)", s.syntax.QuoteString(v.String())), nil
	case time.Time:
		return fmt.Sprintf("datetime(%s)", s.syntax.QuoteString(v.UTC().Format(time.RFC3339Nano))), nil
	case bytecode.Binding:
		return v.Key(), nil
	case *bytecode.Bytecode:
		return s.renderNested(v)
	case *traversal.P:
		return s.renderPredicate(v)
	case traversal.EnumValue:
		return s.syntax.QualifyEnum(v.EnumType(), v.Name()), nil
	case []any:
		return s.renderList(v)
	case map[string]any:
		return s.renderStringMap(v)
	case map[any]any:
		return s.renderAnyMap(v)
	}
	return "", &Error{
		Kind:    ErrUnsupportedArgument,
		Arg:     value,
		Message: fmt.Sprintf("no rendering rule for %T", value),
	}
}

// renderNested renders child bytecode as an anonymous sub-expression. A
// child cannot be rooted, so source instructions in nested bytecode are
// malformed input.
func (s *Script) renderNested(bc *bytecode.Bytecode) (string, error) {
	if bc.SourceCount() > 0 {
		return "", Errorf(ErrMalformedBytecode, "nested bytecode must not carry source instructions")
	}
	var sb strings.Builder
	sb.WriteString(s.syntax.AnonPrefix)
	for i := 0; i < bc.StepCount(); i++ {
		if err := s.writeCall(&sb, "step", i, bc.StepAt(i)); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (s *Script) renderPredicate(p *traversal.P) (string, error) {
	var sb strings.Builder
	sb.WriteString(s.syntax.PredicatePrefix)
	sb.WriteString(s.syntax.methodName(p.Operator()))
	sb.WriteByte('(')
	for i, v := range p.Values() {
		if i > 0 {
			sb.WriteString(s.syntax.ItemSep)
		}
		frag, err := s.renderArg(v)
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
	sb.WriteByte(')')
	return sb.String(), nil
}

func (s *Script) renderList(values []any) (string, error) {
	var sb strings.Builder
	sb.WriteString(s.syntax.ListOpen)
	for i, v := range values {
		if i > 0 {
			sb.WriteString(s.syntax.ItemSep)
		}
		frag, err := s.renderArg(v)
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
	sb.WriteString(s.syntax.ListClose)
	return sb.String(), nil
}

// renderStringMap renders entries in key order so the same recording always
// yields the same script.
func (s *Script) renderStringMap(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(s.syntax.MapOpen)
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(s.syntax.ItemSep)
		}
		frag, err := s.renderArg(m[k])
		if err != nil {
			return "", err
		}
		sb.WriteString(s.syntax.QuoteString(k))
		sb.WriteString(s.syntax.KeyValueSep)
		sb.WriteString(frag)
	}
	sb.WriteString(s.syntax.MapClose)
	return sb.String(), nil
}

// renderAnyMap orders entries by their rendered key text; Go map iteration
// order must not leak into the output.
func (s *Script) renderAnyMap(m map[any]any) (string, error) {
	type entry struct {
		key string
		val string
	}
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		kf, err := s.renderArg(k)
		if err != nil {
			return "", err
		}
		vf, err := s.renderArg(v)
		if err != nil {
			return "", err
		}
		entries = append(entries, entry{key: kf, val: vf})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].val < entries[j].val
	})

	var sb strings.Builder
	sb.WriteString(s.syntax.MapOpen)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(s.syntax.ItemSep)
		}
		sb.WriteString(e.key)
		sb.WriteString(s.syntax.KeyValueSep)
		sb.WriteString(e.val)
	}
	sb.WriteString(s.syntax.MapClose)
	return sb.String(), nil
}

func formatFloat(f float64, bits int) string {
	out := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(out, ".eE") && !strings.Contains(out, "Inf") && !strings.Contains(out, "NaN") {
		out += ".0"
	}
	return out
}

// argError adds the offending instruction's coordinates to an argument
// rendering failure.
func argError(err error, section string, index int, op string, argIndex int) error {
	var te *Error
	if errors.As(err, &te) {
		wrapped := &Error{
			Kind:    te.Kind,
			Op:      op,
			Arg:     te.Arg,
			Message: fmt.Sprintf("%s instruction %d (%s): argument %d: %s", section, index, op, argIndex, te.Message),
			Cause:   te.Cause,
		}
		if te.Message == "" && te.Cause != nil {
			wrapped.Message = fmt.Sprintf("%s instruction %d (%s): argument %d: %v", section, index, op, argIndex, te.Cause)
		}
		return wrapped
	}
	return fmt.Errorf("%s instruction %d (%s): argument %d: %w", section, index, op, argIndex, err)
}
