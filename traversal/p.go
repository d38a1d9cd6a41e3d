package traversal

import (
	"fmt"
	"reflect"
	"strings"
)

// P is a predicate argument: an operator name plus the values it tests
// against. Predicates are recorded into bytecode like any other argument;
// the engine evaluates them with Test and script translators render them as
// operator(value, ...) calls.
type P struct {
	operator string
	values   []any
}

func newP(operator string, values ...any) *P {
	return &P{operator: operator, values: values}
}

func Eq(value any) *P  { return newP("eq", value) }
func Neq(value any) *P { return newP("neq", value) }
func Lt(value any) *P  { return newP("lt", value) }
func Lte(value any) *P { return newP("lte", value) }
func Gt(value any) *P  { return newP("gt", value) }
func Gte(value any) *P { return newP("gte", value) }

func Within(values ...any) *P  { return newP("within", values...) }
func Without(values ...any) *P { return newP("without", values...) }

// Between tests low <= v < high.
func Between(low, high any) *P { return newP("between", low, high) }

// Inside tests low < v < high.
func Inside(low, high any) *P { return newP("inside", low, high) }

// Outside tests v < low or v > high.
func Outside(low, high any) *P { return newP("outside", low, high) }

func Containing(substr string) *P    { return newP("containing", substr) }
func NotContaining(substr string) *P { return newP("notContaining", substr) }
func StartingWith(prefix string) *P  { return newP("startingWith", prefix) }
func EndingWith(suffix string) *P    { return newP("endingWith", suffix) }

// And composes two predicates; the result passes when both pass.
func (p *P) And(other *P) *P { return newP("and", p, other) }

// Or composes two predicates; the result passes when either passes.
func (p *P) Or(other *P) *P { return newP("or", p, other) }

func (p *P) Operator() string { return p.operator }

// Values returns a copy of the predicate's comparison values.
func (p *P) Values() []any {
	out := make([]any, len(p.values))
	copy(out, p.values)
	return out
}

// Test evaluates the predicate against a value. Unknown operators and
// uncomparable value pairs test false rather than erroring; a predicate
// that cannot apply does not match.
func (p *P) Test(value any) bool {
	switch p.operator {
	case "eq":
		return len(p.values) == 1 && equalValues(value, p.values[0])
	case "neq":
		return len(p.values) == 1 && !equalValues(value, p.values[0])
	case "lt":
		c, ok := compareValues(value, p.values[0])
		return ok && c < 0
	case "lte":
		c, ok := compareValues(value, p.values[0])
		return ok && c <= 0
	case "gt":
		c, ok := compareValues(value, p.values[0])
		return ok && c > 0
	case "gte":
		c, ok := compareValues(value, p.values[0])
		return ok && c >= 0
	case "within":
		for _, v := range p.values {
			if equalValues(value, v) {
				return true
			}
		}
		return false
	case "without":
		for _, v := range p.values {
			if equalValues(value, v) {
				return false
			}
		}
		return true
	case "between":
		lo, okLo := compareValues(value, p.values[0])
		hi, okHi := compareValues(value, p.values[1])
		return okLo && okHi && lo >= 0 && hi < 0
	case "inside":
		lo, okLo := compareValues(value, p.values[0])
		hi, okHi := compareValues(value, p.values[1])
		return okLo && okHi && lo > 0 && hi < 0
	case "outside":
		lo, okLo := compareValues(value, p.values[0])
		hi, okHi := compareValues(value, p.values[1])
		return okLo && okHi && (lo < 0 || hi > 0)
	case "containing":
		s, ok := value.(string)
		return ok && strings.Contains(s, p.values[0].(string))
	case "notContaining":
		s, ok := value.(string)
		return ok && !strings.Contains(s, p.values[0].(string))
	case "startingWith":
		s, ok := value.(string)
		return ok && strings.HasPrefix(s, p.values[0].(string))
	case "endingWith":
		s, ok := value.(string)
		return ok && strings.HasSuffix(s, p.values[0].(string))
	case "and":
		for _, v := range p.values {
			child, ok := v.(*P)
			if !ok || !child.Test(value) {
				return false
			}
		}
		return true
	case "or":
		for _, v := range p.values {
			if child, ok := v.(*P); ok && child.Test(value) {
				return true
			}
		}
		return false
	}
	return false
}

func (p *P) String() string {
	parts := make([]string, len(p.values))
	for i, v := range p.values {
		switch val := v.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", val)
		case fmt.Stringer:
			parts[i] = val.String()
		default:
			parts[i] = fmt.Sprintf("%v", val)
		}
	}
	return fmt.Sprintf("%s(%s)", p.operator, strings.Join(parts, ", "))
}

// equalValues compares with numeric widening so that int(29) matches
// int64(29). Non-numeric values fall back to deep equality.
func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values when both are numeric or both are
// strings. The second result reports whether an ordering exists.
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
