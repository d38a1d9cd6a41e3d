package translate

// TypeTranslator customizes how one argument value renders during script
// translation. The hook runs on every value the walk encounters, including
// elements of collections and predicate operands, before any structural
// rendering. It must behave as a pure function: same value in, same Result
// out, no retained state.
type TypeTranslator func(value any) Result

// Identity is the default hook. It has no opinion about any value.
func Identity(value any) Result {
	return Continue()
}

// Result is a TypeTranslator's decision for one value.
type Result struct {
	action resultAction
	value  any
	text   string
}

type resultAction int

const (
	actionContinue resultAction = iota
	actionSubstitute
	actionHandled
)

// Continue leaves the value to the standard rendering rules.
func Continue() Result {
	return Result{action: actionContinue}
}

// Substitute replaces the value; the replacement is then rendered by the
// standard rules.
func Substitute(value any) Result {
	return Result{action: actionSubstitute, value: value}
}

// Handled short-circuits rendering for this value: the fragment is used
// verbatim and the walk does not recurse into the original value.
func Handled(text string) Result {
	return Result{action: actionHandled, text: text}
}

// IsHandled reports whether the result carries a pre-rendered fragment.
func (r Result) IsHandled() bool {
	return r.action == actionHandled
}

// Translation returns the pre-rendered fragment of a Handled result,
// unchanged. It returns "" for other results.
func (r Result) Translation() string {
	return r.text
}

func (r Result) substituted() (any, bool) {
	return r.value, r.action == actionSubstitute
}
