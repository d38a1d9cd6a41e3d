package graph

import (
	"fmt"
	"sort"

	"github.com/wander-lang/wander/internal/suggest"
	"github.com/wander-lang/wander/translate"
	"github.com/wander-lang/wander/traversal"
)

// Step application is validated eagerly: operation names and argument
// shapes are checked when the step translator applies them, so a bad
// recording fails during translation, before anything executes. Value
// mismatches that depend on runtime stream contents (e.g. out() reaching a
// non-vertex) surface later, during iteration.

type stepDef struct {
	validate func(args []any) error
}

// modulatorTargets maps a modulator operation to the steps it may follow.
var modulatorTargets = map[string][]string{
	traversal.OpBy:    {traversal.OpOrder, traversal.OpDedup, traversal.OpGroupCount, traversal.OpProject},
	traversal.OpFrom:  {traversal.OpAddE},
	traversal.OpTo:    {traversal.OpAddE},
	traversal.OpTimes: {traversal.OpRepeat},
	traversal.OpUntil: {traversal.OpRepeat},
	traversal.OpEmit:  {traversal.OpRepeat},
}

func validateStep(prior []application, op string, args []any) error {
	def, ok := stepDefs[op]
	if !ok {
		return translate.Errorf(translate.ErrUnsupportedOperation,
			"no step named %q in this engine%s", op, nameHint(op, stepNames()))
	}
	if def.validate != nil {
		if err := def.validate(args); err != nil {
			return err
		}
	}
	if targets, isModulator := modulatorTargets[op]; isModulator {
		target, ok := lastStepOp(prior)
		if !ok || !containsString(targets, target) {
			return translate.Errorf(translate.ErrMalformedBytecode,
				"%s() must follow one of %v", op, targets)
		}
	}
	return nil
}

// lastStepOp returns the most recent non-modulator operation.
func lastStepOp(apps []application) (string, bool) {
	for i := len(apps) - 1; i >= 0; i-- {
		if _, isModulator := modulatorTargets[apps[i].op]; !isModulator {
			return apps[i].op, true
		}
	}
	return "", false
}

func validateSource(op string, args []any) error {
	switch op {
	case traversal.OpWithSideEffect, traversal.OpWith:
		if err := wantCount(op, args, 2, 2); err != nil {
			return err
		}
		return wantString(op, args, 0)
	}
	return translate.Errorf(translate.ErrUnsupportedOperation,
		"no source configuration named %q in this engine%s",
		op, nameHint(op, []string{traversal.OpWithSideEffect, traversal.OpWith}))
}

// nameHint renders a parenthesized "did you mean" clause, empty when no
// candidate is close enough.
func nameHint(op string, known []string) string {
	hint := suggest.Hint(suggest.Similar(op, known))
	if hint == "" {
		return ""
	}
	return " (" + hint + ")"
}

func stepNames() []string {
	names := make([]string, 0, len(stepDefs))
	for name := range stepDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var stepDefs = map[string]stepDef{
	traversal.OpV:      {},
	traversal.OpE:      {},
	traversal.OpInject: {},
	traversal.OpAddV: {validate: func(args []any) error {
		if err := wantCount(traversal.OpAddV, args, 0, 1); err != nil {
			return err
		}
		return wantStrings(traversal.OpAddV, args)
	}},
	traversal.OpAddE: {validate: func(args []any) error {
		if err := wantCount(traversal.OpAddE, args, 1, 1); err != nil {
			return err
		}
		return wantString(traversal.OpAddE, args, 0)
	}},
	traversal.OpProperty: {validate: validateProperty},
	traversal.OpDrop:     {validate: noArgs(traversal.OpDrop)},
	traversal.OpHas:      {validate: validateHas},
	traversal.OpHasLabel: {validate: func(args []any) error {
		if err := wantCount(traversal.OpHasLabel, args, 1, -1); err != nil {
			return err
		}
		return wantStrings(traversal.OpHasLabel, args)
	}},
	traversal.OpHasID: {validate: func(args []any) error {
		return wantCount(traversal.OpHasID, args, 1, -1)
	}},
	traversal.OpWhere: {validate: func(args []any) error {
		if err := wantCount(traversal.OpWhere, args, 1, 1); err != nil {
			return err
		}
		switch args[0].(type) {
		case *Traversal, *traversal.P:
			return nil
		}
		return badArg(traversal.OpWhere, 0, args[0], "a traversal or predicate")
	}},
	traversal.OpIs: {validate: func(args []any) error {
		return wantCount(traversal.OpIs, args, 1, 1)
	}},
	traversal.OpNot: {validate: func(args []any) error {
		if err := wantCount(traversal.OpNot, args, 1, 1); err != nil {
			return err
		}
		return wantChild(traversal.OpNot, args, 0)
	}},
	traversal.OpAnd: {validate: func(args []any) error {
		if err := wantCount(traversal.OpAnd, args, 1, -1); err != nil {
			return err
		}
		return wantChildren(traversal.OpAnd, args)
	}},
	traversal.OpOr: {validate: func(args []any) error {
		if err := wantCount(traversal.OpOr, args, 1, -1); err != nil {
			return err
		}
		return wantChildren(traversal.OpOr, args)
	}},
	traversal.OpDedup: {validate: noArgs(traversal.OpDedup)},
	traversal.OpLimit: {validate: func(args []any) error {
		if err := wantCount(traversal.OpLimit, args, 1, 1); err != nil {
			return err
		}
		return wantNonNegativeInt(traversal.OpLimit, args, 0)
	}},
	traversal.OpSkip: {validate: func(args []any) error {
		if err := wantCount(traversal.OpSkip, args, 1, 1); err != nil {
			return err
		}
		return wantNonNegativeInt(traversal.OpSkip, args, 0)
	}},
	traversal.OpRange:      {validate: validateRange},
	traversal.OpSimplePath: {validate: noArgs(traversal.OpSimplePath)},
	traversal.OpOut:        {validate: labelArgs(traversal.OpOut)},
	traversal.OpIn:         {validate: labelArgs(traversal.OpIn)},
	traversal.OpBoth:       {validate: labelArgs(traversal.OpBoth)},
	traversal.OpOutE:       {validate: labelArgs(traversal.OpOutE)},
	traversal.OpInE:        {validate: labelArgs(traversal.OpInE)},
	traversal.OpBothE:      {validate: labelArgs(traversal.OpBothE)},
	traversal.OpInV:        {validate: noArgs(traversal.OpInV)},
	traversal.OpOutV:       {validate: noArgs(traversal.OpOutV)},
	traversal.OpBothV:      {validate: noArgs(traversal.OpBothV)},
	traversal.OpOtherV:     {validate: noArgs(traversal.OpOtherV)},
	traversal.OpValues:     {validate: labelArgs(traversal.OpValues)},
	traversal.OpValueMap:   {validate: labelArgs(traversal.OpValueMap)},
	traversal.OpID:         {validate: noArgs(traversal.OpID)},
	traversal.OpLabel:      {validate: noArgs(traversal.OpLabel)},
	traversal.OpConstant: {validate: func(args []any) error {
		return wantCount(traversal.OpConstant, args, 1, 1)
	}},
	traversal.OpSelect: {validate: validateSelect},
	traversal.OpAs: {validate: func(args []any) error {
		if err := wantCount(traversal.OpAs, args, 1, -1); err != nil {
			return err
		}
		return wantStrings(traversal.OpAs, args)
	}},
	traversal.OpBy:     {validate: validateBy},
	traversal.OpOrder:  {validate: noArgs(traversal.OpOrder)},
	traversal.OpFold:   {validate: noArgs(traversal.OpFold)},
	traversal.OpUnfold: {validate: noArgs(traversal.OpUnfold)},
	traversal.OpCount:  {validate: noArgs(traversal.OpCount)},
	traversal.OpSum:    {validate: noArgs(traversal.OpSum)},
	traversal.OpMin:    {validate: noArgs(traversal.OpMin)},
	traversal.OpMax:    {validate: noArgs(traversal.OpMax)},
	traversal.OpMean:   {validate: noArgs(traversal.OpMean)},
	traversal.OpPath:   {validate: noArgs(traversal.OpPath)},
	traversal.OpCoalesce: {validate: func(args []any) error {
		if err := wantCount(traversal.OpCoalesce, args, 1, -1); err != nil {
			return err
		}
		return wantChildren(traversal.OpCoalesce, args)
	}},
	traversal.OpUnion: {validate: func(args []any) error {
		if err := wantCount(traversal.OpUnion, args, 1, -1); err != nil {
			return err
		}
		return wantChildren(traversal.OpUnion, args)
	}},
	traversal.OpRepeat: {validate: func(args []any) error {
		if err := wantCount(traversal.OpRepeat, args, 1, 1); err != nil {
			return err
		}
		return wantChild(traversal.OpRepeat, args, 0)
	}},
	traversal.OpTimes: {validate: func(args []any) error {
		if err := wantCount(traversal.OpTimes, args, 1, 1); err != nil {
			return err
		}
		n, err := intArg(traversal.OpTimes, args, 0)
		if err != nil {
			return err
		}
		if n < 1 {
			return translate.Errorf(translate.ErrMalformedBytecode,
				"times expects a positive count, got %d", n)
		}
		return nil
	}},
	traversal.OpEmit: {validate: func(args []any) error {
		if err := wantCount(traversal.OpEmit, args, 0, 1); err != nil {
			return err
		}
		if len(args) == 1 {
			return wantChild(traversal.OpEmit, args, 0)
		}
		return nil
	}},
	traversal.OpUntil: {validate: func(args []any) error {
		if err := wantCount(traversal.OpUntil, args, 1, 1); err != nil {
			return err
		}
		return wantChild(traversal.OpUntil, args, 0)
	}},
	traversal.OpGroupCount: {validate: noArgs(traversal.OpGroupCount)},
	traversal.OpAggregate: {validate: func(args []any) error {
		if err := wantCount(traversal.OpAggregate, args, 1, 1); err != nil {
			return err
		}
		return wantString(traversal.OpAggregate, args, 0)
	}},
	traversal.OpCap: {validate: func(args []any) error {
		if err := wantCount(traversal.OpCap, args, 1, 1); err != nil {
			return err
		}
		return wantString(traversal.OpCap, args, 0)
	}},
	traversal.OpFrom: {validate: endpointArg(traversal.OpFrom)},
	traversal.OpTo:   {validate: endpointArg(traversal.OpTo)},
	traversal.OpProject: {validate: func(args []any) error {
		if err := wantCount(traversal.OpProject, args, 1, -1); err != nil {
			return err
		}
		return wantStrings(traversal.OpProject, args)
	}},
	traversal.OpMap: {validate: func(args []any) error {
		if err := wantCount(traversal.OpMap, args, 1, 1); err != nil {
			return err
		}
		return wantChild(traversal.OpMap, args, 0)
	}},
	traversal.OpIdentity: {validate: noArgs(traversal.OpIdentity)},
}

func validateProperty(args []any) error {
	op := traversal.OpProperty
	if err := wantCount(op, args, 2, 3); err != nil {
		return err
	}
	i := 0
	if len(args) == 3 {
		if _, ok := args[0].(traversal.Cardinality); !ok {
			return badArg(op, 0, args[0], "a Cardinality")
		}
		i = 1
	}
	return wantString(op, args, i)
}

func validateHas(args []any) error {
	op := traversal.OpHas
	if err := wantCount(op, args, 1, 3); err != nil {
		return err
	}
	switch len(args) {
	case 1:
		return wantString(op, args, 0)
	case 2:
		switch first := args[0].(type) {
		case string:
			return nil
		case traversal.T:
			if first != traversal.TID && first != traversal.TLabel {
				return badArg(op, 0, args[0], "T.id or T.label")
			}
			return nil
		}
		return badArg(op, 0, args[0], "a property key or T token")
	default:
		if err := wantString(op, args, 0); err != nil {
			return err
		}
		return wantString(op, args, 1)
	}
}

func validateRange(args []any) error {
	op := traversal.OpRange
	if err := wantCount(op, args, 2, 2); err != nil {
		return err
	}
	low, err := intArg(op, args, 0)
	if err != nil {
		return err
	}
	high, err := intArg(op, args, 1)
	if err != nil {
		return err
	}
	if low < 0 || high < low {
		return translate.Errorf(translate.ErrMalformedBytecode,
			"range bounds [%d, %d) are invalid", low, high)
	}
	return nil
}

func validateSelect(args []any) error {
	op := traversal.OpSelect
	if err := wantCount(op, args, 1, -1); err != nil {
		return err
	}
	if _, ok := args[0].(traversal.Column); ok {
		return wantCount(op, args, 1, 1)
	}
	if _, ok := args[0].(traversal.Pop); ok {
		if err := wantCount(op, args, 2, 2); err != nil {
			return err
		}
		return wantString(op, args, 1)
	}
	return wantStrings(op, args)
}

func validateBy(args []any) error {
	op := traversal.OpBy
	if err := wantCount(op, args, 0, 2); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	switch first := args[0].(type) {
	case string, *Traversal:
	case traversal.T:
		if first != traversal.TID && first != traversal.TLabel {
			return badArg(op, 0, first, "T.id or T.label")
		}
	case traversal.Order:
		if len(args) > 1 {
			return translate.Errorf(translate.ErrMalformedBytecode,
				"by(order) takes no further arguments")
		}
		return nil
	default:
		return badArg(op, 0, args[0], "a key, T token, traversal, or Order")
	}
	if len(args) == 2 {
		if _, ok := args[1].(traversal.Order); !ok {
			return badArg(op, 1, args[1], "an Order")
		}
	}
	return nil
}

func noArgs(op string) func(args []any) error {
	return func(args []any) error {
		return wantCount(op, args, 0, 0)
	}
}

func labelArgs(op string) func(args []any) error {
	return func(args []any) error {
		return wantStrings(op, args)
	}
}

func endpointArg(op string) func(args []any) error {
	return func(args []any) error {
		if err := wantCount(op, args, 1, 1); err != nil {
			return err
		}
		switch args[0].(type) {
		case string, *Traversal, *Vertex:
			return nil
		}
		return badArg(op, 0, args[0], "an as() label, traversal, or vertex")
	}
}

func wantCount(op string, args []any, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		switch {
		case max < 0:
			return translate.Errorf(translate.ErrMalformedBytecode,
				"%s expects at least %d argument(s), got %d", op, min, len(args))
		case min == max:
			return translate.Errorf(translate.ErrMalformedBytecode,
				"%s expects %d argument(s), got %d", op, min, len(args))
		default:
			return translate.Errorf(translate.ErrMalformedBytecode,
				"%s expects %d to %d arguments, got %d", op, min, max, len(args))
		}
	}
	return nil
}

func wantString(op string, args []any, i int) error {
	if _, ok := args[i].(string); !ok {
		return badArg(op, i, args[i], "a string")
	}
	return nil
}

func wantStrings(op string, args []any) error {
	for i := range args {
		if err := wantString(op, args, i); err != nil {
			return err
		}
	}
	return nil
}

func wantChild(op string, args []any, i int) error {
	if _, ok := args[i].(*Traversal); !ok {
		return badArg(op, i, args[i], "a traversal")
	}
	return nil
}

func wantChildren(op string, args []any) error {
	for i := range args {
		if err := wantChild(op, args, i); err != nil {
			return err
		}
	}
	return nil
}

func wantNonNegativeInt(op string, args []any, i int) error {
	n, err := intArg(op, args, i)
	if err != nil {
		return err
	}
	if n < 0 {
		return translate.Errorf(translate.ErrMalformedBytecode,
			"%s expects a non-negative count, got %d", op, n)
	}
	return nil
}

func intArg(op string, args []any, i int) (int, error) {
	switch n := args[i].(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	}
	return 0, badArg(op, i, args[i], "an integer")
}

func badArg(op string, i int, arg any, want string) error {
	return &translate.Error{
		Kind:    translate.ErrUnsupportedArgument,
		Op:      op,
		Arg:     arg,
		Message: fmt.Sprintf("%s argument %d must be %s, got %T", op, i, want, arg),
	}
}
