package graph

import (
	"github.com/wander-lang/wander/translate"
	"github.com/wander-lang/wander/traversal"
)

// Engine adapts this package to the step translator: source configuration
// lands on TraversalSource, steps accumulate on Traversal. It is stateless;
// one Engine value serves any number of translations concurrently.
type Engine struct{}

var _ translate.Applier[*TraversalSource, *Traversal] = Engine{}

func (Engine) ApplySource(source *TraversalSource, op string, args []any) (*TraversalSource, error) {
	if err := validateSource(op, args); err != nil {
		return nil, err
	}
	key := args[0].(string)
	if op == traversal.OpWithSideEffect {
		return source.WithSideEffect(key, args[1]), nil
	}
	next, err := source.With(key, args[1])
	if err != nil {
		return nil, &translate.Error{
			Kind:    translate.ErrUnsupportedArgument,
			Op:      op,
			Arg:     args[1],
			Message: err.Error(),
			Cause:   err,
		}
	}
	return next, nil
}

func (Engine) Spawn(source *TraversalSource) *Traversal {
	return &Traversal{source: source}
}

func (Engine) SpawnAnonymous() *Traversal {
	return &Traversal{anonymous: true}
}

func (Engine) ApplyStep(t *Traversal, op string, args []any) (*Traversal, error) {
	if err := validateStep(t.apps, op, args); err != nil {
		return nil, err
	}
	apps := make([]application, len(t.apps), len(t.apps)+1)
	copy(apps, t.apps)
	apps = append(apps, application{op: op, args: args})
	return &Traversal{source: t.source, anonymous: t.anonymous, apps: apps}, nil
}

// NewStepTranslator returns a translator that turns recorded bytecode into
// executable traversals rooted at source.
func NewStepTranslator(source *TraversalSource) *translate.Step[*TraversalSource, *Traversal] {
	return translate.NewStep[*TraversalSource, *Traversal]("wander-go", source, Engine{})
}
