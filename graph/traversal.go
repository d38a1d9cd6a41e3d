package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/wander-lang/wander/internal/locale"
)

// ErrNoResult is returned by First when the traversal yields nothing.
var ErrNoResult = errors.New("traversal yielded no result")

// Traversal is an executable traversal: a validated pipeline of step
// applications bound to a source. Applying a step yields a new Traversal
// value; nothing touches the graph until a terminal method runs, so a
// Traversal can be built, inspected, and discarded freely.
type Traversal struct {
	source    *TraversalSource
	anonymous bool
	apps      []application
}

type application struct {
	op   string
	args []any
}

func (t *Traversal) String() string {
	ops := make([]string, len(t.apps))
	for i, app := range t.apps {
		ops[i] = app.op
	}
	return fmt.Sprintf("traversal[%s]", strings.Join(ops, "."))
}

// ToList evaluates the traversal and returns all results in order.
func (t *Traversal) ToList(ctx context.Context) ([]any, error) {
	ts, err := t.run(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(ts))
	for i, tr := range ts {
		out[i] = tr.value
	}
	return out, nil
}

// First evaluates the traversal and returns its first result, or
// ErrNoResult when it yields nothing.
func (t *Traversal) First(ctx context.Context) (any, error) {
	list, err := t.ToList(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoResult
	}
	return list[0], nil
}

// Iterate evaluates the traversal for its side effects and discards the
// results.
func (t *Traversal) Iterate(ctx context.Context) error {
	_, err := t.run(ctx)
	return err
}

func (t *Traversal) run(ctx context.Context) ([]traverser, error) {
	if t.source == nil {
		return nil, fmt.Errorf("traversal is not bound to a source")
	}
	stages, err := compilePipeline(t.apps)
	if err != nil {
		return nil, err
	}

	opts := t.source.opts
	if opts.EvaluationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.EvaluationTimeout)*time.Millisecond)
		defer cancel()
	}

	execID := uuid.Must(uuid.NewV4())
	ec := &evalContext{
		ctx:         ctx,
		graph:       t.source.graph,
		opts:        opts,
		sideEffects: cloneSideEffects(t.source.sideEffects),
		log:         t.source.graph.log.With().Str("execution_id", execID.String()).Logger(),
	}

	started := time.Now()
	ec.log.Debug().
		Int("steps", len(t.apps)).
		Msg(locale.Message("engine.eval.start", nil))

	out, err := runPipeline(ec, stages, []traverser{rootTraverser()})
	if err != nil {
		ec.log.Debug().
			Err(err).
			Msg(locale.Message("engine.eval.failed", nil))
		return nil, err
	}

	ec.log.Debug().
		Int("results", len(out)).
		Dur("elapsed", time.Since(started)).
		Msg(locale.Message("engine.eval.done", nil))
	return out, nil
}

// evalContext carries one evaluation's state: the graph, decoded options,
// the side-effect store, and the execution-scoped logger.
type evalContext struct {
	ctx         context.Context
	graph       *Graph
	opts        EvalOptions
	sideEffects map[string][]any
	log         zerolog.Logger
}

// traverser is one unit of flow: the current value plus its path, as()
// bindings, and repeat() loop counter. Traversers are values; stages build
// new ones instead of mutating.
type traverser struct {
	value  any
	root   bool
	path   []any
	labels map[string][]any
	loops  int
}

func rootTraverser() traverser {
	return traverser{root: true}
}

// advance moves the traverser to a new value, extending its path.
func (t traverser) advance(value any) traverser {
	path := make([]any, len(t.path), len(t.path)+1)
	copy(path, t.path)
	path = append(path, value)
	return traverser{
		value:  value,
		path:   path,
		labels: t.labels,
		loops:  t.loops,
	}
}

// withLabels binds the current value under each label.
func (t traverser) withLabels(labels ...string) traverser {
	bound := make(map[string][]any, len(t.labels)+len(labels))
	for k, list := range t.labels {
		bound[k] = list
	}
	for _, label := range labels {
		prev := bound[label]
		next := make([]any, len(prev), len(prev)+1)
		copy(next, prev)
		bound[label] = append(next, t.value)
	}
	out := t
	out.labels = bound
	return out
}

func (t traverser) selectLabel(label string) ([]any, bool) {
	list, ok := t.labels[label]
	return list, ok && len(list) > 0
}

// stage is one compiled pipeline segment.
type stage interface {
	opName() string
	run(ec *evalContext, in []traverser) ([]traverser, error)
}

// flatMapStage emits zero or more traversers per input traverser.
type flatMapStage struct {
	op string
	fn func(ec *evalContext, t traverser) ([]traverser, error)
}

func (s *flatMapStage) opName() string { return s.op }

func (s *flatMapStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	var out []traverser
	for _, t := range in {
		if err := ec.ctx.Err(); err != nil {
			return nil, err
		}
		emitted, err := s.fn(ec, t)
		if err != nil {
			return nil, err
		}
		out = append(out, emitted...)
	}
	return out, nil
}

// barrierStage consumes the whole stream at once (ordering, folding,
// reductions).
type barrierStage struct {
	op string
	fn func(ec *evalContext, in []traverser) ([]traverser, error)
}

func (s *barrierStage) opName() string { return s.op }

func (s *barrierStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	return s.fn(ec, in)
}

func runPipeline(ec *evalContext, stages []stage, in []traverser) ([]traverser, error) {
	cur := in
	for _, st := range stages {
		if err := ec.ctx.Err(); err != nil {
			return nil, err
		}
		next, err := st.run(ec, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.opName(), err)
		}
		if ec.opts.MaxTraversers > 0 && len(next) > ec.opts.MaxTraversers {
			return nil, fmt.Errorf("%s: traverser limit exceeded (%d > %d)",
				st.opName(), len(next), ec.opts.MaxTraversers)
		}
		cur = next
	}
	return cur, nil
}

// runNested evaluates an anonymous child traversal seeded with one parent
// traverser.
func runNested(ec *evalContext, child *Traversal, seed traverser) ([]traverser, error) {
	stages, err := compilePipeline(child.apps)
	if err != nil {
		return nil, err
	}
	seed.root = false
	return runPipeline(ec, stages, []traverser{seed})
}

// nestedYields reports whether the child produces at least one traverser
// for the seed.
func nestedYields(ec *evalContext, child *Traversal, seed traverser) (bool, error) {
	out, err := runNested(ec, child, seed)
	if err != nil {
		return false, err
	}
	return len(out) > 0, nil
}

// nestedFirst returns the child's first result for the seed.
func nestedFirst(ec *evalContext, child *Traversal, seed traverser) (any, bool, error) {
	out, err := runNested(ec, child, seed)
	if err != nil {
		return nil, false, err
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out[0].value, true, nil
}

func cloneSideEffects(src map[string][]any) map[string][]any {
	dst := make(map[string][]any, len(src))
	for k, list := range src {
		copied := make([]any, len(list))
		copy(copied, list)
		dst[k] = copied
	}
	return dst
}
