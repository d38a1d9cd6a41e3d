package graph

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// EvalOptions are the recognized with() evaluation options. Unknown keys
// are carried on the source but have no effect on this engine.
type EvalOptions struct {
	// EvaluationTimeout bounds one evaluation, in milliseconds. Zero leaves
	// only the caller's context in charge.
	EvaluationTimeout int64 `mapstructure:"evaluationTimeout"`

	// MaxTraversers caps the stream size during evaluation. Zero means no
	// cap.
	MaxTraversers int `mapstructure:"maxTraversers"`

	// MaxRepeatLoops caps repeat() iterations as a runaway guard.
	MaxRepeatLoops int `mapstructure:"maxRepeatLoops"`
}

const defaultMaxRepeatLoops = 100

// TraversalSource is a graph plus the configuration recorded by source
// instructions: seeded side effects and evaluation options. Configuration
// methods return a new source so one base can be shared.
type TraversalSource struct {
	graph       *Graph
	sideEffects map[string][]any
	options     map[string]any
	opts        EvalOptions
}

// Traversal returns a traversal source over the graph.
func (g *Graph) Traversal() *TraversalSource {
	return &TraversalSource{
		graph:       g,
		sideEffects: map[string][]any{},
		options:     map[string]any{},
		opts:        EvalOptions{MaxRepeatLoops: defaultMaxRepeatLoops},
	}
}

// Graph returns the graph the source is bound to.
func (s *TraversalSource) Graph() *Graph {
	return s.graph
}

// WithSideEffect returns a source with a named collection seeded for
// aggregate() and cap(). A non-list value seeds a single-element list.
func (s *TraversalSource) WithSideEffect(key string, value any) *TraversalSource {
	next := s.clone()
	next.sideEffects[key] = asList(value)
	return next
}

// With returns a source with a named evaluation option set. Values decode
// into EvalOptions permissively, so with("evaluationTimeout", "500") works
// like the numeric form.
func (s *TraversalSource) With(key string, value any) (*TraversalSource, error) {
	next := s.clone()
	next.options[key] = value
	opts, err := decodeOptions(next.options)
	if err != nil {
		return nil, err
	}
	next.opts = opts
	return next, nil
}

// Options returns the decoded evaluation options.
func (s *TraversalSource) Options() EvalOptions {
	return s.opts
}

// SideEffect returns a copy of the seeded side-effect collection for key.
func (s *TraversalSource) SideEffect(key string) ([]any, bool) {
	list, ok := s.sideEffects[key]
	if !ok {
		return nil, false
	}
	out := make([]any, len(list))
	copy(out, list)
	return out, true
}

func (s *TraversalSource) clone() *TraversalSource {
	sideEffects := make(map[string][]any, len(s.sideEffects))
	for k, list := range s.sideEffects {
		copied := make([]any, len(list))
		copy(copied, list)
		sideEffects[k] = copied
	}
	options := make(map[string]any, len(s.options))
	for k, v := range s.options {
		options[k] = v
	}
	return &TraversalSource{
		graph:       s.graph,
		sideEffects: sideEffects,
		options:     options,
		opts:        s.opts,
	}
}

func decodeOptions(raw map[string]any) (EvalOptions, error) {
	opts := EvalOptions{MaxRepeatLoops: defaultMaxRepeatLoops}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("invalid evaluation option: %w", err)
	}
	if opts.EvaluationTimeout < 0 || opts.MaxTraversers < 0 || opts.MaxRepeatLoops < 0 {
		return opts, fmt.Errorf("evaluation options must not be negative")
	}
	return opts, nil
}

func asList(value any) []any {
	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		copy(out, list)
		return out
	}
	return []any{value}
}
