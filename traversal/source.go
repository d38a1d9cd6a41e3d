package traversal

import (
	"github.com/wander-lang/wander/bytecode"
)

// Source records traversal-source configuration instructions. Sources have
// value semantics: WithSideEffect and With return a new Source so a shared
// base can be configured in different directions. Spawn methods (V, E,
// AddV, AddE, Inject) copy the accumulated configuration into a new
// Traversal recording.
type Source struct {
	bc *bytecode.Bytecode
}

// SourceOption configures a Source at construction.
type SourceOption func(*Source)

// WithAlias records the symbol the spawned traversals are rooted at.
// Script translation renders the alias as the leading expression in place
// of the translator's own source symbol.
func WithAlias(name string) SourceOption {
	return func(s *Source) {
		s.bc.AddSource(bytecode.OpWithSource, name)
	}
}

// NewSource returns an empty source recorder.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{bc: bytecode.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSideEffect seeds a named side-effect value available to aggregate()
// and cap() during execution.
func (s *Source) WithSideEffect(key string, value any) *Source {
	next := s.clone()
	next.bc.AddSource(OpWithSideEffect, key, value)
	return next
}

// With records a named evaluation option, e.g. evaluationTimeout.
func (s *Source) With(key string, value any) *Source {
	next := s.clone()
	next.bc.AddSource(OpWith, key, value)
	return next
}

// Bytecode returns a copy of the configuration recorded so far.
func (s *Source) Bytecode() *bytecode.Bytecode {
	return s.bc.Clone()
}

// V starts a traversal over vertices, optionally filtered to the given ids.
func (s *Source) V(ids ...any) *Traversal {
	return s.spawn(OpV, ids...)
}

// E starts a traversal over edges, optionally filtered to the given ids.
func (s *Source) E(ids ...any) *Traversal {
	return s.spawn(OpE, ids...)
}

// AddV starts a traversal that creates a vertex, with an optional label.
func (s *Source) AddV(labels ...string) *Traversal {
	return s.spawn(OpAddV, stringArgs(labels)...)
}

// AddE starts a traversal that creates an edge with the given label. The
// endpoints come from from() and to() modulators.
func (s *Source) AddE(label string) *Traversal {
	return s.spawn(OpAddE, label)
}

// Inject starts a traversal from the given literal values.
func (s *Source) Inject(values ...any) *Traversal {
	return s.spawn(OpInject, values...)
}

func (s *Source) clone() *Source {
	return &Source{bc: s.bc.Clone()}
}

func (s *Source) spawn(op string, args ...any) *Traversal {
	t := &Traversal{bc: s.bc.Clone()}
	return t.add(op, args...)
}

func stringArgs(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
