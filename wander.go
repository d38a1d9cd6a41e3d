// Package wander records graph traversals as bytecode and translates the
// recordings into scripts or live traversals.
//
// Recordings are built with the traversal package and carry no execution
// state of their own. Script renders a recording as a method-chained
// script in a configurable dialect. Eval binds a recording to a live
// in-memory graph and drains the resulting traversal:
//
//	g := graph.Modern()
//	rec := traversal.NewSource().V().Has("name", "marko").Out("created").Values("name")
//	names, err := wander.Eval(ctx, g, rec.Bytecode())
//
// The translate package holds the underlying translators for callers that
// need more control than this facade exposes.
package wander

import (
	"context"

	"github.com/wander-lang/wander/bytecode"
	"github.com/wander-lang/wander/graph"
	"github.com/wander-lang/wander/translate"
)

// Option configures a wander translation.
type Option func(*options)

type options struct {
	source string
	script []translate.ScriptOption
}

func collectOptions(opts ...Option) *options {
	o := &options{source: "g"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithSource sets the symbol rendered scripts are rooted at. The default
// is "g". A recording made with traversal.WithAlias overrides this.
func WithSource(name string) Option {
	return func(o *options) {
		o.source = name
	}
}

// WithSyntax selects the script dialect for Script.
func WithSyntax(syntax translate.Syntax) Option {
	return func(o *options) {
		o.script = append(o.script, translate.WithSyntax(syntax))
	}
}

// WithTypeTranslator installs a per-value rendering hook for Script.
func WithTypeTranslator(hook translate.TypeTranslator) Option {
	return func(o *options) {
		o.script = append(o.script, translate.WithTypeTranslator(hook))
	}
}

// Script renders a recording as a script chained from the configured
// source symbol.
func Script(bc *bytecode.Bytecode, opts ...Option) (string, error) {
	o := collectOptions(opts...)
	return translate.NewScript(o.source, o.script...).Translate(bc)
}

// Eval translates a recording against a live graph and drains the
// resulting traversal. Each call starts from a fresh traversal source on
// g, so side effects and options recorded in the bytecode do not leak
// between calls.
func Eval(ctx context.Context, g *graph.Graph, bc *bytecode.Bytecode) ([]any, error) {
	t, err := graph.NewStepTranslator(g.Traversal()).Translate(bc)
	if err != nil {
		return nil, err
	}
	return t.ToList(ctx)
}
