// Package translate converts bytecode recordings into target forms: a
// script in a target dialect, or an executable traversal bound to a live
// traversal source.
//
// Translator is the shared contract. Script fixes the output to text and
// adds the TypeTranslator hook for per-value rendering customization. Step
// fixes the output to an executable traversal and drives an engine-supplied
// Applier instead of rendering text.
//
// Translators are immutable after construction. Translate never mutates its
// input and is safe for concurrent use, provided the installed hook and the
// engine collaborators tolerate concurrent reads. Translation is synchronous
// and performs no I/O; cyclic bytecode is caller error and is not detected.
package translate

import (
	"github.com/wander-lang/wander/bytecode"
)

// Translator converts bytecode rooted at a traversal source of type S into
// an output of type T.
type Translator[S, T any] interface {
	// TraversalSource returns the source representation the translation is
	// rooted at. Fixed at construction.
	TraversalSource() S

	// Translate converts the recording. It is deterministic, never mutates
	// the input, and fails with a translation Error rather than producing
	// partial output.
	Translate(bc *bytecode.Bytecode) (T, error)

	// TargetLanguage identifies the output dialect or runtime. Fixed at
	// construction, never empty.
	TargetLanguage() string
}

// ScriptTranslator is the text-producing specialization: the traversal
// source is the script symbol the rendered chain is rooted at.
type ScriptTranslator = Translator[string, string]
