// Package bytecode provides the language-neutral recording of a graph
// traversal: an ordered list of source instructions (configuring the
// traversal source) followed by an ordered list of step instructions
// (the traversal itself), where each instruction is an operation name
// plus an ordered argument list.
//
// Arguments may be primitive literals, enumerated constants, predicates,
// bindings, or nested *Bytecode values describing anonymous child
// traversals. The container records; it never interprets. Translators
// (package translate) convert a recording into a script or into an
// executable traversal.
//
// # Mutability
//
// Bytecode is built up through AddSource and AddStep, typically by the
// fluent recorders in package traversal. Once handed to a translator it
// is treated as read-only input: all read access goes through index-based
// accessors or copy-returning methods, so a translator cannot mutate the
// recording it was given.
//
//	bc := bytecode.New()
//	bc.AddStep("V")
//	bc.AddStep("has", "name", "marko")
//	for i := 0; i < bc.StepCount(); i++ {
//		in := bc.StepAt(i)
//		fmt.Println(in.Operation(), in.ArgCount())
//	}
package bytecode
