// Package compiler implements the recursive-descent parser, interleaved
// domain/type semantic analysis, and code emission for AtomC. There is
// no persisted AST: every grammar rule both checks and emits as it goes,
// the way the original syntactic_analyzer/analyzer.py walks the token
// stream rule by rule, grounded directly in the codegen/vm instruction
// contracts it emits into.
package compiler

import "github.com/codeassociates/atomc/types"

// Returned is the result of analyzing one expression: its type, whether
// it currently denotes a storage location (l-value) or an
// already-computed value (r-value), and whether it is a compile-time
// constant, grounded on atomc/type_analyzer/returned.py. Constants are
// never l-values and array-typed expressions are never scalar.
type Returned struct {
	Type   types.Type
	IsLval bool
	IsCt   bool
}

func rvalue(t types.Type) *Returned { return &Returned{Type: t} }

func constant(t types.Type) *Returned { return &Returned{Type: t, IsCt: true} }

func lvalue(t types.Type) *Returned { return &Returned{Type: t, IsLval: true} }
