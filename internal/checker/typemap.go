package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// TypeMap is a side channel: AST node identity ->
// resolved TypeInfo, populated by the checker and consumed by the
// evaluator for type-dependent runtime decisions (numeric coercion paths,
// enum member resolution) and by the (out-of-scope) emitter.
type TypeMap struct {
	nodes map[ast.Node]types.Info
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{nodes: make(map[ast.Node]types.Info)}
}

// Set records the resolved type of an AST node.
func (m *TypeMap) Set(n ast.Node, t types.Info) {
	m.nodes[n] = t
}

// Get returns the resolved type of an AST node, if the checker recorded one.
func (m *TypeMap) Get(n ast.Node) (types.Info, bool) {
	t, ok := m.nodes[n]
	return t, ok
}

// TypeOf is a convenience for call sites (the evaluator) that want `any`
// as a fallback when a node was never type-checked (e.g. dynamically
// constructed nodes from destructuring desugaring performed after the
// checker ran).
func (m *TypeMap) TypeOf(n ast.Node) types.Info {
	if t, ok := m.nodes[n]; ok {
		return t
	}
	return types.Any
}
