// Package ast defines the immutable TypeScript abstract syntax tree used
// by the parser, checker, and evaluator Every node
// carries only its syntactic children plus a source span; no node holds a
// raw string in place of a child expression or token.
package ast

import "github.com/sharpts-lang/sharpts/internal/token"

// Node is the root interface implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Expression is implemented by every expression node variant.
type Expression interface {
	Node
	exprNode()
}

// Statement is implemented by every statement node variant.
type Statement interface {
	Node
	stmtNode()
}

// TypeExpression is the syntactic (pre-checking) representation of a type
// annotation, as written in source (`string`, `Foo<Bar>`, `keyof T`, a
// mapped type, ...). The checker resolves these into types.Info values.
type TypeExpression interface {
	Node
	typeExprNode()
}

// Base embeds the common span field; concrete node structs embed Base
// instead of repeating the field and its Span() method.
type Base struct {
	span token.Span
}

func (b Base) Span() token.Span { return b.span }

// NewBase is used by the parser to stamp every node with its source span
// when construction happens outside this package's own constructors.
func NewBase(span token.Span) Base { return Base{span: span} }

// Program is the root node produced by parsing one source file.
type Program struct {
	Base
	Statements    []Statement
	DecoratorMode DecoratorMode
}

func (p *Program) stmtNode() {}

// DecoratorMode selects which decorator semantics a source file uses
// (decided per file, Stage-3 by default).
type DecoratorMode int

const (
	DecoratorStage3 DecoratorMode = iota
	DecoratorStage2
)

// Decorator wraps the expression written after '@' on a decoratable
// construct (class, method, accessor, field, parameter).
type Decorator struct {
	Base
	Expr Expression
}

// Identifier is a bare name reference, reused as a child of many nodes
// (Variable expressions, binding names, property keys, type names).
type Identifier struct {
	Base
	Name string
}

func (i *Identifier) exprNode()     {}
func (i *Identifier) typeExprNode() {}
