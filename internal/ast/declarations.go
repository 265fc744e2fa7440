package ast

// FunctionFlags bundles the modifier flags a function/method declaration
// can carry.
type FunctionFlags struct {
	Async               bool
	Generator           bool
	Override            bool
	Abstract            bool
	Static              bool
	IsOverloadSignature bool // body == nil, paired with a later implementation
}

// FunctionDecl is a named function declaration or a class method; the
// same shape also represents overload signatures (Body == nil).
type FunctionDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	ThisType   TypeExpression
	Params     []Param
	ReturnType TypeExpression
	Predicate  *TypePredicateNode
	Body       *Block // nil for an overload signature or interface method
	Flags      FunctionFlags
	Decorators []Decorator
	Visibility Visibility
}

func (*FunctionDecl) stmtNode() {}

// FieldDecl is a class field (property) declaration.
type FieldDecl struct {
	Base
	Name               string
	PrivateName        bool // true for `#name`
	Type               TypeExpression
	Initializer        Expression
	Static             bool
	Readonly           bool
	Abstract           bool
	DefiniteAssignment bool // `name!: T`
	Visibility         Visibility
	Decorators         []Decorator
}

func (*FieldDecl) stmtNode() {}

// AccessorKind distinguishes a getter from a setter.
type AccessorKind int

const (
	AccessorGet AccessorKind = iota
	AccessorSet
)

// AccessorDecl is a `get`/`set` class member.
type AccessorDecl struct {
	Base
	Kind       AccessorKind
	Name       string
	Params     []Param // empty for get, one param for set
	ReturnType TypeExpression
	Body       *Block
	Static     bool
	Visibility Visibility
	Decorators []Decorator
}

func (*AccessorDecl) stmtNode() {}

// AutoAccessorDecl is an `accessor name: T` class field (Stage-3
// decorators' auto-accessor sugar: desugars to a private backing field
// plus a get/set pair).
type AutoAccessorDecl struct {
	Base
	Name        string
	Type        TypeExpression
	Initializer Expression
	Static      bool
	Visibility  Visibility
	Decorators  []Decorator
}

func (*AutoAccessorDecl) stmtNode() {}

// ClassMember is any statement that can appear in a class body: FieldDecl,
// FunctionDecl (method), AccessorDecl, AutoAccessorDecl, or StaticBlock.
type ClassMember = Statement

// ClassDecl is a class declaration.
type ClassDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	Extends    TypeExpression
	Implements []TypeExpression
	Members    []ClassMember
	Abstract   bool
	Decorators []Decorator
}

func (*ClassDecl) stmtNode() {}

// InterfaceDecl is an interface declaration.
type InterfaceDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	Extends    []TypeExpression
	Members    []ObjectTypeMember
}

func (*InterfaceDecl) stmtNode() {}

// NamespaceDecl is `namespace N { ... }`.
type NamespaceDecl struct {
	Base
	Name    string
	Members []Statement
}

func (*NamespaceDecl) stmtNode() {}

// TypeAliasDecl is `type Name<T> = ...`.
type TypeAliasDecl struct {
	Base
	Name       string
	TypeParams []TypeParam
	Type       TypeExpression
}

func (*TypeAliasDecl) stmtNode() {}

// EnumMember is one member of an EnumDecl.
type EnumMember struct {
	Name        string
	Initializer Expression // nil for an auto-incremented numeric member
}

// EnumDecl is an enum declaration.
type EnumDecl struct {
	Base
	Name    string
	Const   bool
	Members []EnumMember
}

func (*EnumDecl) stmtNode() {}

// ImportSpecifier is one named binding in an import/export clause.
type ImportSpecifier struct {
	Imported string
	Local    string
	TypeOnly bool
}

// ImportDecl is an `import { a, b as c } from "mod"` or
// `import Default from "mod"` or `import * as NS from "mod"` declaration.
type ImportDecl struct {
	Base
	Default    string // "" if absent
	Namespace  string // "" if absent (no `* as NS`)
	Specifiers []ImportSpecifier
	Module     string
	TypeOnly   bool
}

func (*ImportDecl) stmtNode() {}

// ImportAliasDecl is `import Alias = Namespace.Member` (TS namespace
// import-equals form).
type ImportAliasDecl struct {
	Base
	Name string
	Path []string
}

func (*ImportAliasDecl) stmtNode() {}

// ExportDecl wraps a declaration being exported, or carries bare
// specifiers for `export { a, b }` / `export { a } from "mod"`.
type ExportDecl struct {
	Base
	Decl       Statement // non-nil for `export <decl>`
	Specifiers []ImportSpecifier
	Module     string // "" unless re-exporting from another module
	Default    bool
	TypeOnly   bool
}

func (*ExportDecl) stmtNode() {}
