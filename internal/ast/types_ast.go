package ast

// This file holds the syntactic (pre-checking) representation of type
// annotations as written in source. The checker (internal/checker)
// resolves these into types.Info values; nothing here carries semantic
// meaning on its own.

// TypeAnnotation is a named type reference, optionally generic
// (`Foo`, `Array<string>`, `Partial<Readonly<D>>`).
type TypeAnnotation struct {
	Base
	Name       string
	TypeArgs   []TypeExpression
	InlineType TypeExpression // set instead of Name for object-type-literal annotations
}

func (*TypeAnnotation) typeExprNode() {}

// ArrayTypeNode is `T[]`.
type ArrayTypeNode struct {
	Base
	Elem TypeExpression
}

func (*ArrayTypeNode) typeExprNode() {}

// TupleElementKind classifies a TupleTypeNode element slot.
type TupleElementKind int

const (
	TupleRequired TupleElementKind = iota
	TupleOptional
	TupleRest
)

// TupleElementNode is one slot of a tuple type.
type TupleElementNode struct {
	Kind  TupleElementKind
	Label string // optional named-tuple label, "" if unlabeled
	Type  TypeExpression
}

// TupleTypeNode is `[number, string?, ...boolean[]]`.
type TupleTypeNode struct {
	Base
	Elements []TupleElementNode
}

func (*TupleTypeNode) typeExprNode() {}

// UnionTypeNode is `A | B | C`.
type UnionTypeNode struct {
	Base
	Members []TypeExpression
}

func (*UnionTypeNode) typeExprNode() {}

// IntersectionTypeNode is `A & B`.
type IntersectionTypeNode struct {
	Base
	Members []TypeExpression
}

func (*IntersectionTypeNode) typeExprNode() {}

// FunctionPointerTypeNode is `(a: number, b: string) => boolean`.
type FunctionPointerTypeNode struct {
	Base
	TypeParams []TypeParam
	Params     []Param
	ThisType   TypeExpression
	Return     TypeExpression
	Predicate  *TypePredicateNode
}

func (*FunctionPointerTypeNode) typeExprNode() {}

// ObjectTypeMemberKind narrows an ObjectTypeNode member.
type ObjectTypeMemberKind int

const (
	MemberProperty ObjectTypeMemberKind = iota
	MemberMethod
	MemberIndexSignature
	MemberCallSignature
	MemberConstructSignature
)

// ObjectTypeMember is one member of an inline object-type literal or an
// interface body.
type ObjectTypeMember struct {
	Kind         ObjectTypeMemberKind
	Name         string
	Optional     bool
	Readonly     bool
	Type         TypeExpression // property/method type
	IndexKey     string         // index signature parameter name
	IndexKeyType TypeExpression // string | number | symbol
	Params       []Param        // for method/call/construct signatures
	TypeParams   []TypeParam
}

// ObjectTypeNode is an inline `{ a: number; b?: string }` type literal.
type ObjectTypeNode struct {
	Base
	Members []ObjectTypeMember
}

func (*ObjectTypeNode) typeExprNode() {}

// KeyOfTypeNode is `keyof T`.
type KeyOfTypeNode struct {
	Base
	Source TypeExpression
}

func (*KeyOfTypeNode) typeExprNode() {}

// TypeOfTypeNode is `typeof expr` used in type position.
type TypeOfTypeNode struct {
	Base
	Path []string // dotted expression path, e.g. ["foo", "bar"]
}

func (*TypeOfTypeNode) typeExprNode() {}

// MappedTypeNode is `{ [K in keyof T]?: U }` with optional `readonly`/`-readonly`
// and `+?`/`-?` modifiers.
type MappedTypeNode struct {
	Base
	KeyName     string
	Constraint  TypeExpression // the `keyof T` (or other) constraint
	KeyRemap    TypeExpression // the `as NewKey` clause, nil if absent
	Value       TypeExpression
	ReadonlyMod Modifier
	OptionalMod Modifier
}

func (*MappedTypeNode) typeExprNode() {}

// Modifier encodes the three states a mapped-type `readonly`/`?` modifier
// can take: absent, add (`+`/bare), or remove (`-`).
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierAdd
	ModifierRemove
)

// ConditionalTypeNode is `Check extends Extends ? True : False`.
type ConditionalTypeNode struct {
	Base
	Check   TypeExpression
	Extends TypeExpression
	True    TypeExpression
	False   TypeExpression
}

func (*ConditionalTypeNode) typeExprNode() {}

// InferTypeNode is `infer R` inside a ConditionalTypeNode's Extends clause.
type InferTypeNode struct {
	Base
	Name string
}

func (*InferTypeNode) typeExprNode() {}

// TemplateLiteralTypeNode is “ `prefix-${T}-suffix` “ in type position.
type TemplateLiteralTypeNode struct {
	Base
	Parts []string // literal parts, len == len(Types)+1
	Types []TypeExpression
}

func (*TemplateLiteralTypeNode) typeExprNode() {}

// ThisTypeNode is the `this` type used as a return annotation.
type ThisTypeNode struct{ Base }

func (*ThisTypeNode) typeExprNode() {}

// PrimitiveTypeNode covers the fixed keyword types (`string`, `number`,
// `boolean`, `bigint`, `symbol`, `null`, `undefined`, `void`, `any`,
// `unknown`, `never`, `object`).
type PrimitiveTypeNode struct {
	Base
	Name string
}

func (*PrimitiveTypeNode) typeExprNode() {}

// LiteralTypeNode is a literal used as a type (`"a"`, `42`, `true`).
type LiteralTypeNode struct {
	Base
	Kind    LiteralKind
	Str     string
	Number  float64
	Boolean bool
}

func (*LiteralTypeNode) typeExprNode() {}

// TypePredicateNode is a function return annotation `x is T`,
// `asserts x is T`, or `asserts x`.
type TypePredicateNode struct {
	Base
	ParamName   string
	Type        TypeExpression // nil for bare `asserts x`
	IsAssertion bool
}

func (*TypePredicateNode) typeExprNode() {}

// TypeParam is a generic type parameter declaration, `T extends U = D`,
// optionally `const`.
type TypeParam struct {
	Base
	Name       string
	Constraint TypeExpression
	Default    TypeExpression
	Const      bool
	Out        bool // variance annotation, accepted but only informally enforced
	In         bool
}

// ParamModifiers bundles the flags a constructor/function parameter can
// carry.
type ParamModifiers struct {
	Rest                bool
	Optional            bool
	HasDefault          bool
	IsParameterProperty bool // `public x: T` in a constructor signature
	Readonly            bool
	Visibility          Visibility
	Decorators          []Decorator
}

// Visibility is the accessibility of a class member or parameter property.
type Visibility int

const (
	VisibilityDefault Visibility = iota // unspecified -> public
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
)

// Param is one function/method/constructor parameter.
type Param struct {
	Base
	Name      string
	Pattern   Expression // non-nil for destructuring parameters; Name is "" then
	Type      TypeExpression
	Default   Expression
	Modifiers ParamModifiers
}
