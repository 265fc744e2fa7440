package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// resolveType turns a syntactic ast.TypeExpression into a types.Info value,
// nil input (an omitted annotation) resolves to `any`.
func (c *Checker) resolveType(t ast.TypeExpression) types.Info {
	if t == nil {
		return types.Any
	}
	switch n := t.(type) {
	case *ast.PrimitiveTypeNode:
		return resolvePrimitiveName(n.Name)
	case *ast.LiteralTypeNode:
		return resolveLiteralTypeNode(n)
	case *ast.ThisTypeNode:
		return types.This
	case *ast.ArrayTypeNode:
		return &types.Array{Elem: c.resolveType(n.Elem)}
	case *ast.TupleTypeNode:
		return c.resolveTupleType(n)
	case *ast.UnionTypeNode:
		return c.resolveUnionType(n)
	case *ast.IntersectionTypeNode:
		return c.resolveIntersectionType(n)
	case *ast.FunctionPointerTypeNode:
		return c.resolveFunctionPointerType(n)
	case *ast.ObjectTypeNode:
		return c.resolveObjectTypeNode(n)
	case *ast.KeyOfTypeNode:
		return &types.KeyOf{Source: c.resolveType(n.Source)}
	case *ast.TypeOfTypeNode:
		return c.resolveTypeOfNode(n)
	case *ast.MappedTypeNode:
		return c.resolveMappedType(n)
	case *ast.ConditionalTypeNode:
		return &types.Conditional{
			Check:   c.resolveType(n.Check),
			Extends: c.resolveType(n.Extends),
			True:    c.resolveType(n.True),
			False:   c.resolveType(n.False),
		}
	case *ast.InferTypeNode:
		// Bare `infer R` outside a conditional's Extends is treated as an
		// unconstrained type parameter; within a conditional it is bound by
		// inferTypeParams (generics.go) before the branches are resolved.
		if tp, ok := c.typeParams.Get(n.Name); ok {
			return tp
		}
		return &types.TypeParameter{Name: n.Name}
	case *ast.TemplateLiteralTypeNode:
		parts := append([]string(nil), n.Parts...)
		infos := make([]types.Info, len(n.Types))
		for i, ty := range n.Types {
			infos[i] = c.resolveType(ty)
		}
		return &types.TemplateLiteral{Parts: parts, Types: infos}
	case *ast.TypePredicateNode:
		return c.resolveTypePredicateNode(n)
	case *ast.TypeAnnotation:
		return c.resolveTypeAnnotation(n)
	}
	return types.Any
}

func resolvePrimitiveName(name string) types.Info {
	switch name {
	case "string":
		return types.String
	case "number":
		return types.Number
	case "boolean":
		return types.Boolean
	case "bigint":
		return types.BigIntT
	case "symbol":
		return types.SymbolT
	case "null":
		return types.Null
	case "undefined":
		return types.Undefined
	case "void":
		return types.Void
	case "any":
		return types.Any
	case "unknown":
		return types.Unknown
	case "never":
		return types.Never
	case "object":
		return &types.Record{Key: types.String, Value: types.Unknown}
	}
	return types.Any
}

func resolveLiteralTypeNode(n *ast.LiteralTypeNode) types.Info {
	switch n.Kind {
	case ast.LitString:
		return &types.Literal{LKind: types.LitString, Str: n.Str}
	case ast.LitNumber:
		return &types.Literal{LKind: types.LitNumber, Num: n.Number}
	case ast.LitBoolean:
		return &types.Literal{LKind: types.LitBoolean, Bool: n.Boolean}
	case ast.LitBigInt:
		return &types.Literal{LKind: types.LitBigInt, BigInt: n.Str}
	}
	return types.Any
}

func (c *Checker) resolveTupleType(n *ast.TupleTypeNode) *types.Tuple {
	elems := make([]types.TupleElement, len(n.Elements))
	required := 0
	seenOptionalOrRest := false
	for i, e := range n.Elements {
		kind := types.TupleRequired
		switch e.Kind {
		case ast.TupleOptional:
			kind = types.TupleOptional
		case ast.TupleRest:
			kind = types.TupleRest
		}
		if kind == types.TupleRequired && !seenOptionalOrRest {
			required++
		} else {
			seenOptionalOrRest = true
		}
		elems[i] = types.TupleElement{Kind: kind, Type: c.resolveType(e.Type), Label: e.Label}
	}
	return &types.Tuple{Elements: elems, Required: required}
}

func (c *Checker) resolveUnionType(n *ast.UnionTypeNode) types.Info {
	members := make([]types.Info, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, c.resolveType(m))
	}
	if len(members) == 1 {
		return members[0]
	}
	return &types.Union{Members: members}
}

func (c *Checker) resolveIntersectionType(n *ast.IntersectionTypeNode) types.Info {
	members := make([]types.Info, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, c.resolveType(m))
	}
	if len(members) == 1 {
		return members[0]
	}
	return &types.Intersection{Members: members}
}

func (c *Checker) resolveFunctionPointerType(n *ast.FunctionPointerTypeNode) *types.Function {
	scope := c.pushTypeParamScope(n.TypeParams)
	defer c.popTypeParamScope(scope)

	fn := &types.Function{Return: c.resolveType(n.Return)}
	for _, tp := range n.TypeParams {
		fn.TypeParams = append(fn.TypeParams, tp.Name)
	}
	required := 0
	seenOptionalOrRest := false
	for _, p := range n.Params {
		fp := types.FunctionParam{
			Name:     p.Name,
			Type:     c.resolveType(p.Type),
			Optional: p.Modifiers.Optional || p.Default != nil,
			Rest:     p.Modifiers.Rest,
		}
		if !fp.Optional && !fp.Rest && !seenOptionalOrRest {
			required++
		} else {
			seenOptionalOrRest = true
		}
		fn.Params = append(fn.Params, fp)
	}
	fn.Required = required
	if n.ThisType != nil {
		fn.ThisType = c.resolveType(n.ThisType)
	}
	if n.Predicate != nil {
		fn.Predicate = c.resolveTypePredicateNode(n.Predicate)
	}
	return fn
}

func (c *Checker) resolveObjectTypeNode(n *ast.ObjectTypeNode) types.Info {
	iface := &types.Interface{Members: make(map[string]*types.Member)}
	for _, m := range n.Members {
		switch m.Kind {
		case ast.MemberProperty:
			iface.Members[m.Name] = &types.Member{Type: c.resolveType(m.Type), Optional: m.Optional, Readonly: m.Readonly}
		case ast.MemberMethod:
			iface.Members[m.Name] = &types.Member{Type: c.resolveMethodSignature(m), Optional: m.Optional}
		case ast.MemberIndexSignature:
			iface.IndexSignatures = append(iface.IndexSignatures, types.IndexSignature{
				KeyType: c.resolveType(m.IndexKeyType),
				Value:   c.resolveType(m.Type),
			})
		case ast.MemberCallSignature:
			iface.CallSignatures = append(iface.CallSignatures, c.resolveMethodSignature(m))
		case ast.MemberConstructSignature:
			iface.ConstructSignatures = append(iface.ConstructSignatures, c.resolveMethodSignature(m))
		}
	}
	return iface
}

func (c *Checker) resolveMethodSignature(m ast.ObjectTypeMember) *types.Function {
	scope := c.pushTypeParamScope(m.TypeParams)
	defer c.popTypeParamScope(scope)

	fn := &types.Function{Return: c.resolveType(m.Type)}
	required := 0
	seenOptionalOrRest := false
	for _, p := range m.Params {
		fp := types.FunctionParam{
			Name:     p.Name,
			Type:     c.resolveType(p.Type),
			Optional: p.Modifiers.Optional || p.Default != nil,
			Rest:     p.Modifiers.Rest,
		}
		if !fp.Optional && !fp.Rest && !seenOptionalOrRest {
			required++
		} else {
			seenOptionalOrRest = true
		}
		fn.Params = append(fn.Params, fp)
	}
	fn.Required = required
	return fn
}

func (c *Checker) resolveTypeOfNode(n *ast.TypeOfTypeNode) types.Info {
	if len(n.Path) == 0 {
		return types.Any
	}
	t, ok := c.env.Get(n.Path[0])
	if !ok {
		return types.Any
	}
	for _, name := range n.Path[1:] {
		if m := memberTable(t); m != nil {
			if mem, ok := m[name]; ok {
				t = mem.Type
				continue
			}
		}
		return types.Any
	}
	path := n.Path[0]
	for _, p := range n.Path[1:] {
		path += "." + p
	}
	return &types.TypeOf{Path: path, Resolved: t}
}

func (c *Checker) resolveMappedType(n *ast.MappedTypeNode) *types.Mapped {
	scope := c.typeParams.Child()
	prevTP := c.typeParams
	c.typeParams = scope
	scope.Define(n.KeyName, types.Any)
	defer func() { c.typeParams = prevTP }()

	m := &types.Mapped{
		KeyName:    n.KeyName,
		Constraint: c.resolveType(n.Constraint),
		Value:      c.resolveType(n.Value),
		Readonly:   types.Modifier(n.ReadonlyMod),
		Optional:   types.Modifier(n.OptionalMod),
	}
	if n.KeyRemap != nil {
		m.KeyRemap = c.resolveType(n.KeyRemap)
	}
	return m
}

func (c *Checker) resolveTypePredicateNode(n *ast.TypePredicateNode) *types.TypePredicate {
	tp := &types.TypePredicate{ParamName: n.ParamName, IsAssertion: n.IsAssertion}
	if n.Type != nil {
		tp.Narrowed = c.resolveType(n.Type)
	}
	return tp
}

// resolveTypeAnnotation resolves a named type reference, handling type
// parameters, aliases, classes/interfaces (instantiated with type
// arguments), and builtin generic shapes (Array<T>, Record<K,V>,
// Partial/Readonly/Pick/Omit).
func (c *Checker) resolveTypeAnnotation(n *ast.TypeAnnotation) types.Info {
	if n.InlineType != nil {
		return c.resolveType(n.InlineType)
	}
	if tp, ok := c.typeParams.Get(n.Name); ok {
		return tp
	}
	args := make([]types.Info, len(n.TypeArgs))
	for i, a := range n.TypeArgs {
		args[i] = c.resolveType(a)
	}

	switch n.Name {
	case "Array", "ReadonlyArray":
		if len(args) == 1 {
			return &types.Array{Elem: args[0]}
		}
		return &types.Array{Elem: types.Any}
	case "Record":
		if len(args) == 2 {
			return &types.Record{Key: args[0], Value: args[1]}
		}
		return &types.Record{Key: types.String, Value: types.Any}
	case "Promise":
		elem := types.Any
		if len(args) == 1 {
			elem = args[0]
		}
		return &types.Instance{Target: builtinPromiseClass, TypeArgs: []types.Info{elem}}
	case "Partial", "Required", "Readonly":
		if len(args) == 1 {
			return mapAllMembers(args[0], n.Name)
		}
	case "Pick", "Omit":
		if len(args) == 2 {
			return pickOrOmit(args[0], args[1], n.Name == "Omit")
		}
	}

	if alias, ok := c.aliases[n.Name]; ok {
		// Generic alias instantiation substitutes the alias's own type
		// parameters with args; see instantiateAlias in generics.go.
		return c.instantiateAlias(n.Name, alias, args)
	}
	if cls, ok := c.classes[n.Name]; ok {
		return &types.Instance{Target: cls, TypeArgs: args}
	}
	if iface, ok := c.interfaces[n.Name]; ok {
		return &types.Instance{Target: iface, TypeArgs: args}
	}
	if _, ok := c.env.Get(n.Name); ok {
		// A value used in type position that isn't a known type name
		// (e.g. an unresolved forward reference); fall back permissively.
		return types.Any
	}
	return types.Any
}

// mapAllMembers implements Partial<T>/Required<T>/Readonly<T> over an
// object-shaped T supplemented builtin utility types.
func mapAllMembers(t types.Info, which string) types.Info {
	members := memberTable(t)
	if members == nil {
		return t
	}
	out := make(map[string]*types.Member, len(members))
	for k, m := range members {
		nm := &types.Member{Type: m.Type, Optional: m.Optional, Readonly: m.Readonly}
		switch which {
		case "Partial":
			nm.Optional = true
		case "Required":
			nm.Optional = false
		case "Readonly":
			nm.Readonly = true
		}
		out[k] = nm
	}
	return &types.Interface{Name: which + "<" + t.String() + ">", Members: out}
}

func pickOrOmit(t, keys types.Info, omit bool) types.Info {
	members := memberTable(t)
	if members == nil {
		return t
	}
	want := literalKeySet(keys)
	out := make(map[string]*types.Member)
	for k, m := range members {
		_, inSet := want[k]
		if inSet == omit {
			continue
		}
		out[k] = m
	}
	name := "Pick"
	if omit {
		name = "Omit"
	}
	return &types.Interface{Name: name + "<" + t.String() + ">", Members: out}
}

func literalKeySet(keys types.Info) map[string]struct{} {
	out := make(map[string]struct{})
	switch k := keys.(type) {
	case *types.Literal:
		if k.LKind == types.LitString {
			out[k.Str] = struct{}{}
		}
	case *types.Union:
		for _, m := range k.Members {
			for name := range literalKeySet(m) {
				out[name] = struct{}{}
			}
		}
	}
	return out
}

// pushTypeParamScope/popTypeParamScope bind a declaration's own type
// parameters (and their constraints) for the duration of resolving its
// signature, so `T` inside `function f<T extends U>(x: T): T` resolves to
// a TypeParameter rather than an unknown type name.
func (c *Checker) pushTypeParamScope(params []ast.TypeParam) *TypeEnvironment {
	prev := c.typeParams
	scope := prev.Child()
	c.typeParams = scope
	for _, p := range params {
		tp := &types.TypeParameter{Name: p.Name, ConstParam: p.Const}
		scope.Define(p.Name, tp)
	}
	for _, p := range params {
		tp, _ := scope.Get(p.Name)
		tparam := tp.(*types.TypeParameter)
		if p.Constraint != nil {
			tparam.Constraint = c.resolveType(p.Constraint)
		}
		if p.Default != nil {
			tparam.Default = c.resolveType(p.Default)
		}
	}
	return prev
}

func (c *Checker) popTypeParamScope(prev *TypeEnvironment) {
	c.typeParams = prev
}
