package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// functionDeclType resolves a FunctionDecl's signature into a types.Function
// without checking its body (used by hoist so forward references and
// mutual recursion resolve before any body is checked).
func (c *Checker) functionDeclType(f *ast.FunctionDecl) *types.Function {
	scope := c.pushTypeParamScope(f.TypeParams)
	defer c.popTypeParamScope(scope)

	fn := &types.Function{Return: c.resolveType(f.ReturnType)}
	for _, tp := range f.TypeParams {
		fn.TypeParams = append(fn.TypeParams, tp.Name)
	}
	required := 0
	seenOptionalOrRest := false
	for _, p := range f.Params {
		optional := p.Modifiers.Optional || p.Default != nil
		fp := types.FunctionParam{Name: p.Name, Type: c.resolveType(p.Type), Optional: optional, Rest: p.Modifiers.Rest}
		if !optional && !p.Modifiers.Rest && !seenOptionalOrRest {
			required++
		} else {
			seenOptionalOrRest = true
		}
		fn.Params = append(fn.Params, fp)
	}
	fn.Required = required
	if f.ThisType != nil {
		fn.ThisType = c.resolveType(f.ThisType)
	}
	if f.Predicate != nil {
		fn.Predicate = c.resolveTypePredicateNode(f.Predicate)
	}
	if f.Flags.Async && fn.Return.Kind() != types.KindAny {
		if _, alreadyPromise := fn.Return.(*types.Instance); !alreadyPromise {
			fn.Return = &types.Instance{Target: builtinPromiseClass, TypeArgs: []types.Info{fn.Return}}
		}
	}
	return fn
}

// hoistClassShape builds the nominal Class shape (member signatures, super
// link, implements list) without checking method bodies. Method/field bodies are checked in the second pass via
// checkClassBody.
func (c *Checker) hoistClassShape(decl *ast.ClassDecl) *types.Class {
	scope := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParamScope(scope)

	cls := &types.Class{
		Name:          decl.Name,
		Members:       make(map[string]*types.Member),
		StaticMembers: make(map[string]*types.Member),
		Abstract:      decl.Abstract,
	}
	for _, tp := range decl.TypeParams {
		cls.TypeParams = append(cls.TypeParams, tp.Name)
	}
	if decl.Extends != nil {
		if inst, ok := c.resolveType(decl.Extends).(*types.Instance); ok {
			cls.Super = inst
		} else if super, ok := c.resolveType(decl.Extends).(*types.Class); ok {
			cls.Super = &types.Instance{Target: super}
		}
	}
	for _, impl := range decl.Implements {
		if inst, ok := c.resolveType(impl).(*types.Instance); ok {
			cls.Implements = append(cls.Implements, inst)
		}
	}

	for _, member := range decl.Members {
		c.hoistClassMember(member, cls)
	}
	return cls
}

func (c *Checker) hoistClassMember(member ast.ClassMember, cls *types.Class) {
	switch m := member.(type) {
	case *ast.FieldDecl:
		target := cls.Members
		if m.Static {
			target = cls.StaticMembers
		}
		name := m.Name
		if m.PrivateName {
			name = "#" + name
		}
		target[name] = &types.Member{
			Type:       c.resolveType(m.Type),
			Readonly:   m.Readonly,
			Visibility: int(m.Visibility),
		}
	case *ast.FunctionDecl:
		target := cls.Members
		if m.Flags.Static {
			target = cls.StaticMembers
		}
		target[m.Name] = &types.Member{Type: c.functionDeclType(m), Visibility: int(m.Visibility)}
	case *ast.AccessorDecl:
		target := cls.Members
		if m.Static {
			target = cls.StaticMembers
		}
		ty := c.resolveType(m.ReturnType)
		if m.Kind == ast.AccessorSet && len(m.Params) == 1 {
			ty = c.resolveType(m.Params[0].Type)
		}
		target[m.Name] = &types.Member{Type: ty, Visibility: int(m.Visibility)}
	case *ast.AutoAccessorDecl:
		target := cls.Members
		if m.Static {
			target = cls.StaticMembers
		}
		target[m.Name] = &types.Member{Type: c.resolveType(m.Type), Visibility: int(m.Visibility)}
	}
}

// hoistInterfaceShape builds a structural Interface type from a declaration.
func (c *Checker) hoistInterfaceShape(decl *ast.InterfaceDecl) *types.Interface {
	scope := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParamScope(scope)

	iface := &types.Interface{Name: decl.Name, Members: make(map[string]*types.Member)}
	for _, tp := range decl.TypeParams {
		iface.TypeParams = append(iface.TypeParams, tp.Name)
	}
	for _, ext := range decl.Extends {
		iface.Extends = append(iface.Extends, c.resolveType(ext))
	}
	for _, m := range decl.Members {
		switch m.Kind {
		case ast.MemberProperty:
			iface.Members[m.Name] = &types.Member{Type: c.resolveType(m.Type), Optional: m.Optional, Readonly: m.Readonly}
		case ast.MemberMethod:
			iface.Members[m.Name] = &types.Member{Type: c.resolveMethodSignature(m), Optional: m.Optional}
		case ast.MemberIndexSignature:
			iface.IndexSignatures = append(iface.IndexSignatures, types.IndexSignature{
				KeyType: c.resolveType(m.IndexKeyType), Value: c.resolveType(m.Type),
			})
		case ast.MemberCallSignature:
			iface.CallSignatures = append(iface.CallSignatures, c.resolveMethodSignature(m))
		case ast.MemberConstructSignature:
			iface.ConstructSignatures = append(iface.ConstructSignatures, c.resolveMethodSignature(m))
		}
	}
	// Flatten extended interfaces' members so a single Members map serves
	// as the whole structural shape for assignability checks.
	for _, ext := range iface.Extends {
		for name, mem := range memberTable(ext) {
			if _, exists := iface.Members[name]; !exists {
				iface.Members[name] = mem
			}
		}
	}
	return iface
}

// hoistEnumShape resolves an enum's member values. A member without an
// initializer that follows a string member is reported; numeric members
// auto-increment from the previous member (or 0)
func (c *Checker) hoistEnumShape(decl *ast.EnumDecl) *types.Enum {
	e := &types.Enum{Name: decl.Name, Const: decl.Const}
	kind := types.EnumNumeric
	next := 0.0
	afterString := false
	for _, m := range decl.Members {
		switch init := m.Initializer.(type) {
		case nil:
			if afterString {
				c.errorf(decl, "enum member %q must have an initializer", m.Name)
			}
			e.Members = append(e.Members, types.EnumMember{Name: m.Name, NumberVal: next})
			next++
		case *ast.Literal:
			switch init.Kind {
			case ast.LitString:
				kind = mixedKind(kind, types.EnumString)
				afterString = true
				e.Members = append(e.Members, types.EnumMember{Name: m.Name, StringVal: init.Str, IsString: true})
			case ast.LitNumber:
				afterString = false
				next = init.Number
				e.Members = append(e.Members, types.EnumMember{Name: m.Name, NumberVal: next})
				next++
			default:
				kind = types.EnumHeterogeneous
				e.Members = append(e.Members, types.EnumMember{Name: m.Name})
			}
		default:
			// Computed enum member initializers are permitted by TS but
			// their constant value isn't known until evaluation; treat as
			// numeric and let the evaluator fill in the real value.
			e.Members = append(e.Members, types.EnumMember{Name: m.Name, NumberVal: next})
			next++
		}
	}
	e.EKind = kind
	return e
}

func mixedKind(cur, next types.EnumKind) types.EnumKind {
	if cur == types.EnumNumeric {
		return next
	}
	if cur != next {
		return types.EnumHeterogeneous
	}
	return cur
}
