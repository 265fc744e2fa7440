package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// instantiateAlias resolves a generic type alias reference by
// substituting its declared type parameters with the supplied arguments.
func (c *Checker) instantiateAlias(name string, body ast.TypeExpression, args []types.Info) types.Info {
	params := c.aliasParams[name]
	resolved := c.resolveType(body)
	if len(params) == 0 {
		return resolved
	}
	subst := make(map[string]types.Info, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p.Name] = args[i]
		} else if p.Default != nil {
			subst[p.Name] = c.resolveType(p.Default)
		} else {
			subst[p.Name] = types.Any
		}
	}
	return Substitute(resolved, subst)
}

// Substitute replaces TypeParameter occurrences in t by name according to
// subst, used both for generic alias instantiation and for instantiating a
// generic function/class signature at a call site.
func Substitute(t types.Info, subst map[string]types.Info) types.Info {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *types.TypeParameter:
		if repl, ok := subst[v.Name]; ok {
			return repl
		}
		return v
	case *types.Array:
		return &types.Array{Elem: Substitute(v.Elem, subst)}
	case *types.Tuple:
		elems := make([]types.TupleElement, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = types.TupleElement{Kind: e.Kind, Type: Substitute(e.Type, subst), Label: e.Label}
		}
		return &types.Tuple{Elements: elems, Required: v.Required}
	case *types.Union:
		members := make([]types.Info, len(v.Members))
		for i, m := range v.Members {
			members[i] = Substitute(m, subst)
		}
		return &types.Union{Members: members}
	case *types.Intersection:
		members := make([]types.Info, len(v.Members))
		for i, m := range v.Members {
			members[i] = Substitute(m, subst)
		}
		return &types.Intersection{Members: members}
	case *types.Function:
		params := make([]types.FunctionParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = types.FunctionParam{Name: p.Name, Type: Substitute(p.Type, subst), Optional: p.Optional, Rest: p.Rest}
		}
		fn := &types.Function{TypeParams: v.TypeParams, Params: params, Required: v.Required, Return: Substitute(v.Return, subst)}
		if v.ThisType != nil {
			fn.ThisType = Substitute(v.ThisType, subst)
		}
		return fn
	case *types.Instance:
		args := make([]types.Info, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			args[i] = Substitute(a, subst)
		}
		return &types.Instance{Target: v.Target, TypeArgs: args}
	case *types.Record:
		return &types.Record{Key: Substitute(v.Key, subst), Value: Substitute(v.Value, subst)}
	case *types.KeyOf:
		return &types.KeyOf{Source: Substitute(v.Source, subst)}
	case *types.Mapped:
		return &types.Mapped{
			KeyName:    v.KeyName,
			Constraint: Substitute(v.Constraint, subst),
			KeyRemap:   Substitute(v.KeyRemap, subst),
			Value:      Substitute(v.Value, subst),
			Readonly:   v.Readonly,
			Optional:   v.Optional,
		}
	case *types.Conditional:
		return &types.Conditional{
			Check:   Substitute(v.Check, subst),
			Extends: Substitute(v.Extends, subst),
			True:    Substitute(v.True, subst),
			False:   Substitute(v.False, subst),
		}
	case *types.Interface:
		members := make(map[string]*types.Member, len(v.Members))
		for k, m := range v.Members {
			members[k] = &types.Member{Type: Substitute(m.Type, subst), Optional: m.Optional, Readonly: m.Readonly, Visibility: m.Visibility}
		}
		return &types.Interface{Name: v.Name, TypeParams: v.TypeParams, Members: members, IndexSignatures: v.IndexSignatures, CallSignatures: v.CallSignatures, ConstructSignatures: v.ConstructSignatures}
	}
	return t
}

// instantiateFunction binds a generic function's type parameters from
// either explicit call-site type arguments or inference from argument
// types (a simplified unification pass: walk parameter/argument pairs,
// and the first occurrence of a bare type-parameter parameter type fixes
// that parameter).
func (c *Checker) instantiateFunction(fn *types.Function, explicitArgs []types.Info, argTypes []types.Info) *types.Function {
	if len(fn.TypeParams) == 0 {
		return fn
	}
	subst := make(map[string]types.Info, len(fn.TypeParams))
	for i, name := range fn.TypeParams {
		if i < len(explicitArgs) {
			subst[name] = explicitArgs[i]
		}
	}
	if len(explicitArgs) == 0 {
		for i, p := range fn.Params {
			if i >= len(argTypes) {
				break
			}
			inferTypeParam(p.Type, argTypes[i], subst)
		}
	}
	for _, name := range fn.TypeParams {
		if _, ok := subst[name]; !ok {
			subst[name] = types.Any
		}
	}
	return Substitute(fn, subst).(*types.Function)
}

// inferTypeParam performs one level of structural unification: if paramTy
// is (or contains) a bare TypeParameter, bind it to the corresponding
// piece of argTy. Handles the common T, T[], and Promise<T> shapes;
// anything deeper falls back to leaving the parameter unbound (caller
// defaults it to `any`).
func inferTypeParam(paramTy, argTy types.Info, subst map[string]types.Info) {
	switch p := paramTy.(type) {
	case *types.TypeParameter:
		if _, bound := subst[p.Name]; !bound {
			// An ordinary type parameter widens an inferred literal to
			// its primitive, the same rule `let`/`var` bindings follow;
			// a `const` parameter preserves the literal type.
			if p.ConstParam {
				subst[p.Name] = argTy
			} else {
				subst[p.Name] = widenLiteral(argTy)
			}
		}
	case *types.Array:
		if a, ok := argTy.(*types.Array); ok {
			inferTypeParam(p.Elem, a.Elem, subst)
		}
	case *types.Instance:
		if a, ok := argTy.(*types.Instance); ok && len(p.TypeArgs) == len(a.TypeArgs) {
			for i := range p.TypeArgs {
				inferTypeParam(p.TypeArgs[i], a.TypeArgs[i], subst)
			}
		}
	}
}
