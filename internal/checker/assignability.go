package checker

import "github.com/sharpts-lang/sharpts/internal/types"

// IsAssignable implements the isAssignable(src, dst) decision
// procedure, memoized through the Checker's AssignabilityCache so repeated
// checks of the same structural pair (common during overload resolution
// and generic instantiation) are O(1) after the first computation.
func (c *Checker) IsAssignable(src, dst types.Info) bool {
	if src == nil || dst == nil {
		return true
	}
	if cached, ok := c.assignCache.Lookup(src, dst); ok {
		return cached
	}
	assumed, onStack := c.assignCache.Enter(src, dst)
	if onStack {
		return assumed
	}
	result := isAssignableUncached(src, dst, c)
	c.assignCache.Leave(src, dst, result)
	return result
}

func isAssignableUncached(src, dst types.Info, c *Checker) bool {
	// any/unknown accept anything; any flows out freely.
	if dst.Kind() == types.KindAny || dst.Kind() == types.KindUnknown {
		return true
	}
	if src.Kind() == types.KindAny {
		return true
	}
	if src.Kind() == types.KindNever {
		return true
	}
	if dst.Kind() == types.KindNever {
		return src.Kind() == types.KindNever
	}
	if types.Equal(src, dst) {
		return true
	}

	// Literal -> its primitive.
	if lit, ok := src.(*types.Literal); ok {
		if !isLiteralDst(dst) && c.IsAssignable(lit.Primitive(), dst) {
			return true
		}
	}

	// Source union: every member must be assignable to dst.
	if u, ok := src.(*types.Union); ok {
		for _, m := range u.Members {
			if !c.IsAssignable(m, dst) {
				return false
			}
		}
		return true
	}
	// Dest union: src assignable if assignable to any member.
	if u, ok := dst.(*types.Union); ok {
		for _, m := range u.Members {
			if c.IsAssignable(src, m) {
				return true
			}
		}
		return false
	}
	// Source intersection: assignable if any member is assignable (an
	// intersection value satisfies every member simultaneously, so it is
	// at least as specific as each one).
	if inter, ok := src.(*types.Intersection); ok {
		for _, m := range inter.Members {
			if c.IsAssignable(m, dst) {
				return true
			}
		}
		return false
	}
	// Dest intersection: src assignable to every member.
	if inter, ok := dst.(*types.Intersection); ok {
		for _, m := range inter.Members {
			if !c.IsAssignable(src, m) {
				return false
			}
		}
		return true
	}

	switch dv := dst.(type) {
	case *types.Array:
		sv, ok := src.(*types.Array)
		if !ok {
			return false
		}
		return c.IsAssignable(sv.Elem, dv.Elem)
	case *types.Tuple:
		sv, ok := src.(*types.Tuple)
		if !ok {
			return false
		}
		if sv.Required < dv.Required {
			return false
		}
		for i, e := range dv.Elements {
			if i >= len(sv.Elements) {
				if e.Kind != types.TupleOptional {
					return false
				}
				continue
			}
			if !c.IsAssignable(sv.Elements[i].Type, e.Type) {
				return false
			}
		}
		return true
	case *types.Function:
		sv, ok := src.(*types.Function)
		if !ok {
			return false
		}
		return functionAssignable(sv, dv, c)
	case *types.Class:
		sv, ok := asClass(src)
		if !ok {
			return false
		}
		return sv.IsSubclassOf(dv)
	case *types.Instance:
		return instanceAssignable(src, dv, c)
	case *types.Interface:
		return structurallyAssignable(src, dv.Members, c)
	case *types.Record:
		return recordAssignable(src, dv, c)
	case *types.KeyOf, *types.TypeOf, *types.Mapped, *types.Conditional, *types.TemplateLiteral:
		// These require prior resolution by the caller; treat as
		// unresolved => permissive, matching `any` flow to avoid spurious
		// cascading diagnostics once one resolution step is missing.
		return true
	case *types.TypeParameter:
		if dv.Constraint != nil {
			return c.IsAssignable(src, dv.Constraint)
		}
		return true
	case *types.Enum:
		sv, ok := src.(*types.Enum)
		return ok && sv == dv
	}
	return false
}

func isLiteralDst(t types.Info) bool {
	_, ok := t.(*types.Literal)
	return ok
}

func asClass(t types.Info) (*types.Class, bool) {
	switch v := t.(type) {
	case *types.Class:
		return v, true
	case *types.Instance:
		return asClass(v.Target)
	}
	return nil, false
}

func instanceAssignable(src types.Info, dst *types.Instance, c *Checker) bool {
	switch target := dst.Target.(type) {
	case *types.Class:
		sc, ok := asClass(src)
		if !ok || !sc.IsSubclassOf(target) {
			return false
		}
		if si, ok := src.(*types.Instance); ok {
			return typeArgsInvariant(si.TypeArgs, dst.TypeArgs, c)
		}
		return len(dst.TypeArgs) == 0
	case *types.Interface:
		return structurallyAssignable(src, target.Members, c)
	}
	return false
}

func typeArgsInvariant(a, b []types.Info, c *Checker) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !c.IsAssignable(a[i], b[i]) || !c.IsAssignable(b[i], a[i]) {
			return false
		}
	}
	return true
}

// structurallyAssignable implements the interface/object-type member
// rule: every declared member of dst must exist in src with
// an assignable type; optional members may be missing.
func structurallyAssignable(src types.Info, dstMembers map[string]*types.Member, c *Checker) bool {
	srcMembers := memberTable(src)
	if srcMembers == nil {
		return false
	}
	for name, dm := range dstMembers {
		sm, ok := srcMembers[name]
		if !ok {
			if dm.Optional {
				continue
			}
			return false
		}
		if !c.IsAssignable(sm.Type, dm.Type) {
			return false
		}
	}
	return true
}

func memberTable(t types.Info) map[string]*types.Member {
	switch v := t.(type) {
	case *types.Class:
		return v.Members
	case *types.Interface:
		return v.Members
	case *types.Instance:
		return memberTable(v.Target)
	}
	return nil
}

func recordAssignable(src types.Info, dst *types.Record, c *Checker) bool {
	switch sv := src.(type) {
	case *types.Record:
		return c.IsAssignable(sv.Key, dst.Key) && c.IsAssignable(sv.Value, dst.Value)
	case *types.Interface:
		for _, m := range sv.Members {
			if !c.IsAssignable(m.Type, dst.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// functionAssignable implements function compatibility:
// contravariant parameters, covariant return, rest expansion, and
// fewer-parameter sources assignable to wider targets.
func functionAssignable(src, dst *types.Function, c *Checker) bool {
	if src.Required > len(dst.Params) {
		return false
	}
	for i := 0; i < len(src.Params) && i < len(dst.Params); i++ {
		sp, dp := src.Params[i], dst.Params[i]
		if sp.Rest || dp.Rest {
			continue
		}
		// contravariant (and bivariant-in-practice for method params):
		// accept either direction, matching TS's method bivariance.
		if !c.IsAssignable(dp.Type, sp.Type) && !c.IsAssignable(sp.Type, dp.Type) {
			return false
		}
	}
	return c.IsAssignable(src.Return, dst.Return)
}
