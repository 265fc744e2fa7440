package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// NarrowingContext accumulates the narrowed type of each variable name
// along the current control-flow path. Unlike a
// full control-flow-graph analysis, this checker narrows by threading a
// pair of (then, else) override maps out of each condition expression and
// applying them as child TypeEnvironment frames around the branches they
// guard — adequate for straight-line guards, &&/|| chains, and early
// return/throw, which covers the narrowing forms the checker recognizes.
type NarrowingContext struct {
	// facts maps a narrowed variable name to the type it carries on the
	// current path. Lookups do not read it: narrowed types reach them
	// through the child TypeEnvironment frames applyNarrowing pushes.
	facts map[string]types.Info
}

func newNarrowingContext() *NarrowingContext {
	return &NarrowingContext{facts: make(map[string]types.Info)}
}

// narrowSet is the (then, else) pair of variable-name -> narrowed-type
// overrides a condition expression produces.
type narrowSet map[string]types.Info

// applyNarrowing pushes a child TypeEnvironment binding each narrowed name
// to its refined type, runs fn, and restores the prior environment.
func (c *Checker) applyNarrowing(facts narrowSet, fn func()) {
	if len(facts) == 0 {
		fn()
		return
	}
	prev := c.env
	c.env = prev.Child()
	for name, ty := range facts {
		c.env.Define(name, ty)
	}
	fn()
	c.env = prev
}

// narrowCondition analyzes a boolean-valued condition expression and
// returns the variable-type overrides that hold in its "then" (truthy) and
// "else" (falsy) continuations.
func (c *Checker) narrowCondition(cond ast.Expression) (thenFacts, elseFacts narrowSet) {
	thenFacts, elseFacts = narrowSet{}, narrowSet{}
	c.narrowInto(cond, thenFacts, elseFacts)
	return
}

func (c *Checker) narrowInto(cond ast.Expression, thenFacts, elseFacts narrowSet) {
	switch n := cond.(type) {
	case *ast.Logical:
		if n.Op == ast.LogicalAnd {
			lt, le := c.narrowCondition(n.Left)
			rt, re := c.narrowCondition(n.Right)
			mergeInto(thenFacts, lt, rt)
			mergeInto(elseFacts, le, re) // conservative union isn't precise for ||-in-&&, acceptable approximation
		} else {
			lt, le := c.narrowCondition(n.Left)
			rt, re := c.narrowCondition(n.Right)
			mergeInto(elseFacts, le, re)
			mergeInto(thenFacts, lt, rt)
		}
	case *ast.Unary:
		if n.Op == ast.UnaryNot {
			// Negation swaps the branches.
			t2, e2 := c.narrowCondition(n.Operand)
			for k, v := range t2 {
				elseFacts[k] = v
			}
			for k, v := range e2 {
				thenFacts[k] = v
			}
		}
	case *ast.Binary:
		c.narrowBinary(n, thenFacts, elseFacts)
	case *ast.Call:
		c.narrowCallPredicate(n, thenFacts, elseFacts)
	case *ast.Variable, *ast.Get:
		// Bare truthiness check narrows away null/undefined: directly for
		// a variable, by filtering the root's union members for a
		// property chain (`if (shape.extra)` keeps members whose `extra`
		// can be non-nullish).
		path, ok := pathOf(cond)
		if !ok {
			return
		}
		declared, found := c.env.Get(path.root)
		if !found {
			return
		}
		if len(path.props) == 0 {
			thenFacts[path.root] = stripNullish(declared)
			return
		}
		thenFacts[path.root] = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
			return mt != nil && !types.Equal(stripNullish(mt), types.Never)
		})
	}
}

func mergeInto(dst narrowSet, a, b narrowSet) {
	for k, v := range a {
		dst[k] = v
	}
	for k, v := range b {
		dst[k] = v
	}
}

func (c *Checker) narrowBinary(n *ast.Binary, thenFacts, elseFacts narrowSet) {
	switch n.Op {
	case ast.BinEq, ast.BinStrictEq, ast.BinNotEq, ast.BinStrictNotEq:
		c.narrowEquality(n, thenFacts, elseFacts)
	case ast.BinInstanceof:
		path, ok := pathOf(n.Left)
		if !ok {
			return
		}
		cls, ok := c.classOfExpr(n.Right)
		if !ok {
			return
		}
		if len(path.props) == 0 {
			thenFacts[path.root] = &types.Instance{Target: cls}
			return
		}
		declared, found := c.env.Get(path.root)
		if !found {
			return
		}
		thenFacts[path.root] = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
			inst, isInst := mt.(*types.Instance)
			if !isInst {
				return false
			}
			mc, isClass := inst.Target.(*types.Class)
			return isClass && mc.IsSubclassOf(cls)
		})
	case ast.BinIn:
		// `"key" in obj` keeps only the union members that declare the
		// key on the true edge, and only those that may lack it on the
		// false edge.
		lit, isLit := n.Left.(*ast.Literal)
		if !isLit || lit.Kind != ast.LitString {
			return
		}
		path, ok := pathOf(n.Right)
		if !ok {
			return
		}
		declared, found := c.env.Get(path.root)
		if !found {
			return
		}
		props := append(append([]string(nil), path.props...), lit.Str)
		thenFacts[path.root] = c.filterUnionByMember(declared, props, func(mt types.Info) bool {
			return mt != nil
		})
		elseFacts[path.root] = c.filterUnionByMember(declared, props, func(mt types.Info) bool {
			return mt == nil
		})
	}
}

func (c *Checker) narrowEquality(n *ast.Binary, thenFacts, elseFacts narrowSet) {
	negated := n.Op == ast.BinNotEq || n.Op == ast.BinStrictNotEq

	// typeof x === "string" style guards, including property operands
	// (`typeof shape.tag === "string"`).
	if path, tname, ok := typeofEquality(n.Left, n.Right); ok {
		declared, found := c.env.Get(path.root)
		if !found {
			return
		}
		var matched, unmatched types.Info
		if len(path.props) == 0 {
			matched = typeofNarrow(declared, tname)
			unmatched = subtractType(declared, matched)
		} else {
			want := typeofWant(tname)
			if want == nil {
				return
			}
			matched = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
				return mt != nil && couldBePrimitive(mt, want)
			})
			unmatched = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
				return mt == nil || !types.Equal(primitiveOf(mt), want)
			})
		}
		if negated {
			matched, unmatched = unmatched, matched
		}
		thenFacts[path.root] = matched
		elseFacts[path.root] = unmatched
		return
	}

	path, other, ok := equalityOperands(n.Left, n.Right)
	if !ok {
		return
	}
	declared, found := c.env.Get(path.root)
	if !found {
		return
	}

	if len(path.props) > 0 {
		// Discriminant guard (`shape.kind === "circle"`): refine the
		// root object's union member set rather than a scalar binding.
		// The true edge keeps members whose property can hold the value;
		// the false edge drops only members whose property is exactly it.
		var target types.Info
		if lit, isLit := other.(*ast.Literal); isLit && lit.Kind == ast.LitNull {
			target = types.Null
		} else if isLit && lit.Kind == ast.LitUndefined {
			target = types.Undefined
		} else {
			target = c.literalExprType(other)
		}
		if target == nil {
			return
		}
		matched := c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
			return mt != nil && c.IsAssignable(target, mt)
		})
		unmatched := c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
			return mt == nil || !types.Equal(mt, target)
		})
		if negated {
			matched, unmatched = unmatched, matched
		}
		thenFacts[path.root] = matched
		elseFacts[path.root] = unmatched
		return
	}

	name := path.root
	if isNullOrUndefinedLiteral(other) {
		narrowed := stripNullish(declared)
		if negated {
			thenFacts[name] = narrowed
			elseFacts[name] = nullishOnly(declared)
		} else {
			elseFacts[name] = narrowed
			thenFacts[name] = nullishOnly(declared)
		}
		return
	}

	litTy := c.literalExprType(other)
	if litTy == nil {
		return
	}
	if negated {
		elseFacts[name] = litTy
	} else {
		thenFacts[name] = litTy
	}
}

// narrowCallPredicate handles `isFoo(x)` calls whose declared signature
// carries a TypePredicate return type (`x is T`). A property-chain
// argument refines the root object's union member set by whether the
// member's property type falls inside the predicate.
func (c *Checker) narrowCallPredicate(n *ast.Call, thenFacts, elseFacts narrowSet) {
	if len(n.Args) == 0 {
		return
	}
	fnTy := c.inferExpressionType(n.Callee)
	fn, ok := fnTy.(*types.Function)
	if !ok || fn.Predicate == nil || fn.Predicate.Narrowed == nil {
		return
	}
	path, ok := pathOf(n.Args[0])
	if !ok {
		return
	}
	declared, found := c.env.Get(path.root)
	if !found {
		return
	}
	narrowed := fn.Predicate.Narrowed
	if len(path.props) == 0 {
		thenFacts[path.root] = narrowed
		elseFacts[path.root] = subtractType(declared, narrowed)
		return
	}
	thenFacts[path.root] = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
		return mt != nil && c.IsAssignable(mt, narrowed)
	})
	elseFacts[path.root] = c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
		return mt == nil || !c.IsAssignable(mt, narrowed)
	})
}

func (c *Checker) classOfExpr(e ast.Expression) (*types.Class, bool) {
	v, ok := e.(*ast.Variable)
	if !ok {
		return nil, false
	}
	cls, ok := c.classes[v.Name.Name]
	return cls, ok
}

// narrowingPath is a refinable path: a bare variable, or a dotted
// property chain rooted at one. Anything else (computed indexing, call
// results) is unrepresentable and produces no narrowing.
type narrowingPath struct {
	root  string
	props []string
}

func varName(e ast.Expression) (string, bool) {
	if v, ok := e.(*ast.Variable); ok {
		return v.Name.Name, true
	}
	return "", false
}

func pathOf(e ast.Expression) (narrowingPath, bool) {
	switch n := e.(type) {
	case *ast.Variable:
		return narrowingPath{root: n.Name.Name}, true
	case *ast.Get:
		base, ok := pathOf(n.Object)
		if !ok {
			return narrowingPath{}, false
		}
		base.props = append(base.props, n.Name.Name)
		return base, true
	}
	return narrowingPath{}, false
}

// memberTypeAt resolves the declared type of a property chain against
// one union member; nil when any hop is missing.
func memberTypeAt(t types.Info, props []string) types.Info {
	cur := t
	for _, name := range props {
		members := memberTable(cur)
		if members == nil {
			return nil
		}
		m, ok := members[name]
		if !ok {
			return nil
		}
		cur = m.Type
	}
	return cur
}

// filterUnionByMember keeps the union members for which keep accepts the
// type at the given property chain (keep receives nil when a member
// lacks the chain). A non-union type is returned unchanged: a single
// shape can't be split by a discriminant.
func (c *Checker) filterUnionByMember(declared types.Info, props []string, keep func(types.Info) bool) types.Info {
	u, ok := declared.(*types.Union)
	if !ok {
		return declared
	}
	var kept []types.Info
	for _, m := range u.Members {
		if keep(memberTypeAt(m, props)) {
			kept = append(kept, m)
		}
	}
	return unionOf(kept)
}

func unionOf(members []types.Info) types.Info {
	switch len(members) {
	case 0:
		return types.Never
	case 1:
		return members[0]
	default:
		return &types.Union{Members: members}
	}
}

func couldBePrimitive(t, want types.Info) bool {
	if u, ok := t.(*types.Union); ok {
		for _, m := range u.Members {
			if types.Equal(primitiveOf(m), want) {
				return true
			}
		}
		return false
	}
	return types.Equal(primitiveOf(t), want)
}

func equalityOperands(left, right ast.Expression) (narrowingPath, ast.Expression, bool) {
	if p, ok := pathOf(left); ok {
		return p, right, true
	}
	if p, ok := pathOf(right); ok {
		return p, left, true
	}
	return narrowingPath{}, nil, false
}

func typeofEquality(left, right ast.Expression) (narrowingPath, string, bool) {
	if u, isTypeof := left.(*ast.Unary); isTypeof && u.Op == ast.UnaryTypeof {
		if lit, isLit := right.(*ast.Literal); isLit && lit.Kind == ast.LitString {
			if p, ok := pathOf(u.Operand); ok {
				return p, lit.Str, true
			}
		}
	}
	if u, isTypeof := right.(*ast.Unary); isTypeof && u.Op == ast.UnaryTypeof {
		if lit, isLit := left.(*ast.Literal); isLit && lit.Kind == ast.LitString {
			if p, ok := pathOf(u.Operand); ok {
				return p, lit.Str, true
			}
		}
	}
	return narrowingPath{}, "", false
}

func typeofWant(tname string) types.Info {
	return map[string]types.Info{
		"string": types.String, "number": types.Number, "boolean": types.Boolean,
		"bigint": types.BigIntT, "symbol": types.SymbolT, "undefined": types.Undefined,
	}[tname]
}

func typeofNarrow(declared types.Info, tname string) types.Info {
	want := typeofWant(tname)
	if want == nil {
		return declared
	}
	if u, ok := declared.(*types.Union); ok {
		var kept []types.Info
		for _, m := range u.Members {
			if types.Equal(primitiveOf(m), want) {
				kept = append(kept, m)
			}
		}
		if len(kept) == 1 {
			return kept[0]
		}
		if len(kept) > 1 {
			return &types.Union{Members: kept}
		}
		return want
	}
	return want
}

func primitiveOf(t types.Info) types.Info {
	if lit, ok := t.(*types.Literal); ok {
		return lit.Primitive()
	}
	return t
}

func subtractType(declared, remove types.Info) types.Info {
	u, ok := declared.(*types.Union)
	if !ok {
		if types.Equal(declared, remove) {
			return types.Never
		}
		return declared
	}
	var kept []types.Info
	for _, m := range u.Members {
		if !types.Equal(m, remove) && !types.Equal(primitiveOf(m), remove) {
			kept = append(kept, m)
		}
	}
	switch len(kept) {
	case 0:
		return types.Never
	case 1:
		return kept[0]
	default:
		return &types.Union{Members: kept}
	}
}

func stripNullish(t types.Info) types.Info {
	u, ok := t.(*types.Union)
	if !ok {
		if t.Kind() == types.KindPrimitive && (t == types.Null || t == types.Undefined) {
			return types.Never
		}
		return t
	}
	var kept []types.Info
	for _, m := range u.Members {
		if m != types.Null && m != types.Undefined && m.Kind() != types.KindVoid {
			kept = append(kept, m)
		}
	}
	switch len(kept) {
	case 0:
		return types.Never
	case 1:
		return kept[0]
	default:
		return &types.Union{Members: kept}
	}
}

func nullishOnly(t types.Info) types.Info {
	u, ok := t.(*types.Union)
	if !ok {
		return t
	}
	var kept []types.Info
	for _, m := range u.Members {
		if m == types.Null || m == types.Undefined || m.Kind() == types.KindVoid {
			kept = append(kept, m)
		}
	}
	switch len(kept) {
	case 0:
		return types.Undefined
	case 1:
		return kept[0]
	default:
		return &types.Union{Members: kept}
	}
}

func isNullOrUndefinedLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && (lit.Kind == ast.LitNull || lit.Kind == ast.LitUndefined)
}

// literalExprType returns the literal TypeInfo of a literal expression
// operand in an equality guard (`x === "a"`), used to narrow x to that
// literal in the matching branch.
func (c *Checker) literalExprType(e ast.Expression) types.Info {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return nil
	}
	switch lit.Kind {
	case ast.LitString:
		return &types.Literal{LKind: types.LitString, Str: lit.Str}
	case ast.LitNumber:
		return &types.Literal{LKind: types.LitNumber, Num: lit.Number}
	case ast.LitBoolean:
		return &types.Literal{LKind: types.LitBoolean, Bool: lit.Boolean}
	}
	return nil
}
