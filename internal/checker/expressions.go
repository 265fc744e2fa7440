package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// inferExpressionType performs the bidirectional checker's "infer" mode: compute an expression's static type bottom-up, recording
// the result in the TypeMap for the evaluator and any later lookup.
func (c *Checker) inferExpressionType(e ast.Expression) types.Info {
	t := c.inferExpressionTypeUncached(e)
	if t == nil {
		t = types.Any
	}
	c.types.Set(e, t)
	return t
}

// checkExpressionAgainst is the checker's "check" mode: verify e is
// assignable to expected, using expected as a contextual type for literals
// that need it (object/array literals, arrow function parameter types).
func (c *Checker) checkExpressionAgainst(e ast.Expression, expected types.Info) types.Info {
	actual := c.inferExpressionType(e)
	if expected != nil && !c.IsAssignable(actual, expected) {
		c.errorf(e, "type %s is not assignable to type %s", actual.String(), expected.String())
	}
	return actual
}

func (c *Checker) inferExpressionTypeUncached(e ast.Expression) types.Info {
	switch n := e.(type) {
	case *ast.Literal:
		return c.inferLiteral(n)
	case *ast.Variable:
		if t, ok := c.env.Get(n.Name.Name); ok {
			return t
		}
		c.errorf(e, "cannot find name %q", n.Name.Name)
		return types.Any
	case *ast.This:
		if c.currentFunc != nil && c.currentFunc.thisType != nil {
			return c.currentFunc.thisType
		}
		return types.Any
	case *ast.Super:
		return types.Any
	case *ast.Grouping:
		return c.inferExpressionType(n.Inner)
	case *ast.Unary:
		return c.inferUnary(n)
	case *ast.Binary:
		return c.inferBinary(n)
	case *ast.Logical:
		return c.inferLogical(n)
	case *ast.NullishCoalescing:
		left := c.inferExpressionType(n.Left)
		right := c.inferExpressionType(n.Right)
		return &types.Union{Members: []types.Info{stripNullish(left), right}}
	case *ast.Ternary:
		return c.inferTernary(n)
	case *ast.Assign:
		return c.inferAssign(n)
	case *ast.CompoundAssign:
		return c.inferExpressionType(n.Target)
	case *ast.LogicalAssign:
		return c.inferExpressionType(n.Target)
	case *ast.Call:
		return c.inferCall(n)
	case *ast.New:
		return c.inferNew(n)
	case *ast.Get:
		return c.inferGet(n)
	case *ast.Set:
		return c.inferExpressionType(n.Value)
	case *ast.GetIndex:
		return c.inferGetIndex(n)
	case *ast.SetIndex:
		return c.inferExpressionType(n.Value)
	case *ast.GetPrivate:
		return c.inferGetPrivate(n)
	case *ast.SetPrivate:
		return c.inferExpressionType(n.Value)
	case *ast.CallPrivate:
		return types.Any
	case *ast.Spread:
		return c.inferExpressionType(n.Expr)
	case *ast.ArrayLiteral:
		return c.inferArrayLiteral(n)
	case *ast.ObjectLiteral:
		return c.inferObjectLiteral(n)
	case *ast.ArrowFunction:
		return c.inferArrowFunction(n)
	case *ast.ClassExpr:
		return c.hoistClassShape(n.Decl)
	case *ast.TemplateLiteral:
		for _, ex := range n.Exprs {
			c.inferExpressionType(ex)
		}
		return types.String
	case *ast.TaggedTemplateLiteral:
		c.inferExpressionType(n.Tag)
		return c.inferExpressionType(n.Template)
	case *ast.TypeAssertion:
		ty := c.resolveType(n.Type)
		c.inferExpressionType(n.Expr)
		return ty
	case *ast.Satisfies:
		actual := c.inferExpressionType(n.Expr)
		want := c.resolveType(n.Type)
		if !c.IsAssignable(actual, want) {
			c.errorf(e, "type does not satisfy %s", want.String())
		}
		return actual
	case *ast.NonNullAssertion:
		return stripNullish(c.inferExpressionType(n.Expr))
	case *ast.Await:
		inner := c.inferExpressionType(n.Expr)
		if inst, ok := inner.(*types.Instance); ok && inst.Target == builtinPromiseClass && len(inst.TypeArgs) == 1 {
			return inst.TypeArgs[0]
		}
		return inner
	case *ast.Yield:
		if n.Expr != nil {
			c.inferExpressionType(n.Expr)
		}
		return types.Any
	case *ast.DynamicImport:
		c.inferExpressionType(n.Specifier)
		return &types.Instance{Target: builtinPromiseClass, TypeArgs: []types.Info{types.Any}}
	case *ast.ImportMeta:
		return &types.Record{Key: types.String, Value: types.Any}
	case *ast.RegexLiteral:
		return &types.Record{Key: types.String, Value: types.Any}
	case *ast.Delete:
		c.inferExpressionType(n.Expr)
		return types.Boolean
	case *ast.PrefixIncrement:
		return c.inferExpressionType(n.Operand)
	case *ast.PostfixIncrement:
		return c.inferExpressionType(n.Operand)
	}
	return types.Any
}

func (c *Checker) inferLiteral(n *ast.Literal) types.Info {
	switch n.Kind {
	case ast.LitNumber:
		return &types.Literal{LKind: types.LitNumber, Num: n.Number}
	case ast.LitBigInt:
		return types.BigIntT
	case ast.LitString:
		return &types.Literal{LKind: types.LitString, Str: n.Str}
	case ast.LitBoolean:
		return &types.Literal{LKind: types.LitBoolean, Bool: n.Boolean}
	case ast.LitNull:
		return types.Null
	case ast.LitUndefined:
		return types.Undefined
	}
	return types.Any
}

func (c *Checker) inferUnary(n *ast.Unary) types.Info {
	operand := c.inferExpressionType(n.Operand)
	switch n.Op {
	case ast.UnaryPlus, ast.UnaryMinus, ast.UnaryBitwiseNot:
		if operand == types.BigIntT {
			return types.BigIntT
		}
		return types.Number
	case ast.UnaryNot:
		return types.Boolean
	case ast.UnaryTypeof:
		return types.String
	case ast.UnaryVoid:
		return types.Undefined
	}
	return types.Any
}

func (c *Checker) inferBinary(n *ast.Binary) types.Info {
	left := c.inferExpressionType(n.Left)
	right := c.inferExpressionType(n.Right)
	left, right = widenLiteral(left), widenLiteral(right)
	switch n.Op {
	case ast.BinAdd:
		if types.Equal(left, types.String) || types.Equal(right, types.String) {
			return types.String
		}
		if types.Equal(left, types.BigIntT) && types.Equal(right, types.BigIntT) {
			return types.BigIntT
		}
		return types.Number
	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod, ast.BinPow,
		ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor, ast.BinShl, ast.BinShr, ast.BinUShr:
		if types.Equal(left, types.BigIntT) && types.Equal(right, types.BigIntT) {
			return types.BigIntT
		}
		return types.Number
	case ast.BinEq, ast.BinNotEq, ast.BinStrictEq, ast.BinStrictNotEq,
		ast.BinLt, ast.BinGt, ast.BinLtEq, ast.BinGtEq, ast.BinIn, ast.BinInstanceof:
		return types.Boolean
	}
	return types.Any
}

func (c *Checker) inferLogical(n *ast.Logical) types.Info {
	thenFacts, _ := c.narrowCondition(n.Left)
	left := c.inferExpressionType(n.Left)
	var right types.Info
	if n.Op == ast.LogicalAnd {
		c.applyNarrowing(thenFacts, func() { right = c.inferExpressionType(n.Right) })
		return right
	}
	right = c.inferExpressionType(n.Right)
	return &types.Union{Members: []types.Info{stripNullish(left), right}}
}

func (c *Checker) inferTernary(n *ast.Ternary) types.Info {
	thenFacts, elseFacts := c.narrowCondition(n.Cond)
	c.inferExpressionType(n.Cond)
	var thenTy, elseTy types.Info
	c.applyNarrowing(thenFacts, func() { thenTy = c.inferExpressionType(n.Then) })
	c.applyNarrowing(elseFacts, func() { elseTy = c.inferExpressionType(n.Else) })
	if types.Equal(thenTy, elseTy) {
		return thenTy
	}
	return &types.Union{Members: []types.Info{thenTy, elseTy}}
}

func (c *Checker) inferAssign(n *ast.Assign) types.Info {
	valueTy := c.inferExpressionType(n.Value)
	if name, ok := varName(n.Target); ok {
		if c.env.IsReadOnly(name) {
			c.errorf(n, "cannot assign to %q because it is a constant", name)
		}
		if readOnly, ok := c.env.Assign(name, valueTy); ok && !readOnly {
			// type narrows to the assigned value going forward.
		}
	} else {
		c.inferExpressionType(n.Target)
	}
	return valueTy
}

func (c *Checker) inferCall(n *ast.Call) types.Info {
	calleeTy := c.inferExpressionType(n.Callee)
	argTypes := make([]types.Info, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.inferExpressionType(a)
	}
	fn, ok := asFunction(calleeTy)
	if !ok {
		return types.Any
	}
	explicit := make([]types.Info, len(n.TypeArgs))
	for i, ta := range n.TypeArgs {
		explicit[i] = c.resolveType(ta)
	}
	inst := c.instantiateFunction(fn, explicit, argTypes)
	for i, p := range inst.Params {
		if i < len(n.Args) && p.Type != nil {
			c.checkExpressionAgainst(n.Args[i], p.Type)
		}
	}
	return inst.Return
}

func asFunction(t types.Info) (*types.Function, bool) {
	switch v := t.(type) {
	case *types.Function:
		return v, true
	case *types.Union:
		for _, m := range v.Members {
			if fn, ok := asFunction(m); ok {
				return fn, true
			}
		}
	}
	return nil, false
}

func (c *Checker) inferNew(n *ast.New) types.Info {
	calleeTy := c.inferExpressionType(n.Callee)
	for _, a := range n.Args {
		c.inferExpressionType(a)
	}
	args := make([]types.Info, len(n.TypeArgs))
	for i, ta := range n.TypeArgs {
		args[i] = c.resolveType(ta)
	}
	switch v := calleeTy.(type) {
	case *types.Class:
		return &types.Instance{Target: v, TypeArgs: args}
	}
	return types.Any
}

func (c *Checker) inferGet(n *ast.Get) types.Info {
	objTy := c.inferExpressionType(n.Object)
	if n.Optional {
		objTy = stripNullish(objTy)
	}
	members := memberTable(objTy)
	if members != nil {
		if m, ok := members[n.Name.Name]; ok {
			return m.Type
		}
	}
	if inst, ok := objTy.(*types.Instance); ok {
		cls, clsOK := inst.Target.(*types.Class)
		if clsOK {
			subst := make(map[string]types.Info)
			for i, tp := range cls.TypeParams {
				if i < len(inst.TypeArgs) {
					subst[tp] = inst.TypeArgs[i]
				}
			}
			if m, ok := cls.Members[n.Name.Name]; ok {
				return Substitute(m.Type, subst)
			}
		}
	}
	if rec, ok := objTy.(*types.Record); ok {
		return rec.Value
	}
	// Property access on a union resolves per member: every member must
	// declare the property, and the result is the union of the member
	// types. This is what makes a narrowed discriminated union's members
	// visible after a `shape.kind` guard.
	if u, ok := objTy.(*types.Union); ok {
		var memberTys []types.Info
		for _, m := range u.Members {
			mt := memberTypeAt(m, []string{n.Name.Name})
			if mt == nil {
				c.errorf(n, "property %q does not exist on type %s", n.Name.Name, m.String())
				return types.Any
			}
			memberTys = append(memberTys, mt)
		}
		return unionOf(memberTys)
	}
	return types.Any
}

func (c *Checker) inferGetIndex(n *ast.GetIndex) types.Info {
	objTy := c.inferExpressionType(n.Object)
	c.inferExpressionType(n.Index)
	switch v := objTy.(type) {
	case *types.Array:
		return v.Elem
	case *types.Tuple:
		return tupleElementUnion(v)
	case *types.Record:
		return v.Value
	case *types.Interface:
		for _, idx := range v.IndexSignatures {
			return idx.Value
		}
	}
	return types.Any
}

func tupleElementUnion(t *types.Tuple) types.Info {
	var members []types.Info
	for _, e := range t.Elements {
		members = append(members, e.Type)
	}
	switch len(members) {
	case 0:
		return types.Any
	case 1:
		return members[0]
	default:
		return &types.Union{Members: members}
	}
}

func (c *Checker) inferGetPrivate(n *ast.GetPrivate) types.Info {
	objTy := c.inferExpressionType(n.Object)
	if members := memberTable(objTy); members != nil {
		if m, ok := members["#"+n.Name.Name]; ok {
			return m.Type
		}
	}
	return types.Any
}

func (c *Checker) inferArrayLiteral(n *ast.ArrayLiteral) types.Info {
	var elemTypes []types.Info
	for _, el := range n.Elements {
		if el.Expr == nil {
			elemTypes = append(elemTypes, types.Undefined)
			continue
		}
		elemTypes = append(elemTypes, c.inferExpressionType(el.Expr))
	}
	if len(elemTypes) == 0 {
		return &types.Array{Elem: types.Any}
	}
	elem := elemTypes[0]
	for _, t := range elemTypes[1:] {
		if !types.Equal(t, elem) {
			elem = &types.Union{Members: append([]types.Info{}, elemTypes...)}
			break
		}
	}
	return &types.Array{Elem: elem}
}

func (c *Checker) inferObjectLiteral(n *ast.ObjectLiteral) types.Info {
	members := make(map[string]*types.Member)
	for _, p := range n.Properties {
		if p.IsSpread {
			spreadTy := c.inferExpressionType(p.Value)
			for name, m := range memberTable(spreadTy) {
				members[name] = m
			}
			continue
		}
		name := p.KeyName
		if p.KeyKind == ast.PropKeyNumber {
			name = formatNumberKey(p.KeyNumber)
		}
		if p.KeyKind == ast.PropKeyComputed {
			c.inferExpressionType(p.KeyExpr)
			continue
		}
		members[name] = &types.Member{Type: c.inferExpressionType(p.Value)}
	}
	return &types.Interface{Members: members}
}

func formatNumberKey(n float64) string {
	if n == float64(int64(n)) {
		return intToString(int64(n))
	}
	return "0"
}

func intToString(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (c *Checker) inferArrowFunction(n *ast.ArrowFunction) *types.Function {
	scope := c.pushTypeParamScope(n.TypeParams)
	defer c.popTypeParamScope(scope)

	prevEnv := c.env
	c.env = prevEnv.Child()
	defer func() { c.env = prevEnv }()

	fn := &types.Function{Return: c.resolveType(n.ReturnType)}
	required := 0
	seenOptionalOrRest := false
	for _, p := range n.Params {
		pty := c.resolveType(p.Type)
		optional := p.Modifiers.Optional || p.Default != nil
		fn.Params = append(fn.Params, types.FunctionParam{Name: p.Name, Type: pty, Optional: optional, Rest: p.Modifiers.Rest})
		if !optional && !p.Modifiers.Rest && !seenOptionalOrRest {
			required++
		} else {
			seenOptionalOrRest = true
		}
		c.env.Define(p.Name, pty)
	}
	fn.Required = required

	prevFunc := c.currentFunc
	c.currentFunc = &funcContext{parent: prevFunc, returnTy: fn.Return, isAsync: n.Flags.IsAsync, isGen: n.Flags.IsGenerator, thisType: funcThisType(prevFunc)}
	defer func() { c.currentFunc = prevFunc }()

	switch body := n.Body.(type) {
	case *ast.Block:
		c.checkStatement(body)
	case ast.Expression:
		bodyTy := c.inferExpressionType(body)
		if fn.Return.Kind() == types.KindAny {
			fn.Return = bodyTy
		}
	}
	if n.Flags.IsAsync {
		if _, ok := fn.Return.(*types.Instance); !ok {
			fn.Return = &types.Instance{Target: builtinPromiseClass, TypeArgs: []types.Info{fn.Return}}
		}
	}
	return fn
}

func funcThisType(f *funcContext) types.Info {
	if f == nil {
		return nil
	}
	return f.thisType
}
