package evaluator

import (
	"math"
	"strings"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

func evalLiteral(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Literal)
	switch n.Kind {
	case ast.LitNumber:
		return runtime.Number(n.Number)
	case ast.LitBigInt:
		return &runtime.BigInt{Text: n.BigInt}
	case ast.LitString:
		return runtime.String(n.Str)
	case ast.LitBoolean:
		return runtime.Boolean(n.Boolean)
	case ast.LitNull:
		return runtime.Null{}
	default:
		return runtime.Undefined{}
	}
}

func evalIdentifierExpr(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Identifier)
	return ev.lookup(ctx, n.Name)
}

func evalVariable(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Variable)
	return ev.lookup(ctx, n.Name.Name)
}

// lookup resolves a bare name, throwing a synthesized ReferenceError for
// an unbound name rather than a host panic "reference
// errors (undefined variable)" runtime error category.
func (ev *Evaluator) lookup(ctx *Context, name string) runtime.Value {
	if name == "undefined" {
		if v, ok := ctx.env.Get(name); ok {
			return v
		}
		return runtime.Undefined{}
	}
	if v, ok := ctx.env.Get(name); ok {
		return v
	}
	panic(newThrowPanic(newError("ReferenceError", name+" is not defined")))
}

func evalGrouping(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.Eval(ctx, e.(*ast.Grouping).Inner)
}

func evalThis(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	if ctx.thisVal == nil {
		return runtime.Undefined{}
	}
	return ctx.thisVal
}

func evalSuperExpr(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	// Bare `super` only has meaning combined with a Call (super(...)) or
	// a Get (super.method()); both evalCall and evalGet special-case an
	// *ast.Super callee/object directly, so reaching here means `super`
	// was evaluated standalone, which has no value of its own.
	return runtime.Undefined{}
}

func evalTemplateLiteral(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.TemplateLiteral)
	var b strings.Builder
	for i, part := range n.Cooked {
		b.WriteString(part)
		if i < len(n.Exprs) {
			b.WriteString(toStringValue(ev.Eval(ctx, n.Exprs[i])))
		}
	}
	return runtime.String(b.String())
}

func evalTaggedTemplate(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.TaggedTemplateLiteral)
	tag := ev.Eval(ctx, n.Tag)
	strs := &runtime.Array{}
	raw := &runtime.Array{}
	for _, s := range n.Template.Cooked {
		strs.Elements = append(strs.Elements, runtime.String(s))
	}
	for _, s := range n.Template.Raw {
		raw.Elements = append(raw.Elements, runtime.String(s))
	}
	strsObj := runtime.NewObject()
	strsObj.Set("raw", raw)
	args := []runtime.Value{strsObj}
	for _, expr := range n.Template.Exprs {
		args = append(args, ev.Eval(ctx, expr))
	}
	// The cooked-string array itself is the callable receiver-passed
	// first argument per the tagged-template protocol; fold its elements
	// onto strsObj so index access (`strings[0]`) and `.raw` both work.
	for i, el := range strs.Elements {
		strsObj.Set(intToKey(i), el)
	}
	return ev.callValue(ctx, tag, runtime.Undefined{}, args)
}

func evalRegexLiteral(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.RegexLiteral)
	return &runtime.RegExp{Source: n.Pattern, Flags: n.Flags}
}

func evalArrayLiteral(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.ArrayLiteral)
	arr := &runtime.Array{}
	for _, el := range n.Elements {
		if el.Expr == nil {
			arr.Elements = append(arr.Elements, runtime.Undefined{})
			continue
		}
		if spread, ok := el.Expr.(*ast.Spread); ok {
			for _, v := range ev.spreadValues(ctx, spread.Expr) {
				arr.Elements = append(arr.Elements, v)
			}
			continue
		}
		arr.Elements = append(arr.Elements, ev.Eval(ctx, el.Expr))
	}
	return arr
}

// spreadValues expands an iterable into a flat Value slice, used by
// array literals, call arguments, and `new` arguments.
func (ev *Evaluator) spreadValues(ctx *Context, e ast.Expression) []runtime.Value {
	v := ev.Eval(ctx, e)
	switch arr := v.(type) {
	case *runtime.Array:
		return append([]runtime.Value(nil), arr.Elements...)
	case runtime.String:
		var out []runtime.Value
		for _, r := range string(arr) {
			out = append(out, runtime.String(string(r)))
		}
		return out
	}
	it, thrown := ev.getIterator(ctx, v, false)
	if thrown != nil {
		panic(throwPanic{*thrown})
	}
	var out []runtime.Value
	for {
		val, done, thrown := ev.iteratorNext(ctx, it, false)
		if thrown != nil {
			panic(throwPanic{*thrown})
		}
		if done {
			break
		}
		out = append(out, val)
	}
	return out
}

// evalSpreadAsValue handles a bare `...expr` reached directly by Eval
// (e.g. inside a Grouping the parser didn't specialize); it is otherwise
// unwrapped by ArrayLiteral/ObjectLiteral/Call argument handling above.
func evalSpreadAsValue(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.Eval(ctx, e.(*ast.Spread).Expr)
}

func evalObjectLiteral(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.ObjectLiteral)
	obj := runtime.NewObject()
	for _, p := range n.Properties {
		if p.IsSpread {
			src := ev.Eval(ctx, p.Value)
			if srcObj, ok := src.(*runtime.Object); ok {
				for _, k := range srcObj.Keys() {
					v, _ := srcObj.Get(k)
					obj.Set(k, v)
				}
			}
			continue
		}
		if p.KeyKind == ast.PropKeyComputed {
			keyVal := ev.Eval(ctx, p.KeyExpr)
			if sym, ok := keyVal.(*runtime.Symbol); ok {
				obj.SetSymbol(sym, ev.Eval(ctx, p.Value))
				continue
			}
			obj.Set(toStringValue(keyVal), ev.Eval(ctx, p.Value))
			continue
		}
		// Placeholder getters/setters are stored as plain callables; a
		// full accessor-descriptor table is out of the core's runtime-
		// value scope.
		obj.Set(ev.objectPropertyKey(ctx, p), ev.Eval(ctx, p.Value))
	}
	return obj
}

func (ev *Evaluator) objectPropertyKey(ctx *Context, p ast.ObjectProperty) string {
	switch p.KeyKind {
	case ast.PropKeyNumber:
		return formatKeyNumber(p.KeyNumber)
	case ast.PropKeyComputed:
		return toStringValue(ev.Eval(ctx, p.KeyExpr))
	default:
		return p.KeyName
	}
}

func formatKeyNumber(f float64) string {
	if f == math.Trunc(f) {
		return intToKey(int(f))
	}
	return toStringValue(runtime.Number(f))
}

func evalUnary(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Unary)
	if n.Op == ast.UnaryTypeof {
		if v, ok := n.Operand.(*ast.Variable); ok {
			if val, bound := ctx.env.Get(v.Name.Name); bound {
				return runtime.String(typeofValue(val))
			}
			return runtime.String("undefined")
		}
		return runtime.String(typeofValue(ev.Eval(ctx, n.Operand)))
	}
	v := ev.Eval(ctx, n.Operand)
	switch n.Op {
	case ast.UnaryPlus:
		return runtime.Number(toNumber(v))
	case ast.UnaryMinus:
		return runtime.Number(-toNumber(v))
	case ast.UnaryNot:
		return runtime.Boolean(!truthy(v))
	case ast.UnaryBitwiseNot:
		return runtime.Number(float64(^toInt32(v)))
	case ast.UnaryVoid:
		return runtime.Undefined{}
	default:
		return runtime.Undefined{}
	}
}

func evalDelete(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Delete)
	switch target := n.Expr.(type) {
	case *ast.Get:
		obj := ev.Eval(ctx, target.Object)
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(target.Name.Name)
		} else if inst, ok := obj.(*runtime.Instance); ok {
			delete(inst.Fields, target.Name.Name)
		}
		return runtime.Boolean(true)
	case *ast.GetIndex:
		obj := ev.Eval(ctx, target.Object)
		idx := ev.Eval(ctx, target.Index)
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(toStringValue(idx))
		}
		return runtime.Boolean(true)
	default:
		ev.Eval(ctx, n.Expr)
		return runtime.Boolean(true)
	}
}

func evalPrefixIncrement(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.PrefixIncrement)
	old := toNumber(ev.Eval(ctx, n.Operand))
	delta := 1.0
	if n.Decrement {
		delta = -1.0
	}
	nv := runtime.Number(old + delta)
	ev.assignTo(ctx, n.Operand, nv)
	return nv
}

func evalPostfixIncrement(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.PostfixIncrement)
	old := toNumber(ev.Eval(ctx, n.Operand))
	delta := 1.0
	if n.Decrement {
		delta = -1.0
	}
	ev.assignTo(ctx, n.Operand, runtime.Number(old+delta))
	return runtime.Number(old)
}

func evalLogical(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Logical)
	left := ev.Eval(ctx, n.Left)
	if n.Op == ast.LogicalAnd {
		if !truthy(left) {
			return left
		}
		return ev.Eval(ctx, n.Right)
	}
	if truthy(left) {
		return left
	}
	return ev.Eval(ctx, n.Right)
}

func evalNullish(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.NullishCoalescing)
	left := ev.Eval(ctx, n.Left)
	if isNullish(left) {
		return ev.Eval(ctx, n.Right)
	}
	return left
}

func evalTernary(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Ternary)
	if truthy(ev.Eval(ctx, n.Cond)) {
		return ev.Eval(ctx, n.Then)
	}
	return ev.Eval(ctx, n.Else)
}

func evalAssign(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Assign)
	v := ev.Eval(ctx, n.Value)
	ev.assignTo(ctx, n.Target, v)
	return v
}

func evalCompoundAssign(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.CompoundAssign)
	cur := ev.Eval(ctx, n.Target)
	rhs := ev.Eval(ctx, n.Value)
	result := applyCompound(n.Op, cur, rhs)
	ev.assignTo(ctx, n.Target, result)
	return result
}

func evalLogicalAssign(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.LogicalAssign)
	cur := ev.Eval(ctx, n.Target)
	switch n.Op {
	case ast.LogicalAssignAnd:
		if !truthy(cur) {
			return cur
		}
	case ast.LogicalAssignOr:
		if truthy(cur) {
			return cur
		}
	case ast.LogicalAssignNullish:
		if !isNullish(cur) {
			return cur
		}
	}
	v := ev.Eval(ctx, n.Value)
	ev.assignTo(ctx, n.Target, v)
	return v
}

// assignTo resolves an lvalue expression and writes v to it, used by
// Assign, CompoundAssign, LogicalAssign, and increment/decrement.
func (ev *Evaluator) assignTo(ctx *Context, target ast.Expression, v runtime.Value) {
	switch t := target.(type) {
	case *ast.Variable:
		if isConst, found := ctx.env.Assign(t.Name.Name, v); found {
			if isConst {
				panic(newThrowPanic(newError("TypeError", "Assignment to constant variable.")))
			}
			return
		}
		ev.globals.Define(t.Name.Name, v, false)
	case *ast.Get:
		obj := ev.Eval(ctx, t.Object)
		ev.setMember(obj, t.Name.Name, v)
	case *ast.GetIndex:
		obj := ev.Eval(ctx, t.Object)
		idx := ev.Eval(ctx, t.Index)
		ev.setIndexed(obj, idx, v)
	case *ast.GetPrivate:
		obj := ev.Eval(ctx, t.Object)
		if inst, ok := obj.(*runtime.Instance); ok {
			inst.Private[t.Name.Name] = v
		}
	case *ast.Grouping:
		ev.assignTo(ctx, t.Inner, v)
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		ev.bindPattern(ctx, target, v, false)
	}
}

func evalGet(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Get)
	if _, ok := n.Object.(*ast.Super); ok {
		return ev.getSuperMember(ctx, n.Name.Name)
	}
	obj := ev.Eval(ctx, n.Object)
	if n.Optional && isNullish(obj) {
		return runtime.Undefined{}
	}
	return ev.getMember(obj, n.Name.Name)
}

func evalSet(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Set)
	obj := ev.Eval(ctx, n.Object)
	v := ev.Eval(ctx, n.Value)
	ev.setMember(obj, n.Name.Name, v)
	return v
}

func evalGetIndex(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.GetIndex)
	obj := ev.Eval(ctx, n.Object)
	if n.Optional && isNullish(obj) {
		return runtime.Undefined{}
	}
	idx := ev.Eval(ctx, n.Index)
	return ev.getIndexed(obj, idx)
}

func evalSetIndex(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.SetIndex)
	obj := ev.Eval(ctx, n.Object)
	idx := ev.Eval(ctx, n.Index)
	v := ev.Eval(ctx, n.Value)
	ev.setIndexed(obj, idx, v)
	return v
}

func evalGetPrivate(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.GetPrivate)
	obj := ev.Eval(ctx, n.Object)
	if inst, ok := obj.(*runtime.Instance); ok {
		if v, ok := inst.Private[n.Name.Name]; ok {
			return v
		}
	}
	return runtime.Undefined{}
}

func evalSetPrivate(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.SetPrivate)
	obj := ev.Eval(ctx, n.Object)
	v := ev.Eval(ctx, n.Value)
	if inst, ok := obj.(*runtime.Instance); ok {
		inst.Private[n.Name.Name] = v
	}
	return v
}

func evalCallPrivate(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.CallPrivate)
	obj := ev.Eval(ctx, n.Object)
	args := ev.evalArgs(ctx, n.Args)
	if inst, ok := obj.(*runtime.Instance); ok {
		if method, ok := inst.Private[n.Name.Name]; ok {
			return ev.callValue(ctx, method, obj, args)
		}
		if m, ok := inst.Class.Members[n.Name.Name]; ok {
			return ev.invokeFunction(m, obj, args)
		}
	}
	panic(newThrowPanic(newError("TypeError", "private method #"+n.Name.Name+" is not defined")))
}

func evalTypeAssertion(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.Eval(ctx, e.(*ast.TypeAssertion).Expr)
}

func evalSatisfies(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.Eval(ctx, e.(*ast.Satisfies).Expr)
}

func evalNonNullAssertion(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.Eval(ctx, e.(*ast.NonNullAssertion).Expr)
}

func evalImportMeta(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	meta := runtime.NewObject()
	meta.Set("url", runtime.String(""))
	return meta
}

func evalDynamicImport(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.DynamicImport)
	spec := toStringValue(ev.Eval(ctx, n.Specifier))
	p := runtime.NewPromise()
	ns, err := ev.loadModule(spec)
	if err != nil {
		p.Settle(runtime.PromiseRejected, newError("Error", err.Error()))
	} else {
		p.Settle(runtime.PromiseFulfilled, ns)
	}
	return p
}
