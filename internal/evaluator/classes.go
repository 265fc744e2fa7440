package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// execClassDecl builds a runtime Class value from a class declaration and
// binds it in the enclosing scope.
func execClassDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ClassDecl)
	cls := ev.buildClass(ctx, n)
	ctx.env.Define(n.Name, cls, false)
	return normal(runtime.Undefined{})
}

func evalClassExpr(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.ClassExpr)
	return ev.buildClass(ctx, n.Decl)
}

func (ev *Evaluator) buildClass(ctx *Context, n *ast.ClassDecl) *runtime.Class {
	cls := &runtime.Class{
		Name:          n.Name,
		Members:       map[string]*runtime.Function{},
		StaticFields:  map[string]runtime.Value{},
		StaticMethods: map[string]*runtime.Function{},
		Getters:       map[string]*runtime.Function{},
		Setters:       map[string]*runtime.Function{},
		Abstract:      n.Abstract,
	}
	if n.Extends != nil {
		if superName, ok := typeRefName(n.Extends); ok {
			if superVal, ok := ctx.env.Get(superName); ok {
				if superClass, ok := superVal.(*runtime.Class); ok {
					cls.Super = superClass
				}
			}
		}
	}
	classEnv := ctx.env.Child()
	if n.Name != "" {
		classEnv.Define(n.Name, cls, false)
	}
	cls.Env = classEnv
	classCtx := &Context{env: classEnv, thisVal: cls}

	var staticBlocks []*ast.StaticBlock
	for _, m := range n.Members {
		switch member := m.(type) {
		case *ast.FunctionDecl:
			if member.Body == nil {
				continue // overload signature, no runtime effect
			}
			fn := ev.makeMethodFunction(classEnv, member)
			switch {
			case member.Name == "constructor":
				// Parameter properties (`public x: T`) are assigned to the
				// instance from their arguments before the written body runs.
				var assigns []ast.Statement
				for _, p := range member.Params {
					if p.Modifiers.IsParameterProperty {
						assigns = append(assigns, &ast.ExpressionStatement{Expr: &ast.Set{
							Object: &ast.This{}, Name: &ast.Identifier{Name: p.Name},
							Value: &ast.Variable{Name: &ast.Identifier{Name: p.Name}},
						}})
					}
				}
				if len(assigns) > 0 {
					fn.Body = &ast.Block{Base: member.Body.Base, Statements: append(assigns, member.Body.Statements...)}
				}
				cls.Ctor = fn
			case member.Flags.Static:
				cls.StaticMethods[member.Name] = fn
			default:
				cls.Members[member.Name] = fn
			}
		case *ast.FieldDecl:
			key := member.Name
			if member.Static {
				var v runtime.Value = runtime.Undefined{}
				if member.Initializer != nil {
					v = ev.Eval(classCtx, member.Initializer)
				}
				cls.StaticFields[key] = v
			} else {
				cls.Fields = append(cls.Fields, runtime.FieldInit{
					Name:        key,
					Private:     member.PrivateName,
					Initializer: member.Initializer,
				})
			}
		case *ast.AccessorDecl:
			fn := &runtime.Function{Params: toRuntimeParams(member.Params), Env: classEnv, Body: member.Body}
			target := cls.Getters
			if member.Kind == ast.AccessorSet {
				target = cls.Setters
			}
			target[member.Name] = fn
		case *ast.AutoAccessorDecl:
			backing := "#" + member.Name
			var init runtime.Value = runtime.Undefined{}
			if member.Initializer != nil {
				init = ev.Eval(classCtx, member.Initializer)
			}
			if member.Static {
				cls.StaticFields[backing] = init
			} else {
				cls.Fields = append(cls.Fields, runtime.FieldInit{Name: backing, Private: true, Initializer: member.Initializer})
			}
			name := member.Name
			cls.Getters[name] = &runtime.Function{ThisAwareNative: func(args []runtime.Value, this runtime.Value) runtime.Value {
				if inst, ok := this.(*runtime.Instance); ok {
					return inst.Private[name]
				}
				return runtime.Undefined{}
			}}
			cls.Setters[name] = &runtime.Function{ThisAwareNative: func(args []runtime.Value, this runtime.Value) runtime.Value {
				if inst, ok := this.(*runtime.Instance); ok && len(args) > 0 {
					inst.Private[name] = args[0]
				}
				return runtime.Undefined{}
			}}
		case *ast.StaticBlock:
			staticBlocks = append(staticBlocks, member)
		}
	}
	for _, blk := range staticBlocks {
		ev.runBlockBody(classCtx, blk.Body.Statements)
	}
	return cls
}

func (ev *Evaluator) makeMethodFunction(classEnv *runtime.Environment, n *ast.FunctionDecl) *runtime.Function {
	return &runtime.Function{
		Name:        n.Name,
		Params:      toRuntimeParams(n.Params),
		IsAsync:     n.Flags.Async,
		IsGenerator: n.Flags.Generator,
		Env:         classEnv,
		Body:        n.Body,
	}
}

// typeRefName extracts a bare type-name identifier from a TypeExpression
// naming a superclass (`extends Base` or `extends Base<T>`), used to
// resolve the runtime Class value at class-definition time.
func typeRefName(t ast.TypeExpression) (string, bool) {
	if ann, ok := t.(*ast.TypeAnnotation); ok && ann.Name != "" {
		return ann.Name, true
	}
	return "", false
}

// instantiate implements `new C(args)`: allocate a
// fresh instance, run the constructor chain (synthesizing a default
// `super(...args)` forwarding call when no constructor is declared),
// initializing instance fields in declaration order immediately before
// the constructor body runs (matching the field-initializer-then-body
// ordering real engines use) and bind `this` through the chain.
func (ev *Evaluator) instantiate(ctx *Context, class *runtime.Class, args []runtime.Value) *runtime.Instance {
	inst := &runtime.Instance{Class: class, Fields: map[string]runtime.Value{}, Private: map[string]runtime.Value{}, SymbolFields: map[string]runtime.Value{}}
	ev.runConstructorChain(ctx, class, inst, args)
	return inst
}

func (ev *Evaluator) runConstructorChain(ctx *Context, class *runtime.Class, inst *runtime.Instance, args []runtime.Value) {
	ev.initInstanceFields(ctx, class, inst)
	if class.Ctor == nil {
		if class.Super != nil {
			ev.runConstructorChain(ctx, class.Super, inst, args)
		}
		return
	}
	bodyEnv := class.Ctor.Env.Child()
	ev.bindParams(bodyEnv, class.Ctor.Params, args)
	bodyEnv.Define("__superclass__", classOrUndefined(class.Super), true)
	ctorCtx := &Context{env: bodyEnv, thisVal: inst}
	result := ev.runFunctionBody(ctorCtx, class.Ctor.Body)
	if result.Kind == ThrowResult {
		panic(throwPanic{result})
	}
}

func classOrUndefined(c *runtime.Class) runtime.Value {
	if c == nil {
		return runtime.Undefined{}
	}
	return c
}

func (ev *Evaluator) initInstanceFields(ctx *Context, class *runtime.Class, inst *runtime.Instance) {
	fieldCtx := &Context{env: class.Env, thisVal: inst}
	for _, f := range class.Fields {
		var v runtime.Value = runtime.Undefined{}
		if initExpr, ok := f.Initializer.(ast.Expression); ok && initExpr != nil {
			v = ev.Eval(fieldCtx, initExpr)
		}
		if f.Private {
			inst.Private[f.Name] = v
		} else {
			inst.Fields[f.Name] = v
		}
	}
}

// callSuperConstructor handles `super(...)` inside a constructor body:
// runs the superclass's constructor chain against the already-allocated
// `this` instance.
func (ev *Evaluator) callSuperConstructor(ctx *Context, args []runtime.Value) {
	inst, ok := ctx.thisVal.(*runtime.Instance)
	if !ok {
		return
	}
	superVal, _ := ctx.env.Get("__superclass__")
	super, ok := superVal.(*runtime.Class)
	if !ok {
		return
	}
	ev.runConstructorChain(ctx, super, inst, args)
}

// getSuperMember resolves `super.method` to the base class's own method
// table (bypassing any override on the receiver's actual class), bound
// to the current `this` at call time.
func (ev *Evaluator) getSuperMember(ctx *Context, name string) runtime.Value {
	inst, ok := ctx.thisVal.(*runtime.Instance)
	if !ok {
		return runtime.Undefined{}
	}
	super := inst.Class.Super
	if super == nil {
		return runtime.Undefined{}
	}
	if fn, ok := lookupMethod(super, name); ok {
		return fn
	}
	return runtime.Undefined{}
}

func lookupMethod(class *runtime.Class, name string) (*runtime.Function, bool) {
	for c := class; c != nil; c = c.Super {
		if fn, ok := c.Members[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

func lookupGetter(class *runtime.Class, name string) (*runtime.Function, bool) {
	for c := class; c != nil; c = c.Super {
		if fn, ok := c.Getters[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

func lookupSetter(class *runtime.Class, name string) (*runtime.Function, bool) {
	for c := class; c != nil; c = c.Super {
		if fn, ok := c.Setters[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// instanceOf implements `instanceof`, walking the nominal superclass
// chain.
func (ev *Evaluator) instanceOf(v runtime.Value, ctor runtime.Value) bool {
	class, ok := ctor.(*runtime.Class)
	if !ok {
		return false
	}
	inst, ok := v.(*runtime.Instance)
	if !ok {
		return false
	}
	for c := inst.Class; c != nil; c = c.Super {
		if c == class {
			return true
		}
	}
	return false
}

func (ev *Evaluator) hasProperty(obj runtime.Value, key string) bool {
	switch o := obj.(type) {
	case *runtime.Object:
		_, ok := o.Get(key)
		return ok
	case *runtime.Instance:
		if _, ok := o.Fields[key]; ok {
			return true
		}
		_, ok := lookupMethod(o.Class, key)
		return ok
	case *runtime.Array:
		idx, ok := arrayIndex(key)
		return ok && idx >= 0 && idx < len(o.Elements)
	}
	return false
}

// bindPattern implements destructuring binding for `let`/`const`/`var`
// declarators, for-of/for-in/catch bindings, and parameter patterns (binding
// directly against the pattern shape rather than requiring the parser to
// desugar into temporaries, since the evaluator already walks arbitrary
// lvalue expressions for plain assignment).
func (ev *Evaluator) bindPattern(ctx *Context, pattern ast.Expression, value runtime.Value, isConst bool) ExecutionResult {
	switch p := pattern.(type) {
	case *ast.ArrayLiteral:
		it, thrown := ev.getIterator(ctx, value, false)
		if thrown != nil {
			return *thrown
		}
		for _, el := range p.Elements {
			v, done, thrown := ev.iteratorNext(ctx, it, false)
			if thrown != nil {
				return *thrown
			}
			if done {
				v = runtime.Undefined{}
			}
			if el.Expr == nil {
				continue
			}
			if spread, ok := el.Expr.(*ast.Spread); ok {
				rest := &runtime.Array{}
				for {
					rv, done, thrown := ev.iteratorNext(ctx, it, false)
					if thrown != nil {
						return *thrown
					}
					if done {
						break
					}
					rest.Elements = append(rest.Elements, rv)
				}
				if r := ev.bindPattern(ctx, spread.Expr, rest, isConst); r.IsAbrupt() {
					return r
				}
				continue
			}
			if r := ev.bindPattern(ctx, el.Expr, v, isConst); r.IsAbrupt() {
				return r
			}
		}
		return normal(runtime.Undefined{})
	case *ast.ObjectLiteral:
		used := map[string]bool{}
		for _, prop := range p.Properties {
			if prop.IsSpread {
				rest := runtime.NewObject()
				if srcObj, ok := value.(*runtime.Object); ok {
					for _, k := range srcObj.Keys() {
						if used[k] {
							continue
						}
						v, _ := srcObj.Get(k)
						rest.Set(k, v)
					}
				}
				if r := ev.bindPattern(ctx, prop.Value, rest, isConst); r.IsAbrupt() {
					return r
				}
				continue
			}
			key := ev.objectPropertyKey(ctx, prop)
			used[key] = true
			v := ev.getMember(value, key)
			target := prop.Value
			if target == nil {
				target = &ast.Variable{Name: &ast.Identifier{Name: key}}
			}
			if r := ev.bindPattern(ctx, target, v, isConst); r.IsAbrupt() {
				return r
			}
		}
		return normal(runtime.Undefined{})
	case *ast.Variable:
		ctx.env.Define(p.Name.Name, value, isConst)
		return normal(runtime.Undefined{})
	case *ast.Assign:
		v := value
		if isNullish(v) {
			v = ev.Eval(ctx, p.Value)
		}
		return ev.bindPattern(ctx, p.Target, v, isConst)
	default:
		ev.assignTo(ctx, pattern, value)
		return normal(runtime.Undefined{})
	}
}

func arrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// newError synthesizes a runtime Error value, used both for host-
// exception translation and for built-in runtime errors
// (ReferenceError, TypeError, RangeError) the evaluator itself throws.
func newError(name, message string) *runtime.Error {
	return &runtime.Error{Name: name, Message: message}
}
