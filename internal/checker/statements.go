package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// checkStatement dispatches over every ast.Statement kind; it both validates the statement and (for declarations) extends
// the current TypeEnvironment/NarrowingContext for subsequent statements.
func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		c.checkBlock(s)
	case *ast.Sequence:
		for _, st := range s.Statements {
			c.checkStatement(st)
		}
	case *ast.ExpressionStatement:
		c.inferExpressionType(s.Expr)
	case *ast.VarStatement:
		c.checkVarStatement(s)
	case *ast.If:
		c.checkIf(s)
	case *ast.While:
		thenFacts, _ := c.narrowCondition(s.Cond)
		c.inferExpressionType(s.Cond)
		c.applyNarrowing(thenFacts, func() { c.checkStatement(s.Body) })
	case *ast.DoWhile:
		c.checkStatement(s.Body)
		c.inferExpressionType(s.Cond)
	case *ast.For:
		c.checkFor(s)
	case *ast.ForOf:
		c.checkForOf(s)
	case *ast.ForIn:
		c.checkForIn(s)
	case *ast.Switch:
		c.checkSwitch(s)
	case *ast.TryCatch:
		c.checkTryCatch(s)
	case *ast.Throw:
		c.inferExpressionType(s.Expr)
	case *ast.Return:
		c.checkReturn(s)
	case *ast.Break, *ast.Continue:
		// Nothing to check statically; label resolution is the parser's
		// job (undefined labels would have already failed to parse).
	case *ast.LabeledStatement:
		c.checkStatement(s.Body)
	case *ast.Using:
		c.checkUsing(s)
	case *ast.FunctionDecl:
		c.checkFunctionBody(s)
	case *ast.ClassDecl:
		c.checkClassBody(s)
	case *ast.InterfaceDecl, *ast.TypeAliasDecl:
		// Fully handled by hoist; nothing further to check.
	case *ast.EnumDecl:
		// Shape resolved by hoist. Computed member initializers are taken
		// as numeric and not checked here, for const enums too; a const
		// enum initializer outside the allowed forms fails only when the
		// evaluator runs the declaration.
	case *ast.NamespaceDecl:
		for _, m := range s.Members {
			c.checkStatement(m)
		}
	case *ast.ImportDecl:
		// Module resolution lives in internal/loader; the checker binds
		// imported names permissively and leaves cross-module shape
		// checking to the importing module's own check run.
		if s.Default != "" {
			c.env.Define(s.Default, types.Any)
		}
		if s.Namespace != "" {
			c.env.Define(s.Namespace, types.Any)
		}
		for _, sp := range s.Specifiers {
			local := sp.Local
			if local == "" {
				local = sp.Imported
			}
			c.env.Define(local, types.Any)
		}
	case *ast.ImportAliasDecl:
		c.env.Define(s.Name, types.Any)
	case *ast.ExportDecl:
		if s.Decl != nil {
			c.checkStatement(s.Decl)
		}
	case *ast.Directive, *ast.FileDirective:
		// No static meaning for the checker.
	case *ast.StaticBlock:
		c.checkStatement(s.Body)
	}
}

func (c *Checker) checkBlock(b *ast.Block) {
	prev := c.env
	c.env = prev.Child()
	for _, st := range b.Statements {
		c.hoist(st, c.env)
	}
	for _, st := range b.Statements {
		c.checkStatement(st)
	}
	c.env = prev
}

func (c *Checker) checkVarStatement(s *ast.VarStatement) {
	for _, d := range s.Declarators {
		var declared types.Info
		if d.Type != nil {
			declared = c.resolveType(d.Type)
		}
		var initTy types.Info
		if d.Initializer != nil {
			if declared != nil {
				initTy = c.checkExpressionAgainst(d.Initializer, declared)
			} else {
				initTy = c.inferExpressionType(d.Initializer)
				if s.Kind != ast.VarConst {
					initTy = widenLiteral(initTy)
				}
			}
		}
		final := declared
		if final == nil {
			final = initTy
		}
		if final == nil {
			final = types.Any
		}
		if d.Name != "" {
			c.env.Define(d.Name, final)
			if s.Kind == ast.VarConst {
				c.env.MarkReadOnly(d.Name)
			}
		} else if d.Pattern != nil {
			c.bindPattern(d.Pattern, final, s.Kind == ast.VarConst)
		}
	}
}

// widenLiteral implements the literal-widening rule: a `let`/
// `var` binding without an explicit type annotation widens its inferred
// literal type to the containing primitive, unlike `const` bindings and
// `as const` assertions which preserve it.
func widenLiteral(t types.Info) types.Info {
	if lit, ok := t.(*types.Literal); ok {
		return lit.Primitive()
	}
	return t
}

// bindPattern introduces the bindings a destructuring pattern produces.
// Only the common array/object destructuring shapes are modeled; nested
// patterns recurse structurally.
func (c *Checker) bindPattern(pattern ast.Expression, ty types.Info, readOnly bool) {
	switch p := pattern.(type) {
	case *ast.ArrayLiteral:
		elemTy := types.Any
		if a, ok := ty.(*types.Array); ok {
			elemTy = a.Elem
		}
		for _, el := range p.Elements {
			if el.Expr == nil {
				continue
			}
			c.bindPatternTarget(el.Expr, elemTy, readOnly)
		}
	case *ast.ObjectLiteral:
		members := memberTable(ty)
		for _, prop := range p.Properties {
			fieldTy := types.Any
			if members != nil {
				if m, ok := members[prop.KeyName]; ok {
					fieldTy = m.Type
				}
			}
			c.bindPatternTarget(prop.Value, fieldTy, readOnly)
		}
	}
}

func (c *Checker) bindPatternTarget(target ast.Expression, ty types.Info, readOnly bool) {
	switch t := target.(type) {
	case *ast.Variable:
		c.env.Define(t.Name.Name, ty)
		if readOnly {
			c.env.MarkReadOnly(t.Name.Name)
		}
	case *ast.Assign:
		c.bindPatternTarget(t.Target, ty, readOnly)
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		c.bindPattern(t, ty, readOnly)
	}
}

func (c *Checker) checkIf(s *ast.If) {
	thenFacts, elseFacts := c.narrowCondition(s.Cond)
	c.inferExpressionType(s.Cond)
	c.applyNarrowing(thenFacts, func() { c.checkStatement(s.Consequent) })
	if s.Alternate != nil {
		c.applyNarrowing(elseFacts, func() { c.checkStatement(s.Alternate) })
	} else if alwaysExits(s.Consequent) {
		// `if (x) { return; }` leaves elseFacts true for all statements
		// following the if in the same block; applied by the caller since
		// checkBlock processes statements sequentially over the same env.
		for name, ty := range elseFacts {
			c.env.Define(name, ty)
		}
	}
}

// alwaysExits reports whether stmt unconditionally transfers control out
// of the current block (return/throw/break/continue on every path),
// enabling the "early return narrows the rest of the function" pattern.
func alwaysExits(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.Return, *ast.Throw, *ast.Break, *ast.Continue:
		return true
	case *ast.Block:
		for _, st := range s.Statements {
			if alwaysExits(st) {
				return true
			}
		}
		return false
	case *ast.If:
		return s.Alternate != nil && alwaysExits(s.Consequent) && alwaysExits(s.Alternate)
	}
	return false
}

func (c *Checker) checkFor(s *ast.For) {
	prev := c.env
	c.env = prev.Child()
	defer func() { c.env = prev }()
	if s.Init != nil {
		c.checkStatement(s.Init)
	}
	if s.Cond != nil {
		c.inferExpressionType(s.Cond)
	}
	if s.Update != nil {
		c.inferExpressionType(s.Update)
	}
	c.checkStatement(s.Body)
}

func (c *Checker) checkForOf(s *ast.ForOf) {
	prev := c.env
	c.env = prev.Child()
	defer func() { c.env = prev }()

	iterableTy := c.inferExpressionType(s.Iterable)
	elemTy := iterationElementType(iterableTy)
	if s.Await {
		elemTy = awaitedType(elemTy)
	}
	if s.Type != nil {
		elemTy = c.resolveType(s.Type)
	}
	if s.Name != "" {
		c.env.Define(s.Name, elemTy)
	} else if s.Pattern != nil {
		c.bindPattern(s.Pattern, elemTy, s.Kind == ast.VarConst)
	}
	c.checkStatement(s.Body)
}

func iterationElementType(t types.Info) types.Info {
	switch v := t.(type) {
	case *types.Array:
		return v.Elem
	case *types.Tuple:
		return tupleElementUnion(v)
	}
	return types.Any
}

func awaitedType(t types.Info) types.Info {
	if inst, ok := t.(*types.Instance); ok && inst.Target == builtinPromiseClass && len(inst.TypeArgs) == 1 {
		return inst.TypeArgs[0]
	}
	return t
}

func (c *Checker) checkForIn(s *ast.ForIn) {
	prev := c.env
	c.env = prev.Child()
	defer func() { c.env = prev }()
	c.inferExpressionType(s.Object)
	if s.Name != "" {
		c.env.Define(s.Name, types.String)
	} else if s.Pattern != nil {
		c.bindPattern(s.Pattern, types.String, s.Kind == ast.VarConst)
	}
	c.checkStatement(s.Body)
}

// checkSwitch narrows per case: a bare-variable discriminant is rebound
// to the case's literal type, and a property-chain discriminant
// (`switch (shape.kind)`) refines the root object's union member set the
// same way an equality guard does.
func (c *Checker) checkSwitch(s *ast.Switch) {
	c.inferExpressionType(s.Discriminant)
	path, isPath := pathOf(s.Discriminant)
	var declared types.Info
	if isPath {
		d, found := c.env.Get(path.root)
		if !found {
			isPath = false
		} else {
			declared = d
		}
	}
	for _, cs := range s.Cases {
		prev := c.env
		c.env = prev.Child()
		if cs.Test != nil {
			c.inferExpressionType(cs.Test)
			if lit := c.literalExprType(cs.Test); isPath && lit != nil {
				if len(path.props) == 0 {
					c.env.Define(path.root, lit)
				} else {
					c.env.Define(path.root, c.filterUnionByMember(declared, path.props, func(mt types.Info) bool {
						return mt != nil && c.IsAssignable(lit, mt)
					}))
				}
			}
		}
		for _, st := range cs.Statements {
			c.checkStatement(st)
		}
		c.env = prev
	}
}

func (c *Checker) checkTryCatch(s *ast.TryCatch) {
	c.checkStatement(s.Try)
	if s.Catch != nil {
		prev := c.env
		c.env = prev.Child()
		if s.Catch.ParamName != "" {
			c.env.Define(s.Catch.ParamName, types.Any)
		} else if s.Catch.Pattern != nil {
			c.bindPattern(s.Catch.Pattern, types.Any, false)
		}
		c.checkStatement(s.Catch.Body)
		c.env = prev
	}
	if s.Finally != nil {
		c.checkStatement(s.Finally)
	}
}

func (c *Checker) checkReturn(s *ast.Return) {
	if s.Expr == nil {
		return
	}
	var expected types.Info
	if c.currentFunc != nil {
		expected = c.currentFunc.returnTy
		if c.currentFunc.isAsync {
			expected = awaitedType(expected)
		}
	}
	if expected != nil && expected.Kind() != types.KindAny {
		c.checkExpressionAgainst(s.Expr, expected)
	} else {
		c.inferExpressionType(s.Expr)
	}
}

// checkUsing introduces the read-only bindings of a `using`/`await using`
// declaration with their initializers' inferred types. The initializer
// type is not checked for a Symbol.dispose (or Symbol.asyncDispose)
// member; the disposal protocol itself runs in the evaluator.
func (c *Checker) checkUsing(s *ast.Using) {
	for _, b := range s.Bindings {
		ty := types.Any
		if b.Initializer != nil {
			ty = c.inferExpressionType(b.Initializer)
		}
		c.env.Define(b.Name, ty)
		c.env.MarkReadOnly(b.Name)
	}
}

func (c *Checker) checkFunctionBody(f *ast.FunctionDecl) {
	if f.Body == nil {
		return // overload signature
	}
	prevEnv := c.env
	c.env = prevEnv.Child()
	defer func() { c.env = prevEnv }()

	fnTy := c.functionDeclType(f)
	for i, p := range f.Params {
		if i < len(fnTy.Params) {
			c.env.Define(p.Name, fnTy.Params[i].Type)
		}
	}
	prevFunc := c.currentFunc
	retTy := fnTy.Return
	if f.Flags.Async {
		retTy = awaitedType(retTy)
	}
	c.currentFunc = &funcContext{parent: prevFunc, returnTy: retTy, isAsync: f.Flags.Async, isGen: f.Flags.Generator, thisType: c.currentClassThis()}
	defer func() { c.currentFunc = prevFunc }()
	c.checkBlock(f.Body)
}

func (c *Checker) currentClassThis() types.Info {
	if c.currentClass == nil {
		return nil
	}
	return &types.Instance{Target: c.currentClass}
}

// checkClassBody type-checks every member body against the shape already
// hoisted into types.Class by hoistClassShape, registers constructor
// parameter properties, and for a non-abstract class checks the
// interfaces it implements. Override compatibility and implementation of
// inherited abstract members are not checked.
func (c *Checker) checkClassBody(decl *ast.ClassDecl) {
	cls := c.classes[decl.Name]
	if cls == nil {
		cls = c.hoistClassShape(decl)
	}
	prevClass := c.currentClass
	c.currentClass = cls
	defer func() { c.currentClass = prevClass }()

	scope := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParamScope(scope)

	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FunctionDecl:
			if m.Name == "constructor" {
				c.checkConstructor(m, cls)
				continue
			}
			c.checkFunctionBody(m)
		case *ast.FieldDecl:
			if m.Initializer != nil {
				expected := cls.Members[m.Name]
				if m.Static {
					expected = cls.StaticMembers[m.Name]
				}
				if expected != nil {
					c.checkExpressionAgainst(m.Initializer, expected.Type)
				} else {
					c.inferExpressionType(m.Initializer)
				}
			}
		case *ast.AccessorDecl:
			c.checkAccessorBody(m)
		case *ast.AutoAccessorDecl:
			if m.Initializer != nil {
				c.inferExpressionType(m.Initializer)
			}
		case *ast.StaticBlock:
			c.checkStatement(m.Body)
		}
	}

	if !cls.Abstract {
		c.checkInterfaceImplementations(decl, cls)
	}
}

func (c *Checker) checkConstructor(m *ast.FunctionDecl, cls *types.Class) {
	if m.Body == nil {
		return
	}
	prevEnv := c.env
	c.env = prevEnv.Child()
	defer func() { c.env = prevEnv }()
	for _, p := range m.Params {
		pty := c.resolveType(p.Type)
		c.env.Define(p.Name, pty)
		if p.Modifiers.IsParameterProperty {
			cls.Members[p.Name] = &types.Member{Type: pty, Readonly: p.Modifiers.Readonly, Visibility: int(p.Modifiers.Visibility)}
		}
	}
	prevFunc := c.currentFunc
	c.currentFunc = &funcContext{parent: prevFunc, returnTy: types.Void, thisType: c.currentClassThis()}
	defer func() { c.currentFunc = prevFunc }()
	c.checkBlock(m.Body)
}

func (c *Checker) checkAccessorBody(m *ast.AccessorDecl) {
	if m.Body == nil {
		return
	}
	prevEnv := c.env
	c.env = prevEnv.Child()
	defer func() { c.env = prevEnv }()
	retTy := c.resolveType(m.ReturnType)
	for _, p := range m.Params {
		c.env.Define(p.Name, c.resolveType(p.Type))
	}
	prevFunc := c.currentFunc
	c.currentFunc = &funcContext{parent: prevFunc, returnTy: retTy, thisType: c.currentClassThis()}
	defer func() { c.currentFunc = prevFunc }()
	c.checkBlock(m.Body)
}

// checkInterfaceImplementations verifies every member a class's
// `implements` clauses declare is present with an assignable type.
func (c *Checker) checkInterfaceImplementations(decl *ast.ClassDecl, cls *types.Class) {
	for _, impl := range cls.Implements {
		iface, ok := impl.Target.(*types.Interface)
		if !ok {
			continue
		}
		for name, want := range iface.Members {
			got, ok := cls.Members[name]
			if !ok {
				c.errorf(decl2node(decl), "class %q incorrectly implements interface %q: missing %q", cls.Name, iface.Name, name)
				continue
			}
			if !c.IsAssignable(got.Type, want.Type) {
				c.errorf(decl2node(decl), "property %q is incompatible between class %q and interface %q", name, cls.Name, iface.Name)
			}
		}
	}
}

func decl2node(decl *ast.ClassDecl) ast.Node { return decl }
