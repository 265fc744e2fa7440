package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// loadModule resolves and evaluates the module named by spec, returning
// its export namespace. Modules evaluate at most once per Evaluator; a
// cycle sees the partially-populated namespace of the module that is
// still mid-evaluation rather than re-entering it.
func (ev *Evaluator) loadModule(spec string) (*runtime.Namespace, error) {
	if ev.loader == nil {
		return nil, &UncaughtError{Value: newError("Error", "no module loader configured for import of "+spec)}
	}
	abs, err := ev.loader.Resolve(spec, ev.currentModule)
	if err != nil {
		return nil, err
	}
	if ns, ok := ev.modules[abs]; ok {
		return ns, nil
	}
	prog, err := ev.loader.Load(abs)
	if err != nil {
		return nil, err
	}
	ns := &runtime.Namespace{Name: spec, Members: map[string]runtime.Value{}}
	ev.modules[abs] = ns

	prevModule := ev.currentModule
	ev.currentModule = abs
	defer func() { ev.currentModule = prevModule }()

	// Module top-level code runs in its own scope chained to the globals;
	// module files are always strict.
	modCtx := &Context{
		env:     ev.globals.Child(),
		thisVal: runtime.Undefined{},
		exports: ns,
	}
	result := runCatchingThrow(func() ExecutionResult {
		return ev.execStatements(modCtx, prog.Statements)
	})
	if result.Kind == ThrowResult {
		delete(ev.modules, abs)
		return nil, &UncaughtError{Value: result.Value}
	}
	return ns, nil
}

// loadModuleInto evaluates the module named by spec and binds its default
// export, namespace object, and named specifiers into ctx's scope.
func (ev *Evaluator) loadModuleInto(ctx *Context, spec, defaultName, nsName string, specifiers []ast.ImportSpecifier) ExecutionResult {
	ns, err := ev.loadModule(spec)
	if err != nil {
		if ue, ok := err.(*UncaughtError); ok {
			return ExecutionResult{Kind: ThrowResult, Value: ue.Value}
		}
		return ExecutionResult{Kind: ThrowResult, Value: newError("Error", err.Error())}
	}
	if defaultName != "" {
		ctx.env.Define(defaultName, memberOrUndefined(ns, "default"), false)
	}
	if nsName != "" {
		ctx.env.Define(nsName, ns, false)
	}
	for _, sp := range specifiers {
		if sp.TypeOnly {
			continue
		}
		local := sp.Local
		if local == "" {
			local = sp.Imported
		}
		ctx.env.Define(local, memberOrUndefined(ns, sp.Imported), false)
	}
	return normal(runtime.Undefined{})
}

func memberOrUndefined(ns *runtime.Namespace, name string) runtime.Value {
	if v, ok := ns.Members[name]; ok {
		return v
	}
	return runtime.Undefined{}
}

// recordExports copies the names declared by an `export <decl>` statement
// out of env into the current module's export namespace. Outside module
// evaluation (plain script, REPL) exports are inert.
func (ev *Evaluator) recordExports(ctx *Context, decl ast.Statement, asDefault bool) {
	if ctx.exports == nil {
		return
	}
	for _, name := range declaredNames(decl) {
		v, _ := ctx.env.Get(name)
		if asDefault {
			ctx.exports.Members["default"] = v
			return
		}
		ctx.exports.Members[name] = v
	}
}

// declaredNames lists the runtime bindings a declaration statement
// introduces in its enclosing scope.
func declaredNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		var names []string
		for _, d := range s.Declarators {
			if d.Name != "" {
				names = append(names, d.Name)
				continue
			}
			names = append(names, patternNames(d.Pattern)...)
		}
		return names
	case *ast.FunctionDecl:
		return []string{s.Name}
	case *ast.ClassDecl:
		return []string{s.Name}
	case *ast.EnumDecl:
		return []string{s.Name}
	case *ast.NamespaceDecl:
		return []string{s.Name}
	case *ast.Sequence:
		var names []string
		for _, inner := range s.Statements {
			names = append(names, declaredNames(inner)...)
		}
		return names
	}
	return nil
}

// patternNames lists the identifiers a destructuring pattern binds.
func patternNames(pattern ast.Expression) []string {
	switch p := pattern.(type) {
	case *ast.Identifier:
		return []string{p.Name}
	case *ast.ArrayLiteral:
		var names []string
		for _, el := range p.Elements {
			if el.Expr != nil {
				names = append(names, patternNames(el.Expr)...)
			}
		}
		return names
	case *ast.ObjectLiteral:
		var names []string
		for _, prop := range p.Properties {
			if prop.Value != nil {
				names = append(names, patternNames(prop.Value)...)
			} else if prop.KeyName != "" {
				names = append(names, prop.KeyName)
			}
		}
		return names
	case *ast.Spread:
		return patternNames(p.Expr)
	case *ast.Assign:
		return patternNames(p.Target)
	}
	return nil
}
