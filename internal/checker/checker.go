// Package checker implements the bidirectional TypeScript type checker:
// a two-pass (hoist, then check) walker over internal/ast that
// resolves static types into internal/types.Info, narrows them along control
// flow, and reports diagnostics through a capped internal/diag.Bag.
package checker

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// maxDiagnostics caps the diagnostics bag: a file with
// cascading type errors stops reporting after this many to keep output readable.
const maxDiagnostics = 10

// Checker holds all state threaded through a single Check(Program) run.
type Checker struct {
	diags       *diag.Bag
	types       *TypeMap
	assignCache *types.AssignabilityCache

	globals *TypeEnvironment
	env     *TypeEnvironment

	classes     map[string]*types.Class
	interfaces  map[string]*types.Interface
	aliases     map[string]ast.TypeExpression
	aliasParams map[string][]ast.TypeParam
	typeParams  *TypeEnvironment // name -> TypeParameter, reused as a second chain

	narrow *NarrowingContext

	currentFunc  *funcContext
	currentClass *types.Class
}

// funcContext tracks the enclosing function for return-type checking and
// for validating await/yield placement.
type funcContext struct {
	parent   *funcContext
	returnTy types.Info
	isAsync  bool
	isGen    bool
	thisType types.Info
}

// New creates a Checker with an empty global scope.
func New() *Checker {
	globals := NewTypeEnvironment()
	c := &Checker{
		diags:       diag.NewCappedBag(maxDiagnostics),
		types:       NewTypeMap(),
		assignCache: types.NewAssignabilityCache(),
		globals:     globals,
		classes:     make(map[string]*types.Class),
		interfaces:  make(map[string]*types.Interface),
		aliases:     make(map[string]ast.TypeExpression),
		aliasParams: make(map[string][]ast.TypeParam),
		typeParams:  NewTypeEnvironment(),
	}
	c.env = globals
	c.narrow = newNarrowingContext()
	installGlobals(c)
	return c
}

// Check type-checks an entire program, returning the resolved TypeMap and
// any diagnostics gathered (capped at maxDiagnostics).
func Check(program *ast.Program) (*TypeMap, []diag.Diagnostic) {
	c := New()
	c.checkProgram(program)
	return c.types, c.diags.Items()
}

// Diagnostics exposes the checker's diagnostics bag for callers that want
// to keep checking after the first Check call (e.g. incremental tooling).
func (c *Checker) Diagnostics() []diag.Diagnostic { return c.diags.Items() }

// TypeMap exposes the resolved node -> type side table.
func (c *Checker) TypeMap() *TypeMap { return c.types }

func (c *Checker) errorf(span ast.Node, format string, args ...interface{}) {
	if c.diags.Full() {
		return
	}
	c.diags.Errorf(span.Span(), format, args...)
}

// checkProgram implements the two-pass algorithm: first
// hoist every top-level declaration's *name* and *shape* (so forward
// references and mutual recursion resolve), then check each statement's
// body against the now-complete symbol tables.
func (c *Checker) checkProgram(program *ast.Program) {
	for _, stmt := range program.Statements {
		c.hoist(stmt, c.env)
	}
	for _, stmt := range program.Statements {
		c.checkStatement(stmt)
	}
}

// hoist registers the compile-time shape of declarations reachable at the
// top of a block, without checking bodies. Function/class/interface/type
// alias/enum/namespace declarations are hoisted; a `var` name is hoisted
// as `any`, while let/const bindings are not (TDZ is not modeled, keeping
// narrowing the only control-flow-sensitive facility).
func (c *Checker) hoist(stmt ast.Statement, env *TypeEnvironment) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		if s.Name == "" {
			return
		}
		env.Define(s.Name, c.functionDeclType(s))
	case *ast.ClassDecl:
		if s.Name == "" {
			return
		}
		cls := c.hoistClassShape(s)
		c.classes[s.Name] = cls
		env.Define(s.Name, cls)
	case *ast.InterfaceDecl:
		if s.Name == "" {
			return
		}
		iface := c.hoistInterfaceShape(s)
		c.interfaces[s.Name] = iface
	case *ast.TypeAliasDecl:
		if s.Name == "" {
			return
		}
		c.aliases[s.Name] = s.Type
		c.aliasParams[s.Name] = s.TypeParams
	case *ast.EnumDecl:
		if s.Name == "" {
			return
		}
		env.Define(s.Name, c.hoistEnumShape(s))
	case *ast.NamespaceDecl:
		// Namespaces introduce a nested scope; members hoist into a child
		// environment keyed by the namespace's exported name in a Record
		// so `NS.member` resolves via ordinary member access.
		if s.Name == "" {
			return
		}
		nsEnv := env.Child()
		for _, m := range s.Members {
			c.hoist(m, nsEnv)
		}
	case *ast.ExportDecl:
		if s.Decl != nil {
			c.hoist(s.Decl, env)
		}
	case *ast.VarStatement:
		// `var` alone hoists its name as `any` ahead of initialization;
		// let/const do not participate in hoisting.
		if s.Kind == ast.VarVar {
			for _, d := range s.Declarators {
				if d.Name != "" {
					env.Define(d.Name, types.Any)
				}
			}
		}
	}
}
