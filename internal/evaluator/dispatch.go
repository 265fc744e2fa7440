package evaluator

import (
	"fmt"
	"reflect"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// typeKey turns a concrete AST node into the dispatch table's key: its
// dynamic Go type. Using reflect.Type (rather than a hand-rolled tag
// constant per variant, which the AST package deliberately avoids so it
// stays a plain closed sum) gives the registry a single
// source of truth — the Go type system itself — for "which variant is
// this node".
func typeKey(n any) reflect.Type { return reflect.TypeOf(n) }

// installExprDispatch builds the frozen expression dispatch table. Every concrete Expression variant in internal/ast/expressions.go
// and internal/ast/ast.go (Identifier) must be registered here;
// the wantExprVariants count check below panics at construction time if
// the count drifts, so an unhandled variant fails at startup rather than mid-run.
func (ev *Evaluator) installExprDispatch() {
	reg := map[reflect.Type]exprHandler{}
	add := func(sample any, h exprHandler) { reg[typeKey(sample)] = h }

	add((*ast.Literal)(nil), evalLiteral)
	add((*ast.Identifier)(nil), evalIdentifierExpr)
	add((*ast.Variable)(nil), evalVariable)
	add((*ast.Grouping)(nil), evalGrouping)
	add((*ast.Unary)(nil), evalUnary)
	add((*ast.Binary)(nil), evalBinary)
	add((*ast.Logical)(nil), evalLogical)
	add((*ast.NullishCoalescing)(nil), evalNullish)
	add((*ast.Ternary)(nil), evalTernary)
	add((*ast.Assign)(nil), evalAssign)
	add((*ast.CompoundAssign)(nil), evalCompoundAssign)
	add((*ast.LogicalAssign)(nil), evalLogicalAssign)
	add((*ast.Call)(nil), evalCall)
	add((*ast.Get)(nil), evalGet)
	add((*ast.Set)(nil), evalSet)
	add((*ast.GetIndex)(nil), evalGetIndex)
	add((*ast.SetIndex)(nil), evalSetIndex)
	add((*ast.GetPrivate)(nil), evalGetPrivate)
	add((*ast.SetPrivate)(nil), evalSetPrivate)
	add((*ast.CallPrivate)(nil), evalCallPrivate)
	add((*ast.This)(nil), evalThis)
	add((*ast.Super)(nil), evalSuperExpr)
	add((*ast.New)(nil), evalNew)
	add((*ast.ArrayLiteral)(nil), evalArrayLiteral)
	add((*ast.ObjectLiteral)(nil), evalObjectLiteral)
	add((*ast.ArrowFunction)(nil), evalArrowFunction)
	add((*ast.ClassExpr)(nil), evalClassExpr)
	add((*ast.TemplateLiteral)(nil), evalTemplateLiteral)
	add((*ast.TaggedTemplateLiteral)(nil), evalTaggedTemplate)
	add((*ast.Spread)(nil), evalSpreadAsValue)
	add((*ast.TypeAssertion)(nil), evalTypeAssertion)
	add((*ast.Satisfies)(nil), evalSatisfies)
	add((*ast.NonNullAssertion)(nil), evalNonNullAssertion)
	add((*ast.Await)(nil), evalAwait)
	add((*ast.Yield)(nil), evalYield)
	add((*ast.DynamicImport)(nil), evalDynamicImport)
	add((*ast.ImportMeta)(nil), evalImportMeta)
	add((*ast.RegexLiteral)(nil), evalRegexLiteral)
	add((*ast.Delete)(nil), evalDelete)
	add((*ast.PrefixIncrement)(nil), evalPrefixIncrement)
	add((*ast.PostfixIncrement)(nil), evalPostfixIncrement)

	const wantExprVariants = 41
	if len(reg) != wantExprVariants {
		panic(fmt.Sprintf("evaluator: expression dispatch table has %d entries, want %d — registry drifted from internal/ast's variant set", len(reg), wantExprVariants))
	}
	ev.exprDispatch = make(map[string]exprHandler, len(reg))
	for t, h := range reg {
		ev.exprDispatch[t.String()] = h
	}
}

// installStmtDispatch builds the frozen statement dispatch table,
// analogous to installExprDispatch above.
func (ev *Evaluator) installStmtDispatch() {
	reg := map[reflect.Type]stmtHandler{}
	add := func(sample any, h stmtHandler) { reg[typeKey(sample)] = h }

	add((*ast.ExpressionStatement)(nil), execExpressionStatement)
	add((*ast.VarStatement)(nil), execVarStatement)
	add((*ast.Block)(nil), execBlock)
	add((*ast.Sequence)(nil), execSequence)
	add((*ast.If)(nil), execIf)
	add((*ast.While)(nil), execWhile)
	add((*ast.DoWhile)(nil), execDoWhile)
	add((*ast.For)(nil), execFor)
	add((*ast.ForOf)(nil), execForOf)
	add((*ast.ForIn)(nil), execForIn)
	add((*ast.Switch)(nil), execSwitch)
	add((*ast.TryCatch)(nil), execTryCatch)
	add((*ast.Throw)(nil), execThrow)
	add((*ast.Return)(nil), execReturn)
	add((*ast.Break)(nil), execBreak)
	add((*ast.Continue)(nil), execContinue)
	add((*ast.LabeledStatement)(nil), execLabeledStatement)
	add((*ast.Using)(nil), execUsing)
	add((*ast.Directive)(nil), execNoop)
	add((*ast.FileDirective)(nil), execNoop)
	add((*ast.StaticBlock)(nil), execNoop) // evaluated eagerly at class-definition time, see classes.go
	add((*ast.FunctionDecl)(nil), execFunctionDecl)
	add((*ast.FieldDecl)(nil), execNoop) // only meaningful inside a class body; classes.go evaluates fields directly
	add((*ast.AccessorDecl)(nil), execNoop)
	add((*ast.AutoAccessorDecl)(nil), execNoop)
	add((*ast.ClassDecl)(nil), execClassDecl)
	add((*ast.InterfaceDecl)(nil), execNoop) // type-only; no runtime effect
	add((*ast.NamespaceDecl)(nil), execNamespaceDecl)
	add((*ast.TypeAliasDecl)(nil), execNoop)
	add((*ast.EnumDecl)(nil), execEnumDecl)
	add((*ast.ImportDecl)(nil), execImportDecl)
	add((*ast.ImportAliasDecl)(nil), execImportAliasDecl)
	add((*ast.ExportDecl)(nil), execExportDecl)
	add((*ast.Program)(nil), execProgramAsStatement)

	const wantStmtVariants = 34
	if len(reg) != wantStmtVariants {
		panic(fmt.Sprintf("evaluator: statement dispatch table has %d entries, want %d — registry drifted from internal/ast's variant set", len(reg), wantStmtVariants))
	}
	ev.stmtDispatch = make(map[string]stmtHandler, len(reg))
	for t, h := range reg {
		ev.stmtDispatch[t.String()] = h
	}
}

// Eval dispatches a single expression node through the frozen registry.
// An unregistered variant is a fatal interpreter defect, not a runtime
// error the script could observe.
func (ev *Evaluator) Eval(ctx *Context, e ast.Expression) runtime.Value {
	h, ok := ev.exprDispatch[reflect.TypeOf(e).String()]
	if !ok {
		panic(fmt.Sprintf("evaluator: no dispatch handler registered for expression type %T", e))
	}
	return h(ev, ctx, e)
}

// Exec dispatches a single statement node through the frozen registry.
func (ev *Evaluator) Exec(ctx *Context, s ast.Statement) ExecutionResult {
	h, ok := ev.stmtDispatch[reflect.TypeOf(s).String()]
	if !ok {
		panic(fmt.Sprintf("evaluator: no dispatch handler registered for statement type %T", s))
	}
	return h(ev, ctx, s)
}

func execNoop(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	return normal(runtime.Undefined{})
}

func execProgramAsStatement(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	p := s.(*ast.Program)
	return ev.execStatements(ctx, p.Statements)
}
