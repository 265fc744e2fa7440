package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, []diag.Diagnostic) {
	t.Helper()
	return New(lexer.New(src)).Parse()
}

func parseClean(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := parseSource(t, src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", src, diags)
	}
	return prog
}

func firstExpr(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	for _, s := range prog.Statements {
		if es, ok := s.(*ast.ExpressionStatement); ok {
			return es.Expr
		}
	}
	t.Fatal("no expression statement found")
	return nil
}

func TestArrowVsParenthesizedExpression(t *testing.T) {
	// `(x)` must stay a grouped expression...
	if _, ok := firstExpr(t, parseClean(t, "(x);")).(*ast.Grouping); !ok {
		t.Error("(x) did not parse as a Grouping")
	}
	// ...while `(x) => x` backtracks into an arrow function.
	if _, ok := firstExpr(t, parseClean(t, "(x) => x;")).(*ast.ArrowFunction); !ok {
		t.Error("(x) => x did not parse as an ArrowFunction")
	}
	// Annotated parameters and return types survive the speculative parse.
	arrow, ok := firstExpr(t, parseClean(t, "(a: number, b: number): number => a + b;")).(*ast.ArrowFunction)
	if !ok {
		t.Fatal("annotated arrow did not parse as an ArrowFunction")
	}
	if len(arrow.Params) != 2 {
		t.Errorf("arrow has %d params, want 2", len(arrow.Params))
	}
	// An empty parameter list is an arrow head, never a grouping.
	if _, ok := firstExpr(t, parseClean(t, "() => 1;")).(*ast.ArrowFunction); !ok {
		t.Error("() => 1 did not parse as an ArrowFunction")
	}
}

func TestTypeArgumentListVsLessThan(t *testing.T) {
	call, ok := firstExpr(t, parseClean(t, "f<number, string>(x);")).(*ast.Call)
	if !ok {
		t.Fatal("f<number, string>(x) did not parse as a Call")
	}
	if len(call.TypeArgs) != 2 {
		t.Errorf("call has %d type args, want 2", len(call.TypeArgs))
	}

	// A nested generic argument list splits its closing `>>` in call
	// position too.
	call, ok = firstExpr(t, parseClean(t, "f<Array<number>>(xs);")).(*ast.Call)
	if !ok {
		t.Fatal("f<Array<number>>(xs) did not parse as a Call")
	}
	if len(call.TypeArgs) != 1 {
		t.Errorf("call has %d type args, want 1", len(call.TypeArgs))
	}

	// Without a following argument list this is relational chaining.
	expr := firstExpr(t, parseClean(t, "a < b;"))
	if bin, ok := expr.(*ast.Binary); !ok || bin.Op != ast.BinLt {
		t.Errorf("a < b parsed as %T, want Binary(<)", expr)
	}

	// A failed speculation must restore any token it split: the `>=`
	// here is briefly split while the type-argument attempt closes its
	// angle, then the whole expression re-parses relationally.
	expr = firstExpr(t, parseClean(t, "a < b >= c;"))
	if bin, ok := expr.(*ast.Binary); !ok || bin.Op != ast.BinGtEq {
		t.Errorf("a < b >= c parsed as %T, want Binary(>=) at the top", expr)
	}
}

func TestNestedGenericClose(t *testing.T) {
	// `>>` closing two nested type-argument lists must split.
	parseClean(t, "let x: Map<string, Array<number>> = y;")
	parseClean(t, "let y: Partial<Readonly<D>> = { v: 42 };")
	// `>>>` closing three.
	parseClean(t, "let z: A<B<C<number>>> = w;")

	// The same tokens stay shift operators in expression position.
	expr := firstExpr(t, parseClean(t, "16 >> 2;"))
	if bin, ok := expr.(*ast.Binary); !ok || bin.Op != ast.BinShr {
		t.Errorf("16 >> 2 parsed as %T, want Binary(>>)", expr)
	}
	expr = firstExpr(t, parseClean(t, "x >>> 2;"))
	if bin, ok := expr.(*ast.Binary); !ok || bin.Op != ast.BinUShr {
		t.Errorf("x >>> 2 parsed as %T, want Binary(>>>)", expr)
	}
}

func TestForRetainsHeaderClauses(t *testing.T) {
	prog := parseClean(t, "for (let i = 0; i < 3; i++) { }")
	f, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement is %T, want *ast.For", prog.Statements[0])
	}
	if f.Init == nil || f.Cond == nil || f.Update == nil {
		t.Errorf("for header clauses lost: init=%v cond=%v update=%v", f.Init, f.Cond, f.Update)
	}
}

func TestForVariantsDistinguished(t *testing.T) {
	prog := parseClean(t, "for (const v of xs) { } for (const k in o) { } for (;;) { break; }")
	if _, ok := prog.Statements[0].(*ast.ForOf); !ok {
		t.Errorf("statement 0 is %T, want ForOf", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.ForIn); !ok {
		t.Errorf("statement 1 is %T, want ForIn", prog.Statements[1])
	}
	if _, ok := prog.Statements[2].(*ast.For); !ok {
		t.Errorf("statement 2 is %T, want For", prog.Statements[2])
	}

	prog = parseClean(t, "async function f() { for await (const v of xs) { } }")
	fn := prog.Statements[0].(*ast.FunctionDecl)
	forOf, ok := fn.Body.Statements[0].(*ast.ForOf)
	if !ok || !forOf.Await {
		t.Error("for await (const v of xs) did not parse as an awaited ForOf")
	}
}

func TestDestructuringDeclarators(t *testing.T) {
	prog := parseClean(t, "let [a, { b: c }] = v;")
	vs := prog.Statements[0].(*ast.VarStatement)
	if len(vs.Declarators) != 1 || vs.Declarators[0].Pattern == nil {
		t.Fatal("destructuring declarator lost its pattern")
	}
	if _, ok := vs.Declarators[0].Pattern.(*ast.ArrayLiteral); !ok {
		t.Errorf("pattern is %T, want ArrayLiteral", vs.Declarators[0].Pattern)
	}
}

func TestRegexVsDivision(t *testing.T) {
	// After `=` a slash starts a regex literal.
	prog := parseClean(t, "let re = /ab+c/g;")
	vs := prog.Statements[0].(*ast.VarStatement)
	if _, ok := vs.Declarators[0].Initializer.(*ast.RegexLiteral); !ok {
		t.Errorf("initializer is %T, want RegexLiteral", vs.Declarators[0].Initializer)
	}
	// After an identifier it is division.
	expr := firstExpr(t, parseClean(t, "a / b / c;"))
	if bin, ok := expr.(*ast.Binary); !ok || bin.Op != ast.BinDiv {
		t.Errorf("a / b / c parsed as %T, want Binary(/)", expr)
	}
}

func TestLabeledStatement(t *testing.T) {
	prog := parseClean(t, "outer: for (;;) { break outer; }")
	ls, ok := prog.Statements[0].(*ast.LabeledStatement)
	if !ok {
		t.Fatalf("statement is %T, want LabeledStatement", prog.Statements[0])
	}
	if ls.Label != "outer" {
		t.Errorf("label = %q, want %q", ls.Label, "outer")
	}
}

func TestUsingDeclarations(t *testing.T) {
	prog := parseClean(t, "using a = open(), b = open();")
	u := prog.Statements[0].(*ast.Using)
	if u.Await || len(u.Bindings) != 2 {
		t.Errorf("using: await=%v bindings=%d, want sync with 2", u.Await, len(u.Bindings))
	}
	prog = parseClean(t, "async function f() { await using r = open(); }")
	fn := prog.Statements[0].(*ast.FunctionDecl)
	u = fn.Body.Statements[0].(*ast.Using)
	if !u.Await {
		t.Error("await using did not set the Await flag")
	}
}

func TestDecoratorsAndStage2Directive(t *testing.T) {
	prog := parseClean(t, "@sealed class C { }")
	cls := prog.Statements[0].(*ast.ClassDecl)
	if len(cls.Decorators) != 1 {
		t.Fatalf("class has %d decorators, want 1", len(cls.Decorators))
	}
	if prog.DecoratorMode != ast.DecoratorStage3 {
		t.Error("default decorator mode is not Stage-3")
	}

	prog = parseClean(t, "\"use stage2-decorators\";\n@sealed class C { }")
	if prog.DecoratorMode != ast.DecoratorStage2 {
		t.Error("stage-2 directive did not switch the decorator mode")
	}
}

func TestTypeOnlyImportExport(t *testing.T) {
	prog := parseClean(t, `import type { T } from "./types"; import { a, type B } from "./mixed";`)
	first := prog.Statements[0].(*ast.ImportDecl)
	if !first.TypeOnly {
		t.Error("import type { T } not flagged type-only")
	}
	second := prog.Statements[1].(*ast.ImportDecl)
	if second.TypeOnly {
		t.Error("mixed import wrongly flagged type-only")
	}
	var sawTypeOnlySpec bool
	for _, sp := range second.Specifiers {
		if sp.TypeOnly {
			sawTypeOnlySpec = true
		}
	}
	if !sawTypeOnlySpec {
		t.Error("type B specifier not flagged type-only")
	}
}

func TestErrorRecoveryAtStatementBoundary(t *testing.T) {
	src := "let x = ;\nconsole.log(1);\nlet = 2;\nconsole.log(3);"
	prog, diags := parseSource(t, src)
	if len(diags) == 0 {
		t.Fatal("expected diagnostics from malformed statements")
	}
	// Recovery keeps later well-formed statements in the tree.
	var calls int
	for _, s := range prog.Statements {
		es, ok := s.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		if _, ok := es.Expr.(*ast.Call); ok {
			calls++
		}
	}
	if calls < 2 {
		t.Errorf("recovered %d console.log calls, want 2", calls)
	}
	// Diagnostics are ordered by source position.
	for i := 1; i < len(diags); i++ {
		if diags[i].Span.Start.Line < diags[i-1].Span.Start.Line {
			t.Error("diagnostics out of source order")
			break
		}
	}
}

func TestParseDeterminism(t *testing.T) {
	src := `
interface Tree<T> { value: T; children: Tree<T>[]; }
function walk<T>(t: Tree<T>, visit: (v: T) => void): void {
  visit(t.value);
  for (const c of t.children) walk(c, visit);
}`
	first := ast.Dump(parseClean(t, src))
	for i := 0; i < 5; i++ {
		if got := ast.Dump(parseClean(t, src)); got != first {
			t.Fatalf("parse %d produced a different tree", i+2)
		}
	}
}

func TestLocationPreservation(t *testing.T) {
	src := "let x = 1;\nfunction f() { return x; }\n"
	prog := parseClean(t, src)
	for _, s := range prog.Statements {
		span := s.Span()
		if span.Start.Line < 1 || span.End.Offset < span.Start.Offset {
			t.Errorf("%T has an inverted or unset span: %+v", s, span)
		}
		if span.End.Offset > len(src) {
			t.Errorf("%T span end %d exceeds source length %d", s, span.End.Offset, len(src))
		}
	}
}

func TestParseSnapshotRepresentativeProgram(t *testing.T) {
	src := `
enum Level { Debug, Info, Warn }
interface Logger { log(level: Level, msg: string): void; }
class ConsoleLogger implements Logger {
  constructor(private prefix: string) {}
  log(level: Level, msg: string): void {
    console.log(this.prefix + msg);
  }
}
const l: Logger = new ConsoleLogger("app: ");
l.log(Level.Info, "started");`
	prog := parseClean(t, src)
	snaps.MatchSnapshot(t, ast.Dump(prog))
}

func TestParseSnapshotTypesAndGenerics(t *testing.T) {
	src := `
type Pair<A, B> = { first: A, second: B };
type Keys = keyof Pair<string, number>;
function pick<T, const K extends keyof T>(obj: T, key: K): T[K] {
  return obj[key];
}
let cond: string extends unknown ? true : false = true;`
	prog, diags := parseSource(t, src)
	if len(diags) > 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	snaps.MatchSnapshot(t, ast.Dump(prog))
}
