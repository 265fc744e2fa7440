package evaluator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/parser"
)

// runProgram parses and evaluates src, returning captured console output
// and the uncaught-error result (nil if the program completed normally).
func runProgram(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, diags := parser.New(lexer.New(src)).Parse()
	if len(diags) > 0 {
		t.Fatalf("parse diagnostics for %q: %v", src, diags)
	}
	var out strings.Builder
	ev := New(WithStdout(func(s string) { out.WriteString(s); out.WriteString("\n") }))
	_, err := ev.Run(prog)
	return out.String(), err
}

func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err := runProgram(t, src)
	if err != nil {
		t.Fatalf("runtime error: %v\noutput so far:\n%s", err, out)
	}
	return out
}

func TestConsoleLogBasics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"string literal", `console.log("hi");`, "hi\n"},
		{"arithmetic", `console.log(1 + 2 * 3);`, "7\n"},
		{"string concat with number", `console.log(1 + ":" + 2);`, "1:2\n"},
		{"template literal", "let x = 4; console.log(`x is ${x}`);", "x is 4\n"},
		{"shift stays a shift", `console.log(16 >> 2);`, "4\n"},
		{"unsigned shift", `console.log(-1 >>> 28);`, "15\n"},
		{"multiple args", `console.log("a", 1, true);`, "a 1 true\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mustRun(t, c.src); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestClosuresCaptureByReference(t *testing.T) {
	src := `
function counter() {
  let n = 0;
  return () => { n = n + 1; return n; };
}
const c = counter();
c(); c();
console.log(c());`
	if got := mustRun(t, src); got != "3\n" {
		t.Errorf("got %q, want %q", got, "3\n")
	}
}

func TestLabeledBreakOutOfNestedLoop(t *testing.T) {
	src := `
outer: for (let i = 0; i < 3; i++) {
  for (let j = 0; j < 3; j++) {
    if (i === 1 && j === 1) break outer;
    console.log(i + ":" + j);
  }
}`
	want := "0:0\n0:1\n0:2\n1:0\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLabeledContinue(t *testing.T) {
	src := `
outer: for (let i = 0; i < 3; i++) {
  for (let j = 0; j < 3; j++) {
    if (j === 1) continue outer;
    console.log(i + ":" + j);
  }
}`
	want := "0:0\n1:0\n2:0\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSwitchFallthrough(t *testing.T) {
	src := `
switch (2) {
  case 1: console.log("one");
  case 2: console.log("two");
  case 3: console.log("three"); break;
  case 4: console.log("four");
  default: console.log("other");
}`
	want := "two\nthree\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTryCatchFinally(t *testing.T) {
	src := `
function f() {
  try {
    throw new Error("boom");
  } catch (e) {
    console.log("caught " + e.message);
    return "from catch";
  } finally {
    console.log("finally");
  }
}
console.log(f());`
	want := "caught boom\nfinally\nfrom catch\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFinallyOverridesPendingResult(t *testing.T) {
	src := `
function f() {
  try {
    return "try";
  } finally {
    return "finally wins";
  }
}
console.log(f());`
	if got := mustRun(t, src); got != "finally wins\n" {
		t.Errorf("got %q", got)
	}
}

func TestUncaughtErrorSurfacesNotPanics(t *testing.T) {
	_, err := runProgram(t, `undefinedVariable + 1;`)
	if err == nil {
		t.Fatal("expected an uncaught runtime error")
	}
	if !strings.Contains(err.Error(), "ReferenceError") {
		t.Errorf("error = %v, want a ReferenceError", err)
	}
}

func TestClassesAndInheritance(t *testing.T) {
	src := `
class Animal {
  name: string;
  constructor(name: string) { this.name = name; }
  speak(): string { return this.name + " makes a sound"; }
}
class Dog extends Animal {
  constructor(name: string) { super(name); }
  speak(): string { return this.name + " barks"; }
  parentSpeak(): string { return super.speak(); }
}
const d = new Dog("Rex");
console.log(d.speak());
console.log(d.parentSpeak());
console.log(d instanceof Dog);
console.log(d instanceof Animal);`
	want := "Rex barks\nRex makes a sound\ntrue\ntrue\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParameterProperties(t *testing.T) {
	src := `
class Point {
  constructor(public x: number, public y: number) {}
  sum(): number { return this.x + this.y; }
}
console.log(new Point(3, 4).sum());`
	if got := mustRun(t, src); got != "7\n" {
		t.Errorf("got %q", got)
	}
}

func TestGettersAndSetters(t *testing.T) {
	src := `
class Box {
  #value: number = 0;
  get value(): number { return this.#value; }
  set value(v: number) { this.#value = v * 2; }
}
const b = new Box();
b.value = 21;
console.log(b.value);`
	if got := mustRun(t, src); got != "42\n" {
		t.Errorf("got %q", got)
	}
}

func TestStaticBlocksRunAtDefinitionTime(t *testing.T) {
	src := `
class Config {
  static table: number = 0;
  static {
    Config.table = 7;
  }
}
console.log(Config.table);`
	if got := mustRun(t, src); got != "7\n" {
		t.Errorf("got %q", got)
	}
}

func TestGeneratorProtocol(t *testing.T) {
	src := `
function* g() {
  yield 1;
  yield 2;
  return 99;
}
const it = g();
let r = it.next();
console.log(r.value, r.done);
r = it.next();
console.log(r.value, r.done);
r = it.next();
console.log(r.value, r.done);`
	want := "1 false\n2 false\n99 true\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGeneratorDelegation(t *testing.T) {
	src := `
function* inner() { yield "a"; yield "b"; }
function* outer() { yield* inner(); yield "c"; }
for (const v of outer()) console.log(v);`
	want := "a\nb\nc\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAsyncIteratorEndToEnd(t *testing.T) {
	src := `
async function* g() { yield 1; yield 2; yield 3; }
async function main() {
  let s = 0;
  for await (const v of g()) s += v;
  console.log(s);
}
main();`
	if got := mustRun(t, src); got != "6\n" {
		t.Errorf("got %q, want %q", got, "6\n")
	}
}

func TestAwaitPromiseFlattening(t *testing.T) {
	src := `
async function main() {
  const a = await Promise.resolve(Promise.resolve(5));
  const b = await Promise.resolve(Promise.resolve(Promise.resolve(6)));
  console.log(a, b);
}
main();`
	if got := mustRun(t, src); got != "5 6\n" {
		t.Errorf("got %q, want %q", got, "5 6\n")
	}
}

func TestAsyncRejectionCaughtAtAwait(t *testing.T) {
	src := `
async function fail() { throw new Error("nope"); }
async function main() {
  try {
    await fail();
  } catch (e) {
    console.log("caught " + e.message);
  }
}
main();`
	if got := mustRun(t, src); got != "caught nope\n" {
		t.Errorf("got %q", got)
	}
}

func TestPromiseThenChainOrdering(t *testing.T) {
	src := `
Promise.resolve(1).then((v) => {
  console.log("then " + v);
  return v + 1;
}).then((v) => console.log("then " + v));
console.log("sync first");`
	want := "sync first\nthen 1\nthen 2\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPromiseAllPreservesOrder(t *testing.T) {
	src := `
async function main() {
  const vs = await Promise.all([Promise.resolve("a"), "b", Promise.resolve("c")]);
  for (const v of vs) console.log(v);
}
main();`
	want := "a\nb\nc\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUsingDisposalOrder(t *testing.T) {
	src := `
function make(name: string) {
  return { [Symbol.dispose]() { console.log("dispose " + name); } };
}
{
  using a = make("a");
  using b = make("b");
  using c = make("c");
  console.log("body");
}`
	want := "body\ndispose c\ndispose b\ndispose a\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUsingDisposalOrderOnAbruptExit(t *testing.T) {
	src := `
function make(name: string) {
  return { [Symbol.dispose]() { console.log("dispose " + name); } };
}
try {
  using a = make("a");
  using b = make("b");
  using c = make("c");
  throw new Error("boom");
} catch (e) {
  console.log("caught");
}`
	want := "dispose c\ndispose b\ndispose a\ncaught\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUsingSuppressedError(t *testing.T) {
	src := `
try {
  using r = { [Symbol.dispose]() { throw "disposeErr"; } };
  throw "blockErr";
} catch (e) {
  console.log(e.name);
  console.log(e.error);
  console.log(e.suppressed);
}`
	want := "SuppressedError\nblockErr\ndisposeErr\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForOfIteratesCustomIterable(t *testing.T) {
	src := `
const iterable = {
  [Symbol.iterator]() {
    let n = 0;
    return { next() { n++; return { value: n, done: n > 3 }; } };
  }
};
for (const v of iterable) console.log(v);`
	want := "1\n2\n3\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForInEnumerationOrder(t *testing.T) {
	src := `
const o: any = {};
o.b = 1;
o["2"] = 2;
o.a = 3;
o["0"] = 4;
for (const k in o) console.log(k);`
	want := "0\n2\nb\na\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDestructuringBindings(t *testing.T) {
	src := `
let [a, { b: c }] = [1, { b: 2 }];
const { x, y = 10 } = { x: 5 };
console.log(a, c, x, y);`
	if got := mustRun(t, src); got != "1 2 5 10\n" {
		t.Errorf("got %q", got)
	}
}

func TestSpreadAndRest(t *testing.T) {
	src := `
function sum(...ns: number[]) {
  let total = 0;
  for (const n of ns) total += n;
  return total;
}
const parts = [1, 2, 3];
console.log(sum(...parts, 4));`
	if got := mustRun(t, src); got != "10\n" {
		t.Errorf("got %q", got)
	}
}

func TestEnumRuntimeShape(t *testing.T) {
	src := `
enum Color { Red, Green = 10, Blue }
console.log(Color.Red, Color.Green, Color.Blue);
console.log(Color[10]);
enum Dir { Up = "UP", Down = "DOWN" }
console.log(Dir.Up);`
	want := "0 10 11\nGreen\nUP\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConstEnumRestrictedEvaluation(t *testing.T) {
	src := `
const enum Flags {
  None = 0,
  A = 1 << 0,
  B = 1 << 1,
  AB = A | B,
}
console.log(Flags.AB);`
	if got := mustRun(t, src); got != "3\n" {
		t.Errorf("got %q", got)
	}
}

func TestOptionalChainingAndNullish(t *testing.T) {
	src := `
const o: any = { a: { b: 1 } };
console.log(o.a?.b);
console.log(o.missing?.b);
console.log(null ?? "fallback");
console.log(0 ?? "not used");`
	want := "1\nundefined\nfallback\n0\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMapAndSet(t *testing.T) {
	src := `
const m = new Map();
m.set("k", 41);
m.set("k", 42);
console.log(m.get("k"), m.size, m.has("nope"));
const s = new Set([1, 2, 2, 3]);
console.log(s.size, s.has(2));`
	want := "42 1 false\n3 true\n"
	if got := mustRun(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStrictModeAssignmentToConst(t *testing.T) {
	_, err := runProgram(t, `const x = 1; x = 2;`)
	if err == nil {
		t.Fatal("expected assignment to const to fail")
	}
	if !strings.Contains(err.Error(), "TypeError") {
		t.Errorf("error = %v, want TypeError", err)
	}
}

func TestExhaustiveDispatchAtConstruction(t *testing.T) {
	// New panics if either dispatch table drifts from the AST variant
	// set, so constructing an evaluator is itself the exhaustiveness
	// check.
	ev := New()
	if ev == nil {
		t.Fatal("New returned nil")
	}
}

func TestNamespaceMembers(t *testing.T) {
	src := `
namespace Geometry {
  export function area(w: number, h: number): number { return w * h; }
}
console.log(Geometry.area(6, 7));`
	if got := mustRun(t, src); got != "42\n" {
		t.Errorf("got %q", got)
	}
}

func TestRunModulesThroughLoader(t *testing.T) {
	// A minimal in-test loader keeps this package free of a dependency
	// on internal/loader; pkg/sharpts exercises the real one.
	lib := `export function double(n: number): number { return n * 2; }
export const base = 21;`
	main := `import { double, base } from "./lib";
console.log(double(base));`

	prog, diags := parser.New(lexer.New(main)).Parse()
	if len(diags) > 0 {
		t.Fatalf("parse: %v", diags)
	}
	var out strings.Builder
	ev := New(
		WithStdout(func(s string) { out.WriteString(s); out.WriteString("\n") }),
		WithLoader(testLoader{"/lib.ts": lib}),
	)
	if _, err := ev.Run(prog); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("got %q, want %q", out.String(), "42\n")
	}
}

type testLoader map[string]string

func (l testLoader) Resolve(specifier, importerPath string) (string, error) {
	p := "/" + strings.TrimPrefix(specifier, "./") + ".ts"
	if _, ok := l[p]; !ok {
		return "", fmt.Errorf("unknown module %q", specifier)
	}
	return p, nil
}

func (l testLoader) Load(absolutePath string) (*ast.Program, error) {
	prog, diags := parser.New(lexer.New(l[absolutePath])).Parse()
	if len(diags) > 0 {
		return nil, fmt.Errorf("%s: %v", absolutePath, diags)
	}
	return prog, nil
}
