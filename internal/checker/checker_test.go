package checker

import (
	"strings"
	"testing"

	"github.com/sharpts-lang/sharpts/internal/types"
)

func TestAssignabilityReflexivity(t *testing.T) {
	c := New()
	samples := []types.Info{
		types.String,
		types.Number,
		types.Boolean,
		types.Null,
		types.Undefined,
		types.Any,
		types.Unknown,
		types.Never,
		&types.Literal{LKind: types.LitString, Str: "foo"},
		&types.Array{Elem: types.Number},
		&types.Union{Members: []types.Info{types.String, types.Number}},
		&types.Function{Params: []types.FunctionParam{{Name: "x", Type: types.Number}}, Required: 1, Return: types.String},
	}
	for _, s := range samples {
		if !c.IsAssignable(s, s) {
			t.Errorf("isAssignable(%s, %s) = false, want true", s, s)
		}
		if !c.IsAssignable(types.Never, s) {
			t.Errorf("isAssignable(never, %s) = false, want true", s)
		}
		if !c.IsAssignable(s, types.Unknown) {
			t.Errorf("isAssignable(%s, unknown) = false, want true", s)
		}
	}
}

func TestAssignabilityLiteralsAndPrimitives(t *testing.T) {
	c := New()
	foo := &types.Literal{LKind: types.LitString, Str: "foo"}
	if !c.IsAssignable(foo, types.String) {
		t.Error(`"foo" should be assignable to string`)
	}
	if c.IsAssignable(types.String, foo) {
		t.Error(`string should not be assignable to "foo"`)
	}
	one := &types.Literal{LKind: types.LitNumber, Num: 1}
	if !c.IsAssignable(one, types.Number) {
		t.Error("1 should be assignable to number")
	}
	if c.IsAssignable(types.String, types.Number) {
		t.Error("string should not be assignable to number")
	}
}

func TestAssignabilityUnions(t *testing.T) {
	c := New()
	sn := &types.Union{Members: []types.Info{types.String, types.Number}}
	snb := &types.Union{Members: []types.Info{types.String, types.Number, types.Boolean}}

	if !c.IsAssignable(types.String, sn) {
		t.Error("string should be assignable to string|number")
	}
	if !c.IsAssignable(sn, snb) {
		t.Error("string|number should be assignable to string|number|boolean")
	}
	if c.IsAssignable(snb, sn) {
		t.Error("string|number|boolean should not be assignable to string|number")
	}
	if c.IsAssignable(sn, types.String) {
		t.Error("string|number should not be assignable to string")
	}
	// A structurally fresh but equal union is still assignable both ways.
	sn2 := &types.Union{Members: []types.Info{types.Number, types.String}}
	if !c.IsAssignable(sn, sn2) || !c.IsAssignable(sn2, sn) {
		t.Error("structurally equal unions should be mutually assignable")
	}
}

func TestAssignabilityFunctions(t *testing.T) {
	c := New()
	oneParam := &types.Function{Params: []types.FunctionParam{{Name: "x", Type: types.Number}}, Required: 1, Return: types.Undefined}
	twoParams := &types.Function{Params: []types.FunctionParam{{Name: "x", Type: types.Number}, {Name: "y", Type: types.String}}, Required: 2, Return: types.Undefined}

	// Fewer-parameter functions are assignable to wider targets.
	if !c.IsAssignable(oneParam, twoParams) {
		t.Error("(x: number) => void should be assignable to (x: number, y: string) => void")
	}
	if c.IsAssignable(twoParams, oneParam) {
		t.Error("(x, y) => void should not be assignable to (x) => void")
	}

	// Covariant returns.
	retLit := &types.Function{Return: &types.Literal{LKind: types.LitString, Str: "a"}}
	retStr := &types.Function{Return: types.String}
	if !c.IsAssignable(retLit, retStr) {
		t.Error(`() => "a" should be assignable to () => string`)
	}
	if c.IsAssignable(retStr, retLit) {
		t.Error(`() => string should not be assignable to () => "a"`)
	}
}

func TestAssignabilityCachesStructurally(t *testing.T) {
	// Two structurally equal but referentially distinct types must share
	// cache entries; a wrong reference-keyed cache would be observable as
	// inconsistent answers.
	c := New()
	mk := func() types.Info {
		return &types.Union{Members: []types.Info{types.String, &types.Array{Elem: types.Number}}}
	}
	a, b := mk(), mk()
	if !c.IsAssignable(a, b) {
		t.Fatal("first structural check failed")
	}
	if !c.IsAssignable(b, a) {
		t.Fatal("reversed structural check failed")
	}
}

func TestSelfReferentialAssignabilityTerminates(t *testing.T) {
	c := New()
	tree := &types.Interface{Name: "Tree", Members: map[string]*types.Member{}}
	tree.Members["children"] = &types.Member{Type: &types.Array{Elem: tree}}
	if !c.IsAssignable(tree, tree) {
		t.Error("self-referential interface should be assignable to itself")
	}
}

func TestSimpleProgramChecks(t *testing.T) {
	expectClean(t, `
let n: number = 1;
let s: string = "x";
function add(a: number, b: number): number { return a + b; }
let r: number = add(n, 2);`)
}

func TestAssignmentMismatchReported(t *testing.T) {
	expectError(t, `let x: string = 42;`, "not assignable")
	expectError(t, `let y: number = "hi";`, "not assignable")
}

func TestUnknownIdentifierReported(t *testing.T) {
	expectError(t, `console.log(missing);`, "cannot find name")
}

func TestConstReassignmentReported(t *testing.T) {
	expectError(t, `const x = 1; x = 2;`, "constant")
}

func TestNarrowingAcrossEarlyReturn(t *testing.T) {
	expectClean(t, `
function f(x: string | null): string {
  if (x === null) return "was null";
  return x;
}`)
}

func TestTypeofGuardNarrowing(t *testing.T) {
	expectClean(t, `
function f(x: string | number): string {
  if (typeof x === "string") {
    return x;
  }
  return "not a string";
}`)
	// Without the guard the same return is an error.
	expectError(t, `
function g(x: string | number): string {
  return x;
}`, "not assignable")
}

func TestNarrowingDoesNotLeakPastBlock(t *testing.T) {
	expectError(t, `
function f(x: string | number): string {
  if (typeof x === "string") {
    console.log(x);
  }
  return x;
}`, "not assignable")
}

func TestTruthinessNarrowsNullish(t *testing.T) {
	expectClean(t, `
function f(x: string | null): string {
  if (x) {
    return x;
  }
  return "";
}`)
}

func TestUserDefinedTypePredicate(t *testing.T) {
	expectClean(t, `
function isString(v: string | number): v is string {
  return typeof v === "string";
}
function f(x: string | number): string {
  if (isString(x)) {
    return x;
  }
  return "no";
}`)
}

func TestConstTypeParameterPreservesLiterals(t *testing.T) {
	expectClean(t, `
function id<const T>(x: T): T { return x; }
let a: "hello" = id("hello");`)
}

func TestGenericTypeParameterWidensLiterals(t *testing.T) {
	// Without `const`, a literal argument widens to its primitive, the
	// same rule `let` bindings follow.
	expectError(t, `
function id<T>(x: T): T { return x; }
let a: "hello" = id("hello");`, "not assignable")
	expectClean(t, `
function id<T>(x: T): T { return x; }
let s: string = id("hello");`)
}

func TestGenericInference(t *testing.T) {
	expectClean(t, `
function first<T>(xs: T[]): T { return xs[0]; }
let n: number = first([1, 2, 3]);`)
	expectError(t, `
function first<T>(xs: T[]): T { return xs[0]; }
let s: string = first([1, 2, 3]);`, "not assignable")
}

func TestInterfaceStructuralAssignability(t *testing.T) {
	expectClean(t, `
interface Named { name: string; }
let p: Named = { name: "x", extra: 1 } as Named;
function greet(n: Named): string { return n.name; }
class Person {
  name: string = "";
}
greet(new Person());`)
	expectError(t, `
interface Named { name: string; }
let n: Named = { wrong: true };`, "not assignable")
}

func TestDiscriminatedUnionNarrowing(t *testing.T) {
	expectClean(t, `
interface Circle { kind: "circle"; radius: number; }
interface Square { kind: "square"; side: number; }
function area(s: Circle | Square): number {
  if (s.kind === "circle") {
    return s.radius;
  }
  return s.side;
}`)
	// Without the guard, members outside the union's intersection are
	// unreachable.
	expectError(t, `
interface Circle { kind: "circle"; radius: number; }
interface Square { kind: "square"; side: number; }
function area(s: Circle | Square): number {
  return s.side;
}`, "does not exist")
}

func TestSwitchDiscriminantNarrowing(t *testing.T) {
	expectClean(t, `
interface Circle { kind: "circle"; radius: number; }
interface Square { kind: "square"; side: number; }
function area(s: Circle | Square): number {
  switch (s.kind) {
    case "circle": return s.radius;
    case "square": return s.side;
    default: return 0;
  }
}`)
}

func TestTypeofGuardOnPropertyChain(t *testing.T) {
	expectClean(t, `
interface Tagged { tag: number; payload: number; }
interface Labeled { tag: string; label: string; }
function f(x: Tagged | Labeled): number {
  if (typeof x.tag === "number") {
    return x.payload;
  }
  return 0;
}`)
}

func TestInOperatorNarrowing(t *testing.T) {
	expectClean(t, `
interface WithA { a: number; }
interface WithB { b: string; }
function f(x: WithA | WithB): number {
  if ("a" in x) {
    return x.a;
  }
  return 0;
}`)
}

func TestDiagnosticCapAtTen(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString("let x")
		sb.WriteByte(byte('a' + i))
		sb.WriteString(": string = 1;\n")
	}
	diags := checkSource(t, sb.String())
	if len(diags) != 10 {
		t.Errorf("got %d diagnostics, want exactly 10 (the cap)", len(diags))
	}
}

func TestDiagnosticBatchRendering(t *testing.T) {
	diags := checkSource(t, "let a: string = 1;\nlet b: number = \"x\";")
	want := "1:17: error: type 1 is not assignable to type string\n" +
		"2:17: error: type \"x\" is not assignable to type number\n"
	assertDiagsEqual(t, want, diags)
}

func TestEnumChecking(t *testing.T) {
	expectClean(t, `
enum Color { Red, Green, Blue }
let c: Color = Color.Green;`)
	expectClean(t, `
const enum Flags { None = 0, A = 1 << 0, B = 1 << 1, AB = A | B }
let f: Flags = Flags.AB;`)
}

func TestTypeMapRecordsExpressionTypes(t *testing.T) {
	prog := parseProgram(t, `let n: number = 1 + 2;`)
	tm, diags := Check(prog)
	if len(diags) > 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if tm == nil {
		t.Fatal("nil TypeMap")
	}
}
