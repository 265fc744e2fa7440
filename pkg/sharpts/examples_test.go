package sharpts_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sharpts-lang/sharpts/internal/loader"
	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

// evalScript runs source through a fresh engine and returns captured
// console output.
func evalScript(t *testing.T, source string) string {
	t.Helper()
	var buf bytes.Buffer
	engine, err := sharpts.New(sharpts.WithOutput(&buf))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if _, err := engine.Eval(source); err != nil {
		t.Fatalf("evaluation error: %v\noutput so far:\n%s", err, buf.String())
	}
	return buf.String()
}

// TestEndToEndScenarios runs the canonical whole-pipeline programs: each
// goes through lexer, parser, checker, and evaluator, asserting on
// observable output.
func TestEndToEndScenarios(t *testing.T) {
	scenarios := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name: "narrowing across early return",
			source: `function f(x: string | null): string { if (x === null) return "was null"; return x; }
console.log(f("hi"));`,
			expected: "hi\n",
		},
		{
			name:     "labeled break out of nested loop",
			source:   `outer: for (let i = 0; i < 3; i++) { for (let j = 0; j < 3; j++) { if (i === 1 && j === 1) break outer; console.log(i+":"+j); } }`,
			expected: "0:0\n0:1\n0:2\n1:0\n",
		},
		{
			name: "async iterator end to end",
			source: `async function* g() { yield 1; yield 2; yield 3; }
async function main() { let s = 0; for await (const v of g()) s += v; console.log(s); }
main();`,
			expected: "6\n",
		},
		{
			name: "nested generic closing >>",
			source: `interface D { v: number }
let x: Partial<Readonly<D>> = { v: 42 };
console.log(x.v);`,
			expected: "42\n",
		},
		{
			name:     "shift operator survives generic disambiguation",
			source:   `console.log(16 >> 2);`,
			expected: "4\n",
		},
		{
			name: "const type parameter literal preservation",
			source: `function id<const T>(x: T): T { return x; }
let a: "hello" = id("hello");
console.log(a);`,
			expected: "hello\n",
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			got := evalScript(t, sc.source)
			if got != sc.expected {
				t.Errorf("output mismatch:\ngot:  %q\nwant: %q", got, sc.expected)
			}
		})
	}
}

func TestUsingDisposalWithPendingError(t *testing.T) {
	source := `
try {
  using r = { [Symbol.dispose]() { throw "disposeErr"; } };
  throw "blockErr";
} catch (e) {
  console.log(e.error + "/" + e.suppressed);
}`
	if got := evalScript(t, source); got != "blockErr/disposeErr\n" {
		t.Errorf("got %q, want %q", got, "blockErr/disposeErr\n")
	}
}

func TestCheckReportsWithoutRunning(t *testing.T) {
	engine, err := sharpts.New()
	if err != nil {
		t.Fatal(err)
	}
	diags := engine.Check(`let x: string = 42; console.log("must not run");`)
	if len(diags) == 0 {
		t.Fatal("expected a type diagnostic")
	}
	if !strings.Contains(diags[0].Message, "not assignable") {
		t.Errorf("message = %q", diags[0].Message)
	}
}

func TestEvalAbortsOnTypeErrors(t *testing.T) {
	var buf bytes.Buffer
	engine, err := sharpts.New(sharpts.WithOutput(&buf))
	if err != nil {
		t.Fatal(err)
	}
	result, err := engine.Eval(`let x: string = 42; console.log("should not print");`)
	if err == nil {
		t.Fatal("expected a type-check failure")
	}
	if len(result.Diagnostics) == 0 {
		t.Error("result carries no diagnostics")
	}
	if buf.Len() != 0 {
		t.Errorf("program ran despite type errors: %q", buf.String())
	}
}

func TestWithoutTypeCheckSkipsChecking(t *testing.T) {
	var buf bytes.Buffer
	engine, err := sharpts.New(sharpts.WithOutput(&buf), sharpts.WithoutTypeCheck())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Eval(`let x: string = 42 as any; console.log("ran");`); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if buf.String() != "ran\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestModulesEvaluateInDependencyOrder(t *testing.T) {
	l := loader.NewInMemory()
	l.Add("/greeting.ts", `export const greeting = "hello";`)
	l.Add("/format.ts", `import { greeting } from "./greeting";
export function format(name: string): string { return greeting + ", " + name; }`)

	var buf bytes.Buffer
	engine, err := sharpts.New(sharpts.WithOutput(&buf), sharpts.WithLoader(l))
	if err != nil {
		t.Fatal(err)
	}
	src := `import { format } from "./format";
console.log(format("world"));`
	if _, err := engine.Eval(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if buf.String() != "hello, world\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRuntimeErrorSurfacesNameAndMessage(t *testing.T) {
	engine, err := sharpts.New(sharpts.WithOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = engine.Eval(`throw new TypeError("bad value");`)
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(err.Error(), "TypeError") || !strings.Contains(err.Error(), "bad value") {
		t.Errorf("err = %v", err)
	}
}
