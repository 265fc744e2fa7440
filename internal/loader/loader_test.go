package loader

import (
	"testing"
)

func newLoaderWithGraph() *InMemoryLoader {
	l := NewInMemory()
	l.Add("/main.ts", `import { helper } from "./lib/helper";
import { shared } from "./shared";
console.log(helper(), shared);`)
	l.Add("/lib/helper.ts", `import { shared } from "../shared";
export function helper(): string { return shared; }`)
	l.Add("/shared.ts", `export const shared = "s";`)
	return l
}

func TestResolveRelativeSpecifiers(t *testing.T) {
	l := newLoaderWithGraph()
	cases := []struct {
		specifier, importer, want string
	}{
		{"./shared", "/main.ts", "/shared.ts"},
		{"./lib/helper", "/main.ts", "/lib/helper.ts"},
		{"../shared", "/lib/helper.ts", "/shared.ts"},
		{"main", "", "/main.ts"},
	}
	for _, c := range cases {
		got, err := l.Resolve(c.specifier, c.importer)
		if err != nil {
			t.Errorf("Resolve(%q, %q): %v", c.specifier, c.importer, err)
			continue
		}
		if got != c.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", c.specifier, c.importer, got, c.want)
		}
	}
}

func TestResolveUnknownModuleFails(t *testing.T) {
	l := newLoaderWithGraph()
	if _, err := l.Resolve("./nope", "/main.ts"); err == nil {
		t.Error("expected an error for an unregistered module")
	}
}

func TestLoadCachesParsedModules(t *testing.T) {
	l := newLoaderWithGraph()
	first, err := l.Load("/shared.ts")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load("/shared.ts")
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if first != second {
		t.Error("Load did not return the cached AST on the second call")
	}
}

func TestLoadReportsParseErrors(t *testing.T) {
	l := NewInMemory()
	l.Add("/bad.ts", "let = = ;")
	_, err := l.Load("/bad.ts")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if len(pe.Diagnostics) == 0 {
		t.Error("ParseError carries no diagnostics")
	}
}

func TestDependencyOrderLeavesFirst(t *testing.T) {
	l := newLoaderWithGraph()
	order, err := l.DependencyOrder("main")
	if err != nil {
		t.Fatalf("DependencyOrder: %v", err)
	}
	want := []string{"/shared.ts", "/lib/helper.ts", "/main.ts"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestDependencyOrderToleratesCycles(t *testing.T) {
	l := NewInMemory()
	l.Add("/a.ts", `import { b } from "./b"; export const a = 1;`)
	l.Add("/b.ts", `import { a } from "./a"; export const b = 2;`)
	order, err := l.DependencyOrder("a")
	if err != nil {
		t.Fatalf("DependencyOrder: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("order = %v, want both modules exactly once", order)
	}
}

func TestPreloadParsesEverything(t *testing.T) {
	l := newLoaderWithGraph()
	if err := l.Preload(); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	// All modules are now served from cache.
	for _, p := range []string{"/main.ts", "/lib/helper.ts", "/shared.ts"} {
		if _, err := l.Load(p); err != nil {
			t.Errorf("Load(%s) after Preload: %v", p, err)
		}
	}
}

func TestRegisterBuiltinResolvesBareSpecifier(t *testing.T) {
	l := NewInMemory()
	l.RegisterBuiltin("stream", `export class Readable {}`)
	abs, err := l.Resolve("stream", "/main.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if abs != "/stream.ts" {
		t.Errorf("abs = %q, want /stream.ts", abs)
	}
	if _, err := l.Load(abs); err != nil {
		t.Errorf("Load: %v", err)
	}
}
