package sharpts_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

func TestFormatDiagnosticCaretPlacement(t *testing.T) {
	source := `let x: string = 42;`
	engine, err := sharpts.New()
	if err != nil {
		t.Fatal(err)
	}
	diags := engine.Check(source)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}

	out := sharpts.FormatDiagnostic(diags[0], source, "test.ts", false)
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected format:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "Error in test.ts:1:") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], source) {
		t.Errorf("source line missing: %q", lines[1])
	}
	caretLine := lines[2]
	srcLine := lines[1]
	caretCol := strings.Index(caretLine, "^")
	fortyTwo := strings.Index(srcLine, "42")
	if caretCol != fortyTwo {
		t.Errorf("caret at %d, want aligned with the literal at %d:\n%s", caretCol, fortyTwo, out)
	}
}

func TestFormatDiagnosticColorWrapsCaret(t *testing.T) {
	source := `let x: string = 42;`
	engine, err := sharpts.New()
	if err != nil {
		t.Fatal(err)
	}
	diags := engine.Check(source)
	out := sharpts.FormatDiagnostic(diags[0], source, "", true)
	if !strings.Contains(out, "\033[1;31m^\033[0m") {
		t.Error("colored output does not wrap the caret in ANSI red")
	}
}

func TestFormatDiagnosticsBatchSnapshot(t *testing.T) {
	source := "let a: string = 1;\nlet b: number = \"two\";\nlet c: boolean = 3;"
	engine, err := sharpts.New()
	if err != nil {
		t.Fatal(err)
	}
	diags := engine.Check(source)
	if len(diags) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(diags))
	}
	snaps.MatchSnapshot(t, sharpts.FormatDiagnostics(diags, source, "batch.ts", false))
}
