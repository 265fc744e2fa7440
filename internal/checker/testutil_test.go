package checker

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/parser"
)

// checkSource parses and type-checks src, failing the test on parse
// errors (checker tests assume syntactically valid input).
func checkSource(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	prog, parseDiags := parser.New(lexer.New(src)).Parse()
	if len(parseDiags) > 0 {
		t.Fatalf("parse diagnostics: %v", parseDiags)
	}
	_, diags := Check(prog)
	return diags
}

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, parseDiags := parser.New(lexer.New(src)).Parse()
	if len(parseDiags) > 0 {
		t.Fatalf("parse diagnostics: %v", parseDiags)
	}
	return prog
}

// expectClean asserts the program type-checks with no diagnostics.
func expectClean(t *testing.T, src string) {
	t.Helper()
	if diags := checkSource(t, src); len(diags) > 0 {
		t.Errorf("expected clean check, got:\n%s", diagText(diags))
	}
}

// expectError asserts at least one diagnostic whose message contains
// substr.
func expectError(t *testing.T, src, substr string) {
	t.Helper()
	diags := checkSource(t, src)
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no diagnostic containing %q, got:\n%s", substr, diagText(diags))
}

func diagText(diags []diag.Diagnostic) string {
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// assertDiagsEqual compares a full diagnostic dump against the expected
// text, rendering a unified diff on mismatch so multi-error fixtures
// fail readably.
func assertDiagsEqual(t *testing.T, want string, diags []diag.Diagnostic) {
	t.Helper()
	got := diagText(diags)
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	t.Errorf("diagnostics mismatch:\n%s", diff)
}
