package sharpts

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/sharpts-lang/sharpts/internal/diag"
)

// ColorEnabled reports whether diagnostic output to f should use ANSI
// color: only when f is a real terminal (not a pipe or file), and not
// suppressed via NO_COLOR.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatDiagnostic renders one diagnostic with its source line and a
// caret pointing at the error column.
func FormatDiagnostic(d diag.Diagnostic, source, file string, color bool) string {
	var sb strings.Builder

	severity := "Error"
	switch d.Severity {
	case diag.Warning:
		severity = "Warning"
	case diag.Suggestion:
		severity = "Suggestion"
	}
	if file != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", severity, file, d.Span.Start.Line, d.Span.Start.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", severity, d.Span.Start.Line, d.Span.Start.Column))
	}

	if line := sourceLine(source, d.Span.Start.Line); line != "" {
		lineNum := fmt.Sprintf("%4d | ", d.Span.Start.Line)
		sb.WriteString(lineNum)
		sb.WriteString(line)
		sb.WriteString("\n")

		col := d.Span.Start.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNum)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	if d.Expected != "" || d.Actual != "" {
		sb.WriteString(fmt.Sprintf(" (expected %s, got %s)", d.Expected, d.Actual))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatDiagnostics renders a batch of diagnostics separated by blank
// lines, in the source order the bag already guarantees.
func FormatDiagnostics(diags []diag.Diagnostic, source, file string, color bool) string {
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatDiagnostic(d, source, file, color))
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}
