// Package diag defines the diagnostic format shared by the lexer, parser,
// and checker: severity, message, source location, and the
// optional expected/actual type strings the checker attaches to
// assignability failures.
package diag

import (
	"fmt"
	"sort"

	"github.com/sharpts-lang/sharpts/internal/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Suggestion
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Suggestion:
		return "suggestion"
	default:
		return "diagnostic"
	}
}

// Diagnostic is one compile-time finding, ordered by source position.
// Expected/Actual are optional; String appends them when either is set.
// The lexer, parser and checker leave both empty and put any types in
// Message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     token.Span
	Expected string
	Actual   string
}

func (d Diagnostic) String() string {
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	if d.Expected == "" && d.Actual == "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s (expected %s, got %s)", loc, d.Severity, d.Message, d.Expected, d.Actual)
}

// Bag accumulates diagnostics in source order. Both the parser (cap: none,
// recovers at sync points) and the checker (cap: 10) use it.
type Bag struct {
	items []Diagnostic
	cap   int // 0 means unbounded
}

// NewBag creates an unbounded diagnostic bag, used by the lexer and parser.
func NewBag() *Bag { return &Bag{} }

// NewCappedBag creates a bag that silently stops accepting new diagnostics
// once n have been collected, letting the checker short-circuit.
func NewCappedBag(n int) *Bag { return &Bag{cap: n} }

// Add appends d unless the bag is already at capacity. Returns false once
// the cap has been reached, letting the caller short-circuit further work.
func (b *Bag) Add(d Diagnostic) bool {
	if b.cap > 0 && len(b.items) >= b.cap {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Full reports whether the bag has reached its cap (always false for an
// unbounded bag).
func (b *Bag) Full() bool { return b.cap > 0 && len(b.items) >= b.cap }

// Errorf is a convenience for Add(Diagnostic{Severity: Error, ...}).
func (b *Bag) Errorf(span token.Span, format string, args ...any) bool {
	return b.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Span: span})
}

// HasErrors reports whether any Error-severity diagnostic was collected.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Items returns all collected diagnostics, ordered by source position.
func (b *Bag) Items() []Diagnostic {
	sort.SliceStable(b.items, func(i, j int) bool {
		a, c := b.items[i].Span.Start, b.items[j].Span.Start
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Column < c.Column
	})
	return b.items
}

// Len reports how many diagnostics have been collected so far.
func (b *Bag) Len() int { return len(b.items) }

// TruncateTo drops diagnostics collected after a speculative parse
// began, restoring the bag to a length previously returned by Len.
func (b *Bag) TruncateTo(n int) {
	if n >= 0 && n < len(b.items) {
		b.items = b.items[:n]
	}
}
