package runtime

import "github.com/google/uuid"

// NewSymbol mints a fresh unique Symbol. A uuid identity keeps Symbol
// values comparable by ID across the evaluator's environments without
// pinning them to a single Go object lifetime, and gives a collision-free
// well-known-symbol registry below.
func NewSymbol(description string) *Symbol {
	return &Symbol{ID: uuid.NewString(), Description: description}
}

// Well-known symbols: registered once at evaluator
// startup and shared by identity so `obj[Symbol.iterator]` lookups from
// unrelated call sites find the same key.
var (
	SymbolIterator      = NewSymbol("Symbol.iterator")
	SymbolAsyncIterator = NewSymbol("Symbol.asyncIterator")
	SymbolDispose       = NewSymbol("Symbol.dispose")
	SymbolAsyncDispose  = NewSymbol("Symbol.asyncDispose")
	SymbolHasInstance   = NewSymbol("Symbol.hasInstance")
	SymbolToPrimitive   = NewSymbol("Symbol.toPrimitive")
)
