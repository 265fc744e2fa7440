package checker

import "github.com/sharpts-lang/sharpts/internal/types"

// binding is one entry in a TypeEnvironment frame.
type binding struct {
	typ      types.Info
	readOnly bool
}

// TypeEnvironment is the compile-time-only scope-chain symbol table:
// name -> TypeInfo, with frames chained outward for lookup.
type TypeEnvironment struct {
	parent *TypeEnvironment
	vars   map[string]*binding
}

// NewTypeEnvironment creates a root environment (the global scope).
func NewTypeEnvironment() *TypeEnvironment {
	return &TypeEnvironment{vars: make(map[string]*binding)}
}

// Child creates a new frame nested inside e, used for function bodies,
// blocks, and class bodies.
func (e *TypeEnvironment) Child() *TypeEnvironment {
	return &TypeEnvironment{parent: e, vars: make(map[string]*binding)}
}

// Define introduces name in this frame.
func (e *TypeEnvironment) Define(name string, t types.Info) {
	e.vars[name] = &binding{typ: t}
}

// MarkReadOnly marks an already-defined binding read-only (used for
// `const` declarations).
func (e *TypeEnvironment) MarkReadOnly(name string) {
	if b, ok := e.vars[name]; ok {
		b.readOnly = true
	}
}

// Assign updates name's type in the frame where it is defined, walking
// outward; reports ok=false if name is undefined anywhere in the chain.
func (e *TypeEnvironment) Assign(name string, t types.Info) (readOnly, ok bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, exists := cur.vars[name]; exists {
			if b.readOnly {
				return true, true
			}
			b.typ = t
			return false, true
		}
	}
	return false, false
}

// Get looks up name's static type, walking outward through parent frames.
func (e *TypeEnvironment) Get(name string) (types.Info, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.typ, true
		}
	}
	return nil, false
}

// IsReadOnly reports whether name resolves to a read-only binding.
func (e *TypeEnvironment) IsReadOnly(name string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.readOnly
		}
	}
	return false
}
