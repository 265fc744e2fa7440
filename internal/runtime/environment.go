package runtime

// Environment is the runtime scope chain: a mutable
// name -> Value table chained to an enclosing scope, distinct from the
// checker's compile-time-only TypeEnvironment. Closures capture an
// *Environment pointer directly, giving by-reference variable capture
// matching JS semantics.
type Environment struct {
	parent *Environment
	vars   map[string]*binding
}

type binding struct {
	value    Value
	constant bool
}

// NewEnvironment creates a root (global) environment.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]*binding)}
}

// Child creates a new scope nested inside e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]*binding)}
}

// Define introduces name in this scope.
func (e *Environment) Define(name string, v Value, constant bool) {
	e.vars[name] = &binding{value: v, constant: constant}
}

// Get looks up name, walking outward through parent scopes.
func (e *Environment) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Assign updates name's value in the scope where it is defined, walking
// outward. Returns (false, false) if undefined, (true, true) if the
// binding is a `const` that cannot be reassigned.
func (e *Environment) Assign(name string, v Value) (isConst, found bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			if b.constant {
				return true, true
			}
			b.value = v
			return false, true
		}
	}
	return false, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// OwnNames returns the names defined directly in this scope (not walking
// parents), used by namespace export collection and per-iteration `for`
// binding copies.
func (e *Environment) OwnNames() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}

// MarkReadOnly marks an existing binding as a read-only (`const`-like)
// slot without requiring the original Define call to have set it (used for
// named function expressions binding their own name read-only within
// their body scope).
func (e *Environment) MarkReadOnly(name string) {
	if b, ok := e.vars[name]; ok {
		b.constant = true
	}
}
