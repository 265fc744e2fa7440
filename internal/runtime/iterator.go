package runtime

// Iterator is a runtime iterator object backed by a pull function, used to
// give arrays/Maps/Sets/strings a uniform `Symbol.iterator` protocol
// value the evaluator's `for...of` and spread implementations consume
// without per-container special-casing.
type Iterator struct {
	Pull func() (value Value, done bool)
}

func (it *Iterator) Kind() Kind     { return KindIterator }
func (it *Iterator) String() string { return "[object Iterator]" }

// NewArrayIterator returns an Iterator walking arr's elements in order.
func NewArrayIterator(arr *Array) *Iterator {
	i := 0
	return &Iterator{Pull: func() (Value, bool) {
		if i >= len(arr.Elements) {
			return Undefined{}, true
		}
		v := arr.Elements[i]
		i++
		return v, false
	}}
}

// NewStringIterator returns an Iterator walking s by Unicode code point
// (not UTF-16 code unit), matching JS string iteration semantics.
func NewStringIterator(s String) *Iterator {
	runes := []rune(string(s))
	i := 0
	return &Iterator{Pull: func() (Value, bool) {
		if i >= len(runes) {
			return Undefined{}, true
		}
		v := String(string(runes[i]))
		i++
		return v, false
	}}
}

// NewMapIterator returns an Iterator yielding [key, value] Array pairs.
func NewMapIterator(m *Map) *Iterator {
	entries := m.Entries()
	i := 0
	return &Iterator{Pull: func() (Value, bool) {
		if i >= len(entries) {
			return Undefined{}, true
		}
		e := entries[i]
		i++
		return &Array{Elements: []Value{e.Key, e.Value}}, false
	}}
}

// NewSetIterator returns an Iterator walking s's values in insertion order.
func NewSetIterator(s *Set) *Iterator {
	values := s.Values()
	i := 0
	return &Iterator{Pull: func() (Value, bool) {
		if i >= len(values) {
			return Undefined{}, true
		}
		v := values[i]
		i++
		return v, false
	}}
}

// NewGeneratorIterator adapts a Generator to the pull-based Iterator shape
// for contexts (spread, Array.from) that want plain iteration without the
// generator's .throw()/.return() control surface.
func NewGeneratorIterator(g *Generator) *Iterator {
	return &Iterator{Pull: func() (Value, bool) {
		v, done, _ := g.Next(Undefined{})
		return v, done
	}}
}
