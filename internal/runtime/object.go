package runtime

import "sort"

// Object is a dynamically-keyed property bag with the for-in/Object.keys
// enumeration order ECMAScript requires: ascending numeric index keys first (as integers, not string
// order), then string keys in insertion order. Symbol keys never appear in
// for-in/Object.keys and are stored separately. The parallel key slice
// exists because plain TS objects allow arbitrary property addition and
// deletion at runtime while still enumerating deterministically.
type Object struct {
	keys    []string // insertion order of string/numeric-as-string keys
	values  map[string]Value
	symbols map[*Symbol]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value), symbols: make(map[*Symbol]Value)}
}

func (o *Object) Kind() Kind     { return KindObject }
func (o *Object) String() string { return "[object Object]" }

// Set assigns a string-keyed property, appending it to the insertion
// order the first time it is written.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns a string-keyed property and whether it exists.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete removes a string-keyed property.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// SetSymbol assigns a symbol-keyed property (used for `Symbol.iterator`,
// `Symbol.dispose`, and similar well-known symbols).
func (o *Object) SetSymbol(sym *Symbol, v Value) {
	o.symbols[sym] = v
}

// GetSymbol returns a symbol-keyed property.
func (o *Object) GetSymbol(sym *Symbol) (Value, bool) {
	v, ok := o.symbols[sym]
	return v, ok
}

// isArrayIndex reports whether key is a canonical non-negative integer
// string (no leading zeros other than "0" itself), the ECMAScript
// "array index" key test that determines enumeration priority.
func isArrayIndex(key string) (uint64, bool) {
	if key == "" {
		return 0, false
	}
	if key == "0" {
		return 0, true
	}
	if key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	var n uint64
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + uint64(r-'0')
	}
	return n, true
}

// Keys returns this object's own string keys in ECMAScript [[OwnPropertyKeys]]
// order: ascending integer-index keys first, then remaining keys in
// insertion order.
func (o *Object) Keys() []string {
	var numericKeys []string
	var rest []string
	for _, k := range o.keys {
		if _, ok := isArrayIndex(k); ok {
			numericKeys = append(numericKeys, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(numericKeys, func(i, j int) bool {
		ni, _ := isArrayIndex(numericKeys[i])
		nj, _ := isArrayIndex(numericKeys[j])
		return ni < nj
	})
	return append(numericKeys, rest...)
}
