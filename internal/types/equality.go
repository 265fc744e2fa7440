package types

import "reflect"

// ptrOf returns a stable pointer-identity key for a nominal type value,
// used to detect recursion through self-referential classes/interfaces.
func ptrOf(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

// Equal reports whether a and b denote the same type structurally:
// primitives/literals by value, composite shapes
// member-by-member, classes/interfaces nominally by identity (pointer
// equality) with an assume-true memo so mutually-recursive types (an
// interface referencing itself through a field) terminate in bounded time.
func Equal(a, b Info) bool {
	return equal(a, b, make(map[pairKey]bool))
}

type pairKey struct{ a, b uintptr }

func equal(a, b Info, assumed map[pairKey]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Primitive:
		return av.Name == b.(*Primitive).Name
	case *simple:
		return av.kind == b.(*simple).kind
	case *Literal:
		bv := b.(*Literal)
		if av.LKind != bv.LKind {
			return false
		}
		switch av.LKind {
		case LitString:
			return av.Str == bv.Str
		case LitNumber:
			return av.Num == bv.Num
		case LitBoolean:
			return av.Bool == bv.Bool
		case LitBigInt:
			return av.BigInt == bv.BigInt
		}
		return true
	case *Array:
		return equal(av.Elem, b.(*Array).Elem, assumed)
	case *Tuple:
		bv := b.(*Tuple)
		if len(av.Elements) != len(bv.Elements) || av.Required != bv.Required {
			return false
		}
		for i := range av.Elements {
			if av.Elements[i].Kind != bv.Elements[i].Kind {
				return false
			}
			if !equal(av.Elements[i].Type, bv.Elements[i].Type, assumed) {
				return false
			}
		}
		return true
	case *Union:
		return setEqual(av.Members, b.(*Union).Members, assumed)
	case *Intersection:
		return setEqual(av.Members, b.(*Intersection).Members, assumed)
	case *Function:
		return functionEqual(av, b.(*Function), assumed)
	case *Class:
		return pointerEqual(ptrOf(av), ptrOf(b.(*Class)), a, b, assumed, func() bool {
			bv := b.(*Class)
			return av.Name == bv.Name && membersEqual(av.Members, bv.Members, assumed)
		})
	case *Interface:
		return pointerEqual(ptrOf(av), ptrOf(b.(*Interface)), a, b, assumed, func() bool {
			bv := b.(*Interface)
			return membersEqual(av.Members, bv.Members, assumed)
		})
	case *Instance:
		bv := b.(*Instance)
		if !equal(av.Target, bv.Target, assumed) {
			return false
		}
		if len(av.TypeArgs) != len(bv.TypeArgs) {
			return false
		}
		for i := range av.TypeArgs {
			if !equal(av.TypeArgs[i], bv.TypeArgs[i], assumed) {
				return false
			}
		}
		return true
	case *Record:
		bv := b.(*Record)
		return equal(av.Key, bv.Key, assumed) && equal(av.Value, bv.Value, assumed)
	case *TypeParameter:
		return av.Name == b.(*TypeParameter).Name
	case *Enum:
		return av == b.(*Enum)
	case *KeyOf:
		return equal(av.Source, b.(*KeyOf).Source, assumed)
	case *TypeOf:
		return av.Path == b.(*TypeOf).Path
	case *Mapped:
		bv := b.(*Mapped)
		return equal(av.Constraint, bv.Constraint, assumed) && equal(av.Value, bv.Value, assumed) &&
			av.Readonly == bv.Readonly && av.Optional == bv.Optional
	case *Conditional:
		bv := b.(*Conditional)
		return equal(av.Check, bv.Check, assumed) && equal(av.Extends, bv.Extends, assumed) &&
			equal(av.True, bv.True, assumed) && equal(av.False, bv.False, assumed)
	case *TemplateLiteral:
		bv := b.(*TemplateLiteral)
		if len(av.Parts) != len(bv.Parts) || len(av.Types) != len(bv.Types) {
			return false
		}
		for i := range av.Parts {
			if av.Parts[i] != bv.Parts[i] {
				return false
			}
		}
		for i := range av.Types {
			if !equal(av.Types[i], bv.Types[i], assumed) {
				return false
			}
		}
		return true
	case *TypePredicate:
		bv := b.(*TypePredicate)
		if av.IsAssertion != bv.IsAssertion || av.ParamName != bv.ParamName {
			return false
		}
		if (av.Narrowed == nil) != (bv.Narrowed == nil) {
			return false
		}
		if av.Narrowed == nil {
			return true
		}
		return equal(av.Narrowed, bv.Narrowed, assumed)
	}
	return false
}

func functionEqual(av, bv *Function, assumed map[pairKey]bool) bool {
	if len(av.Params) != len(bv.Params) || av.Required != bv.Required {
		return false
	}
	for i := range av.Params {
		if av.Params[i].Optional != bv.Params[i].Optional || av.Params[i].Rest != bv.Params[i].Rest {
			return false
		}
		if !equal(av.Params[i].Type, bv.Params[i].Type, assumed) {
			return false
		}
	}
	return equal(av.Return, bv.Return, assumed)
}

func membersEqual(a, b map[string]*Member, assumed map[pairKey]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for name, am := range a {
		bm, ok := b[name]
		if !ok || am.Optional != bm.Optional || am.Readonly != bm.Readonly {
			return false
		}
		if !equal(am.Type, bm.Type, assumed) {
			return false
		}
	}
	return true
}

// setEqual compares two type slices as unordered sets (union/intersection
// member order is not significant).
func setEqual(a, b []Info, assumed map[pairKey]bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if equal(av, bv, assumed) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// pointerEqual implements the assume-true recursion scheme: when two
// pointer-identified (nominal) types are compared a second time while the
// first comparison is still in flight, the cycle is assumed equal rather
// than re-entered, exactly as the checker's assignability cache does for
// self-referential structural types.
func pointerEqual(pa, pb uintptr, a, b Info, assumed map[pairKey]bool, body func() bool) bool {
	key := pairKey{pa, pb}
	if v, ok := assumed[key]; ok {
		return v
	}
	assumed[key] = true
	result := body()
	assumed[key] = result
	return result
}
