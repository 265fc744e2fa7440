package types

import (
	"hash/fnv"
	"io"
	"sort"
	"strconv"
)

// Hash computes a structural hash of t suitable for use as a cache key in
// the assignability cache. Recursion through a nominal type (Class or
// Interface) already on the current path contributes a fixed marker
// derived from the type's name instead of recursing further, keeping the
// computation bounded for self-referential types.
func Hash(t Info) uint64 {
	h := fnv.New64a()
	hashInto(h, t, map[uintptr]bool{})
	return h.Sum64()
}

func hashInto(h io.Writer, t Info, onPath map[uintptr]bool) {
	if t == nil {
		h.Write([]byte{0})
		return
	}
	write := func(s string) { h.Write([]byte(s)) }
	write(strconv.Itoa(int(t.Kind())))
	switch v := t.(type) {
	case *Primitive:
		write(v.Name)
	case *simple:
		write(v.name)
	case *Literal:
		write(strconv.Itoa(int(v.LKind)))
		write(v.Str)
		write(strconv.FormatFloat(v.Num, 'g', -1, 64))
		write(strconv.FormatBool(v.Bool))
		write(v.BigInt)
	case *Array:
		hashInto(h, v.Elem, onPath)
	case *Tuple:
		for _, e := range v.Elements {
			write(strconv.Itoa(int(e.Kind)))
			hashInto(h, e.Type, onPath)
		}
	case *Union:
		hashSet(h, v.Members, onPath)
	case *Intersection:
		hashSet(h, v.Members, onPath)
	case *Function:
		for _, p := range v.Params {
			write(strconv.FormatBool(p.Optional))
			write(strconv.FormatBool(p.Rest))
			hashInto(h, p.Type, onPath)
		}
		hashInto(h, v.Return, onPath)
	case *Class:
		hashNominal(h, ptrOf(v), v.Name, onPath, func() {
			names := sortedKeys(v.Members)
			for _, name := range names {
				write(name)
				hashInto(h, v.Members[name].Type, onPath)
			}
		})
	case *Interface:
		hashNominal(h, ptrOf(v), v.Name, onPath, func() {
			names := sortedKeys(v.Members)
			for _, name := range names {
				write(name)
				hashInto(h, v.Members[name].Type, onPath)
			}
		})
	case *Instance:
		hashInto(h, v.Target, onPath)
		for _, a := range v.TypeArgs {
			hashInto(h, a, onPath)
		}
	case *Record:
		hashInto(h, v.Key, onPath)
		hashInto(h, v.Value, onPath)
	case *TypeParameter:
		write(v.Name)
	case *Enum:
		write(v.Name)
	case *KeyOf:
		hashInto(h, v.Source, onPath)
	case *TypeOf:
		write(v.Path)
	case *Mapped:
		hashInto(h, v.Constraint, onPath)
		hashInto(h, v.Value, onPath)
	case *Conditional:
		hashInto(h, v.Check, onPath)
		hashInto(h, v.Extends, onPath)
		hashInto(h, v.True, onPath)
		hashInto(h, v.False, onPath)
	case *TemplateLiteral:
		for _, p := range v.Parts {
			write(p)
		}
		for _, t := range v.Types {
			hashInto(h, t, onPath)
		}
	case *TypePredicate:
		write(v.ParamName)
		write(strconv.FormatBool(v.IsAssertion))
		if v.Narrowed != nil {
			hashInto(h, v.Narrowed, onPath)
		}
	}
}

func hashNominal(h io.Writer, ptr uintptr, name string, onPath map[uintptr]bool, body func()) {
	write := func(s string) { h.Write([]byte(s)) }
	if onPath[ptr] {
		write("cycle:" + name)
		return
	}
	onPath[ptr] = true
	write(name)
	body()
	delete(onPath, ptr)
}

func hashSet(h io.Writer, members []Info, onPath map[uintptr]bool) {
	// Sort the per-member hashes so Union{A,B} and Union{B,A} hash equal.
	hs := make([]uint64, len(members))
	for i, m := range members {
		sub := fnv.New64a()
		hashInto(sub, m, onPath)
		hs[i] = sub.Sum64()
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	for _, v := range hs {
		h.Write([]byte(strconv.FormatUint(v, 16)))
	}
}

func sortedKeys(m map[string]*Member) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
