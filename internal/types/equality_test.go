package types

import "testing"

func TestEqualPrimitives(t *testing.T) {
	if !Equal(String, String) {
		t.Fatal("String should equal itself")
	}
	if Equal(String, Number) {
		t.Fatal("String should not equal Number")
	}
}

func TestEqualLiteralVsPrimitive(t *testing.T) {
	lit := &Literal{LKind: LitString, Str: "a"}
	if Equal(lit, String) {
		t.Fatal("a literal type must not equal its widened primitive")
	}
	if !Equal(lit.Primitive(), String) {
		t.Fatal("Literal.Primitive() should widen to the matching primitive")
	}
}

func TestEqualUnionIgnoresOrder(t *testing.T) {
	a := &Union{Members: []Info{String, Number}}
	b := &Union{Members: []Info{Number, String}}
	if !Equal(a, b) {
		t.Fatal("unions should compare as unordered sets")
	}
}

func TestEqualArrayNested(t *testing.T) {
	a := &Array{Elem: &Array{Elem: String}}
	b := &Array{Elem: &Array{Elem: String}}
	c := &Array{Elem: &Array{Elem: Number}}
	if !Equal(a, b) {
		t.Fatal("structurally identical nested arrays should be equal")
	}
	if Equal(a, c) {
		t.Fatal("arrays of different element types should not be equal")
	}
}

func TestEqualSelfReferentialInterface(t *testing.T) {
	// interface Tree { children: Tree[] }
	tree := &Interface{Name: "Tree", Members: map[string]*Member{}}
	tree.Members["children"] = &Member{Type: &Array{Elem: &Instance{Target: tree}}}

	other := &Interface{Name: "Tree", Members: map[string]*Member{}}
	other.Members["children"] = &Member{Type: &Array{Elem: &Instance{Target: other}}}

	if !Equal(tree, other) {
		t.Fatal("structurally identical self-referential interfaces should be equal")
	}
	if !Equal(tree, tree) {
		t.Fatal("a self-referential interface should equal itself")
	}
}

func TestHashStableAndOrderInsensitive(t *testing.T) {
	a := &Union{Members: []Info{String, Number}}
	b := &Union{Members: []Info{Number, String}}
	if Hash(a) != Hash(b) {
		t.Fatal("Hash should agree with Equal for reordered unions")
	}
}

func TestHashSelfReferentialClassTerminates(t *testing.T) {
	node := &Class{Name: "Node", Members: map[string]*Member{}}
	node.Members["next"] = &Member{Type: &Instance{Target: node}}

	h1 := Hash(node)
	h2 := Hash(node)
	if h1 != h2 {
		t.Fatal("hashing a self-referential class should be deterministic")
	}
}

func TestAssignabilityCacheMemoizes(t *testing.T) {
	cache := NewAssignabilityCache()
	if _, ok := cache.Lookup(String, Number); ok {
		t.Fatal("empty cache should have no entries")
	}
	cache.Leave(String, Number, false)
	v, ok := cache.Lookup(String, Number)
	if !ok || v {
		t.Fatal("cache should record the leave result")
	}
}

func TestAssignabilityCacheEnterDetectsRecursion(t *testing.T) {
	cache := NewAssignabilityCache()
	assumed, onStack := cache.Enter(String, Number)
	if onStack {
		t.Fatal("first entry should not already be on the stack")
	}
	if assumed {
		t.Fatal("first entry has no assumed verdict yet")
	}
	assumed2, onStack2 := cache.Enter(String, Number)
	if !onStack2 || !assumed2 {
		t.Fatal("re-entering the same pair should be detected and assumed true")
	}
	cache.Leave(String, Number, true)
}
