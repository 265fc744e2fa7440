package types

// AssignabilityCache memoizes isAssignable(source, target) results keyed by
// structural hash: assignability between two
// self-referential structural types is computed with an "assume true"
// stack identical in shape to Equal's, then the final verdict is cached so
// repeated checks of the same pair (common across overload resolution and
// generic instantiation) are O(1).
type AssignabilityCache struct {
	results map[cacheKey]bool
	onStack map[cacheKey]bool
}

type cacheKey struct {
	source, target uint64
}

// NewAssignabilityCache returns an empty cache.
func NewAssignabilityCache() *AssignabilityCache {
	return &AssignabilityCache{
		results: make(map[cacheKey]bool),
		onStack: make(map[cacheKey]bool),
	}
}

// Lookup returns a cached verdict for (source, target) if present.
func (c *AssignabilityCache) Lookup(source, target Info) (bool, bool) {
	key := cacheKey{Hash(source), Hash(target)}
	v, ok := c.results[key]
	return v, ok
}

// Enter records that (source, target) is currently being computed,
// returning the assumed value to use if recursion re-enters this exact
// pair, and whether it was already on the stack (in which case the caller
// must not call Leave).
func (c *AssignabilityCache) Enter(source, target Info) (assumed, alreadyOnStack bool) {
	key := cacheKey{Hash(source), Hash(target)}
	if c.onStack[key] {
		return true, true
	}
	c.onStack[key] = true
	return false, false
}

// Leave records the final result for (source, target) and pops it off the
// in-progress stack.
func (c *AssignabilityCache) Leave(source, target Info, result bool) {
	key := cacheKey{Hash(source), Hash(target)}
	delete(c.onStack, key)
	c.results[key] = result
}
