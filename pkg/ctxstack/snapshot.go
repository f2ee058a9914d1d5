package ctxstack

import "github.com/frankiebaffa/arcana/pkg/value"

// Snapshot captures the current root object of every scope, the top one
// included, used by tests to assert the "context seal" invariant from
// spec.md §8: after evaluating a child node, the caller's scope must be
// bit-identical on every alias the child did not explicitly assign through
// $root or a pre-existing outer alias.
func (s *Stack) Snapshot() []value.Value {
	snap := make([]value.Value, len(s.scopes))
	for i := range s.scopes {
		snap[i] = s.scopes[i].root
	}
	return snap
}

// Unchanged reports whether snap (from a prior Snapshot) still matches the
// stack: same number of scopes, each with an equal root object.
func (s *Stack) Unchanged(snap []value.Value) bool {
	if len(snap) != len(s.scopes) {
		return false
	}
	for i, v := range snap {
		if !v.EqualTo(s.scopes[i].root) {
			return false
		}
	}
	return true
}
