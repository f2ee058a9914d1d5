// Package ctxstack implements Arcana's Context Stack: an ordered LIFO
// sequence of Scopes, each an alias->value.Value map plus a sealed flag,
// with the write-propagation and $root-resolution rules from spec.md §3.
//
// The design mirrors the teacher's Frame/Ns split (src.elv.sh/pkg/eval):
// a Frame carries a chain of namespaces searched innermost-to-outermost for
// variable lookup, with new namespaces pushed for closures and popped on
// return. Arcana generalizes "closure" to "sealed scope" — any Scope may
// block write propagation, not just function-call boundaries.
package ctxstack

import "github.com/frankiebaffa/arcana/pkg/value"

// Scope is one level of the Context Stack: a root Object value plus whether
// it is sealed. A sealed scope stops writes from reaching the scopes below
// it; such writes are shadowed into the top scope instead.
type Scope struct {
	root   value.Value
	Sealed bool
}

// Stack is the Context Stack: at least one Scope (the root scope) is always
// present, per spec.md §3's invariant.
type Stack struct {
	scopes []*Scope
}

// New returns a Stack with a single, unsealed root scope seeded with root.
func New(root value.Value) *Stack {
	if root.Kind() != value.KindObject {
		root = value.EmptyObject()
	}
	return &Stack{scopes: []*Scope{{root: root}}}
}

// Push adds a new scope on top of the stack.
func (s *Stack) Push(sealed bool) {
	s.scopes = append(s.scopes, &Scope{root: value.EmptyObject(), Sealed: sealed})
}

// Pop removes and discards the top scope. Popping the root scope panics —
// callers must balance every Push with a Pop before evaluation returns to
// its caller, mirroring the teacher's scoped-acquisition discipline for
// file descriptors (spec.md §5).
func (s *Stack) Pop() {
	if len(s.scopes) <= 1 {
		panic("ctxstack: cannot pop the root scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Depth returns the number of scopes currently on the stack.
func (s *Stack) Depth() int { return len(s.scopes) }

// Top returns the top scope's root value, mainly for tests.
func (s *Stack) Top() value.Value { return s.scopes[len(s.scopes)-1].root }

// RootScope returns the outermost scope's root value, what the reserved
// alias $root resolves to.
func (s *Stack) RootScope() value.Value { return s.scopes[0].root }

// Lookup resolves path against the stack: walk scopes innermost to
// outermost and return the first hit. The reserved first segment "$root"
// resolves against the outermost scope's root object instead of walking the
// stack.
func (s *Stack) Lookup(path value.Path) (value.Value, bool) {
	if len(path) > 0 && path[0] == "$root" {
		if len(path) == 1 {
			return s.RootScope(), true
		}
		return value.Get(s.RootScope(), path[1:])
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := value.Get(s.scopes[i].root, path); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Set writes val at path, following spec.md §4's propagation rule: if path
// already exists in some scope, it is updated there, unless a sealed
// boundary lies between the top scope and that scope, in which case the
// write is shadowed into the top scope. If path exists nowhere, it is
// created in the top scope.
func (s *Stack) Set(path value.Path, val value.Value) {
	if len(path) > 0 && path[0] == "$root" {
		if len(path) == 1 {
			s.scopes[0].root = val
			return
		}
		s.scopes[0].root = value.Set(s.scopes[0].root, path[1:], val)
		return
	}

	top := len(s.scopes) - 1
	for i := top; i >= 0; i-- {
		if _, ok := value.Get(s.scopes[i].root, path); ok {
			sealedBetween := false
			for j := i + 1; j <= top; j++ {
				if s.scopes[j].Sealed {
					sealedBetween = true
					break
				}
			}
			if sealedBetween {
				s.scopes[top].root = value.Set(s.scopes[top].root, path, val)
			} else {
				s.scopes[i].root = value.Set(s.scopes[i].root, path, val)
			}
			return
		}
	}
	s.scopes[top].root = value.Set(s.scopes[top].root, path, val)
}

// SetLocal writes val at path directly in the top scope, bypassing the
// existing-alias search. Used when evaluating a loop/include body to bind
// its own iteration variables ($loop, the loop variable, $content) without
// disturbing an outer alias of the same name.
func (s *Stack) SetLocal(path value.Path, val value.Value) {
	top := len(s.scopes) - 1
	s.scopes[top].root = value.Set(s.scopes[top].root, path, val)
}

// Unset removes path, following the same scope-search order as Set but
// never falling back to creating anything; it reports whether anything was
// removed.
func (s *Stack) Unset(path value.Path) bool {
	if len(path) > 0 && path[0] == "$root" {
		if len(path) == 1 {
			s.scopes[0].root = value.EmptyObject()
			return true
		}
		updated, ok := value.Unset(s.scopes[0].root, path[1:])
		s.scopes[0].root = updated
		return ok
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if updated, ok := value.Unset(s.scopes[i].root, path); ok {
			s.scopes[i].root = updated
			return true
		}
	}
	return false
}

// PopArray removes the last element of the array at path, using the same
// scope-search order as Unset.
func (s *Stack) PopArray(path value.Path) (value.Value, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if updated, popped, ok := value.Pop(s.scopes[i].root, path); ok {
			s.scopes[i].root = updated
			return popped, true
		}
	}
	return value.Value{}, false
}

// MergeIntoRoot merges obj's keys into the root object of the outermost
// scope (intoOutermost, i.e. $root) or of the current top scope,
// overwriting matching keys, per Source-File and Siphon-to-$root semantics.
func (s *Stack) MergeIntoRoot(obj value.Value, intoOutermost bool) {
	idx := len(s.scopes) - 1
	if intoOutermost {
		idx = 0
	}
	root := s.scopes[idx].root
	for _, key := range obj.Keys() {
		v, _ := obj.Field(key)
		root = value.Set(root, value.Path{key}, v)
	}
	s.scopes[idx].root = root
}
