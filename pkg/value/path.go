package value

import (
	"strconv"
	"strings"
)

// Path is a parsed alias path: a non-empty sequence of dot-separated
// segments. Segments are either object keys or, when the value being
// descended is an Array, base-10 array indices.
type Path []string

// ParsePath splits a dotted alias into its segments. The caller is
// responsible for rejecting the empty string before calling ParsePath, per
// spec.md §3's "non-empty sequence of segments" rule.
func ParsePath(alias string) Path {
	return strings.Split(alias, ".")
}

func (p Path) String() string { return strings.Join(p, ".") }

// Get descends root along path. The second return value is false if any
// intermediate segment is missing (distinct from a Null leaf, per spec.md
// §3's "Missing intermediate segments yield not found").
func Get(root Value, path Path) (Value, bool) {
	cur := root
	for _, seg := range path {
		next, ok := step(cur, seg)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

func step(cur Value, seg string) (Value, bool) {
	if cur.kind == KindArray {
		if i, err := strconv.Atoi(seg); err == nil {
			if i < 0 || i >= len(cur.array) {
				return Value{}, false
			}
			return cur.array[i], true
		}
		return Value{}, false
	}
	return cur.Field(seg)
}

// Set descends root along path, creating intermediate Objects as needed,
// and returns the updated root with val placed at the leaf. Intermediate
// segments that resolve to a non-Object, non-Array value are overwritten
// with a fresh Object (the write always succeeds, per spec.md §4.A's "set
// creates intermediate objects if missing; overwrites").
func Set(root Value, path Path, val Value) Value {
	if len(path) == 0 {
		return val
	}
	return setAt(root, path, val)
}

func setAt(cur Value, path Path, val Value) Value {
	seg := path[0]
	rest := path[1:]

	if cur.kind == KindArray {
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 {
			array := make([]Value, len(cur.array))
			copy(array, cur.array)
			for len(array) <= i {
				array = append(array, Null())
			}
			if len(rest) == 0 {
				array[i] = val
			} else {
				array[i] = setAt(array[i], rest, val)
			}
			return Value{kind: KindArray, array: array}
		}
	}

	var child Value
	if cur.kind == KindObject {
		if existing, ok := cur.Field(seg); ok {
			child = existing
		}
	}
	if len(rest) == 0 {
		child = val
	} else {
		child = setAt(child, rest, val)
	}
	return cur.WithField(seg, child)
}

// Unset removes the leaf named by path from root, returning the updated
// root and whether the leaf was present.
func Unset(root Value, path Path) (Value, bool) {
	if len(path) == 0 {
		return root, false
	}
	return unsetAt(root, path)
}

func unsetAt(cur Value, path Path) (Value, bool) {
	seg := path[0]
	rest := path[1:]

	if cur.kind == KindArray {
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(cur.array) {
			return cur, false
		}
		if len(rest) == 0 {
			array := make([]Value, 0, len(cur.array)-1)
			array = append(array, cur.array[:i]...)
			array = append(array, cur.array[i+1:]...)
			return Value{kind: KindArray, array: array}, true
		}
		updated, ok := unsetAt(cur.array[i], rest)
		if !ok {
			return cur, false
		}
		array := make([]Value, len(cur.array))
		copy(array, cur.array)
		array[i] = updated
		return Value{kind: KindArray, array: array}, true
	}

	child, ok := cur.Field(seg)
	if !ok {
		return cur, false
	}
	if len(rest) == 0 {
		updated, _ := cur.WithoutField(seg)
		return updated, true
	}
	updatedChild, ok := unsetAt(child, rest)
	if !ok {
		return cur, false
	}
	return cur.WithField(seg, updatedChild), true
}

// Push descends root along path and appends val to the array found there.
// If the path is missing or does not resolve to an Array, it is
// initialized as an empty Array first, per the `array` modifier's
// contract on Set-Item.
func Push(root Value, path Path, val Value) Value {
	cur, ok := Get(root, path)
	if !ok || cur.Kind() != KindArray {
		cur = Value{kind: KindArray}
	}
	return Set(root, path, cur.Appended(val))
}

// Pop removes and returns the last element of the array at path. The third
// return value is false if path does not resolve to a non-empty Array.
func Pop(root Value, path Path) (newRoot Value, popped Value, ok bool) {
	cur, exists := Get(root, path)
	if !exists || cur.Kind() != KindArray || cur.Len() == 0 {
		return root, Value{}, false
	}
	updated, last := cur.Popped()
	return Set(root, path, updated), last, true
}
