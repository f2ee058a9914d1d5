// Package value implements Arcana's dynamic, JSON-shaped value tree: a
// tagged variant (Null, Bool, Number, String, Array, Object) with
// alias-path get/set/unset/push/pop, stable order-preserving JSON
// serialization, and the comparison/truthiness/emptiness rules the
// evaluator's condition grammar and modifiers depend on.
//
// The design mirrors the teacher's vals package (src.elv.sh/pkg/eval/vals):
// a small set of pure functions operating on a dynamic value, here a closed
// Go type instead of interface{}, because Arcana's value space is exactly
// the JSON type lattice rather than Elvish's open set of runtime types.
package value

import "fmt"

// Kind identifies the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("!!Kind(%d)", int(k))
	}
}

// member is one key/value pair of an Object, kept in insertion order.
type member struct {
	key string
	val Value
}

// Value is a tagged variant holding exactly one of Arcana's JSON-shaped
// dynamic types. The zero Value is Null.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	array   []Value
	object  []member // ordered; linear lookup is fine at template-context scale
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a Number value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns an Array value wrapping elems (copied defensively).
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, array: cp}
}

// EmptyObject returns an Object with no keys.
func EmptyObject() Value { return Value{kind: KindObject} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v's bool payload; only meaningful when Kind() == KindBool.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns v's float64 payload; only meaningful when Kind() == KindNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsString returns v's string payload; only meaningful when Kind() == KindString.
func (v Value) AsString() string { return v.str }

// Len returns the element/key count for Array and Object, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.array)
	case KindObject:
		return len(v.object)
	default:
		return 0
	}
}

// Index returns the i-th array element. Panics if v is not an Array or i is
// out of range; callers must check Kind()/Len() first.
func (v Value) Index(i int) Value { return v.array[i] }

// Elements returns a defensive copy of the Array's elements.
func (v Value) Elements() []Value {
	cp := make([]Value, len(v.array))
	copy(cp, v.array)
	return cp
}

// Keys returns the Object's keys in insertion order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.object))
	for i, m := range v.object {
		keys[i] = m.key
	}
	return keys
}

// Field looks up key directly on an Object (no path traversal). Returns
// (Value{}, false) if v is not an Object or lacks key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.object {
		if m.key == key {
			return m.val, true
		}
	}
	return Value{}, false
}

// WithField returns a copy of the Object v with key set to val, preserving
// the existing position of key if present, or appending it otherwise. v must
// be an Object or Null (treated as an empty Object).
func (v Value) WithField(key string, val Value) Value {
	var object []member
	if v.kind == KindObject {
		object = make([]member, len(v.object))
		copy(object, v.object)
	}
	for i, m := range object {
		if m.key == key {
			object[i].val = val
			return Value{kind: KindObject, object: object}
		}
	}
	object = append(object, member{key, val})
	return Value{kind: KindObject, object: object}
}

// WithoutField returns a copy of the Object v with key removed, and reports
// whether key was present.
func (v Value) WithoutField(key string) (Value, bool) {
	if v.kind != KindObject {
		return v, false
	}
	for i, m := range v.object {
		if m.key == key {
			object := make([]member, 0, len(v.object)-1)
			object = append(object, v.object[:i]...)
			object = append(object, v.object[i+1:]...)
			return Value{kind: KindObject, object: object}, true
		}
	}
	return v, false
}

// Appended returns a copy of the Array v with val appended. v must be an
// Array or Null (treated as an empty Array).
func (v Value) Appended(val Value) Value {
	var array []Value
	if v.kind == KindArray {
		array = make([]Value, len(v.array), len(v.array)+1)
		copy(array, v.array)
	}
	array = append(array, val)
	return Value{kind: KindArray, array: array}
}

// Popped returns a copy of the Array v with its last element removed, and
// that element. Panics if v is not a non-empty Array.
func (v Value) Popped() (Value, Value) {
	last := v.array[len(v.array)-1]
	array := make([]Value, len(v.array)-1)
	copy(array, v.array[:len(v.array)-1])
	return Value{kind: KindArray, array: array}, last
}

// Truthy implements spec.md §4.A's truthiness table.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number != 0
	case KindString:
		return true
	case KindArray:
		return true
	case KindObject:
		return len(v.object) > 0
	default:
		return false
	}
}

// Empty implements spec.md §4.A's emptiness table, used by the `empty`
// condition predicate.
func (v Value) Empty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindArray:
		return len(v.array) == 0
	case KindObject:
		return len(v.object) == 0
	default:
		return false
	}
}

// DeepCopy returns a value structurally identical to v but sharing no
// backing arrays or slices with it, used by Siphon.
func (v Value) DeepCopy() Value {
	switch v.kind {
	case KindArray:
		array := make([]Value, len(v.array))
		for i, e := range v.array {
			array[i] = e.DeepCopy()
		}
		return Value{kind: KindArray, array: array}
	case KindObject:
		object := make([]member, len(v.object))
		for i, m := range v.object {
			object[i] = member{m.key, m.val.DeepCopy()}
		}
		return Value{kind: KindObject, object: object}
	default:
		return v
	}
}
