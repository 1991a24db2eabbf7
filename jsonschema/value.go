// Package jsonschema represents JSON values as the lowering engine builds
// them: an ordered tree that remembers member insertion order so that the
// emitted JSON Schema document has a stable, deterministic key order (see
// the compiler's emission-order contract).
package jsonschema

import (
	"strconv"

	j "github.com/goccy/go-json"
)

// Kind identifies the JSON type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a JSON value that preserves object-member insertion order.
type Value struct {
	kind Kind
	b    bool
	num  string // verbatim numeric literal text
	str  string
	arr  []*Value
	obj  []Member
	idx  map[string]int // obj key -> index, built by NewObject or lazily by Set
}

// Member is one ordered key/value pair of a JSON object Value.
type Member struct {
	Key   string
	Value *Value
}

// Null returns the JSON null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a JSON boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// String returns a JSON string value.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Int returns a JSON number value from an int.
func Int(n int) *Value { return &Value{kind: KindNumber, num: strconv.Itoa(n)} }

// Number returns a JSON number value from its verbatim source text (so that
// e.g. long or exponent-form literals from a back-quoted JSON value are not
// reformatted). The text is not validated.
func Number(text string) *Value { return &Value{kind: KindNumber, num: text} }

// Array returns a JSON array value containing items in order.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, arr: items}
}

// NewObject returns an empty, ordered JSON object value.
func NewObject() *Value {
	return &Value{kind: KindObject, idx: map[string]int{}}
}

// Kind reports the value's JSON type.
func (v *Value) Kind() Kind { return v.kind }

// Set inserts or overwrites a member, preserving first-insertion position.
func (v *Value) Set(key string, val *Value) *Value {
	if v.idx == nil {
		v.idx = map[string]int{}
	}
	if i, ok := v.idx[key]; ok {
		v.obj[i].Value = val
		return v
	}
	v.idx[key] = len(v.obj)
	v.obj = append(v.obj, Member{Key: key, Value: val})
	return v
}

// Get returns the member bound to key in an object Value.
func (v *Value) Get(key string) (*Value, bool) {
	if v.idx == nil {
		return nil, false
	}
	i, ok := v.idx[key]
	if !ok {
		return nil, false
	}
	return v.obj[i].Value, true
}

// Has reports whether an object Value has a member named key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Members returns the object's members in insertion order.
func (v *Value) Members() []Member { return v.obj }

// Items returns the array's elements in order.
func (v *Value) Items() []*Value { return v.arr }

// BoolValue returns the underlying boolean (only meaningful when Kind == KindBool).
func (v *Value) BoolValue() bool { return v.b }

// StringValue returns the underlying string (only meaningful when Kind == KindString).
func (v *Value) StringValue() string { return v.str }

// NumberLiteral returns the verbatim numeric text (only meaningful when Kind == KindNumber).
func (v *Value) NumberLiteral() string { return v.num }

// Equal reports deep, order-sensitive structural equality.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if a.obj[i].Key != b.obj[i].Key || !Equal(a.obj[i].Value, b.obj[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON renders the value with its members in insertion order. Scalars
// are delegated to goccy/go-json so escaping matches the rest of the output
// pipeline.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		if v.num == "" {
			return []byte("0"), nil
		}
		return []byte(v.num), nil
	case KindString:
		return j.Marshal(v.str)
	case KindArray:
		out := []byte("[")
		for i, item := range v.arr {
			if i > 0 {
				out = append(out, ',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		out = append(out, ']')
		return out, nil
	case KindObject:
		out := []byte("{")
		for i, m := range v.obj {
			if i > 0 {
				out = append(out, ',')
			}
			kb, err := j.Marshal(m.Key)
			if err != nil {
				return nil, err
			}
			out = append(out, kb...)
			out = append(out, ':')
			vb, err := m.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, vb...)
		}
		out = append(out, '}')
		return out, nil
	}
	return nil, nil
}

// Marshal renders v as compact JSON text.
func Marshal(v *Value) ([]byte, error) {
	return v.MarshalJSON()
}
