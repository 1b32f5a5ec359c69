// Package value defines the tagged-union Value type shared by the HELIX
// compiler, the hlxb binary format, and the operator engine.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags which case of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a by-value tagged union with six cases: String, Number, Bool,
// Null, Array and Object. Zero value is Null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a 64-bit float.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array wraps an ordered sequence of Values. The slice is copied.
func Array(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// Object wraps a string-keyed mapping. The map is copied.
func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp}
}

// Kind reports which case this Value holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload and whether v is a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric payload and whether v is a Number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the boolean payload and whether v is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsArray returns the element slice and whether v is an Array. The returned
// slice shares no backing array with v's internals; callers may not mutate
// v through it, but the slice itself is a fresh copy.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp, true
}

// AsObject returns the field map and whether v is an Object. Returns a copy.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	cp := make(map[string]Value, len(v.obj))
	for k, val := range v.obj {
		cp[k] = val
	}
	return cp, true
}

// String implements fmt.Stringer with a human-readable rendering, used by
// operators such as string.concat that coerce arbitrary Values to text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		if v.num == float64(int64(v.num)) {
			return fmt.Sprintf("%d", int64(v.num))
		}
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindArray:
		b, _ := json.Marshal(v)
		return string(b)
	case KindObject:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return ""
	}
}

// Equal reports deep structural equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
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
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON makes Value lossless for strings/bools/nulls/arrays/objects
// and precise to IEEE-754 double precision for numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		// Deterministic key order keeps the encoded bytes and the
		// optimizer's field-normalization pass reproducible.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, _ := json.Marshal(k)
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reconstructs a Value from its JSON rendering.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case json.Number:
		f, _ := t.Float64()
		return Number(f)
	case float64:
		return Number(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = fromInterface(e)
		}
		return Array(items)
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fields[k] = fromInterface(e)
		}
		return Object(fields)
	default:
		return Null()
	}
}
