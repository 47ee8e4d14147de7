// Package jsonvalue provides a closed tagged-variant representation of an
// arbitrary JSON document. Endpoint schemas, auth descriptors and metadata
// have no predeclared shape, so they are decoded into Value and re-encoded
// on the way out. Object key order is not preserved across a round trip.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
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
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an immutable JSON value. The zero value is JSON null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	a    []Value
	o    map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a JSON number holding an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a JSON number holding a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array of the given elements.
func Array(elems ...Value) Value {
	a := make([]Value, len(elems))
	copy(a, elems)
	return Value{kind: KindArray, a: a}
}

// Object returns a JSON object with the given members.
func Object(members map[string]Value) Value {
	o := make(map[string]Value, len(members))
	for k, v := range members {
		o[k] = v
	}
	return Value{kind: KindObject, o: o}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean payload. The second result is false when the
// value is not a boolean.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// IntValue returns the integer payload.
func (v Value) IntValue() (int64, bool) { return v.i, v.kind == KindInt }

// FloatValue returns the floating-point payload. Integers are widened.
func (v Value) FloatValue() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// StringValue returns the string payload.
func (v Value) StringValue() (string, bool) { return v.s, v.kind == KindString }

// ArrayValue returns the elements of an array value.
func (v Value) ArrayValue() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

// ObjectValue returns the members of an object value.
func (v Value) ObjectValue() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.o, true
}

// Member returns the named member of an object value.
func (v Value) Member(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	m, ok := v.o[key]
	return m, ok
}

// Len returns the number of elements or members, and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a)
	case KindObject:
		return len(v.o)
	default:
		return 0
	}
}

// Visitor receives exactly one callback matching the value's variant.
type Visitor interface {
	VisitNull()
	VisitBool(b bool)
	VisitInt(i int64)
	VisitFloat(f float64)
	VisitString(s string)
	VisitArray(elems []Value)
	VisitObject(members map[string]Value)
}

// Visit dispatches to the visitor method matching the value's variant.
func (v Value) Visit(visitor Visitor) {
	switch v.kind {
	case KindBool:
		visitor.VisitBool(v.b)
	case KindInt:
		visitor.VisitInt(v.i)
	case KindFloat:
		visitor.VisitFloat(v.f)
	case KindString:
		visitor.VisitString(v.s)
	case KindArray:
		visitor.VisitArray(v.a)
	case KindObject:
		visitor.VisitObject(v.o)
	default:
		visitor.VisitNull()
	}
}

// Equal reports deep equality. Int and float payloads compare equal when
// they represent the same number.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		// An integer-valued float and an int are the same JSON number.
		vf, vok := v.FloatValue()
		of, ook := other.FloatValue()
		return vok && ook && vf == of
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(other.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.o) != len(other.o) {
			return false
		}
		for k, m := range v.o {
			om, ok := other.o[k]
			if !ok || !m.Equal(om) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		fmt.Fprintf(buf, "%d", v.i)
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return fmt.Errorf("encoding number: %w", err)
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.a {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := elem.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		// Keys sorted for stable output; order is not a round-trip invariant.
		keys := make([]string, 0, len(v.o))
		for k := range v.o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			m := v.o[k]
			if err := m.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind %v", v.kind)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	// Trailing content after a complete value is malformed input.
	if _, err := dec.Token(); err == nil {
		return fmt.Errorf("unexpected data after JSON value")
	}
	*v = parsed
	return nil
}

// Parse decodes raw JSON bytes into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("decoding JSON value: %w", err)
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil && !strings.ContainsAny(t.String(), ".eE") {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("unsupported JSON number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			elems := []Value{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, elem)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("decoding array end: %w", err)
			}
			return Value{kind: KindArray, a: elems}, nil
		case '{':
			members := map[string]Value{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("decoding object key: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				member, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members[key] = member
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("decoding object end: %w", err)
			}
			return Value{kind: KindObject, o: members}, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("unrecognized JSON token %v", tok)
	}
}
