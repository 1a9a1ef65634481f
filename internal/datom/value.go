package datom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface representing attribute value types.
// Only Null, String, Int, Uint, Float, Bool, Array, and Object implement this.
type Value interface {
	datomValue() // Sealed - only these types implement it
}

// Null represents a JSON null value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) datomValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) datomValue() {}

// Int represents an integral number. Kept separate from Float so integers
// above 2^53 survive a round trip.
type Int int64

func (Int) datomValue() {}

// Uint holds a non-negative integer above math.MaxInt64. Integers that fit
// in int64 are always Int.
type Uint uint64

func (Uint) datomValue() {}

// Float represents a non-integral (or explicitly fractional) number.
type Float float64

func (Float) datomValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) datomValue() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) datomValue() {}

// Object represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) datomValue() {}

// Strings builds an Array of String values.
func Strings(ss ...string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// Clone returns a deep copy of obj.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = cloneValue(elem)
		}
		return arr
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// compareKeysUTF16 compares strings using UTF-16 code unit ordering.
// Go's default string comparison uses UTF-8 which orders some runes differently.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(Object, len(raw))
	for k, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*arr = make(Array, len(raw))
	for i, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("array index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

// UnmarshalValue decodes a single JSON document into a Value.
func UnmarshalValue(data []byte) (Value, error) {
	return unmarshalValue(bytes.TrimSpace(data))
}

// unmarshalValue decodes a JSON value into the matching Value type.
// Numbers without a fraction or exponent become Int when they fit in int64
// and Uint when they fit in uint64.
func unmarshalValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		if string(data) != "null" {
			return nil, fmt.Errorf("invalid JSON literal: %s", data)
		}
		return Null{}, nil

	case '[':
		var arr Array
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil

	case '{':
		var obj Object
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		return obj, nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return numberValue(n)
	}
}

// numberValue maps a json.Number onto Int, Uint or Float. Integers outside
// the uint64 range narrow to Float.
func numberValue(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Uint(u), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Float(f), nil
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON bytes.
// HTML characters are not escaped and object keys are emitted in sorted order,
// so equal values always produce identical bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return marshalString(string(val))
	case Int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case Uint:
		return strconv.AppendUint(nil, uint64(val), 10), nil
	case Float:
		return marshalFloat(float64(val))
	case Bool:
		return strconv.AppendBool(nil, bool(val)), nil
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	case nil:
		return nil, fmt.Errorf("nil Value")
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// marshalFloat always emits a fraction or exponent so the number decodes
// back as a Float rather than an Int.
func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float %v has no JSON form", f)
	}
	out := strconv.AppendFloat(nil, f, 'g', -1, 64)
	if !bytes.ContainsAny(out, ".eE") {
		out = append(out, '.', '0')
	}
	return out, nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// ValueOf converts a plain Go value (as produced by encoding/json, or built
// by hand) into a Value. Values that are already a Value pass through.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		return uintValue(uint64(val)), nil
	case uint64:
		return uintValue(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return numberValue(val)
	case []string:
		return Strings(val...), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			dv, err := ValueOf(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = dv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			dv, err := ValueOf(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = dv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Uint(u)
	}
	return Int(u)
}

// Text renders v for humans: strings are returned bare, everything else as JSON.
func Text(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	data, err := MarshalValue(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
