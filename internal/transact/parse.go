package transact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/jottty/jottty/internal/datom"
)

// normalizeOp maps a wire keyword onto an Op.
func normalizeOp(op string) (datom.Op, bool) {
	switch strings.TrimLeft(op, ":") {
	case "db/add":
		return datom.OpAdd, true
	case "db/retract":
		return datom.OpRetract, true
	default:
		return 0, false
	}
}

// ParseDatom converts one raw tuple into a Datom.
//
// raw must be a 4-element sequence: []any, datom.Array, or any other slice
// or array type.
func ParseDatom(raw any) (datom.Datom, error) {
	list, ok := asList(raw)
	if !ok {
		return datom.Datom{}, newParseError(FieldTuple, "datom must be an array, got %T", raw)
	}
	if len(list) != 4 {
		return datom.Datom{}, newParseError(FieldTuple, "datom list must have 4 items, got %d", len(list))
	}

	opStr, ok := asString(list[0])
	if !ok {
		return datom.Datom{}, newParseError(FieldOp, "datom op must be a string, got %T", list[0])
	}
	op, ok := normalizeOp(opStr)
	if !ok {
		return datom.Datom{}, newParseError(FieldOp, "unsupported op: %s", opStr)
	}

	e, ok := asString(list[1])
	if !ok {
		return datom.Datom{}, newParseError(FieldE, "datom e must be a string, got %T", list[1])
	}
	if !utf8.ValidString(e) {
		return datom.Datom{}, newParseError(FieldE, "datom e is not valid UTF-8: %q", e)
	}

	a, ok := asString(list[2])
	if !ok {
		return datom.Datom{}, newParseError(FieldA, "datom a must be a string, got %T", list[2])
	}
	if !utf8.ValidString(a) {
		return datom.Datom{}, newParseError(FieldA, "datom a is not valid UTF-8: %q", a)
	}

	v, err := datom.ValueOf(list[3])
	if err != nil {
		return datom.Datom{}, newParseError(FieldV, "datom v is not a JSON value: %v", err)
	}

	return datom.Datom{Op: op, E: e, A: a, V: v}, nil
}

// ParseBatch parses every tuple, failing on the first invalid one.
// No datoms are returned on failure.
func ParseBatch(raws []any) ([]datom.Datom, error) {
	datoms := make([]datom.Datom, 0, len(raws))
	for i, raw := range raws {
		d, err := ParseDatom(raw)
		if err != nil {
			pe := err.(*ParseError)
			pe.Index = i
			return nil, pe
		}
		datoms = append(datoms, d)
	}
	return datoms, nil
}

// DecodeTuples reads the JSON wire form of a batch: an array of tuples.
// Numbers are kept as json.Number so integers keep full precision.
func DecodeTuples(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raws []any
	if err := dec.Decode(&raws); err != nil {
		return nil, newParseError(FieldTuple, "batch must be a JSON array of datoms: %v", err)
	}
	if dec.More() {
		return nil, newParseError(FieldTuple, "unexpected data after batch")
	}
	return raws, nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case datom.String:
		return string(s), true
	default:
		return "", false
	}
}

// asList accepts []any and datom.Array directly, and any other slice or
// array through reflection.
func asList(raw any) ([]any, bool) {
	switch l := raw.(type) {
	case []any:
		return l, true
	case datom.Array:
		out := make([]any, len(l))
		for i, v := range l {
			out[i] = v
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false // []byte is text, not a tuple
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// FormatTuple renders a datom back into its wire form.
func FormatTuple(d datom.Datom) []any {
	return []any{d.Op.String(), d.E, d.A, d.V}
}

// describe returns a short human description of a datom for logs.
func describe(d datom.Datom) string {
	return fmt.Sprintf("[%s %s %s %s]", d.Op, d.E, d.A, datom.Text(d.V))
}
