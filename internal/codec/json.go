package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jottty/jottty/internal/datom"
)

// JSON is the plain-text envelope codec.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Encode implements Codec. Output is deterministic: envelope and attribute
// keys are sorted and HTML characters are not escaped.
func (JSON) Encode(e datom.Entity) (string, error) {
	data, err := encodeEnvelope(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode implements Codec.
func (JSON) Decode(text string) (datom.Entity, error) {
	return decodeEnvelope([]byte(text))
}

func encodeEnvelope(e datom.Entity) ([]byte, error) {
	attrs := e.Attrs
	if attrs == nil {
		attrs = datom.Object{}
	}
	envelope := datom.Object{
		"id":    datom.String(e.ID),
		"attrs": attrs,
	}
	data, err := envelope.MarshalJSON()
	if err != nil {
		return nil, &EncodeError{ID: e.ID, Err: err}
	}
	return data, nil
}

func decodeEnvelope(data []byte) (datom.Entity, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return datom.Entity{}, &DecodeError{Reason: "malformed envelope", Err: err}
	}
	if raw == nil {
		return datom.Entity{}, &DecodeError{Reason: "envelope is not an object"}
	}

	rawID, ok := raw["id"]
	if !ok {
		return datom.Entity{}, &DecodeError{Reason: "missing id"}
	}
	var id string
	if !startsWith(rawID, '"') {
		return datom.Entity{}, &DecodeError{Reason: "id is not a string"}
	}
	if err := json.Unmarshal(rawID, &id); err != nil {
		return datom.Entity{}, &DecodeError{Reason: "id is not a string", Err: err}
	}

	rawAttrs, ok := raw["attrs"]
	if !ok {
		return datom.Entity{}, &DecodeError{Reason: "missing attrs"}
	}
	if !startsWith(rawAttrs, '{') {
		return datom.Entity{}, &DecodeError{Reason: "attrs is not an object"}
	}
	var attrs datom.Object
	if err := json.Unmarshal(rawAttrs, &attrs); err != nil {
		return datom.Entity{}, &DecodeError{Reason: fmt.Sprintf("attrs of %q", id), Err: err}
	}

	return datom.Entity{ID: id, Attrs: attrs}, nil
}

func startsWith(data []byte, c byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == c
}
