package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jottty/jottty/internal/datom"
)

const zstdPrefix = "zstd:"

// Zstd stores the JSON envelope zstd-compressed and base64 encoded, so the
// content column stays TEXT. Rows without the prefix are read as plain JSON.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates a Zstd codec. EncodeAll/DecodeAll on the shared
// encoder and decoder are safe for concurrent use.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// Name implements Codec.
func (*Zstd) Name() string { return "zstd" }

// Encode implements Codec.
func (z *Zstd) Encode(e datom.Entity) (string, error) {
	data, err := encodeEnvelope(e)
	if err != nil {
		return "", err
	}
	compressed := z.enc.EncodeAll(data, nil)
	return zstdPrefix + base64.StdEncoding.EncodeToString(compressed), nil
}

// Decode implements Codec.
func (z *Zstd) Decode(text string) (datom.Entity, error) {
	body, ok := strings.CutPrefix(text, zstdPrefix)
	if !ok {
		return decodeEnvelope([]byte(text))
	}
	compressed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return datom.Entity{}, &DecodeError{Reason: "invalid base64", Err: err}
	}
	data, err := z.dec.DecodeAll(compressed, nil)
	if err != nil {
		return datom.Entity{}, &DecodeError{Reason: "invalid zstd frame", Err: err}
	}
	return decodeEnvelope(data)
}

// Close releases encoder and decoder resources.
func (z *Zstd) Close() error {
	z.dec.Close()
	return z.enc.Close()
}
