package codec

import (
	"errors"
	"fmt"

	"github.com/jottty/jottty/internal/datom"
)

// Codec converts entities to and from their stored text form.
type Codec interface {
	Name() string
	Encode(e datom.Entity) (string, error)
	Decode(text string) (datom.Entity, error)
}

var (
	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("codec: decode failed")
	// ErrEncode matches every *EncodeError.
	ErrEncode = errors.New("codec: encode failed")
)

// DecodeError reports stored text that is not a valid entity envelope.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode entity: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode entity: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// EncodeError reports an entity that has no stored form.
type EncodeError struct {
	ID  string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode entity %q: %v", e.ID, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEncode) match.
func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// IsDecodeError returns true if err is (or wraps) a decode failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Names lists the codecs accepted by ForName.
var Names = []string{"json", "zstd"}

// ForName returns the codec registered under name.
func ForName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "zstd":
		return NewZstd()
	default:
		return nil, fmt.Errorf("unknown codec %q: must be one of %v", name, Names)
	}
}
