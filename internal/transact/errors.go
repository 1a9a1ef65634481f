package transact

import (
	"errors"
	"fmt"
)

// Field names the part of a tuple that failed to parse.
type Field string

const (
	FieldTuple Field = "tuple"
	FieldOp    Field = "op"
	FieldE     Field = "e"
	FieldA     Field = "a"
	FieldV     Field = "v"
)

// ParseError reports a malformed wire tuple.
// Index is the tuple's position in its batch, or -1 for a lone tuple.
type ParseError struct {
	Index   int
	Field   Field
	Message string
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return e.Message
	}
	return fmt.Sprintf("datom[%d]: %s", e.Index, e.Message)
}

// IsParseError returns true if err is (or wraps) a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(field Field, format string, args ...any) *ParseError {
	return &ParseError{Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}
