package datom

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Op is the kind of mutation a Datom performs.
type Op int

const (
	// OpAdd sets (or overwrites) an attribute.
	OpAdd Op = iota + 1
	// OpRetract removes an attribute. Retracting an absent attribute is a no-op.
	OpRetract
)

// String returns the wire keyword for the op.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "db/add"
	case OpRetract:
		return "db/retract"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Datom is an atomic fact mutation: (op, entity id, attribute, value).
type Datom struct {
	Op Op
	E  string
	A  string
	V  Value
}

// Add builds an OpAdd datom.
func Add(e, a string, v Value) Datom {
	return Datom{Op: OpAdd, E: e, A: a, V: v}
}

// Retract builds an OpRetract datom.
func Retract(e, a string, v Value) Datom {
	return Datom{Op: OpRetract, E: e, A: a, V: v}
}

// ErrInvalidText is returned for an entity id or attribute that is not
// valid UTF-8. Such a string cannot survive the JSON snapshot unchanged.
var ErrInvalidText = errors.New("not valid UTF-8")

// Validate checks that E and A are valid UTF-8.
func (d Datom) Validate() error {
	if !utf8.ValidString(d.E) {
		return fmt.Errorf("entity id %q: %w", d.E, ErrInvalidText)
	}
	if !utf8.ValidString(d.A) {
		return fmt.Errorf("attribute %q: %w", d.A, ErrInvalidText)
	}
	return nil
}

// Entity is an id plus its current attribute map.
// An entity with no attributes is valid; it is what a read returns for an
// id that was never written.
type Entity struct {
	ID    string `json:"id"`
	Attrs Object `json:"attrs"`
}

// NewEntity returns an empty entity for id.
func NewEntity(id string) Entity {
	return Entity{ID: id, Attrs: Object{}}
}

// IsEmpty reports whether the entity carries no attributes.
func (e Entity) IsEmpty() bool {
	return len(e.Attrs) == 0
}

// Get returns the value of attribute a and whether it is present.
func (e Entity) Get(a string) (Value, bool) {
	v, ok := e.Attrs[a]
	return v, ok
}

// Clone returns a deep copy so callers can mutate attrs freely.
func (e Entity) Clone() Entity {
	return Entity{ID: e.ID, Attrs: e.Attrs.Clone()}
}

// Apply replays a single datom against the in-memory attribute map.
// The datom's entity id is not checked; grouping is the caller's job.
func (e *Entity) Apply(d Datom) error {
	if e.Attrs == nil {
		e.Attrs = Object{}
	}
	switch d.Op {
	case OpAdd:
		if d.V == nil {
			e.Attrs[d.A] = Null{}
			return nil
		}
		e.Attrs[d.A] = d.V
	case OpRetract:
		delete(e.Attrs, d.A)
	default:
		return fmt.Errorf("apply %s: unsupported op %v", d.A, d.Op)
	}
	return nil
}
