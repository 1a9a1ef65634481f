package datom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpString(t *testing.T) {
	assert.Equal(t, "db/add", OpAdd.String())
	assert.Equal(t, "db/retract", OpRetract.String())
	assert.Equal(t, "Op(0)", Op(0).String())
}

func TestNewEntity_IsEmpty(t *testing.T) {
	e := NewEntity("page:2026-10-14")
	assert.Equal(t, "page:2026-10-14", e.ID)
	assert.NotNil(t, e.Attrs)
	assert.True(t, e.IsEmpty())
}

func TestEntityApply_AddThenRetract(t *testing.T) {
	e := NewEntity("block:x")
	require.NoError(t, e.Apply(Add("block:x", "a", Int(1))))
	require.NoError(t, e.Apply(Retract("block:x", "a", Int(1))))
	_, ok := e.Get("a")
	assert.False(t, ok)
}

func TestEntityApply_RetractThenAdd(t *testing.T) {
	e := NewEntity("block:x")
	require.NoError(t, e.Apply(Retract("block:x", "a", nil)))
	require.NoError(t, e.Apply(Add("block:x", "a", String("later"))))
	v, ok := e.Get("a")
	assert.True(t, ok)
	assert.Equal(t, String("later"), v)
}

func TestEntityApply_NilAttrsAndNilValue(t *testing.T) {
	var e Entity
	require.NoError(t, e.Apply(Add("x", "a", nil)))
	assert.Equal(t, Object{"a": Null{}}, e.Attrs)
}

func TestEntityApply_UnknownOp(t *testing.T) {
	e := NewEntity("x")
	assert.Error(t, e.Apply(Datom{Op: Op(9), E: "x", A: "a"}))
}

func TestDatomValidate(t *testing.T) {
	assert.NoError(t, Add("block:x", "block/cafe\u0301", String("v")).Validate())

	err := Add("block:\xff", "a", Null{}).Validate()
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.Contains(t, err.Error(), "entity id")

	err = Retract("block:x", "a\xc3", Null{}).Validate()
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.Contains(t, err.Error(), "attribute")
}
