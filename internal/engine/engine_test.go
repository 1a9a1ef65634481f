package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jottty/jottty/internal/datom"
	"github.com/jottty/jottty/internal/kvstore"
	"github.com/jottty/jottty/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// recordingBackend wraps a backend and counts session calls. failWriteOn
// makes Write fail for one entity id.
type recordingBackend struct {
	inner       datom.Transactor
	transacts   int
	loads       int
	writes      int
	failWriteOn string
}

func (r *recordingBackend) Transact(ctx context.Context, fn func(datom.Session) error) error {
	r.transacts++
	return r.inner.Transact(ctx, func(sess datom.Session) error {
		return fn(&recordingSession{r: r, inner: sess})
	})
}

type recordingSession struct {
	r     *recordingBackend
	inner datom.Session
}

func (s *recordingSession) Load(ctx context.Context, id string) (datom.Entity, error) {
	s.r.loads++
	return s.inner.Load(ctx, id)
}

func (s *recordingSession) Write(ctx context.Context, e datom.Entity) error {
	s.r.writes++
	if e.ID == s.r.failWriteOn {
		return errors.New("disk full")
	}
	return s.inner.Write(ctx, e)
}

func TestApply_AddsToFreshEntity(t *testing.T) {
	s := newTestStore(t)
	eng := New(s)
	ctx := context.Background()

	got, err := eng.Apply(ctx, []datom.Datom{
		datom.Add("block:x", "block/title", datom.String("T")),
		datom.Add("block:x", "block/content", datom.String("hello")),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "block:x", got[0].ID)
	assert.Equal(t, datom.Object{
		"block/title":   datom.String("T"),
		"block/content": datom.String("hello"),
	}, got[0].Attrs)

	loaded, err := s.Load(ctx, "block:x")
	require.NoError(t, err)
	assert.Equal(t, got[0], loaded)
}

func TestApply_EmptyBatchTouchesNothing(t *testing.T) {
	rb := &recordingBackend{inner: newTestStore(t)}
	eng := New(rb)

	got, err := eng.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, rb.transacts)
	assert.Zero(t, rb.loads)
	assert.Zero(t, rb.writes)
}

func TestApply_RetractAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	eng := New(s)
	ctx := context.Background()

	_, err := eng.Apply(ctx, []datom.Datom{datom.Add("block:x", "keep", datom.Int(1))})
	require.NoError(t, err)

	got, err := eng.Apply(ctx, []datom.Datom{datom.Retract("block:x", "missing", datom.Null{})})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, datom.Object{"keep": datom.Int(1)}, got[0].Attrs)
}

func TestApply_LastWriteWinsWithinGroup(t *testing.T) {
	eng := New(newTestStore(t))

	got, err := eng.Apply(context.Background(), []datom.Datom{
		datom.Add("block:x", "a", datom.Int(1)),
		datom.Add("block:x", "a", datom.Int(2)),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, datom.Int(2), got[0].Attrs["a"])
}

func TestApply_AddThenRetractNetsAbsent(t *testing.T) {
	eng := New(newTestStore(t))

	got, err := eng.Apply(context.Background(), []datom.Datom{
		datom.Add("block:x", "a", datom.Int(1)),
		datom.Retract("block:x", "a", datom.Int(1)),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got[0].Get("a")
	assert.False(t, ok)
}

func TestApply_RetractThenAddNetsPresent(t *testing.T) {
	eng := New(newTestStore(t))

	got, err := eng.Apply(context.Background(), []datom.Datom{
		datom.Retract("block:x", "a", datom.Null{}),
		datom.Add("block:x", "a", datom.String("later")),
	})
	require.NoError(t, err)
	assert.Equal(t, datom.String("later"), got[0].Attrs["a"])
}

func TestApply_MergesWithStoredSnapshot(t *testing.T) {
	s := newTestStore(t)
	eng := New(s)
	ctx := context.Background()

	_, err := eng.Apply(ctx, []datom.Datom{
		datom.Add("page:p", "page/title", datom.String("P")),
		datom.Add("page:p", "page/blocks", datom.Strings("block:1")),
	})
	require.NoError(t, err)

	got, err := eng.Apply(ctx, []datom.Datom{
		datom.Add("page:p", "page/blocks", datom.Strings("block:1", "block:2")),
	})
	require.NoError(t, err)
	assert.Equal(t, datom.Object{
		"page/title":  datom.String("P"),
		"page/blocks": datom.Strings("block:1", "block:2"),
	}, got[0].Attrs)
}

func TestApply_RetractAllLeavesEmptyRecord(t *testing.T) {
	s := newTestStore(t)
	eng := New(s)
	ctx := context.Background()

	_, err := eng.Apply(ctx, []datom.Datom{datom.Add("block:x", "a", datom.Int(1))})
	require.NoError(t, err)
	_, err = eng.Apply(ctx, []datom.Datom{datom.Retract("block:x", "a", datom.Int(1))})
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "row is kept")

	loaded, err := s.Load(ctx, "block:x")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestApply_GroupsInFirstAppearanceOrder(t *testing.T) {
	rb := &recordingBackend{inner: newTestStore(t)}
	eng := New(rb)

	got, err := eng.Apply(context.Background(), []datom.Datom{
		datom.Add("block:b", "n", datom.Int(1)),
		datom.Add("block:a", "n", datom.Int(2)),
		datom.Add("block:b", "m", datom.Int(3)),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "block:b", got[0].ID)
	assert.Equal(t, "block:a", got[1].ID)
	assert.Equal(t, datom.Object{"n": datom.Int(1), "m": datom.Int(3)}, got[0].Attrs)

	assert.Equal(t, 1, rb.transacts)
	assert.Equal(t, 2, rb.loads, "one load per entity")
	assert.Equal(t, 2, rb.writes, "one write per entity")
}

func TestApply_FailureRollsBackWholeBatch(t *testing.T) {
	s := newTestStore(t)
	rb := &recordingBackend{inner: s, failWriteOn: "block:second"}
	eng := New(rb, WithTxIDGenerator(NewFixedGenerator("tx-1")))
	ctx := context.Background()

	got, err := eng.Apply(ctx, []datom.Datom{
		datom.Add("block:first", "a", datom.Int(1)),
		datom.Add("block:second", "a", datom.Int(2)),
		datom.Add("block:third", "a", datom.Int(3)),
	})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "tx-1")

	id, ok := FailedEntity(err)
	assert.True(t, ok)
	assert.Equal(t, "block:second", id)

	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageWrite, ae.Stage)

	// The third group never ran and the first group's write was rolled back.
	assert.Equal(t, 2, rb.writes)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestApply_RejectsInvalidUTF8(t *testing.T) {
	s := newTestStore(t)
	rb := &recordingBackend{inner: s}
	eng := New(rb, WithTxIDGenerator(NewFixedGenerator("tx-1")))

	got, err := eng.Apply(context.Background(), []datom.Datom{
		datom.Add("block:ok", "a", datom.Int(1)),
		datom.Add("block:\xff", "a", datom.Int(2)),
	})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, datom.ErrInvalidText)

	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageValidate, ae.Stage)
	assert.Equal(t, 0, rb.transacts)
}

func TestApply_DecomposedAttributeRoundTrips(t *testing.T) {
	s := newTestStore(t)
	eng := New(s)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		_, err := eng.Apply(ctx, []datom.Datom{datom.Add("block:caf\u00e9", "block/cafe\u0301", datom.Int(int64(i)))})
		require.NoError(t, err)
	}

	got, err := s.Load(ctx, "block:caf\u00e9")
	require.NoError(t, err)
	assert.Equal(t, datom.Object{"block/cafe\u0301": datom.Int(2)}, got.Attrs)
}

func TestApply_LoadFailureAborts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	eng := New(s)

	// Plant another entity's record at block:victim's address.
	require.NoError(t, s.Write(ctx, datom.NewEntity("block:other")))
	_, err := s.DB().Exec(`UPDATE vaults SET addr = ? WHERE addr = ?`,
		datom.Address("block:victim"), datom.Address("block:other"))
	require.NoError(t, err)

	_, err = eng.Apply(ctx, []datom.Datom{datom.Add("block:victim", "a", datom.Int(1))})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrAddressCollision)

	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageLoad, ae.Stage)
}

func TestApply_BadgerBackend(t *testing.T) {
	kv, err := kvstore.Open("")
	require.NoError(t, err)
	defer kv.Close()

	eng := New(kv)
	ctx := context.Background()

	got, err := eng.Apply(ctx, []datom.Datom{
		datom.Add("block:x", "block/content", datom.String("hello")),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	loaded, err := kv.Load(ctx, "block:x")
	require.NoError(t, err)
	assert.Equal(t, got[0], loaded)
}

func TestGroupByEntity(t *testing.T) {
	groups := groupByEntity([]datom.Datom{
		datom.Add("x", "a", datom.Int(1)),
		datom.Add("y", "a", datom.Int(2)),
		datom.Retract("x", "a", datom.Int(1)),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "x", groups[0].id)
	require.Len(t, groups[0].datoms, 2)
	assert.Equal(t, datom.OpAdd, groups[0].datoms[0].Op)
	assert.Equal(t, datom.OpRetract, groups[0].datoms[1].Op)
	assert.Equal(t, "y", groups[1].id)

	assert.Empty(t, groupByEntity(nil))
}
