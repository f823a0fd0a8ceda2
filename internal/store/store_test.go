package store

import (
	"context"
	"errors"
	"testing"

	raleighsl "github.com/ehrlich-b/raleighsl"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{
		Semantic: NewFlatSemantic(),
		Key:      NewFlatKey(),
		Device:   NewMemoryDevice(1 << 20),
		Space:    NewFreeListSpace(1 << 20),
	}
	s, err := Open(cfg)
	require.NoError(t, err)
	return s
}

func TestStoreCreateLookupUnlink(t *testing.T) {
	s := newTestStore(t)

	obj, err := s.Create("counter-a", NewCounterPlugin)
	require.NoError(t, err)
	require.NotZero(t, obj.OID)

	_, err = s.Create("counter-a", NewCounterPlugin)
	require.True(t, errors.Is(err, raleighsl.CodeAlreadyExists))

	found, err := s.Lookup("counter-a")
	require.NoError(t, err)
	require.Equal(t, obj.OID, found.OID)
	s.Release(found)

	require.NoError(t, s.Unlink("counter-a"))
	_, err = s.Lookup("counter-a")
	require.Error(t, err)
}

func TestStoreCounterApplyAndCommit(t *testing.T) {
	s := newTestStore(t)
	obj, err := s.Create("ctr", NewCounterPlugin)
	require.NoError(t, err)

	tx := NewTransaction()
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "set", Args: map[string]any{"value": uint64(10)}}))
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "incr", Args: map[string]any{"delta": uint64(5)}}))
	require.NoError(t, tx.Commit(context.Background()))

	state := obj.State.(*CounterState)
	require.Equal(t, uint64(15), state.Value)
}

func TestStoreCounterRollback(t *testing.T) {
	s := newTestStore(t)
	obj, err := s.Create("ctr2", NewCounterPlugin)
	require.NoError(t, err)

	tx := NewTransaction()
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "set", Args: map[string]any{"value": uint64(100)}}))
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "decr", Args: map[string]any{"delta": uint64(50)}}))
	tx.Rollback()

	state := obj.State.(*CounterState)
	require.Equal(t, uint64(0), state.Value)
}

func TestStoreCounterCasMismatchAborts(t *testing.T) {
	s := newTestStore(t)
	obj, err := s.Create("ctr3", NewCounterPlugin)
	require.NoError(t, err)

	tx := NewTransaction()
	err = s.Operate(tx, obj, Op{Kind: "cas", Args: map[string]any{"expected": uint64(99), "value": uint64(1)}})
	require.True(t, errors.Is(err, raleighsl.CodeConcurrencyConflict))

	state := obj.State.(*CounterState)
	require.Equal(t, uint64(0), state.Value)
	require.Equal(t, uint64(0), state.CAS)
}

func TestStoreBitmapSetClearTestCount(t *testing.T) {
	s := newTestStore(t)
	obj, err := s.Create("bm", NewBitmapPlugin)
	require.NoError(t, err)

	tx := NewTransaction()
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "set", Args: map[string]any{"bit": uint64(3)}}))
	require.NoError(t, s.Operate(tx, obj, Op{Kind: "set", Args: map[string]any{"bit": uint64(130)}}))
	require.NoError(t, tx.Commit(context.Background()))

	plugin := obj.Plugin
	atom, err := plugin.Apply(obj.State, Op{Kind: "test", Args: map[string]any{"bit": uint64(3)}})
	require.NoError(t, err)
	require.Equal(t, true, atom.After)

	atom, err = plugin.Apply(obj.State, Op{Kind: "count", Args: nil})
	require.NoError(t, err)
	require.Equal(t, uint64(2), atom.After)
}

func TestFreeListSpaceAllocFree(t *testing.T) {
	sp := NewFreeListSpace(1024)
	a, err := sp.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a)

	b, err := sp.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), b)

	sp.Free(a, 100)
	sp.Free(b, 100)

	c, err := sp.Alloc(200)
	require.NoError(t, err)
	require.Equal(t, uint64(0), c)
}

func TestFormatRoundTrip(t *testing.T) {
	dev := NewMemoryDevice(4096)
	f := NewFlatFormat()
	require.NoError(t, f.Format(dev, FlatSemanticUUID, mustUUID("00000000-0000-0000-0000-000000000001"), FlatKeyUUID))

	semantic, _, key, err := f.Probe(dev)
	require.NoError(t, err)
	require.Equal(t, FlatSemanticUUID, semantic)
	require.Equal(t, FlatKeyUUID, key)
}
