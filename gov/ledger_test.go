package gov

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/gov/types"
)

func mkCid(t *testing.T, desc string) cid.Cid {
	t.Helper()

	c, err := types.ProposalCid(nil, types.HashDescription(desc))
	require.NoError(t, err)
	return c
}

func TestLedgerLifecycle(t *testing.T) {
	ds := dssync.MutexWrap(datastore.NewMapDatastore())
	l := NewLedger(ds)

	tlA, tlB := tladdr(t, 100), tladdr(t, 101)
	prop := mkCid(t, "the proposal")
	op := mkCid(t, "the operation")

	_, ok, err := l.Get(tlA, prop)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Put(tlA, prop, op))

	got, ok, err := l.Get(tlA, prop)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, op, got)

	// the pair is keyed per timelock
	_, ok, err = l.Get(tlB, prop)
	require.NoError(t, err)
	require.False(t, ok)

	// entries are never silently overwritten
	require.Error(t, l.Put(tlA, prop, mkCid(t, "another operation")))

	require.NoError(t, l.Clear(tlA, prop))
	_, ok, err = l.Get(tlA, prop)
	require.NoError(t, err)
	require.False(t, ok)

	// clearing a cleared entry errors; callers check Get first
	require.Error(t, l.Clear(tlA, prop))
}

func TestLedgerEntries(t *testing.T) {
	ds := dssync.MutexWrap(datastore.NewMapDatastore())
	l := NewLedger(ds)

	tlA, tlB := tladdr(t, 100), tladdr(t, 101)

	p1, o1 := mkCid(t, "p1"), mkCid(t, "o1")
	p2, o2 := mkCid(t, "p2"), mkCid(t, "o2")
	p3, o3 := mkCid(t, "p3"), mkCid(t, "o3")

	require.NoError(t, l.Put(tlA, p1, o1))
	require.NoError(t, l.Put(tlA, p2, o2))
	require.NoError(t, l.Put(tlB, p3, o3))

	entries, err := l.Entries(tlA)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byProp := map[cid.Cid]cid.Cid{}
	for _, e := range entries {
		byProp[e.Proposal] = e.Op
	}
	require.Equal(t, o1, byProp[p1])
	require.Equal(t, o2, byProp[p2])

	entries, err = l.Entries(tlB)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, p3, entries[0].Proposal)
	require.Equal(t, o3, entries[0].Op)

	entries, err = l.Entries(tladdr(t, 999))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLedgerSurvivesReopen(t *testing.T) {
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	tlA := tladdr(t, 100)
	prop, op := mkCid(t, "p"), mkCid(t, "o")

	require.NoError(t, NewLedger(ds).Put(tlA, prop, op))

	got, ok, err := NewLedger(ds).Get(tlA, prop)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, op, got)
}
