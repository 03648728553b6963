package gov

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/api"
)

func tladdr(t *testing.T, id uint64) address.Address {
	t.Helper()

	a, err := address.NewIDAddress(id)
	require.NoError(t, err)
	return a
}

func TestRegistrySeedsOnlyOnFirstStart(t *testing.T) {
	ctx := context.Background()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	a, b := tladdr(t, 100), tladdr(t, 101)

	reg, err := NewRegistry(ctx, ds, []address.Address{a, b})
	require.NoError(t, err)
	require.Equal(t, []address.Address{a, b}, reg.List())

	// reopening ignores the initial set once state is persisted
	c := tladdr(t, 102)
	reg, err = NewRegistry(ctx, ds, []address.Address{c})
	require.NoError(t, err)
	require.Equal(t, []address.Address{a, b}, reg.List())
}

func TestRegistryAddRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	a := tladdr(t, 100)

	reg, err := NewRegistry(ctx, ds, []address.Address{a})
	require.NoError(t, err)

	err = reg.Add(ctx, a)
	require.ErrorAs(t, err, new(*api.ErrTimelockExists))
	require.Equal(t, 1, reg.Len())
}

func TestRegistryRemovePreservesOrder(t *testing.T) {
	ctx := context.Background()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	a, b, c := tladdr(t, 100), tladdr(t, 101), tladdr(t, 102)

	reg, err := NewRegistry(ctx, ds, []address.Address{a, b, c})
	require.NoError(t, err)

	require.NoError(t, reg.Remove(ctx, b))
	require.Equal(t, []address.Address{a, c}, reg.List())
	require.False(t, reg.Has(b))

	err = reg.Remove(ctx, b)
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))

	// removal persists across reopen
	reg, err = NewRegistry(ctx, ds, nil)
	require.NoError(t, err)
	require.Equal(t, []address.Address{a, c}, reg.List())
}

func TestRegistryListSnapshot(t *testing.T) {
	ctx := context.Background()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	a, b := tladdr(t, 100), tladdr(t, 101)

	reg, err := NewRegistry(ctx, ds, []address.Address{a, b})
	require.NoError(t, err)

	require.Equal(t, reg.List(), reg.List())

	// mutating a snapshot must not reach the registry
	snap := reg.List()
	snap[0] = tladdr(t, 999)
	require.Equal(t, []address.Address{a, b}, reg.List())
}

func TestRegistrySole(t *testing.T) {
	ctx := context.Background()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	a, b := tladdr(t, 100), tladdr(t, 101)

	reg, err := NewRegistry(ctx, ds, []address.Address{a})
	require.NoError(t, err)

	sole, err := reg.Sole()
	require.NoError(t, err)
	require.Equal(t, a, sole)

	require.NoError(t, reg.Add(ctx, b))
	_, err = reg.Sole()
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))

	require.NoError(t, reg.Remove(ctx, a))
	require.NoError(t, reg.Remove(ctx, b))
	_, err = reg.Sole()
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))
}
