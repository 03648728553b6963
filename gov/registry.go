package gov

import (
	"bytes"
	"context"
	"sync"

	"github.com/filecoin-project/go-address"
	cborutil "github.com/filecoin-project/go-cbor-util"
	"github.com/ipfs/go-datastore"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov/types"
)

// dsKeyTimelocks holds the persisted registry state in the metadata datastore.
var dsKeyTimelocks = datastore.NewKey("/gov/timelocks")

// Registry is the ordered set of registered timelocks. Order is registration
// order; removal shifts the remaining entries left. Mutations persist before
// they become visible to readers.
//
// Both mutators are reachable only through the governance-authorized
// execution path; see Governor.ApplyCall.
type Registry struct {
	lk sync.RWMutex
	ds datastore.Batching

	timelocks []address.Address
}

// NewRegistry loads the persisted timelock set. On first start, when nothing
// is persisted yet, the initial set is registered in the given order. Seeding
// only happens then: an empty registry can never grow through the governance
// path, since registering a timelock requires executing through one.
func NewRegistry(ctx context.Context, ds datastore.Batching, initial []address.Address) (*Registry, error) {
	r := &Registry{ds: ds}

	b, err := ds.Get(ctx, dsKeyTimelocks)
	if err != nil && !xerrors.Is(err, datastore.ErrNotFound) {
		return nil, xerrors.Errorf("loading registry state: %w", err)
	}
	if err == nil {
		var state types.RegistryState
		if err := state.UnmarshalCBOR(bytes.NewReader(b)); err != nil {
			return nil, xerrors.Errorf("unmarshaling registry state: %w", err)
		}
		r.timelocks = state.Timelocks
		return r, nil
	}

	for i := 0; i < len(initial); i++ {
		if err := r.Add(ctx, initial[i]); err != nil {
			return nil, xerrors.Errorf("registering initial timelock %s: %w", initial[i], err)
		}
		log.Infow("registered initial timelock", "timelock", initial[i])
	}

	return r, nil
}

// Add appends tl to the registry. Duplicate registrations are rejected.
func (r *Registry) Add(ctx context.Context, tl address.Address) error {
	r.lk.Lock()
	defer r.lk.Unlock()

	for _, have := range r.timelocks {
		if have == tl {
			return &api.ErrTimelockExists{}
		}
	}

	next := make([]address.Address, 0, len(r.timelocks)+1)
	next = append(next, r.timelocks...)
	next = append(next, tl)

	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.timelocks = next
	return nil
}

// Remove deletes the first occurrence of tl, preserving the order of the
// remaining entries. Ledger entries referencing tl are not purged; they stay
// queryable until explicitly canceled.
func (r *Registry) Remove(ctx context.Context, tl address.Address) error {
	r.lk.Lock()
	defer r.lk.Unlock()

	at := -1
	for i, have := range r.timelocks {
		if have == tl {
			at = i
			break
		}
	}
	if at == -1 {
		return &api.ErrTimelockNotFound{}
	}

	next := make([]address.Address, 0, len(r.timelocks)-1)
	next = append(next, r.timelocks[:at]...)
	next = append(next, r.timelocks[at+1:]...)

	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.timelocks = next
	return nil
}

// List returns the registered timelocks in registration order.
func (r *Registry) List() []address.Address {
	r.lk.RLock()
	defer r.lk.RUnlock()

	out := make([]address.Address, len(r.timelocks))
	copy(out, r.timelocks)
	return out
}

// Has reports whether tl is currently registered.
func (r *Registry) Has(tl address.Address) bool {
	r.lk.RLock()
	defer r.lk.RUnlock()

	for _, have := range r.timelocks {
		if have == tl {
			return true
		}
	}
	return false
}

// Len returns the number of registered timelocks.
func (r *Registry) Len() int {
	r.lk.RLock()
	defer r.lk.RUnlock()

	return len(r.timelocks)
}

// Sole returns the only registered timelock. It fails unless the registry
// holds exactly one entry, so callers omitting an explicit timelock cannot
// silently land on an arbitrary one.
func (r *Registry) Sole() (address.Address, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()

	if len(r.timelocks) != 1 {
		return address.Undef, &api.ErrTimelockNotFound{}
	}
	return r.timelocks[0], nil
}

func (r *Registry) persist(ctx context.Context, timelocks []address.Address) error {
	b, err := cborutil.Dump(&types.RegistryState{Timelocks: timelocks})
	if err != nil {
		return xerrors.Errorf("marshaling registry state: %w", err)
	}
	if err := r.ds.Put(ctx, dsKeyTimelocks, b); err != nil {
		return xerrors.Errorf("persisting registry state: %w", err)
	}
	return nil
}
