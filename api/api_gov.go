package api

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/gov/types"
)

// Gov is the governance executor API. It binds an external voting core to
// the registered timelock backends: proposals the core reports as Succeeded
// can be queued onto a timelock, executed through it once due, and canceled
// per timelock without touching schedules held elsewhere.
//
// Wherever a timelock address is taken, address.Undef selects the sole
// registered timelock and fails if the registry does not hold exactly one.
type Gov interface {
	Common

	// MethodGroup: Gov

	// GovListTimelocks reports the registered timelocks in registration
	// order. Reading the registry has no side effects.
	GovListTimelocks(ctx context.Context) ([]address.Address, error) //perm:read

	// GovStatus derives the state of a proposal as seen through the given
	// timelock, merging the voting core's verdict with the timelock's
	// operation bookkeeping.
	GovStatus(ctx context.Context, proposal cid.Cid, tl address.Address) (types.ProposalState, error) //perm:read

	// GovEta reports the unix timestamp at which the queued proposal
	// becomes executable on the given timelock, or 0 when nothing is
	// pending there.
	GovEta(ctx context.Context, proposal cid.Cid, tl address.Address) (int64, error) //perm:read

	// GovListQueued lists the ledger entries held for a timelock,
	// including entries for timelocks that have since been removed from
	// the registry.
	GovListQueued(ctx context.Context, tl address.Address) ([]QueuedEntry, error) //perm:read

	// GovQueue schedules a Succeeded proposal on the given timelock with
	// the timelock's minimum delay, and returns the proposal id.
	GovQueue(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) //perm:write

	// GovExecute forwards a due batch to the given timelock for
	// execution. The voting core is expected to have verified readiness;
	// no redundant checks are performed here.
	GovExecute(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) //perm:write

	// GovCancel withdraws the proposal from the voting core and, if an
	// operation is queued on the given timelock, cancels it there and
	// clears the ledger entry. Schedules on other timelocks are left
	// untouched.
	GovCancel(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) //perm:write

	// GovApplyCall delivers a single governor-targeted call out of an
	// executing batch. Only a timelock executing a batch opened by
	// GovExecute holds a grant this accepts; everything else fails with
	// ErrUnauthorized.
	GovApplyCall(ctx context.Context, call types.Call, grant types.ExecGrant) error //perm:write

	// GovSubscribe streams governance events as they happen. The first
	// event arrives after subscription; no history is replayed.
	GovSubscribe(ctx context.Context) (<-chan GovEvent, error) //perm:read
}
