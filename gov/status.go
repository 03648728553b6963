package gov

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/timelock"
)

// Status merges the voting core's base state for a proposal with this
// daemon's bookkeeping for one timelock. Base states other than Succeeded
// pass through untouched. A succeeded proposal with no ledger entry for the
// timelock stays Succeeded; with an entry, the timelock decides: done means
// Executed, pending means Queued, and an operation the timelock no longer
// tracks means it was canceled there.
//
// The same proposal can be Queued on one timelock and still Succeeded with
// respect to another; status is always a per-timelock question.
func (g *Governor) Status(ctx context.Context, proposal cid.Cid, tl address.Address) (types.ProposalState, error) {
	tladdr, lock, err := g.resolveTimelock(ctx, tl)
	if err != nil {
		return 0, err
	}
	return g.statusOn(ctx, proposal, tladdr, lock)
}

func (g *Governor) statusOn(ctx context.Context, proposal cid.Cid, tladdr address.Address, lock timelock.Timelock) (types.ProposalState, error) {
	base, err := g.voting.ProposalStatus(ctx, proposal)
	if err != nil {
		return 0, xerrors.Errorf("querying voting core for proposal %s: %w", proposal, err)
	}
	if base != types.StateSucceeded {
		return base, nil
	}

	op, ok, err := g.ledger.Get(tladdr, proposal)
	if err != nil {
		return 0, err
	}
	if !ok {
		return types.StateSucceeded, nil
	}

	done, err := lock.OperationDone(ctx, op)
	if err != nil {
		return 0, xerrors.Errorf("querying operation %s on timelock %s: %w", op, tladdr, err)
	}
	if done {
		return types.StateExecuted, nil
	}

	pending, err := lock.OperationPending(ctx, op)
	if err != nil {
		return 0, xerrors.Errorf("querying operation %s on timelock %s: %w", op, tladdr, err)
	}
	if pending {
		return types.StateQueued, nil
	}

	return types.StateCanceled, nil
}

// Eta returns the unix timestamp at which the proposal's operation on the
// selected timelock becomes executable. Proposals without a ledger entry
// there, and operations already executed, have no pending eta and report 0.
func (g *Governor) Eta(ctx context.Context, proposal cid.Cid, tl address.Address) (int64, error) {
	tladdr, lock, err := g.resolveTimelock(ctx, tl)
	if err != nil {
		return 0, err
	}

	op, ok, err := g.ledger.Get(tladdr, proposal)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	ts, err := lock.OperationTimestamp(ctx, op)
	if err != nil {
		return 0, xerrors.Errorf("querying timestamp of operation %s on timelock %s: %w", op, tladdr, err)
	}
	if ts == timelock.DoneTimestamp {
		return 0, nil
	}
	return ts, nil
}
