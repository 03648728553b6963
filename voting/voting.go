package voting

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/gov/types"
)

// Core is the vote-based decision process the governor binds to. The core
// owns proposal lifecycles up to and including Succeeded; everything after
// that is timelock bookkeeping the governor layers on top.
//
// The core is an external service. It is expected to call GovExecute once a
// queued proposal becomes due, and to gate that hook by its own rules.
type Core interface {
	// ProposalStatus reports the core's own view of a proposal. It returns
	// base states only, never Queued or Executed.
	ProposalStatus(ctx context.Context, proposal cid.Cid) (types.ProposalState, error)

	// CancelProposal withdraws the core's bookkeeping for the batch and
	// returns the derived proposal id. Cores are free to treat this as a
	// no-op for proposals they no longer track.
	CancelProposal(ctx context.Context, calls []types.Call, descDigest []byte) (cid.Cid, error)
}
