package api

import (
	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/gov/types"
)

// QueuedEntry ties a proposal to the operation id a timelock tracks it
// under.
type QueuedEntry struct {
	Proposal cid.Cid
	Op       cid.Cid
}

// ProposalSpec is the portable JSON form of a proposal: the call batch plus
// either the description text or its precomputed digest. Consoles and
// tooling exchange proposal files in this shape.
type ProposalSpec struct {
	Calls       []types.Call
	Description string
	DescDigest  []byte
}

// Digest returns the description digest, deriving it from the description
// text when no precomputed digest is carried.
func (ps *ProposalSpec) Digest() []byte {
	if len(ps.DescDigest) > 0 {
		return ps.DescDigest
	}
	return types.HashDescription(ps.Description)
}

// GovEvent type tags, mirroring the journal event names.
const (
	GovEvtQueued          = "queued"
	GovEvtTimelockAdded   = "timelock-added"
	GovEvtTimelockRemoved = "timelock-removed"
)

// GovEvent is a live governance notification delivered over GovSubscribe.
// Proposal, Op and Eta are only defined for queued events.
type GovEvent struct {
	Type     string
	Timelock address.Address
	Proposal cid.Cid
	Op       cid.Cid
	Eta      int64
}
