package api

import (
	"context"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/voting"
)

var _ Common = (*CommonStruct)(nil)
var _ Gov = (*GovStruct)(nil)
var _ timelock.Timelock = (*TimelockStruct)(nil)
var _ voting.Core = (*VotingStruct)(nil)

type CommonStruct struct {
	Internal struct {
		AuthVerify func(ctx context.Context, token string) ([]auth.Permission, error) `perm:"read"`
		AuthNew    func(ctx context.Context, perms []auth.Permission) ([]byte, error) `perm:"admin"`

		Version  func(ctx context.Context) (APIVersion, error) `perm:"read"`
		Session  func(ctx context.Context) (uuid.UUID, error)  `perm:"read"`
		Shutdown func(ctx context.Context) error                `perm:"admin"`
	}
}

func (c *CommonStruct) AuthVerify(ctx context.Context, token string) ([]auth.Permission, error) {
	return c.Internal.AuthVerify(ctx, token)
}

func (c *CommonStruct) AuthNew(ctx context.Context, perms []auth.Permission) ([]byte, error) {
	return c.Internal.AuthNew(ctx, perms)
}

func (c *CommonStruct) Version(ctx context.Context) (APIVersion, error) {
	return c.Internal.Version(ctx)
}

func (c *CommonStruct) Session(ctx context.Context) (uuid.UUID, error) {
	return c.Internal.Session(ctx)
}

func (c *CommonStruct) Shutdown(ctx context.Context) error {
	return c.Internal.Shutdown(ctx)
}

type GovStruct struct {
	CommonStruct

	Internal struct {
		GovListTimelocks func(ctx context.Context) ([]address.Address, error)                                                   `perm:"read"`
		GovStatus        func(ctx context.Context, proposal cid.Cid, tl address.Address) (types.ProposalState, error)          `perm:"read"`
		GovEta           func(ctx context.Context, proposal cid.Cid, tl address.Address) (int64, error)                        `perm:"read"`
		GovListQueued    func(ctx context.Context, tl address.Address) ([]QueuedEntry, error)                                  `perm:"read"`
		GovQueue         func(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) `perm:"write"`
		GovExecute       func(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) `perm:"write"`
		GovCancel        func(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) `perm:"write"`
		GovApplyCall     func(ctx context.Context, call types.Call, grant types.ExecGrant) error                               `perm:"write"`
		GovSubscribe     func(ctx context.Context) (<-chan GovEvent, error)                                                    `perm:"read"`
	}
}

func (g *GovStruct) GovListTimelocks(ctx context.Context) ([]address.Address, error) {
	return g.Internal.GovListTimelocks(ctx)
}

func (g *GovStruct) GovStatus(ctx context.Context, proposal cid.Cid, tl address.Address) (types.ProposalState, error) {
	return g.Internal.GovStatus(ctx, proposal, tl)
}

func (g *GovStruct) GovEta(ctx context.Context, proposal cid.Cid, tl address.Address) (int64, error) {
	return g.Internal.GovEta(ctx, proposal, tl)
}

func (g *GovStruct) GovListQueued(ctx context.Context, tl address.Address) ([]QueuedEntry, error) {
	return g.Internal.GovListQueued(ctx, tl)
}

func (g *GovStruct) GovQueue(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return g.Internal.GovQueue(ctx, calls, descDigest, tl)
}

func (g *GovStruct) GovExecute(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return g.Internal.GovExecute(ctx, calls, descDigest, tl)
}

func (g *GovStruct) GovCancel(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return g.Internal.GovCancel(ctx, calls, descDigest, tl)
}

func (g *GovStruct) GovApplyCall(ctx context.Context, call types.Call, grant types.ExecGrant) error {
	return g.Internal.GovApplyCall(ctx, call, grant)
}

func (g *GovStruct) GovSubscribe(ctx context.Context) (<-chan GovEvent, error) {
	return g.Internal.GovSubscribe(ctx)
}

// TimelockStruct is the client proxy for an external timelock service. The
// method set satisfies timelock.Timelock, so a dialed client plugs straight
// into the governor.
type TimelockStruct struct {
	Internal struct {
		MinDelay           func(ctx context.Context) (time.Duration, error)                                                                `perm:"read"`
		ScheduleBatch      func(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte, delay time.Duration) error        `perm:"write"`
		ExecuteBatch       func(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) error                             `perm:"write"`
		CancelOperation    func(ctx context.Context, op cid.Cid) error                                                                     `perm:"write"`
		OperationPending   func(ctx context.Context, op cid.Cid) (bool, error)                                                             `perm:"read"`
		OperationDone      func(ctx context.Context, op cid.Cid) (bool, error)                                                             `perm:"read"`
		OperationTimestamp func(ctx context.Context, op cid.Cid) (int64, error)                                                            `perm:"read"`
		HashOperationBatch func(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) (cid.Cid, error)                  `perm:"read"`
	}
}

func (t *TimelockStruct) MinDelay(ctx context.Context) (time.Duration, error) {
	return t.Internal.MinDelay(ctx)
}

func (t *TimelockStruct) ScheduleBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte, delay time.Duration) error {
	return t.Internal.ScheduleBatch(ctx, calls, salt, descDigest, delay)
}

func (t *TimelockStruct) ExecuteBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) error {
	return t.Internal.ExecuteBatch(ctx, calls, salt, descDigest)
}

func (t *TimelockStruct) CancelOperation(ctx context.Context, op cid.Cid) error {
	return t.Internal.CancelOperation(ctx, op)
}

func (t *TimelockStruct) OperationPending(ctx context.Context, op cid.Cid) (bool, error) {
	return t.Internal.OperationPending(ctx, op)
}

func (t *TimelockStruct) OperationDone(ctx context.Context, op cid.Cid) (bool, error) {
	return t.Internal.OperationDone(ctx, op)
}

func (t *TimelockStruct) OperationTimestamp(ctx context.Context, op cid.Cid) (int64, error) {
	return t.Internal.OperationTimestamp(ctx, op)
}

func (t *TimelockStruct) HashOperationBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) (cid.Cid, error) {
	return t.Internal.HashOperationBatch(ctx, calls, salt, descDigest)
}

// VotingStruct is the client proxy for the external voting core.
type VotingStruct struct {
	Internal struct {
		ProposalStatus func(ctx context.Context, proposal cid.Cid) (types.ProposalState, error)               `perm:"read"`
		CancelProposal func(ctx context.Context, calls []types.Call, descDigest []byte) (cid.Cid, error)      `perm:"write"`
	}
}

func (v *VotingStruct) ProposalStatus(ctx context.Context, proposal cid.Cid) (types.ProposalState, error) {
	return v.Internal.ProposalStatus(ctx, proposal)
}

func (v *VotingStruct) CancelProposal(ctx context.Context, calls []types.Call, descDigest []byte) (cid.Cid, error) {
	return v.Internal.CancelProposal(ctx, calls, descDigest)
}
