package impl

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/node/impl/common"
)

// GovAPI glues the governor to the API surface.
type GovAPI struct {
	common.CommonAPI

	Governor *gov.Governor
}

func (a *GovAPI) GovListTimelocks(ctx context.Context) ([]address.Address, error) {
	return a.Governor.ListTimelocks(), nil
}

func (a *GovAPI) GovStatus(ctx context.Context, proposal cid.Cid, tl address.Address) (types.ProposalState, error) {
	return a.Governor.Status(ctx, proposal, tl)
}

func (a *GovAPI) GovEta(ctx context.Context, proposal cid.Cid, tl address.Address) (int64, error) {
	return a.Governor.Eta(ctx, proposal, tl)
}

func (a *GovAPI) GovListQueued(ctx context.Context, tl address.Address) ([]api.QueuedEntry, error) {
	entries, err := a.Governor.ListQueued(ctx, tl)
	if err != nil {
		return nil, err
	}

	out := make([]api.QueuedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.QueuedEntry{
			Proposal: e.Proposal,
			Op:       e.Op,
		})
	}
	return out, nil
}

func (a *GovAPI) GovQueue(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return a.Governor.Queue(ctx, calls, descDigest, tl)
}

func (a *GovAPI) GovExecute(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return a.Governor.Execute(ctx, calls, descDigest, tl)
}

func (a *GovAPI) GovCancel(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	return a.Governor.Cancel(ctx, calls, descDigest, tl)
}

func (a *GovAPI) GovApplyCall(ctx context.Context, call types.Call, grant types.ExecGrant) error {
	return a.Governor.ApplyCall(ctx, call, grant)
}

func (a *GovAPI) GovSubscribe(ctx context.Context) (<-chan api.GovEvent, error) {
	return a.Governor.SubscribeEvents(ctx), nil
}

var _ api.Gov = &GovAPI{}
