package gov

import (
	"bytes"
	"context"
	"sync"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/pubsub"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/journal"
	"github.com/govexec/govexec/metrics"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/voting"
)

var log = logging.Logger("gov")

// queueSalt is the timelock salt used for governance scheduling. Batches are
// already unique per proposal, so the salt stays at its neutral value.
const queueSalt = uint64(0)

// TimelockResolver turns a timelock address into a live handle. Resolution
// is independent of registry membership, so status and eta queries keep
// working against timelocks removed while operations were in flight.
type TimelockResolver interface {
	Resolve(ctx context.Context, tl address.Address) (timelock.Timelock, error)
}

// Governor binds the voting core to the registered timelocks. It queues
// succeeded proposals, forwards due executions, unwinds cancellations one
// timelock at a time, and applies governance-authorized registry mutations
// that an executing timelock delivers back to it.
//
// Queue, Cancel and ApplyCall serialize on an internal mutex. Execute does
// not hold it across the timelock call, so batches carrying governor-targeted
// calls can re-enter through ApplyCall.
type Governor struct {
	lk sync.Mutex

	self   address.Address
	reg    *Registry
	ledger *Ledger
	voting voting.Core
	locks  TimelockResolver

	grants *grantTable
	bells  *pubsub.PubSub

	evtTypes [3]journal.EventType
	journal  journal.Journal
}

func NewGovernor(ctx context.Context, self address.Address, ds datastore.Batching, vc voting.Core, locks TimelockResolver, initial []address.Address, j journal.Journal) (*Governor, error) {
	reg, err := NewRegistry(ctx, ds, initial)
	if err != nil {
		return nil, err
	}

	g := &Governor{
		self:    self,
		reg:     reg,
		ledger:  NewLedger(ds),
		voting:  vc,
		locks:   locks,
		grants:  newGrantTable(),
		bells:   pubsub.New(64),
		journal: j,
	}
	g.evtTypes = [...]journal.EventType{
		evtTypeTimelockAdded:   j.RegisterEventType("gov", "timelock-added"),
		evtTypeTimelockRemoved: j.RegisterEventType("gov", "timelock-removed"),
		evtTypeQueued:          j.RegisterEventType("gov", "queued"),
	}

	stats.Record(ctx, metrics.RegistrySize.M(int64(g.reg.Len())))

	return g, nil
}

// Address returns the governor's own identity, the target registry
// self-calls must be addressed to.
func (g *Governor) Address() address.Address {
	return g.self
}

// ListTimelocks returns the registered timelocks in registration order.
func (g *Governor) ListTimelocks() []address.Address {
	return g.reg.List()
}

// ListQueued returns the ledger entries recorded for the selected timelock,
// including entries whose timelock has since been removed from the registry.
func (g *Governor) ListQueued(ctx context.Context, tl address.Address) ([]types.LedgerEntry, error) {
	if tl == address.Undef {
		sole, err := g.reg.Sole()
		if err != nil {
			return nil, err
		}
		tl = sole
	}
	return g.ledger.Entries(tl)
}

// resolveTimelock maps a timelock selector to a concrete handle.
// address.Undef selects the sole registered timelock and fails unless the
// registry holds exactly one entry; any other address resolves regardless of
// registry membership so stale references stay queryable.
func (g *Governor) resolveTimelock(ctx context.Context, tl address.Address) (address.Address, timelock.Timelock, error) {
	if tl == address.Undef {
		sole, err := g.reg.Sole()
		if err != nil {
			return address.Undef, nil, err
		}
		tl = sole
	}

	lock, err := g.locks.Resolve(ctx, tl)
	if err != nil {
		return address.Undef, nil, xerrors.Errorf("resolving timelock %s: %w", tl, err)
	}
	return tl, lock, nil
}

// Queue schedules a succeeded proposal on the selected timelock. The
// proposal must resolve to Succeeded for that timelock; anything else,
// including a proposal already queued or executed there, is rejected with
// ErrNotReady. On success the ledger records the operation id, the timelock
// holds the batch for its minimum delay, and a queued event carries the eta.
func (g *Governor) Queue(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	g.lk.Lock()
	defer g.lk.Unlock()

	tladdr, lock, err := g.resolveTimelock(ctx, tl)
	if err != nil {
		return cid.Undef, err
	}
	if !g.reg.Has(tladdr) {
		return cid.Undef, &api.ErrTimelockNotFound{}
	}

	proposal, err := types.ProposalCid(calls, descDigest)
	if err != nil {
		return cid.Undef, err
	}

	state, err := g.statusOn(ctx, proposal, tladdr, lock)
	if err != nil {
		return cid.Undef, err
	}
	if state != types.StateSucceeded {
		log.Debugw("queue rejected", "proposal", proposal, "timelock", tladdr, "state", state)
		return cid.Undef, &api.ErrNotReady{}
	}

	op, err := types.OperationCid(calls, queueSalt, descDigest)
	if err != nil {
		return cid.Undef, err
	}

	delay, err := lock.MinDelay(ctx)
	if err != nil {
		return cid.Undef, xerrors.Errorf("querying min delay of timelock %s: %w", tladdr, err)
	}

	if err := g.ledger.Put(tladdr, proposal, op); err != nil {
		return cid.Undef, err
	}

	if err := lock.ScheduleBatch(ctx, calls, queueSalt, descDigest, delay); err != nil {
		// a failed queue must leave no trace
		if cerr := g.ledger.Clear(tladdr, proposal); cerr != nil {
			log.Errorw("clearing ledger entry after failed schedule", "proposal", proposal, "timelock", tladdr, "error", cerr)
		}
		return cid.Undef, xerrors.Errorf("scheduling batch on timelock %s: %w", tladdr, err)
	}

	eta := build.Clock.Now().Add(delay).Unix()

	g.journal.RecordEvent(g.evtTypes[evtTypeQueued], func() interface{} {
		return QueuedEvt{Proposal: proposal, Timelock: tladdr, Op: op, Eta: eta}
	})
	g.bells.Pub(api.GovEvent{Type: api.GovEvtQueued, Timelock: tladdr, Proposal: proposal, Op: op, Eta: eta}, govTopic)

	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.Timelock, tladdr.String())}, metrics.ProposalQueued.M(1))

	log.Infow("queued proposal", "proposal", proposal, "timelock", tladdr, "op", op, "eta", eta)

	return proposal, nil
}

// Execute forwards a due batch to the selected timelock. The voting core
// verified readiness before invoking this hook, so nothing is re-checked
// here; timelock failures propagate unmodified. The grant opened around the
// call authorizes governor-targeted calls the batch delivers back through
// ApplyCall.
func (g *Governor) Execute(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	tladdr, lock, err := g.resolveTimelock(ctx, tl)
	if err != nil {
		return cid.Undef, err
	}

	proposal, err := types.ProposalCid(calls, descDigest)
	if err != nil {
		return cid.Undef, err
	}
	op, err := types.OperationCid(calls, queueSalt, descDigest)
	if err != nil {
		return cid.Undef, err
	}

	grant := types.ExecGrant{Op: op, Timelock: tladdr}
	g.grants.add(grant)
	defer g.grants.remove(grant)

	if err := lock.ExecuteBatch(ctx, calls, queueSalt, descDigest); err != nil {
		return cid.Undef, xerrors.Errorf("executing batch on timelock %s: %w", tladdr, err)
	}

	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.Timelock, tladdr.String())}, metrics.ProposalExecuted.M(1))

	log.Infow("executed proposal", "proposal", proposal, "timelock", tladdr, "op", op)

	return proposal, nil
}

// Cancel unwinds a proposal. The voting core always cancels its own
// bookkeeping first; errors there abort before any timelock is touched.
// Then, if this daemon queued the proposal on the selected timelock, the
// scheduled operation is canceled and the ledger entry cleared. The timelock
// side is scoped to one timelock per call; a proposal queued on several
// needs one cancel each, and partial unwinds are valid observable state.
func (g *Governor) Cancel(ctx context.Context, calls []types.Call, descDigest []byte, tl address.Address) (cid.Cid, error) {
	g.lk.Lock()
	defer g.lk.Unlock()

	tladdr, lock, err := g.resolveTimelock(ctx, tl)
	if err != nil {
		return cid.Undef, err
	}

	proposal, err := g.voting.CancelProposal(ctx, calls, descDigest)
	if err != nil {
		return cid.Undef, xerrors.Errorf("canceling proposal in voting core: %w", err)
	}

	op, ok, err := g.ledger.Get(tladdr, proposal)
	if err != nil {
		return cid.Undef, err
	}
	if !ok {
		// never queued on this timelock, core-side cancel is all there is
		return proposal, nil
	}

	if err := lock.CancelOperation(ctx, op); err != nil {
		return cid.Undef, xerrors.Errorf("canceling operation %s on timelock %s: %w", op, tladdr, err)
	}
	if err := g.ledger.Clear(tladdr, proposal); err != nil {
		return cid.Undef, err
	}

	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.Timelock, tladdr.String())}, metrics.ProposalCanceled.M(1))

	log.Infow("canceled proposal", "proposal", proposal, "timelock", tladdr, "op", op)

	return proposal, nil
}

// ApplyCall is the sink for calls a timelock delivers while executing a
// batch. Only registry mutations addressed to the governor itself are
// accepted, and only under the grant of the execution that produced them;
// everything else is unauthorized.
func (g *Governor) ApplyCall(ctx context.Context, call types.Call, grant types.ExecGrant) error {
	if !g.grants.active(grant) {
		log.Warnw("rejected call outside an open execution", "to", call.To, "method", call.Method, "grant", grant)
		return &api.ErrUnauthorized{}
	}
	if call.To != g.self {
		log.Warnw("rejected call not addressed to the governor", "to", call.To, "method", call.Method)
		return &api.ErrUnauthorized{}
	}

	g.lk.Lock()
	defer g.lk.Unlock()

	switch call.Method {
	case types.MethodAddTimelock:
		var params types.TimelockParams
		if err := params.UnmarshalCBOR(bytes.NewReader(call.Params)); err != nil {
			return xerrors.Errorf("unmarshaling add-timelock params: %w", err)
		}
		if err := g.reg.Add(ctx, params.Timelock); err != nil {
			return err
		}

		g.journal.RecordEvent(g.evtTypes[evtTypeTimelockAdded], func() interface{} {
			return TimelockEvt{Timelock: params.Timelock}
		})
		g.bells.Pub(api.GovEvent{Type: api.GovEvtTimelockAdded, Timelock: params.Timelock}, govTopic)
		stats.Record(ctx, metrics.RegistrySize.M(int64(g.reg.Len())))

		log.Infow("timelock registered", "timelock", params.Timelock)
		return nil

	case types.MethodRemoveTimelock:
		var params types.TimelockParams
		if err := params.UnmarshalCBOR(bytes.NewReader(call.Params)); err != nil {
			return xerrors.Errorf("unmarshaling remove-timelock params: %w", err)
		}
		if err := g.reg.Remove(ctx, params.Timelock); err != nil {
			return err
		}

		g.journal.RecordEvent(g.evtTypes[evtTypeTimelockRemoved], func() interface{} {
			return TimelockEvt{Timelock: params.Timelock}
		})
		g.bells.Pub(api.GovEvent{Type: api.GovEvtTimelockRemoved, Timelock: params.Timelock}, govTopic)
		stats.Record(ctx, metrics.RegistrySize.M(int64(g.reg.Len())))

		log.Infow("timelock removed", "timelock", params.Timelock)
		return nil

	default:
		log.Warnw("rejected call with unknown governor method", "to", call.To, "method", call.Method)
		return &api.ErrUnauthorized{}
	}
}
