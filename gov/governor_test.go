package gov

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/journal"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/timelock/mocklock"
	"github.com/govexec/govexec/voting"
)

type fakeVoting struct {
	lk           sync.Mutex
	states       map[cid.Cid]types.ProposalState
	flipOnCancel bool
	cancelErr    error
	canceled     []cid.Cid
}

var _ voting.Core = (*fakeVoting)(nil)

func newFakeVoting() *fakeVoting {
	return &fakeVoting{states: map[cid.Cid]types.ProposalState{}}
}

func (f *fakeVoting) setState(p cid.Cid, state types.ProposalState) {
	f.lk.Lock()
	defer f.lk.Unlock()
	f.states[p] = state
}

func (f *fakeVoting) ProposalStatus(ctx context.Context, p cid.Cid) (types.ProposalState, error) {
	f.lk.Lock()
	defer f.lk.Unlock()

	state, ok := f.states[p]
	if !ok {
		return 0, xerrors.Errorf("unknown proposal %s", p)
	}
	return state, nil
}

func (f *fakeVoting) CancelProposal(ctx context.Context, calls []types.Call, descDigest []byte) (cid.Cid, error) {
	if f.cancelErr != nil {
		return cid.Undef, f.cancelErr
	}

	p, err := types.ProposalCid(calls, descDigest)
	if err != nil {
		return cid.Undef, err
	}

	f.lk.Lock()
	defer f.lk.Unlock()

	f.canceled = append(f.canceled, p)
	if f.flipOnCancel {
		f.states[p] = types.StateCanceled
	}
	return p, nil
}

type mapResolver map[address.Address]timelock.Timelock

func (m mapResolver) Resolve(ctx context.Context, tl address.Address) (timelock.Timelock, error) {
	lock, ok := m[tl]
	if !ok {
		return nil, xerrors.Errorf("no endpoint for timelock %s", tl)
	}
	return lock, nil
}

type harness struct {
	ctx    context.Context
	g      *Governor
	voting *fakeVoting
	clock  *clock.Mock
	locks  []*mocklock.Timelock
	res    mapResolver
	self   address.Address

	calls  []types.Call
	digest []byte
	prop   cid.Cid
	op     cid.Cid
}

func newHarness(t *testing.T, delays ...time.Duration) *harness {
	t.Helper()

	mock := clock.NewMock()
	old := build.Clock
	build.Clock = mock
	t.Cleanup(func() { build.Clock = old })

	self := tladdr(t, 900)

	res := mapResolver{}
	var locks []*mocklock.Timelock
	var initial []address.Address
	for i, delay := range delays {
		lock := mocklock.New(tladdr(t, uint64(100+i)), delay)
		lock.SetClock(mock)
		locks = append(locks, lock)
		initial = append(initial, lock.Address())
		res[lock.Address()] = lock
	}

	vc := newFakeVoting()
	ds := dssync.MutexWrap(datastore.NewMapDatastore())

	g, err := NewGovernor(context.Background(), self, ds, vc, res, initial, journal.NilJournal())
	require.NoError(t, err)

	for _, lock := range locks {
		lock.RouteCalls(self, g)
	}

	calls := []types.Call{{To: tladdr(t, 1001), Value: abi.NewTokenAmount(0), Method: 4, Params: []byte{0xca, 0xfe}}}
	digest := types.HashDescription("rotate the fee collector")

	prop, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	op, err := types.OperationCid(calls, 0, digest)
	require.NoError(t, err)

	return &harness{
		ctx:    context.Background(),
		g:      g,
		voting: vc,
		clock:  mock,
		locks:  locks,
		res:    res,
		self:   self,
		calls:  calls,
		digest: digest,
		prop:   prop,
		op:     op,
	}
}

func (h *harness) status(t *testing.T, tl address.Address) types.ProposalState {
	t.Helper()

	st, err := h.g.Status(h.ctx, h.prop, tl)
	require.NoError(t, err)
	return st
}

func timelockParams(t *testing.T, tl address.Address) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, (&types.TimelockParams{Timelock: tl}).MarshalCBOR(&buf))
	return buf.Bytes()
}

func TestQueueOnTwoTimelocks(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A, B := h.locks[0], h.locks[1]
	h.voting.setState(h.prop, types.StateSucceeded)

	start := h.clock.Now().Unix()

	p, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	require.Equal(t, h.prop, p)

	_, err = h.g.Queue(h.ctx, h.calls, h.digest, B.Address())
	require.NoError(t, err)

	require.Equal(t, types.StateQueued, h.status(t, A.Address()))
	require.Equal(t, types.StateQueued, h.status(t, B.Address()))

	etaA, err := h.g.Eta(h.ctx, h.prop, A.Address())
	require.NoError(t, err)
	require.Equal(t, start+10, etaA)

	etaB, err := h.g.Eta(h.ctx, h.prop, B.Address())
	require.NoError(t, err)
	require.Equal(t, start+20, etaB)

	// requeueing on an already queued timelock is rejected
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.ErrorAs(t, err, new(*api.ErrNotReady))
}

func TestQueueRequiresSucceeded(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]

	for _, state := range []types.ProposalState{
		types.StatePending,
		types.StateActive,
		types.StateCanceled,
		types.StateDefeated,
		types.StateExpired,
	} {
		h.voting.setState(h.prop, state)
		_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
		require.ErrorAs(t, err, new(*api.ErrNotReady), "base state %s", state)
	}
}

func TestQueueRequiresRegisteredTimelock(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	h.voting.setState(h.prop, types.StateSucceeded)

	stranger := mocklock.New(tladdr(t, 733), time.Second)
	stranger.SetClock(h.clock)
	h.res[stranger.Address()] = stranger

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, stranger.Address())
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))
}

func TestQueueScheduleFailureLeavesNoTrace(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]
	h.voting.setState(h.prop, types.StateSucceeded)

	// occupy the operation slot behind the governor's back
	require.NoError(t, A.ScheduleBatch(h.ctx, h.calls, 0, h.digest, 10*time.Second))

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.Error(t, err)

	// the failed queue left no ledger entry
	require.Equal(t, types.StateSucceeded, h.status(t, A.Address()))

	eta, err := h.g.Eta(h.ctx, h.prop, A.Address())
	require.NoError(t, err)
	require.Zero(t, eta)

	// once the slot frees up, queueing works
	require.NoError(t, A.CancelOperation(h.ctx, h.op))
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
}

func TestStatusMergesTimelockState(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]

	// base states pass through while the vote is unsettled
	for _, state := range []types.ProposalState{
		types.StatePending,
		types.StateActive,
		types.StateCanceled,
		types.StateDefeated,
		types.StateExpired,
	} {
		h.voting.setState(h.prop, state)
		require.Equal(t, state, h.status(t, A.Address()))
	}

	// succeeded but never queued stays succeeded
	h.voting.setState(h.prop, types.StateSucceeded)
	require.Equal(t, types.StateSucceeded, h.status(t, A.Address()))

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	require.Equal(t, types.StateQueued, h.status(t, A.Address()))

	// canceled behind the governor's back at the timelock
	require.NoError(t, A.CancelOperation(h.ctx, h.op))
	require.Equal(t, types.StateCanceled, h.status(t, A.Address()))

	// which also blocks requeueing
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.ErrorAs(t, err, new(*api.ErrNotReady))
}

func TestExecuteLifecycle(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]
	h.voting.setState(h.prop, types.StateSucceeded)

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)

	// not due yet; the timelock's refusal propagates
	_, err = h.g.Execute(h.ctx, h.calls, h.digest, A.Address())
	require.Error(t, err)

	h.clock.Add(11 * time.Second)

	p, err := h.g.Execute(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	require.Equal(t, h.prop, p)

	// the batch landed on the timelock
	require.Len(t, A.Applied, 1)
	require.Equal(t, h.calls[0].To, A.Applied[0].To)

	require.Equal(t, types.StateExecuted, h.status(t, A.Address()))

	// the done sentinel is not surfaced as an eta
	eta, err := h.g.Eta(h.ctx, h.prop, A.Address())
	require.NoError(t, err)
	require.Zero(t, eta)

	// executed proposals cannot be requeued
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.ErrorAs(t, err, new(*api.ErrNotReady))
}

func TestCancelScopedToOneTimelock(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A, B := h.locks[0], h.locks[1]
	h.voting.setState(h.prop, types.StateSucceeded)

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, B.Address())
	require.NoError(t, err)

	// this voting core keeps the base state on cancel, so the per-timelock
	// unwind is observable in isolation
	p, err := h.g.Cancel(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	require.Equal(t, h.prop, p)
	require.Len(t, h.voting.canceled, 1)

	require.Equal(t, types.StateSucceeded, h.status(t, A.Address()))
	require.Equal(t, types.StateQueued, h.status(t, B.Address()))

	pending, err := B.OperationPending(h.ctx, h.op)
	require.NoError(t, err)
	require.True(t, pending)

	// a second cancel on A is a no-op beyond the core-side cancel
	_, err = h.g.Cancel(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	require.Len(t, h.voting.canceled, 2)
}

func TestCancelWithCoreFlip(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A, B := h.locks[0], h.locks[1]
	h.voting.flipOnCancel = true
	h.voting.setState(h.prop, types.StateSucceeded)

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)
	_, err = h.g.Queue(h.ctx, h.calls, h.digest, B.Address())
	require.NoError(t, err)

	_, err = h.g.Cancel(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)

	// the flipped base state shadows B's bookkeeping
	require.Equal(t, types.StateCanceled, h.status(t, A.Address()))
	require.Equal(t, types.StateCanceled, h.status(t, B.Address()))

	// but B's schedule is still live; unwinding it takes its own cancel
	pending, err := B.OperationPending(h.ctx, h.op)
	require.NoError(t, err)
	require.True(t, pending)

	_, err = h.g.Cancel(h.ctx, h.calls, h.digest, B.Address())
	require.NoError(t, err)

	pending, err = B.OperationPending(h.ctx, h.op)
	require.NoError(t, err)
	require.False(t, pending)
}

func TestCancelAbortsWhenCoreRefuses(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]
	h.voting.setState(h.prop, types.StateSucceeded)

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)

	h.voting.cancelErr = xerrors.New("not the proposer")
	_, err = h.g.Cancel(h.ctx, h.calls, h.digest, A.Address())
	require.Error(t, err)

	// the timelock side was not touched
	require.Equal(t, types.StateQueued, h.status(t, A.Address()))

	pending, err := A.OperationPending(h.ctx, h.op)
	require.NoError(t, err)
	require.True(t, pending)
}

func TestRegistryMutationThroughExecution(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A, B := h.locks[0], h.locks[1]

	addrC := tladdr(t, 102)
	calls := []types.Call{{To: h.self, Value: abi.NewTokenAmount(0), Method: types.MethodAddTimelock, Params: timelockParams(t, addrC)}}
	digest := types.HashDescription("register the fast-lane timelock")

	prop, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	h.voting.setState(prop, types.StateSucceeded)

	_, err = h.g.Queue(h.ctx, calls, digest, A.Address())
	require.NoError(t, err)

	h.clock.Add(11 * time.Second)

	_, err = h.g.Execute(h.ctx, calls, digest, A.Address())
	require.NoError(t, err)

	require.Equal(t, []address.Address{A.Address(), B.Address(), addrC}, h.g.ListTimelocks())

	// removal goes through the same path
	rcalls := []types.Call{{To: h.self, Value: abi.NewTokenAmount(0), Method: types.MethodRemoveTimelock, Params: timelockParams(t, addrC)}}
	rdigest := types.HashDescription("deregister the fast-lane timelock")

	rprop, err := types.ProposalCid(rcalls, rdigest)
	require.NoError(t, err)
	h.voting.setState(rprop, types.StateSucceeded)

	_, err = h.g.Queue(h.ctx, rcalls, rdigest, B.Address())
	require.NoError(t, err)

	h.clock.Add(21 * time.Second)

	_, err = h.g.Execute(h.ctx, rcalls, rdigest, B.Address())
	require.NoError(t, err)

	require.Equal(t, []address.Address{A.Address(), B.Address()}, h.g.ListTimelocks())
}

func TestApplyCallOutsideExecution(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A := h.locks[0]

	call := types.Call{To: h.self, Value: abi.NewTokenAmount(0), Method: types.MethodAddTimelock, Params: timelockParams(t, tladdr(t, 102))}

	// a forged grant does not match any open execution
	err := h.g.ApplyCall(h.ctx, call, types.ExecGrant{Op: h.op, Timelock: A.Address()})
	require.ErrorAs(t, err, new(*api.ErrUnauthorized))
	require.Len(t, h.g.ListTimelocks(), 2)
}

func TestUnknownGovernorMethodAbortsExecution(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]

	calls := []types.Call{{To: h.self, Value: abi.NewTokenAmount(0), Method: 99, Params: nil}}
	digest := types.HashDescription("call a method the governor does not have")

	prop, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	h.voting.setState(prop, types.StateSucceeded)

	_, err = h.g.Queue(h.ctx, calls, digest, A.Address())
	require.NoError(t, err)

	h.clock.Add(11 * time.Second)

	_, err = h.g.Execute(h.ctx, calls, digest, A.Address())
	require.Error(t, err)
	require.True(t, api.ErrorIsIn(err, []error{&api.ErrUnauthorized{}}))

	// the batch did not land; the operation is still pending
	st, err := h.g.Status(h.ctx, prop, A.Address())
	require.NoError(t, err)
	require.Equal(t, types.StateQueued, st)
}

func TestUndefTimelockSelector(t *testing.T) {
	t.Run("ambiguous with two registered", func(t *testing.T) {
		h := newHarness(t, 10*time.Second, 20*time.Second)
		h.voting.setState(h.prop, types.StateSucceeded)

		_, err := h.g.Queue(h.ctx, h.calls, h.digest, address.Undef)
		require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))
	})

	t.Run("resolves to the sole timelock", func(t *testing.T) {
		h := newHarness(t, 10*time.Second)
		A := h.locks[0]
		h.voting.setState(h.prop, types.StateSucceeded)

		_, err := h.g.Queue(h.ctx, h.calls, h.digest, address.Undef)
		require.NoError(t, err)

		require.Equal(t, types.StateQueued, h.status(t, A.Address()))
	})
}

func TestSubscribeEvents(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	A := h.locks[0]
	h.voting.setState(h.prop, types.StateSucceeded)

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()
	events := h.g.SubscribeEvents(ctx)

	start := h.clock.Now().Unix()

	_, err := h.g.Queue(h.ctx, h.calls, h.digest, address.Undef)
	require.NoError(t, err)

	select {
	case evt := <-events:
		require.Equal(t, api.GovEvtQueued, evt.Type)
		require.Equal(t, h.prop, evt.Proposal)
		require.Equal(t, h.op, evt.Op)
		require.Equal(t, A.Address(), evt.Timelock)
		require.Equal(t, start+10, evt.Eta)
	case <-time.After(5 * time.Second):
		t.Fatal("no queued event")
	}
}

func TestListQueued(t *testing.T) {
	h := newHarness(t, 10*time.Second, 20*time.Second)
	A, B := h.locks[0], h.locks[1]
	h.voting.setState(h.prop, types.StateSucceeded)

	entries, err := h.g.ListQueued(h.ctx, A.Address())
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = h.g.Queue(h.ctx, h.calls, h.digest, A.Address())
	require.NoError(t, err)

	// a second proposal on the same timelock
	calls := []types.Call{{To: tladdr(t, 1002), Value: abi.NewTokenAmount(7), Method: 5, Params: nil}}
	digest := types.HashDescription("fund the audit")

	prop, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	h.voting.setState(prop, types.StateSucceeded)

	_, err = h.g.Queue(h.ctx, calls, digest, A.Address())
	require.NoError(t, err)

	entries, err = h.g.ListQueued(h.ctx, A.Address())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byProp := map[cid.Cid]cid.Cid{}
	for _, e := range entries {
		byProp[e.Proposal] = e.Op
	}
	require.Equal(t, h.op, byProp[h.prop])
	require.Contains(t, byProp, prop)

	entries, err = h.g.ListQueued(h.ctx, B.Address())
	require.NoError(t, err)
	require.Empty(t, entries)
}
