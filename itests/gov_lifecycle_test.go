package itests

import (
	"context"
	"testing"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/itests/kit"
)

// readGovEvent waits for the next event on the subscription, failing the
// test if none arrives in time.
func readGovEvent(t *testing.T, events <-chan api.GovEvent) api.GovEvent {
	t.Helper()

	select {
	case evt, ok := <-events:
		require.True(t, ok, "event subscription closed")
		return evt
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a governance event")
		return api.GovEvent{}
	}
}

// TestGovLifecycle walks one proposal through queue, execute and cancel over
// a real jsonrpc connection, against two timelocks with different delays.
func TestGovLifecycle(t *testing.T) {
	kit.QuietLogs()

	n := kit.NewNode(t,
		kit.ThroughRPC(),
		kit.WithTimelock(100, 10*time.Second),
		kit.WithTimelock(101, 20*time.Second),
	)
	ctx := context.Background()

	fast, slow := n.Locks[0].Address(), n.Locks[1].Address()

	locks, err := n.GovListTimelocks(ctx)
	require.NoError(t, err)
	require.Equal(t, []address.Address{fast, slow}, locks)

	p := kit.MakeProposal(t, 1001, "rotate the fee collector")

	// the voting core owns the early lifecycle
	n.Voting.SetState(p.Prop, types.StatePending)

	state, err := n.GovStatus(ctx, p.Prop, fast)
	require.NoError(t, err)
	require.Equal(t, types.StatePending, state)

	// not succeeded, not queueable
	_, err = n.GovQueue(ctx, p.Calls, p.Digest, fast)
	require.ErrorAs(t, err, new(*api.ErrNotReady))

	n.Voting.SetState(p.Prop, types.StateSucceeded)

	events, err := n.GovSubscribe(ctx)
	require.NoError(t, err)

	start := n.Clock.Now().Unix()

	prop, err := n.GovQueue(ctx, p.Calls, p.Digest, fast)
	require.NoError(t, err)
	require.Equal(t, p.Prop, prop)

	_, err = n.GovQueue(ctx, p.Calls, p.Digest, slow)
	require.NoError(t, err)

	evt := readGovEvent(t, events)
	require.Equal(t, api.GovEvent{Type: api.GovEvtQueued, Timelock: fast, Proposal: p.Prop, Op: p.Op, Eta: start + 10}, evt)

	evt = readGovEvent(t, events)
	require.Equal(t, api.GovEvent{Type: api.GovEvtQueued, Timelock: slow, Proposal: p.Prop, Op: p.Op, Eta: start + 20}, evt)

	// each timelock enforces its own delay
	eta, err := n.GovEta(ctx, p.Prop, fast)
	require.NoError(t, err)
	require.Equal(t, start+10, eta)

	eta, err = n.GovEta(ctx, p.Prop, slow)
	require.NoError(t, err)
	require.Equal(t, start+20, eta)

	for _, tl := range []address.Address{fast, slow} {
		state, err := n.GovStatus(ctx, p.Prop, tl)
		require.NoError(t, err)
		require.Equal(t, types.StateQueued, state)
	}

	// a queued proposal cannot be queued again
	_, err = n.GovQueue(ctx, p.Calls, p.Digest, fast)
	require.ErrorAs(t, err, new(*api.ErrNotReady))

	// and cannot run before its delay has passed
	_, err = n.GovExecute(ctx, p.Calls, p.Digest, fast)
	require.ErrorContains(t, err, "not ready")

	n.Clock.Add(10 * time.Second)

	prop, err = n.GovExecute(ctx, p.Calls, p.Digest, fast)
	require.NoError(t, err)
	require.Equal(t, p.Prop, prop)

	state, err = n.GovStatus(ctx, p.Prop, fast)
	require.NoError(t, err)
	require.Equal(t, types.StateExecuted, state)

	// the slow timelock keeps its own schedule
	state, err = n.GovStatus(ctx, p.Prop, slow)
	require.NoError(t, err)
	require.Equal(t, types.StateQueued, state)

	// executed operations no longer report an eta
	eta, err = n.GovEta(ctx, p.Prop, fast)
	require.NoError(t, err)
	require.Zero(t, eta)

	// the batch reached one backend and one backend only
	require.Len(t, n.Locks[0].Applied, 1)
	require.Equal(t, p.Calls[0].To, n.Locks[0].Applied[0].To)
	require.Equal(t, p.Calls[0].Params, n.Locks[0].Applied[0].Params)
	require.Empty(t, n.Locks[1].Applied)

	// executed operations do not run twice
	_, err = n.GovExecute(ctx, p.Calls, p.Digest, fast)
	require.ErrorContains(t, err, "already executed")

	// cancel unwinds the slow timelock and flips the core verdict
	prop, err = n.GovCancel(ctx, p.Calls, p.Digest, slow)
	require.NoError(t, err)
	require.Equal(t, p.Prop, prop)

	state, err = n.GovStatus(ctx, p.Prop, slow)
	require.NoError(t, err)
	require.Equal(t, types.StateCanceled, state)

	eta, err = n.GovEta(ctx, p.Prop, slow)
	require.NoError(t, err)
	require.Zero(t, eta)

	queued, err := n.GovListQueued(ctx, slow)
	require.NoError(t, err)
	require.Empty(t, queued)

	// the core verdict shadows the fast timelock's history as well
	state, err = n.GovStatus(ctx, p.Prop, fast)
	require.NoError(t, err)
	require.Equal(t, types.StateCanceled, state)

	// but the executed entry stays in its ledger
	queued, err = n.GovListQueued(ctx, fast)
	require.NoError(t, err)
	require.Equal(t, []api.QueuedEntry{{Proposal: p.Prop, Op: p.Op}}, queued)
}

// TestGovSoleTimelock exercises the address.Undef selector against a registry
// holding exactly one timelock.
func TestGovSoleTimelock(t *testing.T) {
	kit.QuietLogs()

	n := kit.NewNode(t, kit.ThroughRPC())
	ctx := context.Background()

	p := kit.MakeProposal(t, 1002, "fund the operations multisig")
	n.Voting.SetState(p.Prop, types.StateSucceeded)

	prop, err := n.GovQueue(ctx, p.Calls, p.Digest, address.Undef)
	require.NoError(t, err)
	require.Equal(t, p.Prop, prop)

	state, err := n.GovStatus(ctx, p.Prop, address.Undef)
	require.NoError(t, err)
	require.Equal(t, types.StateQueued, state)

	queued, err := n.GovListQueued(ctx, address.Undef)
	require.NoError(t, err)
	require.Equal(t, []api.QueuedEntry{{Proposal: p.Prop, Op: p.Op}}, queued)

	n.Clock.Add(10 * time.Second)

	_, err = n.GovExecute(ctx, p.Calls, p.Digest, address.Undef)
	require.NoError(t, err)

	state, err = n.GovStatus(ctx, p.Prop, address.Undef)
	require.NoError(t, err)
	require.Equal(t, types.StateExecuted, state)
}

// TestGovSoleTimelockAmbiguous pins down that address.Undef refuses to pick
// among several registered timelocks.
func TestGovSoleTimelockAmbiguous(t *testing.T) {
	kit.QuietLogs()

	n := kit.NewNode(t,
		kit.ThroughRPC(),
		kit.WithTimelock(100, 10*time.Second),
		kit.WithTimelock(101, 10*time.Second),
	)
	ctx := context.Background()

	p := kit.MakeProposal(t, 1003, "raise the quorum")
	n.Voting.SetState(p.Prop, types.StateSucceeded)

	_, err := n.GovQueue(ctx, p.Calls, p.Digest, address.Undef)
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))

	_, err = n.GovStatus(ctx, p.Prop, address.Undef)
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))

	_, err = n.GovEta(ctx, p.Prop, address.Undef)
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))

	_, err = n.GovListQueued(ctx, address.Undef)
	require.ErrorAs(t, err, new(*api.ErrTimelockNotFound))
}
