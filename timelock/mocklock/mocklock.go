package mocklock

import (
	"context"
	"sync"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"
	"github.com/raulk/clock"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/timelock"
)

// Timelock is an in-memory delay enforcer used by tests and bundled local
// setups. It keeps the full operation book of a real timelock service:
// schedule, execute-once-due, cancel, and the pending/done/timestamp
// queries.
type Timelock struct {
	lk sync.Mutex

	addr  address.Address
	delay time.Duration
	clock clock.Clock

	ops   map[cid.Cid]*operation
	sinks map[address.Address]timelock.CallSink

	// Applied records executed calls whose target has no registered sink,
	// in execution order. Tests assert against it.
	Applied []types.Call
}

type operation struct {
	at   int64 // unix seconds at which the batch becomes executable
	done bool
}

var _ timelock.Timelock = (*Timelock)(nil)

// New creates a mock timelock with the given identity and minimum delay.
func New(addr address.Address, delay time.Duration) *Timelock {
	return &Timelock{
		addr:  addr,
		delay: delay,
		clock: build.Clock,
		ops:   make(map[cid.Cid]*operation),
		sinks: make(map[address.Address]timelock.CallSink),
	}
}

// SetClock swaps the wall clock, for tests driving time by hand.
func (tl *Timelock) SetClock(c clock.Clock) {
	tl.lk.Lock()
	defer tl.lk.Unlock()
	tl.clock = c
}

// RouteCalls delivers executing calls that target addr to the given sink.
func (tl *Timelock) RouteCalls(addr address.Address, sink timelock.CallSink) {
	tl.lk.Lock()
	defer tl.lk.Unlock()
	tl.sinks[addr] = sink
}

func (tl *Timelock) Address() address.Address {
	return tl.addr
}

func (tl *Timelock) MinDelay(ctx context.Context) (time.Duration, error) {
	tl.lk.Lock()
	defer tl.lk.Unlock()
	return tl.delay, nil
}

func (tl *Timelock) HashOperationBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) (cid.Cid, error) {
	return types.OperationCid(calls, salt, descDigest)
}

func (tl *Timelock) ScheduleBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte, delay time.Duration) error {
	op, err := types.OperationCid(calls, salt, descDigest)
	if err != nil {
		return err
	}

	tl.lk.Lock()
	defer tl.lk.Unlock()

	if delay < tl.delay {
		return xerrors.Errorf("delay %s below timelock minimum %s", delay, tl.delay)
	}
	if _, ok := tl.ops[op]; ok {
		return xerrors.Errorf("operation %s already scheduled", op)
	}

	tl.ops[op] = &operation{at: tl.clock.Now().Add(delay).Unix()}
	return nil
}

func (tl *Timelock) ExecuteBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) error {
	op, err := types.OperationCid(calls, salt, descDigest)
	if err != nil {
		return err
	}

	tl.lk.Lock()
	o, ok := tl.ops[op]
	switch {
	case !ok:
		tl.lk.Unlock()
		return xerrors.Errorf("operation %s is not scheduled", op)
	case o.done:
		tl.lk.Unlock()
		return xerrors.Errorf("operation %s already executed", op)
	case tl.clock.Now().Unix() < o.at:
		tl.lk.Unlock()
		return xerrors.Errorf("operation %s is not ready", op)
	}
	sinks := make(map[address.Address]timelock.CallSink, len(tl.sinks))
	for a, s := range tl.sinks {
		sinks[a] = s
	}
	applied := len(tl.Applied)
	tl.lk.Unlock()

	// Calls are applied outside the lock: governor-targeted calls re-enter
	// the governor, which may query this timelock in turn. Sink deliveries
	// cannot be unwound; a failing call aborts the batch without marking
	// it done.
	grant := types.ExecGrant{Op: op, Timelock: tl.addr}
	for _, call := range calls {
		sink, routed := sinks[call.To]
		if !routed {
			tl.lk.Lock()
			tl.Applied = append(tl.Applied, call)
			tl.lk.Unlock()
			continue
		}
		if err := sink.ApplyCall(ctx, call, grant); err != nil {
			tl.lk.Lock()
			tl.Applied = tl.Applied[:applied]
			tl.lk.Unlock()
			return xerrors.Errorf("applying call to %s: %w", call.To, err)
		}
	}

	tl.lk.Lock()
	o.done = true
	tl.lk.Unlock()
	return nil
}

func (tl *Timelock) CancelOperation(ctx context.Context, op cid.Cid) error {
	tl.lk.Lock()
	defer tl.lk.Unlock()

	o, ok := tl.ops[op]
	if !ok {
		return xerrors.Errorf("operation %s is not scheduled", op)
	}
	if o.done {
		return xerrors.Errorf("operation %s already executed", op)
	}

	delete(tl.ops, op)
	return nil
}

func (tl *Timelock) OperationPending(ctx context.Context, op cid.Cid) (bool, error) {
	tl.lk.Lock()
	defer tl.lk.Unlock()

	o, ok := tl.ops[op]
	return ok && !o.done, nil
}

func (tl *Timelock) OperationDone(ctx context.Context, op cid.Cid) (bool, error) {
	tl.lk.Lock()
	defer tl.lk.Unlock()

	o, ok := tl.ops[op]
	return ok && o.done, nil
}

func (tl *Timelock) OperationTimestamp(ctx context.Context, op cid.Cid) (int64, error) {
	tl.lk.Lock()
	defer tl.lk.Unlock()

	o, ok := tl.ops[op]
	if !ok {
		return 0, nil
	}
	if o.done {
		return timelock.DoneTimestamp, nil
	}
	return o.at, nil
}
