package timelock

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/gov/types"
)

// DoneTimestamp is the sentinel timestamp a timelock reports for an
// operation that has been executed. A zero timestamp means the timelock has
// never seen the operation.
const DoneTimestamp = int64(1)

// Timelock is a delay-enforcing execution service. Operations are batches
// identified by content: the id derived by HashOperationBatch must agree
// with types.OperationCid for the same inputs, or the governor's ledger and
// the timelock's books will disagree about what is scheduled.
type Timelock interface {
	// MinDelay reports the timelock's current minimum enforced delay.
	MinDelay(ctx context.Context) (time.Duration, error)

	// ScheduleBatch registers the batch for execution no earlier than
	// delay from now. Scheduling an already-tracked operation is an error.
	ScheduleBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte, delay time.Duration) error

	// ExecuteBatch applies a due batch. The batch executes as a unit;
	// governor-targeted calls are delivered back through a CallSink with
	// the execution grant attached.
	ExecuteBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) error

	// CancelOperation withdraws a pending operation.
	CancelOperation(ctx context.Context, op cid.Cid) error

	// OperationPending reports whether the operation is scheduled and not
	// yet executed (due or not).
	OperationPending(ctx context.Context, op cid.Cid) (bool, error)

	// OperationDone reports whether the operation has been executed.
	OperationDone(ctx context.Context, op cid.Cid) (bool, error)

	// OperationTimestamp reports when the operation becomes executable,
	// DoneTimestamp once it has executed, or zero if it is unknown.
	OperationTimestamp(ctx context.Context, op cid.Cid) (int64, error)

	// HashOperationBatch derives the operation id for a batch.
	HashOperationBatch(ctx context.Context, calls []types.Call, salt uint64, descDigest []byte) (cid.Cid, error)
}

// CallSink receives single calls delivered out of an executing batch. The
// governor registers itself as the sink for its own address so that
// registry mutations can only arrive through a running execution.
type CallSink interface {
	ApplyCall(ctx context.Context, call types.Call, grant types.ExecGrant) error
}
