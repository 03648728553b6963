package types

import (
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// ProposalState is the lifecycle state of a proposal as observed through the
// governor. The first six states come straight from the voting core; Queued
// and Executed are derived from timelock bookkeeping once the core reports
// Succeeded.
type ProposalState uint64

const (
	StatePending ProposalState = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExecuted
	StateExpired
)

func (ps ProposalState) String() string {
	switch ps {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCanceled:
		return "canceled"
	case StateDefeated:
		return "defeated"
	case StateSucceeded:
		return "succeeded"
	case StateQueued:
		return "queued"
	case StateExecuted:
		return "executed"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("<unknown state %d>", uint64(ps))
	}
}

func ParseProposalState(s string) (ProposalState, error) {
	for ps := StatePending; ps <= StateExpired; ps++ {
		if ps.String() == s {
			return ps, nil
		}
	}
	return 0, xerrors.Errorf("unknown proposal state %q", s)
}

func (ps ProposalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.String())
}

func (ps *ProposalState) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseProposalState(s)
	if err != nil {
		return err
	}
	*ps = parsed
	return nil
}

// Call is a single governed call: the target it is addressed to, the value
// attached to it, and the method and parameters it invokes.
type Call struct {
	To     address.Address
	Value  abi.TokenAmount
	Method abi.MethodNum
	Params []byte
}

// Methods the governor answers for when a call in an executing batch targets
// its own address. Method numbers 0 and 1 are reserved, matching the builtin
// actor convention (send / constructor).
const (
	MethodAddTimelock    = abi.MethodNum(2)
	MethodRemoveTimelock = abi.MethodNum(3)
)

// TimelockParams is the parameter payload of registry self-calls.
type TimelockParams struct {
	Timelock address.Address
}

// RegistryState is the persisted form of the timelock registry. Order is
// meaningful and survives restarts.
type RegistryState struct {
	Timelocks []address.Address
}

// LedgerEntry records the timelock-side operation a proposal was queued
// under. One entry exists per (timelock, proposal) pair that went through
// queue and has not been canceled.
type LedgerEntry struct {
	Proposal cid.Cid
	Op       cid.Cid
}

// ExecGrant identifies one in-flight batch execution. A timelock delivering
// governor-targeted calls back to the governor presents the grant alongside
// each call; the governor honors it only while the matching Execute
// invocation is still running.
type ExecGrant struct {
	Op       cid.Cid
	Timelock address.Address
}

func (g ExecGrant) String() string {
	return fmt.Sprintf("%s@%s", g.Op, g.Timelock)
}

// HashDescription digests the human-readable proposal description for use in
// proposal and operation id derivation.
func HashDescription(desc string) []byte {
	d := blake2b.Sum256([]byte(desc))
	return d[:]
}
