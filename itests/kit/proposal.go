package kit

import (
	"bytes"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/gov/types"
)

// TestProposal is a ready-made call batch with its derived ids.
type TestProposal struct {
	Calls  []types.Call
	Digest []byte
	Prop   cid.Cid
	Op     cid.Cid
}

// MakeProposal builds a one-call batch targeting the given actor id, with the
// description folded into the digest.
func MakeProposal(t *testing.T, target uint64, desc string) TestProposal {
	t.Helper()

	addr, err := address.NewIDAddress(target)
	require.NoError(t, err)

	calls := []types.Call{{
		To:     addr,
		Value:  abi.NewTokenAmount(0),
		Method: 4,
		Params: []byte{0xca, 0xfe},
	}}
	return fromCalls(t, calls, desc)
}

// MakeRegistryProposal builds a one-call batch targeting the governor itself,
// carrying an add or remove registry mutation for tl.
func MakeRegistryProposal(t *testing.T, self address.Address, method abi.MethodNum, tl address.Address, desc string) TestProposal {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, (&types.TimelockParams{Timelock: tl}).MarshalCBOR(&buf))

	calls := []types.Call{{
		To:     self,
		Value:  abi.NewTokenAmount(0),
		Method: method,
		Params: buf.Bytes(),
	}}
	return fromCalls(t, calls, desc)
}

func fromCalls(t *testing.T, calls []types.Call, desc string) TestProposal {
	t.Helper()

	digest := types.HashDescription(desc)

	prop, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	op, err := types.OperationCid(calls, 0, digest)
	require.NoError(t, err)

	return TestProposal{Calls: calls, Digest: digest, Prop: prop, Op: op}
}
