package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov/types"
)

func writeProposalFile(t *testing.T, spec api.ProposalSpec) string {
	b, err := json.Marshal(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "proposal.json")
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

func TestLoadProposal(t *testing.T) {
	target, err := address.NewIDAddress(101)
	require.NoError(t, err)

	spec := api.ProposalSpec{
		Calls: []types.Call{{
			To:     target,
			Value:  big.Zero(),
			Method: 5,
			Params: []byte{0x01, 0x02},
		}},
		Description: "upgrade the thing",
	}

	calls, digest, err := loadProposal(writeProposalFile(t, spec))
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, types.HashDescription("upgrade the thing"), digest)

	// the file must round-trip to the same proposal id
	want, err := types.ProposalCid(spec.Calls, types.HashDescription(spec.Description))
	require.NoError(t, err)
	got, err := types.ProposalCid(calls, digest)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadProposalExplicitDigest(t *testing.T) {
	target, err := address.NewIDAddress(101)
	require.NoError(t, err)

	digest := types.HashDescription("precomputed elsewhere")
	spec := api.ProposalSpec{
		Calls:      []types.Call{{To: target, Value: big.Zero(), Method: 2}},
		DescDigest: digest,
	}

	_, got, err := loadProposal(writeProposalFile(t, spec))
	require.NoError(t, err)
	assert.Equal(t, digest, got)
}

func TestLoadProposalNoCalls(t *testing.T) {
	path := writeProposalFile(t, api.ProposalSpec{Description: "no calls"})
	_, _, err := loadProposal(path)
	require.Error(t, err)
}
