package types

import (
	"bytes"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"
)

// ProposalSeed is the canonical hashing envelope for proposal ids.
type ProposalSeed struct {
	Calls      []Call
	DescDigest []byte
}

// OperationSeed is the canonical hashing envelope for timelock operation
// ids. Salt is carried for backends that partition their operation space;
// the governor always passes zero.
type OperationSeed struct {
	Calls      []Call
	Salt       uint64
	DescDigest []byte
}

// ProposalCid derives the content id of a proposal from its call batch and
// description digest. Derivation is pure: the same batch and digest yield
// the same id in any process at any time.
func ProposalCid(calls []Call, descDigest []byte) (cid.Cid, error) {
	seed := ProposalSeed{Calls: calls, DescDigest: descDigest}

	buf := new(bytes.Buffer)
	if err := seed.MarshalCBOR(buf); err != nil {
		return cid.Undef, xerrors.Errorf("marshaling proposal seed: %w", err)
	}

	c, err := abi.CidBuilder.Sum(buf.Bytes())
	if err != nil {
		return cid.Undef, xerrors.Errorf("hashing proposal seed: %w", err)
	}
	return c, nil
}

// OperationCid derives the operation id a timelock tracks a scheduled batch
// under. The seed encoding differs structurally from the proposal seed, so
// the two id spaces never collide for the same batch.
func OperationCid(calls []Call, salt uint64, descDigest []byte) (cid.Cid, error) {
	seed := OperationSeed{Calls: calls, Salt: salt, DescDigest: descDigest}

	buf := new(bytes.Buffer)
	if err := seed.MarshalCBOR(buf); err != nil {
		return cid.Undef, xerrors.Errorf("marshaling operation seed: %w", err)
	}

	c, err := abi.CidBuilder.Sum(buf.Bytes())
	if err != nil {
		return cid.Undef, xerrors.Errorf("hashing operation seed: %w", err)
	}
	return c, nil
}
