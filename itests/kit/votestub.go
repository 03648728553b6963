package kit

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/voting"
)

// VotingStub is a scripted voting core. Tests drive proposal states by hand
// with SetState; canceling through the governor flips the proposal to
// Canceled like a real core would.
type VotingStub struct {
	lk     sync.Mutex
	states map[cid.Cid]types.ProposalState
}

var _ voting.Core = (*VotingStub)(nil)

func NewVotingStub() *VotingStub {
	return &VotingStub{states: map[cid.Cid]types.ProposalState{}}
}

func (s *VotingStub) SetState(p cid.Cid, state types.ProposalState) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.states[p] = state
}

func (s *VotingStub) ProposalStatus(ctx context.Context, p cid.Cid) (types.ProposalState, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	state, ok := s.states[p]
	if !ok {
		return 0, xerrors.Errorf("unknown proposal %s", p)
	}
	return state, nil
}

func (s *VotingStub) CancelProposal(ctx context.Context, calls []types.Call, descDigest []byte) (cid.Cid, error) {
	p, err := types.ProposalCid(calls, descDigest)
	if err != nil {
		return cid.Undef, err
	}

	s.lk.Lock()
	defer s.lk.Unlock()

	s.states[p] = types.StateCanceled
	return p, nil
}
