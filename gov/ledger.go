package gov

import (
	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-statestore"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/gov/types"
)

// Ledger records which timelock-side operation each proposal was queued
// under, keyed by (timelock, proposal). Entries are created by queue and
// cleared by cancel; execution never touches them, done-ness is derived by
// querying the timelock instead.
type Ledger struct {
	ds datastore.Batching
}

func NewLedger(ds datastore.Batching) *Ledger {
	return &Ledger{ds: namespace.Wrap(ds, datastore.NewKey("/gov/ledger"))}
}

func (l *Ledger) stateFor(tl address.Address) *statestore.StateStore {
	return statestore.New(namespace.Wrap(l.ds, datastore.NewKey(tl.String())))
}

// Put records op as the scheduled operation for proposal on tl. Existing
// entries are never overwritten.
func (l *Ledger) Put(tl address.Address, proposal, op cid.Cid) error {
	err := l.stateFor(tl).Begin(proposal, &types.LedgerEntry{Proposal: proposal, Op: op})
	if err != nil {
		return xerrors.Errorf("recording operation for proposal %s on %s: %w", proposal, tl, err)
	}
	return nil
}

// Get returns the operation id proposal was queued under on tl, and whether
// such an entry exists at all.
func (l *Ledger) Get(tl address.Address, proposal cid.Cid) (cid.Cid, bool, error) {
	st := l.stateFor(tl)

	has, err := st.Has(proposal)
	if err != nil {
		return cid.Undef, false, xerrors.Errorf("checking ledger for proposal %s on %s: %w", proposal, tl, err)
	}
	if !has {
		return cid.Undef, false, nil
	}

	var entry types.LedgerEntry
	if err := st.Get(proposal).Get(&entry); err != nil {
		return cid.Undef, false, xerrors.Errorf("loading ledger entry for proposal %s on %s: %w", proposal, tl, err)
	}
	return entry.Op, true, nil
}

// Clear removes the entry for (tl, proposal). Clearing an entry that does
// not exist is an error; callers check Get first.
func (l *Ledger) Clear(tl address.Address, proposal cid.Cid) error {
	if err := l.stateFor(tl).Get(proposal).End(); err != nil {
		return xerrors.Errorf("clearing ledger entry for proposal %s on %s: %w", proposal, tl, err)
	}
	return nil
}

// Entries lists every (proposal, operation) pair recorded for tl, including
// pairs whose timelock has since been removed from the registry.
func (l *Ledger) Entries(tl address.Address) ([]types.LedgerEntry, error) {
	var entries []types.LedgerEntry
	if err := l.stateFor(tl).List(&entries); err != nil {
		return nil, xerrors.Errorf("listing ledger entries for %s: %w", tl, err)
	}
	return entries, nil
}
