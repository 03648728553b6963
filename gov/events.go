package gov

import (
	"context"
	"sync"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"

	"github.com/govexec/govexec/api"
)

// govTopic is the pubsub topic governor events are published on.
const govTopic = "gov"

const (
	evtTypeTimelockAdded = iota
	evtTypeTimelockRemoved
	evtTypeQueued
)

// TimelockEvt is the journal payload for timelock-added and timelock-removed.
type TimelockEvt struct {
	Timelock address.Address
}

// QueuedEvt is the journal payload for queued.
type QueuedEvt struct {
	Proposal cid.Cid
	Timelock address.Address
	Op       cid.Cid
	Eta      int64
}

// SubscribeEvents returns a channel carrying governor events as they happen.
// The channel closes when ctx is done. Slow consumers delay event delivery
// for everyone subscribed; drain promptly.
func (g *Governor) SubscribeEvents(ctx context.Context) <-chan api.GovEvent {
	subch := g.bells.Sub(govTopic)
	out := make(chan api.GovEvent, 16)

	go func() {
		defer close(out)
		var unsubOnce sync.Once

		for {
			select {
			case val, ok := <-subch:
				if !ok {
					log.Warn("gov event sub exit loop")
					return
				}
				if len(out) > 0 {
					log.Warnf("gov event sub is slow, has %d buffered entries", len(out))
				}
				select {
				case out <- val.(api.GovEvent):
				case <-ctx.Done():
				}
			case <-ctx.Done():
				unsubOnce.Do(func() {
					go g.bells.Unsub(subch)
				})
			}
		}
	}()

	return out
}
