package gov

import (
	"sync"

	"github.com/govexec/govexec/gov/types"
)

// grantTable tracks the execution grants of in-flight ExecuteBatch calls. A
// grant is open from just before Execute hands the batch to the timelock
// until the call returns; registry mutations arriving through ApplyCall must
// present a currently-open grant. Grants are counted so identical nested
// executions cannot revoke each other early.
type grantTable struct {
	lk   sync.Mutex
	open map[types.ExecGrant]int
}

func newGrantTable() *grantTable {
	return &grantTable{open: map[types.ExecGrant]int{}}
}

func (gt *grantTable) add(g types.ExecGrant) {
	gt.lk.Lock()
	defer gt.lk.Unlock()

	gt.open[g]++
}

func (gt *grantTable) remove(g types.ExecGrant) {
	gt.lk.Lock()
	defer gt.lk.Unlock()

	gt.open[g]--
	if gt.open[g] <= 0 {
		delete(gt.open, g)
	}
}

func (gt *grantTable) active(g types.ExecGrant) bool {
	gt.lk.Lock()
	defer gt.lk.Unlock()

	return gt.open[g] > 0
}
