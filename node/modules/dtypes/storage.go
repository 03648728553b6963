package dtypes

import (
	"github.com/ipfs/go-datastore"
)

// MetadataDS stores the registry, the ledger and whatever other metadata the
// node keeps.
type MetadataDS datastore.Batching
