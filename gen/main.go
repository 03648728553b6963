package main

import (
	"fmt"
	"os"

	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/govexec/govexec/gov/types"
)

func main() {
	err := gen.WriteTupleEncodersToFile("./gov/types/cbor_gen.go", "types",
		types.Call{},
		types.ProposalSeed{},
		types.OperationSeed{},
		types.TimelockParams{},
		types.RegistryState{},
		types.LedgerEntry{},
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
