package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/filecoin-project/go-address"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var timelockCmd = &cli.Command{
	Name:  "timelock",
	Usage: "Inspect the timelock registry",
	Subcommands: []*cli.Command{
		timelockListCmd,
		timelockQueuedCmd,
	},
}

var timelockListCmd = &cli.Command{
	Name:  "list",
	Usage: "List registered timelocks in registration order",
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		locks, err := napi.GovListTimelocks(ctx)
		if err != nil {
			return err
		}

		for _, tl := range locks {
			fmt.Println(tl)
		}
		return nil
	},
}

var timelockQueuedCmd = &cli.Command{
	Name:      "queued",
	Usage:     "List the proposals queued on a timelock",
	ArgsUsage: "[timelockAddress]",
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		tl := address.Undef
		if cctx.Args().Present() {
			tl, err = address.NewFromString(cctx.Args().First())
			if err != nil {
				return xerrors.Errorf("parsing timelock address: %w", err)
			}
		}

		entries, err := napi.GovListQueued(ctx, tl)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 8, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Proposal\tOperation\n")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Proposal, e.Op)
		}
		return w.Flush()
	},
}
