package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/ipfs/go-cid"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov/types"
)

func loadProposal(path string) ([]types.Call, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("reading proposal file: %w", err)
	}

	var spec api.ProposalSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, nil, xerrors.Errorf("parsing proposal file: %w", err)
	}

	if len(spec.Calls) == 0 {
		return nil, nil, xerrors.New("proposal file has no calls")
	}

	return spec.Calls, spec.Digest(), nil
}

// proposalArg resolves the first positional argument to a proposal id,
// accepting either a literal cid or a path to a proposal file.
func proposalArg(cctx *cli.Context) (cid.Cid, error) {
	if !cctx.Args().Present() {
		return cid.Undef, xerrors.New("must pass a proposal cid or file")
	}

	arg := cctx.Args().First()
	if c, err := cid.Parse(arg); err == nil {
		return c, nil
	}

	calls, digest, err := loadProposal(arg)
	if err != nil {
		return cid.Undef, err
	}
	return types.ProposalCid(calls, digest)
}

var timelockFlag = &cli.StringFlag{
	Name:  "timelock",
	Usage: "timelock to act through (defaults to the sole registered timelock)",
}

func optTimelock(cctx *cli.Context) (address.Address, error) {
	if !cctx.IsSet("timelock") {
		return address.Undef, nil
	}
	return address.NewFromString(cctx.String("timelock"))
}

var proposalCmd = &cli.Command{
	Name:  "proposal",
	Usage: "Interact with governance proposals",
	Subcommands: []*cli.Command{
		proposalIdCmd,
		proposalStatusCmd,
		proposalQueueCmd,
		proposalExecuteCmd,
		proposalCancelCmd,
	},
}

var proposalIdCmd = &cli.Command{
	Name:      "id",
	Usage:     "Derive the proposal and operation ids of a proposal file without contacting the node",
	ArgsUsage: "[proposalFile]",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return xerrors.New("must pass the proposal file")
		}

		calls, digest, err := loadProposal(cctx.Args().First())
		if err != nil {
			return err
		}

		prop, err := types.ProposalCid(calls, digest)
		if err != nil {
			return err
		}
		op, err := types.OperationCid(calls, 0, digest)
		if err != nil {
			return err
		}

		fmt.Println("Proposal: ", prop)
		fmt.Println("Operation:", op)
		return nil
	},
}

var proposalStatusCmd = &cli.Command{
	Name:      "status",
	Usage:     "Show the state of a proposal as seen through a timelock",
	ArgsUsage: "[proposalCidOrFile]",
	Flags:     []cli.Flag{timelockFlag},
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		prop, err := proposalArg(cctx)
		if err != nil {
			return err
		}

		tl, err := optTimelock(cctx)
		if err != nil {
			return err
		}

		st, err := napi.GovStatus(ctx, prop, tl)
		if err != nil {
			return err
		}

		fmt.Printf("Proposal: %s\n", prop)
		fmt.Printf("State:    %s\n", st)

		if st == types.StateQueued {
			eta, err := napi.GovEta(ctx, prop, tl)
			if err != nil {
				return err
			}
			if eta > 0 {
				fmt.Printf("Eta:      %s (%d)\n", time.Unix(eta, 0).UTC(), eta)
			}
		}
		return nil
	},
}

var proposalQueueCmd = &cli.Command{
	Name:      "queue",
	Usage:     "Queue a succeeded proposal on a timelock",
	ArgsUsage: "[proposalFile]",
	Flags:     []cli.Flag{timelockFlag},
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		if cctx.Args().Len() != 1 {
			return xerrors.New("must pass the proposal file")
		}

		calls, digest, err := loadProposal(cctx.Args().First())
		if err != nil {
			return err
		}

		tl, err := optTimelock(cctx)
		if err != nil {
			return err
		}

		prop, err := napi.GovQueue(ctx, calls, digest, tl)
		if err != nil {
			return err
		}

		fmt.Println("Queued:", prop)

		eta, err := napi.GovEta(ctx, prop, tl)
		if err != nil {
			return err
		}
		fmt.Printf("Eta:    %s (%d)\n", time.Unix(eta, 0).UTC(), eta)
		return nil
	},
}

var proposalExecuteCmd = &cli.Command{
	Name:      "execute",
	Usage:     "Execute a queued proposal once its delay has passed",
	ArgsUsage: "[proposalFile]",
	Flags:     []cli.Flag{timelockFlag},
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		if cctx.Args().Len() != 1 {
			return xerrors.New("must pass the proposal file")
		}

		calls, digest, err := loadProposal(cctx.Args().First())
		if err != nil {
			return err
		}

		tl, err := optTimelock(cctx)
		if err != nil {
			return err
		}

		prop, err := napi.GovExecute(ctx, calls, digest, tl)
		if err != nil {
			return err
		}

		fmt.Println("Executed:", prop)
		return nil
	},
}

var proposalCancelCmd = &cli.Command{
	Name:      "cancel",
	Usage:     "Cancel a proposal in the voting core and unwind its schedule on a timelock",
	ArgsUsage: "[proposalFile]",
	Flags:     []cli.Flag{timelockFlag},
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		if cctx.Args().Len() != 1 {
			return xerrors.New("must pass the proposal file")
		}

		calls, digest, err := loadProposal(cctx.Args().First())
		if err != nil {
			return err
		}

		tl, err := optTimelock(cctx)
		if err != nil {
			return err
		}

		prop, err := napi.GovCancel(ctx, calls, digest, tl)
		if err != nil {
			return err
		}

		fmt.Println("Canceled:", prop)
		return nil
	},
}
