package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/govexec/govexec/build"
)

var versionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print version",
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		v, err := napi.Version(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Daemon: ", v.Version)
		fmt.Println("Local: ", build.UserVersion())
		return nil
	},
}
