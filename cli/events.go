package cli

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
)

var eventsCmd = &cli.Command{
	Name:  "events",
	Usage: "Watch governance events",
	Subcommands: []*cli.Command{
		eventsWatchCmd,
	},
}

var eventsWatchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Stream governance events as they happen, one JSON object per line",
	Action: func(cctx *cli.Context) error {
		napi, closer, err := GetGovAPI(cctx)
		if err != nil {
			return err
		}
		defer closer()

		ctx := ReqContext(cctx)

		sub, err := napi.GovSubscribe(ctx)
		if err != nil {
			return err
		}

		for {
			select {
			case evt, ok := <-sub:
				if !ok {
					return nil
				}

				out, err := json.Marshal(evt)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			case <-ctx.Done():
				return nil
			}
		}
	},
}
