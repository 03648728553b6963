package cli

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	cliutil "github.com/govexec/govexec/cli/util"
)

var log = logging.Logger("cli")

// Aliases into cli/util so command code reads naturally.
var (
	GetAPIInfo    = cliutil.GetAPIInfo
	GetGovAPI     = cliutil.GetGovAPI
	ReqContext    = cliutil.ReqContext
	DaemonContext = cliutil.DaemonContext
)

var Commands = []*cli.Command{
	authCmd,
	timelockCmd,
	proposalCmd,
	eventsCmd,
	versionCmd,
}
