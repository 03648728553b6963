package main

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/trace"

	"github.com/govexec/govexec/build"
	lcli "github.com/govexec/govexec/cli"
	"github.com/govexec/govexec/lib/logs"
	"github.com/govexec/govexec/lib/tracing"
)

var log = logging.Logger("main")

func main() {
	logs.SetupLogLevels()

	local := []*cli.Command{
		daemonCmd,
	}

	jaeger := tracing.SetupJaegerTracing("govexec")
	defer func() {
		if jaeger != nil {
			_ = jaeger.ForceFlush(context.Background())
		}
	}()

	ctx, span := trace.StartSpan(context.Background(), "/cli")
	defer span.End()

	app := &cli.App{
		Name:                 "govexec",
		Usage:                "Governance execution daemon",
		Version:              build.UserVersion(),
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				EnvVars: []string{"GOVEXEC_PATH"},
				Hidden:  true,
				Value:   "~/.govexec", // TODO: Consider XDG_DATA_HOME
			},
		},

		Commands: append(local, lcli.Commands...),
	}

	app.Setup()
	app.Metadata["traceContext"] = ctx

	lcli.RunApp(app)
}
