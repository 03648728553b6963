package main

import (
	"github.com/mitchellh/go-homedir"
	"github.com/multiformats/go-multiaddr"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/build"
	lcli "github.com/govexec/govexec/cli"
	"github.com/govexec/govexec/metrics"
	"github.com/govexec/govexec/node"
	"github.com/govexec/govexec/node/modules/dtypes"
	"github.com/govexec/govexec/node/repo"
)

var daemonCmd = &cli.Command{
	Name:  "daemon",
	Usage: "Start a govexec daemon process",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "api",
			Usage: "override the API listen address from config",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "specify path of config file to use",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, _ := tag.New(lcli.DaemonContext(cctx),
			tag.Insert(metrics.Version, build.BuildVersion),
			tag.Insert(metrics.Commit, build.CurrentCommit),
			tag.Insert(metrics.NodeType, "gov"),
		)

		// Register all metric views
		if err := view.Register(
			metrics.DefaultViews...,
		); err != nil {
			log.Fatalf("Cannot register the view: %v", err)
		}

		// Set the metric to one so it is published to the exporter
		stats.Record(ctx, metrics.Info.M(1))

		expanded, err := homedir.Expand(cctx.String("repo"))
		if err != nil {
			return xerrors.Errorf("expanding repo path: %w", err)
		}

		r, err := repo.NewFS(expanded)
		if err != nil {
			return xerrors.Errorf("opening fs repo: %w", err)
		}

		if cctx.String("config") != "" {
			r.SetConfigPath(cctx.String("config"))
		}

		if err := r.Init(); err != nil && err != repo.ErrRepoExists {
			return xerrors.Errorf("repo init error: %w", err)
		}

		shutdownChan := make(chan struct{})

		var govapi api.Gov
		stop, err := node.New(ctx,
			node.GovAPI(&govapi),

			node.Override(new(dtypes.ShutdownChan), shutdownChan),

			node.Repo(r),

			node.ApplyIf(func(s *node.Settings) bool { return cctx.IsSet("api") },
				node.Override(node.SetApiEndpointKey, func(lr repo.LockedRepo) error {
					apima, err := multiaddr.NewMultiaddr(cctx.String("api"))
					if err != nil {
						return err
					}
					return lr.SetAPIEndpoint(apima)
				})),
		)
		if err != nil {
			return xerrors.Errorf("initializing node: %w", err)
		}

		endpoint, err := r.APIEndpoint()
		if err != nil {
			return xerrors.Errorf("getting api endpoint: %w", err)
		}

		return serveRPC(govapi, stop, endpoint, shutdownChan)
	},
}
