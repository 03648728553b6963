package modules

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-jsonrpc"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api/client"
	cliutil "github.com/govexec/govexec/cli/util"
	"github.com/govexec/govexec/gov"
	"github.com/govexec/govexec/journal"
	"github.com/govexec/govexec/node/config"
	"github.com/govexec/govexec/node/modules/dtypes"
	"github.com/govexec/govexec/node/modules/helpers"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/timelock/mocklock"
	"github.com/govexec/govexec/voting"
)

func authHeader(token string) http.Header {
	headers := http.Header{}
	if token != "" {
		headers.Add("Authorization", "Bearer "+token)
	}
	return headers
}

// VotingClient dials the configured voting core.
func VotingClient(cfg config.Voting) func(lc fx.Lifecycle, mctx helpers.MetricsCtx) (voting.Core, error) {
	return func(lc fx.Lifecycle, mctx helpers.MetricsCtx) (voting.Core, error) {
		if cfg.Endpoint == "" {
			return nil, xerrors.New("no voting core endpoint configured")
		}

		addr, err := cliutil.APIInfo{Addr: cfg.Endpoint}.DialArgs("v0")
		if err != nil {
			return nil, xerrors.Errorf("voting core dial args: %w", err)
		}

		core, closer, err := client.NewVotingRPC(helpers.LifecycleCtx(mctx, lc), addr, authHeader(cfg.Token))
		if err != nil {
			return nil, xerrors.Errorf("dialing voting core: %w", err)
		}

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				closer()
				return nil
			},
		})

		return core, nil
	}
}

type timelockResolver struct {
	ctx context.Context

	lk      sync.Mutex
	infos   map[address.Address]config.Timelock
	clients map[address.Address]timelock.Timelock
	bundled []*mocklock.Timelock
	closers []jsonrpc.ClientCloser
}

var _ gov.TimelockResolver = (*timelockResolver)(nil)

// Resolve returns a client for the given timelock, dialing its configured
// endpoint on first use.
func (r *timelockResolver) Resolve(ctx context.Context, tl address.Address) (timelock.Timelock, error) {
	r.lk.Lock()
	defer r.lk.Unlock()

	if cl, ok := r.clients[tl]; ok {
		return cl, nil
	}

	cfg, ok := r.infos[tl]
	if !ok {
		return nil, xerrors.Errorf("no endpoint configured for timelock %s", tl)
	}

	addr, err := cliutil.APIInfo{Addr: cfg.Endpoint}.DialArgs("v0")
	if err != nil {
		return nil, xerrors.Errorf("timelock %s dial args: %w", tl, err)
	}

	cl, closer, err := client.NewTimelockRPC(r.ctx, addr, authHeader(cfg.Token))
	if err != nil {
		return nil, xerrors.Errorf("dialing timelock %s: %w", tl, err)
	}

	r.clients[tl] = cl
	r.closers = append(r.closers, closer)
	return cl, nil
}

func (r *timelockResolver) shutdown() {
	r.lk.Lock()
	defer r.lk.Unlock()

	for _, closer := range r.closers {
		closer()
	}
	r.closers = nil
	r.clients = nil
}

// TimelockClients builds the resolver mapping registry addresses to their
// configured endpoints. Connections are dialed on first use so one
// unreachable backend does not wedge startup. Entries marked Bundled get an
// in-memory timelock instead of a connection.
func TimelockClients(cfgs []config.Timelock) func(lc fx.Lifecycle, mctx helpers.MetricsCtx) (gov.TimelockResolver, error) {
	return func(lc fx.Lifecycle, mctx helpers.MetricsCtx) (gov.TimelockResolver, error) {
		r := &timelockResolver{
			ctx:     helpers.LifecycleCtx(mctx, lc),
			infos:   make(map[address.Address]config.Timelock, len(cfgs)),
			clients: map[address.Address]timelock.Timelock{},
		}

		for _, c := range cfgs {
			a, err := address.NewFromString(c.Address)
			if err != nil {
				return nil, xerrors.Errorf("parsing timelock address %q: %w", c.Address, err)
			}
			if _, ok := r.infos[a]; ok {
				return nil, xerrors.Errorf("duplicate endpoint for timelock %s", a)
			}
			if _, ok := r.clients[a]; ok {
				return nil, xerrors.Errorf("duplicate endpoint for timelock %s", a)
			}

			if c.Bundled {
				lock := mocklock.New(a, time.Duration(c.Delay))
				r.clients[a] = lock
				r.bundled = append(r.bundled, lock)

				log.Warnw("running bundled in-memory timelock", "timelock", a, "delay", time.Duration(c.Delay))
				continue
			}

			if c.Endpoint == "" {
				return nil, xerrors.Errorf("no endpoint for timelock %s", a)
			}
			r.infos[a] = c
		}

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				r.shutdown()
				return nil
			},
		})

		return r, nil
	}
}

// RouteBundledCalls points bundled in-memory timelocks back at the governor,
// so registry self-calls in their executing batches have somewhere to land.
func RouteBundledCalls(locks gov.TimelockResolver, g *gov.Governor) error {
	r, ok := locks.(*timelockResolver)
	if !ok {
		return nil
	}
	for _, lock := range r.bundled {
		lock.RouteCalls(g.Address(), g)
	}
	return nil
}

// Governor assembles the governance executor from the persisted registry,
// the voting core client and the timelock resolver.
func Governor(cfg config.Governor) func(lc fx.Lifecycle, mctx helpers.MetricsCtx, ds dtypes.MetadataDS, vc voting.Core, locks gov.TimelockResolver, j journal.Journal) (*gov.Governor, error) {
	return func(lc fx.Lifecycle, mctx helpers.MetricsCtx, ds dtypes.MetadataDS, vc voting.Core, locks gov.TimelockResolver, j journal.Journal) (*gov.Governor, error) {
		self, err := address.NewFromString(cfg.Self)
		if err != nil {
			return nil, xerrors.Errorf("parsing governor address %q: %w", cfg.Self, err)
		}

		initial := make([]address.Address, 0, len(cfg.InitialTimelocks))
		for _, s := range cfg.InitialTimelocks {
			a, err := address.NewFromString(s)
			if err != nil {
				return nil, xerrors.Errorf("parsing initial timelock %q: %w", s, err)
			}
			initial = append(initial, a)
		}

		return gov.NewGovernor(helpers.LifecycleCtx(mctx, lc), self, ds, vc, locks, initial, j)
	}
}
