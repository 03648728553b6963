package node

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/gov"
	"github.com/govexec/govexec/journal"
	"github.com/govexec/govexec/node/config"
	"github.com/govexec/govexec/node/impl"
	"github.com/govexec/govexec/node/modules"
	"github.com/govexec/govexec/node/modules/dtypes"
	"github.com/govexec/govexec/node/modules/helpers"
	"github.com/govexec/govexec/node/repo"
	"github.com/govexec/govexec/voting"
)

//nolint:deadcode,varcheck
var log = logging.Logger("builder")

type invoke int

// Invokes are called in the order they are defined.
//nolint:golint
const (
	// InitJournalKey at position 0 initializes the journal global var as soon
	// as the system starts, so that it's available for all other components.
	InitJournalKey = invoke(iota)

	// gov
	RouteBundledCallsKey

	// daemon
	ExtractApiKey

	SetApiEndpointKey

	_nInvokes // keep this last
)

type Settings struct {
	// modules is a map of constructors for DI
	//
	// In most cases the index will be a reflect. Type of element returned by
	// the constructor, but for some 'constructors' it's hard to specify what's
	// the return type should be (or the constructor returns fx group)
	modules map[interface{}]fx.Option

	// invokes are separate from modules as they can't be referenced by return
	// type, and must be applied in correct order
	invokes []fx.Option

	Config bool // Config option applied
}

func defaults() []Option {
	return []Option{
		// global system journal.
		Override(new(journal.DisabledEvents), journal.EnvDisabledEvents),
		Override(new(journal.Journal), modules.OpenFilesystemJournal),
		Override(InitJournalKey, func(jrnl journal.Journal) {
			journal.J = jrnl // eagerly sets the global journal through fx.Invoke.
		}),

		Override(new(helpers.MetricsCtx), context.Background),

		Override(new(dtypes.ShutdownChan), make(chan struct{})),
	}
}

// ConfigCommon applies the parts of the config every node carries: the API
// endpoint and the journal event filter.
func ConfigCommon(cfg *config.GovNode) Option {
	return Options(
		func(s *Settings) error { s.Config = true; return nil },
		Override(new(dtypes.APIEndpoint), func() (dtypes.APIEndpoint, error) {
			return multiaddr.NewMultiaddr(cfg.API.ListenAddress)
		}),
		Override(SetApiEndpointKey, func(lr repo.LockedRepo, e dtypes.APIEndpoint) error {
			return lr.SetAPIEndpoint(e)
		}),
		If(cfg.Journal.DisabledEvents != "",
			Override(new(journal.DisabledEvents), func() (journal.DisabledEvents, error) {
				return journal.ParseDisabledEvents(cfg.Journal.DisabledEvents)
			}),
		),
	)
}

// ConfigGovNode sets up the governance executor services from the repo
// config.
func ConfigGovNode(c interface{}) Option {
	cfg, ok := c.(*config.GovNode)
	if !ok {
		return Error(xerrors.Errorf("invalid config from repo, got: %T", c))
	}

	return Options(
		ConfigCommon(cfg),

		Override(new(voting.Core), modules.VotingClient(cfg.Voting)),
		Override(new(gov.TimelockResolver), modules.TimelockClients(cfg.Timelocks)),
		Override(new(*gov.Governor), modules.Governor(cfg.Governor)),
		Override(RouteBundledCallsKey, modules.RouteBundledCalls),
	)
}

// GovAPI extracts the full node API out of the DI container once the graph
// is built.
func GovAPI(out *api.Gov) Option {
	return func(s *Settings) error {
		resAPI := &impl.GovAPI{}
		s.invokes[ExtractApiKey] = fx.Populate(resAPI)
		*out = resAPI
		return nil
	}
}

func Repo(r repo.Repo) Option {
	return func(settings *Settings) error {
		lr, err := r.Lock()
		if err != nil {
			return err
		}
		c, err := lr.Config()
		if err != nil {
			return err
		}

		return Options(
			Override(new(repo.LockedRepo), modules.LockedRepo(lr)), // module handles closing

			Override(new(dtypes.MetadataDS), modules.Datastore),
			Override(new(repo.KeyStore), modules.KeyStore),
			Override(new(*dtypes.APIAlg), modules.APISecret),

			ConfigGovNode(c),
		)(settings)
	}
}

type StopFunc func(context.Context) error

// New builds and starts a new govexec node
func New(ctx context.Context, opts ...Option) (StopFunc, error) {
	settings := Settings{
		modules: map[interface{}]fx.Option{},
		invokes: make([]fx.Option, _nInvokes),
	}

	// apply module options in the right order
	if err := Options(Options(defaults()...), Options(opts...))(&settings); err != nil {
		return nil, xerrors.Errorf("applying node options failed: %w", err)
	}

	// gather constructors for fx.Options
	ctors := make([]fx.Option, 0, len(settings.modules))
	for _, opt := range settings.modules {
		ctors = append(ctors, opt)
	}

	// fill holes in invokes for use in fx.Options
	for i, opt := range settings.invokes {
		if opt == nil {
			settings.invokes[i] = fx.Options()
		}
	}

	app := fx.New(
		fx.Options(ctors...),
		fx.Options(settings.invokes...),

		fx.NopLogger,
	)

	// TODO: we probably should have a 'firewall' for Closing signal
	//  on this context, and implement closing logic through lifecycles
	//  correctly
	if err := app.Start(ctx); err != nil {
		// comment fx.NopLogger few lines above for easier debugging
		return nil, xerrors.Errorf("starting node: %w", err)
	}

	return app.Stop, nil
}
