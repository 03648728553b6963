package cliutil

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/api/client"
	"github.com/govexec/govexec/node/repo"
)

// EnvAPIInfo overrides the repo-derived endpoint when set, as TOKEN:ADDR or
// a bare addr.
const EnvAPIInfo = "GOVEXEC_API_INFO"

// GetAPIInfo resolves the daemon endpoint, preferring the environment over
// the on-disk repo.
func GetAPIInfo(cctx *cli.Context) (APIInfo, error) {
	if env, ok := os.LookupEnv(EnvAPIInfo); ok {
		return ParseApiInfo(strings.TrimSpace(env)), nil
	}

	p, err := homedir.Expand(cctx.String("repo"))
	if err != nil {
		return APIInfo{}, xerrors.Errorf("could not expand home dir (repo): %w", err)
	}

	r, err := repo.NewFS(p)
	if err != nil {
		return APIInfo{}, xerrors.Errorf("could not open repo at path: %s; %w", p, err)
	}

	exists, err := r.Exists()
	if err != nil {
		return APIInfo{}, xerrors.Errorf("repo.Exists returned an error: %w", err)
	}
	if !exists {
		return APIInfo{}, xerrors.New("repo directory does not exist. Make sure your configuration is correct")
	}

	ma, err := r.APIEndpoint()
	if err != nil {
		return APIInfo{}, xerrors.Errorf("could not get api endpoint: %w", err)
	}

	token, err := r.APIToken()
	if err != nil {
		log.Warnf("Couldn't load CLI token, capabilities may be limited: %v", err)
	}

	return APIInfo{
		Addr:  ma.String(),
		Token: token,
	}, nil
}

// GetGovAPI opens a jsonrpc client against the daemon the repo flag (or
// GOVEXEC_API_INFO) points at.
func GetGovAPI(cctx *cli.Context) (api.Gov, jsonrpc.ClientCloser, error) {
	ainfo, err := GetAPIInfo(cctx)
	if err != nil {
		return nil, nil, xerrors.Errorf("could not get API info: %w", err)
	}

	addr, err := ainfo.DialArgs("v0")
	if err != nil {
		return nil, nil, xerrors.Errorf("could not get DialArgs: %w", err)
	}

	return client.NewGovRPC(cctx.Context, addr, ainfo.AuthHeader())
}

const metadataTraceContext = "traceContext"

// DaemonContext returns a context for the daemon to use, which includes the
// trace context from the CLI.
func DaemonContext(cctx *cli.Context) context.Context {
	if mtCtx, ok := cctx.App.Metadata[metadataTraceContext]; ok {
		return mtCtx.(context.Context)
	}

	return context.Background()
}

// ReqContext returns context for cli execution. Calling it for the first time
// installs SIGTERM handler that will close returned context.
// Not safe for concurrent execution.
func ReqContext(cctx *cli.Context) context.Context {
	tCtx := DaemonContext(cctx)

	ctx, done := context.WithCancel(tCtx)
	sigChan := make(chan os.Signal, 2)
	go func() {
		<-sigChan
		done()
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return ctx
}
