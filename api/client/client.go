package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/voting"
)

// NewGovRPC creates a new http jsonrpc client against a govexec daemon.
func NewGovRPC(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (api.Gov, jsonrpc.ClientCloser, error) {
	var res api.GovStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "GovExec",
		api.GetInternalStructs(&res),
		requestHeader,
		append([]jsonrpc.Option{jsonrpc.WithErrors(api.RPCErrors)}, opts...)...,
	)

	return &res, closer, err
}

// NewTimelockRPC creates a new http jsonrpc client against a timelock
// service. The returned handle satisfies timelock.Timelock.
func NewTimelockRPC(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (timelock.Timelock, jsonrpc.ClientCloser, error) {
	var res api.TimelockStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "GovExec",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		opts...,
	)

	return &res, closer, err
}

// NewVotingRPC creates a new http jsonrpc client against the voting core.
func NewVotingRPC(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (voting.Core, jsonrpc.ClientCloser, error) {
	var res api.VotingStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "GovExec",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
		opts...,
	)

	return &res, closer, err
}
