package main

import (
	"github.com/multiformats/go-multiaddr"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/node"
)

func serveRPC(a api.Gov, stop node.StopFunc, addr multiaddr.Multiaddr, shutdownChan chan struct{}) error {
	h, err := node.GovHandler(a, true)
	if err != nil {
		return xerrors.Errorf("failed to instantiate rpc handler: %w", err)
	}

	rpcStopper, err := node.ServeRPC(h, "govexec-daemon", addr)
	if err != nil {
		return xerrors.Errorf("failed to start json-rpc endpoint: %w", err)
	}

	log.Infof("api endpoint listening on %s", addr)

	// Monitor for shutdown.
	finishCh := node.MonitorShutdown(shutdownChan,
		node.ShutdownHandler{Component: "rpc server", StopFunc: rpcStopper},
		node.ShutdownHandler{Component: "node", StopFunc: stop},
	)
	<-finishCh // fires when shutdown is complete.

	return nil
}
