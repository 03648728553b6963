package itests

import (
	"context"
	"net/http"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/api/client"
	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/gov/types"
	"github.com/govexec/govexec/itests/kit"
	"github.com/govexec/govexec/node"
)

func TestAPIVersion(t *testing.T) {
	kit.QuietLogs()

	n := kit.NewNode(t, kit.ThroughRPC())
	ctx := context.Background()

	v, err := n.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, build.UserVersion(), v.Version)
	require.Equal(t, build.APIVersion, v.APIVersion)

	id, err := n.Session(ctx)
	require.NoError(t, err)
	require.NotEqual(t, uuid.UUID{}, id)

	// the session id identifies one daemon process for its whole lifetime
	again, err := n.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, id, again)
}

// TestAPIPermissions drives the daemon through the permissioned handler, the
// way a deployment exposes it, and checks the jwt gating on both sides.
func TestAPIPermissions(t *testing.T) {
	kit.QuietLogs()

	n := kit.NewNode(t)
	ctx := context.Background()

	handler, err := node.GovHandler(n.Gov, true)
	require.NoError(t, err)

	srv, _ := kit.CreateRPCServer(t, handler)
	url := "ws://" + srv.Listener.Addr().String() + "/rpc/v0"

	// without a token only the read surface answers
	anon, stop, err := client.NewGovRPC(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(stop)

	_, err = anon.GovListTimelocks(ctx)
	require.NoError(t, err)

	p := kit.MakeProposal(t, 1006, "tighten the execution window")
	n.Voting.SetState(p.Prop, types.StateSucceeded)

	_, err = anon.GovQueue(ctx, p.Calls, p.Digest, address.Undef)
	require.ErrorContains(t, err, "missing permission")

	_, err = anon.AuthNew(ctx, api.AllPermissions)
	require.ErrorContains(t, err, "missing permission")

	// an admin token unlocks the write surface
	token, err := n.AuthNew(ctx, api.AllPermissions)
	require.NoError(t, err)

	headers := http.Header{}
	headers.Add("Authorization", "Bearer "+string(token))

	admin, stop, err := client.NewGovRPC(ctx, url, headers)
	require.NoError(t, err)
	t.Cleanup(stop)

	perms, err := admin.AuthVerify(ctx, string(token))
	require.NoError(t, err)
	require.Equal(t, api.AllPermissions, perms)

	prop, err := admin.GovQueue(ctx, p.Calls, p.Digest, address.Undef)
	require.NoError(t, err)
	require.Equal(t, p.Prop, prop)
}
