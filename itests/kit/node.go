package kit

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/api/client"
	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/gov"
	"github.com/govexec/govexec/node"
	"github.com/govexec/govexec/node/config"
	"github.com/govexec/govexec/node/impl"
	"github.com/govexec/govexec/node/repo"
	"github.com/govexec/govexec/timelock"
	"github.com/govexec/govexec/timelock/mocklock"
	"github.com/govexec/govexec/voting"
)

// TestNode is a govexec node started inside a test, together with the
// scripted voting core and the in-memory timelocks behind it.
//
// A common incantation for a test against a live jsonrpc connection is:
//
//	n := kit.NewNode(t, kit.ThroughRPC(), kit.WithTimelock(100, 10*time.Second))
type TestNode struct {
	api.Gov

	t *testing.T

	// ListenAddr is populated when the node is started with ThroughRPC; the
	// Gov handle then talks to the node over a real jsonrpc connection.
	ListenAddr multiaddr.Multiaddr

	// Self is the governor's own address, the target of registry self-calls.
	Self address.Address

	Voting *VotingStub
	Locks  []*mocklock.Timelock
	Clock  *clock.Mock
}

type timelockSpec struct {
	id    uint64
	delay time.Duration
}

type nodeOpts struct {
	rpc       bool
	self      uint64
	timelocks []timelockSpec
}

var DefaultNodeOpts = nodeOpts{
	self: 900,
}

type NodeOpt func(*nodeOpts) error

// ThroughRPC makes the returned Gov handle dial the node over jsonrpc
// instead of calling in-process.
func ThroughRPC() NodeOpt {
	return func(opts *nodeOpts) error {
		opts.rpc = true
		return nil
	}
}

// WithTimelock adds an in-memory timelock with the given actor id and
// minimum delay. Timelocks are seeded into the registry in option order.
func WithTimelock(id uint64, delay time.Duration) NodeOpt {
	return func(opts *nodeOpts) error {
		opts.timelocks = append(opts.timelocks, timelockSpec{id: id, delay: delay})
		return nil
	}
}

// WithSelf sets the governor's actor id.
func WithSelf(id uint64) NodeOpt {
	return func(opts *nodeOpts) error {
		opts.self = id
		return nil
	}
}

// NewNode starts a gov node against a memory repo. Unless WithTimelock says
// otherwise it gets a single registered timelock (id 100) with a 10s delay.
// The process clock is swapped for a mock, so tests move time by hand.
func NewNode(t *testing.T, opts ...NodeOpt) *TestNode {
	options := DefaultNodeOpts
	for _, o := range opts {
		require.NoError(t, o(&options))
	}

	if len(options.timelocks) == 0 {
		options.timelocks = []timelockSpec{{id: 100, delay: 10 * time.Second}}
	}

	mock := clock.NewMock()
	prev := build.Clock
	build.Clock = mock
	t.Cleanup(func() { build.Clock = prev })

	self, err := address.NewIDAddress(options.self)
	require.NoError(t, err)

	res := lockResolver{}
	var locks []*mocklock.Timelock
	var initial []string
	for _, spec := range options.timelocks {
		addr, err := address.NewIDAddress(spec.id)
		require.NoError(t, err)

		lock := mocklock.New(addr, spec.delay)
		lock.SetClock(mock)
		locks = append(locks, lock)
		initial = append(initial, addr.String())
		res[addr] = lock
	}

	r := repo.NewMemory(nil)

	// Seed the governor identity and the registry through the repo config,
	// the same way a deployed node gets them.
	lr, err := r.Lock()
	require.NoError(t, err)
	err = lr.SetConfig(func(raw interface{}) {
		cfg, ok := raw.(*config.GovNode)
		require.True(t, ok)
		cfg.Governor.Self = self.String()
		cfg.Governor.InitialTimelocks = initial
	})
	require.NoError(t, err)
	require.NoError(t, lr.Close())

	n := &TestNode{
		t:      t,
		Self:   self,
		Voting: NewVotingStub(),
		Locks:  locks,
		Clock:  mock,
	}

	stop, err := node.New(context.Background(),
		node.GovAPI(&n.Gov),
		node.Repo(r),

		node.Override(new(voting.Core), n.Voting),
		node.Override(new(gov.TimelockResolver), res),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })

	// Registry self-calls re-enter the governor when a batch executes.
	g := n.Gov.(*impl.GovAPI).Governor
	for _, lock := range locks {
		lock.RouteCalls(self, g)
	}

	if options.rpc {
		return nodeRpc(t, n)
	}
	return n
}

// nodeRpc exposes the node over a real jsonrpc server and swaps the Gov
// handle for a client dialing it.
func nodeRpc(t *testing.T, n *TestNode) *TestNode {
	handler, err := node.GovHandler(n.Gov, false)
	require.NoError(t, err)

	srv, maddr := CreateRPCServer(t, handler)

	cl, stop, err := client.NewGovRPC(context.Background(), "ws://"+srv.Listener.Addr().String()+"/rpc/v0", nil)
	require.NoError(t, err)
	t.Cleanup(stop)

	n.ListenAddr, n.Gov = maddr, cl
	return n
}

// CreateRPCServer starts an http test server for the given handler on a
// random localhost port.
func CreateRPCServer(t *testing.T, handler http.Handler) (*httptest.Server, multiaddr.Multiaddr) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &httptest.Server{
		Listener: l,
		Config:   &http.Server{Handler: handler},
	}
	srv.Start()

	t.Cleanup(srv.Close)
	t.Cleanup(srv.CloseClientConnections)

	maddr, err := manet.FromNetAddr(srv.Listener.Addr())
	require.NoError(t, err)
	return srv, maddr
}

type lockResolver map[address.Address]timelock.Timelock

func (m lockResolver) Resolve(ctx context.Context, tl address.Address) (timelock.Timelock, error) {
	lock, ok := m[tl]
	if !ok {
		return nil, xerrors.Errorf("no endpoint for timelock %s", tl)
	}
	return lock, nil
}
