package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeNothing(t *testing.T) {
	cfg, err := FromFile(os.DevNull, DefaultGovNode())
	require.NoError(t, err)
	require.Equal(t, DefaultGovNode(), cfg)

	cfg, err = FromFile("./does-not-exist.toml", DefaultGovNode())
	require.NoError(t, err)
	require.Equal(t, DefaultGovNode(), cfg)
}

func TestFromReader(t *testing.T) {
	src := `
[API]
  ListenAddress = "/ip4/0.0.0.0/tcp/9450/http"
  Timeout = "10s"

[Voting]
  Endpoint = "/ip4/10.0.0.2/tcp/9440/http"

[Governor]
  Self = "t0900"
  InitialTimelocks = ["t0100", "t0101"]

[[Timelocks]]
  Address = "t0100"
  Endpoint = "/ip4/10.0.0.3/tcp/9460/http"

[[Timelocks]]
  Address = "t0101"
  Endpoint = "/ip4/10.0.0.4/tcp/9460/http"
  Token = "sekrit"

[[Timelocks]]
  Address = "t0102"
  Bundled = true
  Delay = "1m"
`

	cfg, err := FromReader(strings.NewReader(src), DefaultGovNode())
	require.NoError(t, err)

	gn, ok := cfg.(*GovNode)
	require.True(t, ok)

	require.Equal(t, "/ip4/0.0.0.0/tcp/9450/http", gn.API.ListenAddress)
	require.Equal(t, Duration(10*time.Second), gn.API.Timeout)
	require.Equal(t, "t0900", gn.Governor.Self)
	require.Equal(t, []string{"t0100", "t0101"}, gn.Governor.InitialTimelocks)
	require.Len(t, gn.Timelocks, 3)
	require.Equal(t, "t0101", gn.Timelocks[1].Address)
	require.Equal(t, "sekrit", gn.Timelocks[1].Token)
	require.True(t, gn.Timelocks[2].Bundled)
	require.Equal(t, Duration(time.Minute), gn.Timelocks[2].Delay)
}

func TestConfigCommentRoundTrip(t *testing.T) {
	comm, err := ConfigComment(DefaultGovNode())
	require.NoError(t, err)

	// everything but section headers is commented out, so decoding the
	// comment against defaults yields defaults again
	cfg, err := FromReader(strings.NewReader(string(comm)), DefaultGovNode())
	require.NoError(t, err)
	require.Equal(t, DefaultGovNode(), cfg)
}
