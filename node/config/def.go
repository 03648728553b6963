package config

import (
	"encoding"
	"time"
)

// GovNode is the govexec daemon config.
type GovNode struct {
	API       API
	Voting    Voting
	Governor  Governor
	Timelocks []Timelock
	Journal   Journal
}

// API contains configs for the API endpoint.
type API struct {
	ListenAddress string
	Timeout       Duration
}

// Voting locates the voting core the governor binds to.
type Voting struct {
	// Endpoint is the core's jsonrpc endpoint, as a multiaddr or a ws/http URL.
	Endpoint string
	// Token is sent as the Authorization header when set.
	Token string
}

// Governor configures the governor's own identity and the registry seed.
type Governor struct {
	// Self is the governor's address. Calls targeting it inside an
	// executing batch are interpreted as registry mutations.
	Self string
	// InitialTimelocks seed the timelock registry the first time the node
	// starts. Once the registry has been persisted they are ignored;
	// further changes go through governance.
	InitialTimelocks []string
}

// Timelock locates one timelock backend by its registry address.
type Timelock struct {
	Address  string
	Endpoint string
	// Token is sent as the Authorization header when set.
	Token string

	// Bundled runs an in-memory timelock with the given Delay instead of
	// dialing Endpoint. Schedules do not survive restarts; development only.
	Bundled bool
	Delay   Duration
}

type Journal struct {
	// DisabledEvents is a comma separated list of "system:event" references
	// that should not be recorded.
	DisabledEvents string
}

// DefaultGovNode returns the default node config.
func DefaultGovNode() *GovNode {
	return &GovNode{
		API: API{
			ListenAddress: "/ip4/127.0.0.1/tcp/3453/http",
			Timeout:       Duration(30 * time.Second),
		},
	}
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
