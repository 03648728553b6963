package repo

import (
	"context"
	"errors"

	"github.com/ipfs/go-datastore"
	"github.com/multiformats/go-multiaddr"

	"github.com/govexec/govexec/node/config"
)

// KeyType defines a type of a key
type KeyType string

const (
	KTJwtHmacSecret KeyType = "jwt-hmac-secret"
)

// KeyInfo is used for storing keys in KeyStore
type KeyInfo struct {
	Type       KeyType
	PrivateKey []byte
}

var (
	ErrNoAPIEndpoint     = errors.New("API not running (no endpoint)")
	ErrNoAPIToken        = errors.New("API token not set")
	ErrRepoAlreadyLocked = errors.New("repo is already locked (govexec daemon already running)")
	ErrClosedRepo        = errors.New("repo is no longer open")

	// ErrKeyInfoNotFound signals that keystore did not contain this name.
	ErrKeyInfoNotFound = errors.New("key info not found")

	// ErrKeyExists signals that a key already exists under this name.
	ErrKeyExists = errors.New("key already exists")
)

type Repo interface {
	// APIEndpoint returns multiaddress for communication with the API
	APIEndpoint() (multiaddr.Multiaddr, error)

	// APIToken returns JWT API Token for use in operations that require auth
	APIToken() ([]byte, error)

	// Lock locks the repo for exclusive use.
	Lock() (LockedRepo, error)
}

type LockedRepo interface {
	// Close closes repo and removes lock.
	Close() error

	// Datastore returns the wrapped datastore for the given namespace.
	Datastore(ctx context.Context, namespace string) (datastore.Batching, error)

	// Config returns the config at this repo. Changes to the returned
	// value are not persisted; use SetConfig for that.
	Config() (interface{}, error)
	SetConfig(func(interface{})) error

	// SetAPIEndpoint sets the endpoint of the current API
	// so it can be read by API clients
	SetAPIEndpoint(multiaddr.Multiaddr) error

	// SetAPIToken sets JWT API Token for CLI
	SetAPIToken([]byte) error

	// KeyStore returns store of private keys for the API secret and
	// whatever else ends up needing one
	KeyStore() (KeyStore, error)

	// Path returns absolute path of the repo
	Path() string
}

// KeyStore is used for storing secret keys
type KeyStore interface {
	// List lists all the keys stored in the KeyStore
	List() ([]string, error)
	// Get gets a key out of keystore and returns KeyInfo corresponding to named key
	Get(string) (KeyInfo, error)
	// Put saves a key info under given name
	Put(string, KeyInfo) error
	// Delete removes a key from keystore
	Delete(string) error
}

func defConfig() interface{} {
	return config.DefaultGovNode()
}
