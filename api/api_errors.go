package api

import (
	"errors"
	"reflect"

	"github.com/filecoin-project/go-jsonrpc"
)

const (
	ENotReady = iota + jsonrpc.FirstUserCode
	ETimelockNotFound
	ETimelockExists
	EUnauthorized
)

var (
	RPCErrors = jsonrpc.NewErrors()

	_ error = (*ErrNotReady)(nil)
	_ error = (*ErrTimelockNotFound)(nil)
	_ error = (*ErrTimelockExists)(nil)
	_ error = (*ErrUnauthorized)(nil)
)

func init() {
	RPCErrors.Register(ENotReady, new(*ErrNotReady))
	RPCErrors.Register(ETimelockNotFound, new(*ErrTimelockNotFound))
	RPCErrors.Register(ETimelockExists, new(*ErrTimelockExists))
	RPCErrors.Register(EUnauthorized, new(*ErrUnauthorized))
}

func ErrorIsIn(err error, errorTypes []error) bool {
	for _, etype := range errorTypes {
		tmp := reflect.New(reflect.PointerTo(reflect.ValueOf(etype).Elem().Type())).Interface()
		if errors.As(err, tmp) {
			return true
		}
	}
	return false
}

// ErrNotReady signals that the proposal is not in the Succeeded state, so
// it cannot be queued.
type ErrNotReady struct{}

func (ErrNotReady) Error() string { return "proposal is not ready to queue" }

// ErrTimelockNotFound signals that the timelock address is not registered,
// or that no sole timelock could be resolved for address.Undef.
type ErrTimelockNotFound struct{}

func (ErrTimelockNotFound) Error() string { return "timelock is not registered" }

// ErrTimelockExists signals an attempt to register an already-registered
// timelock.
type ErrTimelockExists struct{}

func (ErrTimelockExists) Error() string { return "timelock is already registered" }

// ErrUnauthorized signals a registry mutation attempted outside the
// governance-authorized execution path.
type ErrUnauthorized struct{}

func (ErrUnauthorized) Error() string { return "call is not governance-authorized" }
