package network

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
)

//go:generate stringer -type=RelayReason -output=relay_reason_string.go

// RelayReason is the type which describes the different relay outcome.
type RelayReason uint8

// List of valid RelayReason.
const (
	RelaySucceed RelayReason = iota
	RelayAlreadyExists
	RelayOutOfMemory
	RelayUnableToVerify
	RelayInvalid
	RelayPolicyFail
	RelayUnknown
)

// relayReasonFor maps mempool admission result to RelayReason.
func relayReasonFor(err error) RelayReason {
	switch {
	case err == nil:
		return RelaySucceed
	case errors.Is(err, mempool.ErrDup):
		return RelayAlreadyExists
	case errors.Is(err, mempool.ErrOOM):
		return RelayOutOfMemory
	case errors.Is(err, mempool.ErrInvalid):
		return RelayInvalid
	case errors.Is(err, mempool.ErrUnderpriced), errors.Is(err, mempool.ErrReplaceUnderpriced):
		return RelayPolicyFail
	default:
		return RelayUnknown
	}
}
