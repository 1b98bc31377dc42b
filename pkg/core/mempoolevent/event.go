package mempoolevent

import (
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
)

// Type represents mempool event type.
type Type byte

const (
	// TransactionAdded marks transaction addition mempool event.
	TransactionAdded Type = 0x01
	// TransactionRemoved marks transaction removal mempool event.
	TransactionRemoved Type = 0x02
)

// Reason explains why a transaction was removed from the pool.
type Reason byte

const (
	// ReasonNone is used for addition events.
	ReasonNone Reason = iota
	// ReasonEvicted is used when a transaction is pushed out by a
	// higher-priority one because the pool is full.
	ReasonEvicted
	// ReasonReplaced is used when a transaction is replaced by a better
	// one with the same sender and nonce.
	ReasonReplaced
	// ReasonIncluded is used when a transaction is included into a block.
	ReasonIncluded
	// ReasonExpired is used when a transaction stays in the pool longer
	// than the retention period.
	ReasonExpired
	// ReasonDropped is used for explicit removals.
	ReasonDropped
)

// Event represents one of mempool events: transaction was added or removed from the mempool.
type Event struct {
	Type   Type                     `json:"type"`
	Tx     *transaction.Transaction `json:"transaction"`
	Reason Reason                   `json:"reason,omitempty"`
}

// String is a Stringer implementation.
func (e Type) String() string {
	switch e {
	case TransactionAdded:
		return "added"
	case TransactionRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// GetEventTypeFromString converts the input string into the Type if it's possible.
func GetEventTypeFromString(s string) (Type, error) {
	switch s {
	case "added":
		return TransactionAdded, nil
	case "removed":
		return TransactionRemoved, nil
	default:
		return 0, errors.New("invalid event type name")
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (e Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *Type) UnmarshalJSON(b []byte) error {
	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	id, err := GetEventTypeFromString(s)
	if err != nil {
		return err
	}
	*e = id
	return nil
}

// String is a Stringer implementation.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonEvicted:
		return "evicted"
	case ReasonReplaced:
		return "replaced"
	case ReasonIncluded:
		return "included"
	case ReasonExpired:
		return "expired"
	case ReasonDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}
