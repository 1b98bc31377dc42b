package mempool

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
)

// ErrUnknownPolicy is returned for unsupported ordering policy names.
var ErrUnknownPolicy = errors.New("unknown ordering policy")

// Item represents a transaction in the Memory pool.
type Item struct {
	txn   *transaction.Transaction
	added time.Time
	seq   uint64
}

// Tx returns the pooled transaction.
func (i *Item) Tx() *transaction.Transaction { return i.txn }

// Added returns the admission time of the transaction.
func (i *Item) Added() time.Time { return i.added }

// Seq returns the admission sequence number, it grows monotonically
// with every admitted transaction.
func (i *Item) Seq() uint64 { return i.seq }

// Policy defines the order of pooled transactions. The pool evicts the
// lowest-priority item first and returns the highest-priority ones first
// for propagation and block building.
type Policy interface {
	// Name returns the policy name as used in the configuration.
	Name() string
	// Compare is a total order over items. It returns a negative number
	// when a has higher priority than b, positive when lower and zero only
	// for the same transaction.
	Compare(a, b *Item) int
	// Outranks reports whether a is strictly more prioritized than b not
	// taking the tie-breaker into account.
	Outranks(a, b *Item) bool
}

// FeePolicy orders transactions by the offered fee, the higher the fee
// the higher the priority.
type FeePolicy struct{}

// ArrivalPolicy orders transactions by the time of admission, the
// earlier the transaction was added the higher its priority.
type ArrivalPolicy struct{}

const (
	// FeePolicyName is the configuration name of FeePolicy.
	FeePolicyName = "fee"
	// ArrivalPolicyName is the configuration name of ArrivalPolicy.
	ArrivalPolicyName = "arrival"
)

// PolicyByName returns an ordering policy by its configuration name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case FeePolicyName, "":
		return FeePolicy{}, nil
	case ArrivalPolicyName:
		return ArrivalPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Name implements the Policy interface.
func (FeePolicy) Name() string { return FeePolicyName }

// Compare implements the Policy interface.
func (FeePolicy) Compare(a, b *Item) int {
	if c := b.txn.Fee.Cmp(&a.txn.Fee); c != 0 {
		return c
	}
	return tieBreak(a, b)
}

// Outranks implements the Policy interface.
func (FeePolicy) Outranks(a, b *Item) bool {
	return a.txn.Fee.Gt(&b.txn.Fee)
}

// Name implements the Policy interface.
func (ArrivalPolicy) Name() string { return ArrivalPolicyName }

// Compare implements the Policy interface.
func (ArrivalPolicy) Compare(a, b *Item) int {
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return tieBreak(a, b)
}

// Outranks implements the Policy interface.
func (ArrivalPolicy) Outranks(a, b *Item) bool {
	return a.seq < b.seq
}

// tieBreak orders items with equal priority by their hashes.
func tieBreak(a, b *Item) int {
	return a.txn.Hash().Compare(b.txn.Hash())
}
