package mempool

import (
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
)

// Verifier is an interface that abstracts the transaction validation
// (signatures, balances and nonces are checked by the chain, not by the pool).
type Verifier interface {
	VerifyTx(*transaction.Transaction) error
}

// VerifierFunc is an adapter allowing to use ordinary functions as Verifier.
type VerifierFunc func(*transaction.Transaction) error

// VerifyTx implements the Verifier interface.
func (f VerifierFunc) VerifyTx(tx *transaction.Transaction) error {
	return f(tx)
}
