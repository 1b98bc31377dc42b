package fakechain

import (
	"errors"
	"sync"

	"github.com/nspcc-dev/txrelay/pkg/core/block"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/atomic"
)

// ErrInvalidTx is returned by VerifyTx for transactions marked with
// FakeChain.MarkInvalid.
var ErrInvalidTx = errors.New("invalid transaction")

// FakeChain implements the Blockchain and Verifier interfaces, but does not
// provide real functionality. Blocks are delivered to subscribers
// synchronously.
type FakeChain struct {
	Blockheight atomic.Uint32
	VerifyTxF   func(*transaction.Transaction) error

	lock     sync.RWMutex
	blocksCh []chan *block.Block
	invalid  map[util.Uint256]bool
}

// NewFakeChain returns a new FakeChain structure.
func NewFakeChain() *FakeChain {
	return &FakeChain{
		invalid: make(map[util.Uint256]bool),
	}
}

// MarkInvalid makes VerifyTx fail for the given transaction and any
// decoded copy of it.
func (chain *FakeChain) MarkInvalid(tx *transaction.Transaction) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	chain.invalid[tx.Hash()] = true
}

// VerifyTx implements the Verifier interface.
func (chain *FakeChain) VerifyTx(tx *transaction.Transaction) error {
	if chain.VerifyTxF != nil {
		return chain.VerifyTxF(tx)
	}
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	if chain.invalid[tx.Hash()] {
		return ErrInvalidTx
	}
	return nil
}

// PutBlock sends the block to all subscribers.
func (chain *FakeChain) PutBlock(b *block.Block) {
	chain.Blockheight.Store(b.Index)
	chain.lock.RLock()
	subs := make([]chan *block.Block, len(chain.blocksCh))
	copy(subs, chain.blocksCh)
	chain.lock.RUnlock()
	for _, ch := range subs {
		ch <- b
	}
}

// SubscribeForBlocks implements the Blockchain interface.
func (chain *FakeChain) SubscribeForBlocks(ch chan *block.Block) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	chain.blocksCh = append(chain.blocksCh, ch)
}

// UnsubscribeFromBlocks implements the Blockchain interface.
func (chain *FakeChain) UnsubscribeFromBlocks(ch chan *block.Block) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	for i, c := range chain.blocksCh {
		if c == ch {
			chain.blocksCh = append(chain.blocksCh[:i], chain.blocksCh[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of block subscribers.
func (chain *FakeChain) Subscribers() int {
	chain.lock.RLock()
	defer chain.lock.RUnlock()
	return len(chain.blocksCh)
}
