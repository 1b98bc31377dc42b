/*
Package blockfeed provides a minimal local chain that accepts blocks in
order and notifies its subscribers about them.
*/
package blockfeed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/txrelay/pkg/core/block"
	"github.com/nspcc-dev/txrelay/pkg/core/syncstate"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrBadIndex is returned for blocks that don't follow the current tip.
var ErrBadIndex = errors.New("unexpected block index")

// Feed is a local chain of blocks.
type Feed struct {
	log *zap.Logger

	lock   sync.RWMutex
	height uint32
	empty  bool

	sync       *syncstate.State
	syncHeight uint32

	running  atomic.Bool
	blocks   chan *block.Block
	subCh    chan chan *block.Block
	unsubCh  chan chan *block.Block
	stopCh   chan struct{}
	finished chan struct{}
}

// New creates a Feed. If st is not nil, its initial synchronization phase
// is completed once a block with syncHeight index is added.
func New(log *zap.Logger, st *syncstate.State, syncHeight uint32) (*Feed, error) {
	if log == nil {
		return nil, errors.New("logger is a required parameter")
	}
	return &Feed{
		log:        log,
		empty:      true,
		sync:       st,
		syncHeight: syncHeight,
		blocks:     make(chan *block.Block, 16),
		subCh:      make(chan chan *block.Block),
		unsubCh:    make(chan chan *block.Block),
		stopCh:     make(chan struct{}),
		finished:   make(chan struct{}),
	}, nil
}

// Run starts the notification dispatcher. It's a no-op if the feed is
// already running.
func (f *Feed) Run() {
	if !f.running.CompareAndSwap(false, true) {
		return
	}
	go f.notificationDispatcher()
}

// Close stops the notification dispatcher, subscribers are not notified
// after this call.
func (f *Feed) Close() {
	if !f.running.CompareAndSwap(true, false) {
		return
	}
	close(f.stopCh)
	<-f.finished
}

// BlockHeight returns the index of the latest block, zero for an empty feed.
func (f *Feed) BlockHeight() uint32 {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.height
}

// AddBlock appends the block to the chain and notifies subscribers.
func (f *Feed) AddBlock(b *block.Block) error {
	f.lock.Lock()
	expected := f.height + 1
	if f.empty {
		expected = 0
	}
	if b.Index != expected {
		f.lock.Unlock()
		return fmt.Errorf("%w: expected %d, got %d", ErrBadIndex, expected, b.Index)
	}
	f.height = b.Index
	f.empty = false
	f.lock.Unlock()

	updateBlockMetrics(b.Index, len(b.Transactions))
	f.log.Debug("new block",
		zap.Uint32("index", b.Index),
		zap.Int("txs", len(b.Transactions)),
		zap.Stringer("hash", b.Hash()))

	if f.sync != nil && b.Index >= f.syncHeight && f.sync.HasInitialSyncPhase() && !f.sync.IsInitialSyncDone() {
		f.log.Info("initial sync done", zap.Uint32("height", b.Index))
		f.sync.MarkInitialSyncPhaseAsDone()
	}
	if f.running.Load() {
		select {
		case f.blocks <- b:
		case <-f.stopCh:
		}
	}
	return nil
}

// SubscribeForBlocks adds the given channel to the new block broadcasting.
// Blocks are sent to the channel synchronously, so the subscriber must
// read from it. It's a no-op if the feed is not running.
func (f *Feed) SubscribeForBlocks(ch chan *block.Block) {
	if f.running.Load() {
		select {
		case f.subCh <- ch:
		case <-f.stopCh:
		}
	}
}

// UnsubscribeFromBlocks unsubscribes the given channel from new block
// notifications, you can close it afterwards. Passing non-subscribed
// channel is a no-op.
func (f *Feed) UnsubscribeFromBlocks(ch chan *block.Block) {
	if f.running.Load() {
		select {
		case f.unsubCh <- ch:
		case <-f.stopCh:
		}
	}
}

// notificationDispatcher manages subscriptions to blocks and broadcasts
// new blocks.
func (f *Feed) notificationDispatcher() {
	var feed = make(map[chan *block.Block]bool)
	defer close(f.finished)
	for {
		select {
		case <-f.stopCh:
			return
		case sub := <-f.subCh:
			feed[sub] = true
		case unsub := <-f.unsubCh:
			delete(feed, unsub)
		case b := <-f.blocks:
			for ch := range feed {
			deliver:
				for {
					select {
					case ch <- b:
						break deliver
					case unsub := <-f.unsubCh:
						// Subscriber can leave while being waited for.
						delete(feed, unsub)
						if unsub == ch {
							break deliver
						}
					case <-f.stopCh:
						return
					}
				}
			}
		}
	}
}
