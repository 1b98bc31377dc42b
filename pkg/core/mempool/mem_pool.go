package mempool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/txrelay/pkg/core/mempoolevent"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/atomic"
)

var (
	// ErrDup is returned when the transaction being added is already present
	// in the memory pool. It's not a rejection, the pool is left untouched.
	ErrDup = errors.New("already in the memory pool")
	// ErrOOM is returned when the transaction just doesn't fit in the memory
	// pool because of its capacity constraints.
	ErrOOM = errors.New("out of memory")
	// ErrUnderpriced is returned when the transaction offers less than the
	// minimum acceptable fee.
	ErrUnderpriced = errors.New("fee is too low")
	// ErrReplaceUnderpriced is returned when the pool already has a
	// transaction with the same sender and nonce and the new one doesn't
	// have a better priority.
	ErrReplaceUnderpriced = errors.New("replacement transaction is underpriced")
	// ErrInvalid is returned when the transaction fails verification.
	ErrInvalid = errors.New("invalid transaction")
)

// senderNonce is the key of sender's transaction slot.
type senderNonce struct {
	sender util.Uint160
	nonce  uint64
}

// Pool stores the unconfirmed transactions.
type Pool struct {
	lock         sync.RWMutex
	verifiedMap  map[util.Uint256]*Item
	verifiedTxes *index
	byAge        *btree.BTreeG[*Item]
	nonces       map[senderNonce]util.Uint256

	capacity        int
	policy          Policy
	minFee          uint256.Int
	seq             uint64
	now             func() time.Time
	isEnabled       func() bool
	updateMetricsCb func(int)

	retentionPeriod time.Duration
	retentionTick   time.Duration
	retentionOn     atomic.Bool
	retentionStop   chan struct{}
	retentionDone   chan struct{}

	// subscriptions for mempool events
	subscriptionsEnabled bool
	subscriptionsOn      atomic.Bool
	stopCh               chan struct{}
	events               chan mempoolevent.Event
	subCh                chan chan<- mempoolevent.Event // there are no other events in mempool except Event, so no need in generic subscribers type
	unsubCh              chan chan<- mempoolevent.Event
}

// New returns a new Pool struct. A nil policy means FeePolicy.
func New(capacity int, policy Policy, enableSubscriptions bool, updateMetricsCb func(int)) *Pool {
	if policy == nil {
		policy = FeePolicy{}
	}
	mp := &Pool{
		verifiedMap:          make(map[util.Uint256]*Item, capacity),
		verifiedTxes:         newIndex(policy),
		byAge:                newAgeIndex(),
		nonces:               make(map[senderNonce]util.Uint256, capacity),
		capacity:             capacity,
		policy:               policy,
		now:                  time.Now,
		subscriptionsEnabled: enableSubscriptions,
		stopCh:               make(chan struct{}),
		events:               make(chan mempoolevent.Event, 128),
		subCh:                make(chan chan<- mempoolevent.Event),
		unsubCh:              make(chan chan<- mempoolevent.Event),
		updateMetricsCb:      updateMetricsCb,
	}
	mp.subscriptionsOn.Store(false)
	return mp
}

// SetMinFee sets the minimum fee a transaction should offer to be accepted.
func (mp *Pool) SetMinFee(fee uint64) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.minFee.SetUint64(fee)
}

// SetEnabler sets the function the pool state is derived from. The pool is
// enabled if no function is set.
func (mp *Pool) SetEnabler(f func() bool) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.isEnabled = f
}

// IsEnabled returns whether the pool participates in the block inclusion
// pruning and notifies its subscribers.
func (mp *Pool) IsEnabled() bool {
	mp.lock.RLock()
	f := mp.isEnabled
	mp.lock.RUnlock()
	return f == nil || f()
}

// Policy returns the ordering policy of the pool.
func (mp *Pool) Policy() Policy {
	return mp.policy
}

// Capacity returns the maximum number of transactions the pool can hold.
func (mp *Pool) Capacity() int {
	return mp.capacity
}

// Count returns the total number of uncofirmed transactions.
func (mp *Pool) Count() int {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return mp.count()
}

// count is an internal unlocked version of Count.
func (mp *Pool) count() int {
	return len(mp.verifiedMap)
}

// ContainsKey checks if the transactions hash is in the Pool.
func (mp *Pool) ContainsKey(hash util.Uint256) bool {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	return mp.containsKey(hash)
}

// containsKey is an internal unlocked version of ContainsKey.
func (mp *Pool) containsKey(hash util.Uint256) bool {
	_, ok := mp.verifiedMap[hash]
	return ok
}

// Add tries to add the given transaction to the Pool. Exact duplicates
// are reported with ErrDup. A transaction with the same sender and nonce
// as the pooled one replaces it if it has a strictly better priority. If
// the pool is full the lowest-priority transactions are evicted unless
// the new one doesn't outrank them.
func (mp *Pool) Add(t *transaction.Transaction, v Verifier) error {
	h := t.Hash()
	mp.lock.RLock()
	dup := mp.containsKey(h)
	underpriced := t.Fee.Lt(&mp.minFee)
	mp.lock.RUnlock()
	if dup {
		return ErrDup
	}
	if underpriced {
		return fmt.Errorf("%w: %s < %s", ErrUnderpriced, t.Fee.Dec(), mp.minFee.Dec())
	}
	if v != nil {
		if err := v.VerifyTx(t); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	mp.lock.Lock()
	if mp.containsKey(h) {
		mp.lock.Unlock()
		return ErrDup
	}
	var pItem = &Item{
		txn:   t,
		added: mp.now(),
		seq:   mp.seq,
	}
	var (
		key     = senderNonce{sender: t.Sender, nonce: t.Nonce}
		removed []*Item
		reason  mempoolevent.Reason
	)
	if existing, ok := mp.nonces[key]; ok {
		old := mp.verifiedMap[existing]
		if !mp.policy.Outranks(pItem, old) {
			mp.lock.Unlock()
			return ErrReplaceUnderpriced
		}
		removed = append(removed, old)
		reason = mempoolevent.ReasonReplaced
	} else if mp.count() >= mp.capacity {
		// Nothing is evicted unless the new transaction outranks the
		// lowest-priority one.
		lowest := mp.verifiedTxes.min()
		if lowest == nil || !mp.policy.Outranks(pItem, lowest) {
			mp.lock.Unlock()
			return ErrOOM
		}
		removed = append(removed, lowest)
		reason = mempoolevent.ReasonEvicted
	}
	mp.seq++
	for _, itm := range removed {
		mp.removeItem(itm)
	}
	mp.verifiedMap[h] = pItem
	mp.verifiedTxes.insert(pItem)
	mp.byAge.ReplaceOrInsert(pItem)
	mp.nonces[key] = h

	if mp.updateMetricsCb != nil {
		mp.updateMetricsCb(mp.count())
	}
	mp.lock.Unlock()

	events := make([]mempoolevent.Event, 0, len(removed)+1)
	for _, itm := range removed {
		events = append(events, mempoolevent.Event{
			Type:   mempoolevent.TransactionRemoved,
			Tx:     itm.txn,
			Reason: reason,
		})
	}
	events = append(events, mempoolevent.Event{
		Type: mempoolevent.TransactionAdded,
		Tx:   pItem.txn,
	})
	mp.notify(events)
	return nil
}

// removeItem drops the item from all pool structures. It must be called
// with the write lock held.
func (mp *Pool) removeItem(itm *Item) {
	h := itm.txn.Hash()
	delete(mp.verifiedMap, h)
	mp.verifiedTxes.delete(itm)
	mp.byAge.Delete(itm)
	key := senderNonce{sender: itm.txn.Sender, nonce: itm.txn.Nonce}
	if mp.nonces[key] == h {
		delete(mp.nonces, key)
	}
}

// Remove removes an item from the mempool if it exists there (and does
// nothing if it doesn't).
func (mp *Pool) Remove(hash util.Uint256) {
	mp.remove([]util.Uint256{hash}, mempoolevent.ReasonDropped)
}

// RemoveIncluded removes transactions included into a block from the
// mempool. Unknown hashes are ignored.
func (mp *Pool) RemoveIncluded(hashes []util.Uint256) int {
	return mp.remove(hashes, mempoolevent.ReasonIncluded)
}

func (mp *Pool) remove(hashes []util.Uint256, reason mempoolevent.Reason) int {
	var events []mempoolevent.Event

	mp.lock.Lock()
	for _, h := range hashes {
		itm, ok := mp.verifiedMap[h]
		if !ok {
			continue
		}
		mp.removeItem(itm)
		events = append(events, mempoolevent.Event{
			Type:   mempoolevent.TransactionRemoved,
			Tx:     itm.txn,
			Reason: reason,
		})
	}
	if mp.updateMetricsCb != nil {
		mp.updateMetricsCb(mp.count())
	}
	mp.lock.Unlock()

	mp.notify(events)
	return len(events)
}

// TryGetValue returns a transaction if it exists in the memory pool.
func (mp *Pool) TryGetValue(hash util.Uint256) (*transaction.Transaction, bool) {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	if itm, ok := mp.verifiedMap[hash]; ok {
		return itm.txn, ok
	}

	return nil, false
}

// GetVerifiedTransactions returns a slice of pooled transactions from the
// most prioritized to the least prioritized one.
func (mp *Pool) GetVerifiedTransactions() []*transaction.Transaction {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	var t = make([]*transaction.Transaction, 0, mp.count())

	mp.verifiedTxes.descend(func(itm *Item) bool {
		t = append(t, itm.txn)
		return true
	})

	return t
}

// IterateVerified iterates over pooled transactions from the most
// prioritized to the least prioritized one until cont returns false. The
// pool can't be modified while iterating.
func (mp *Pool) IterateVerified(cont func(tx *transaction.Transaction) bool) {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	mp.verifiedTxes.descend(func(itm *Item) bool {
		return cont(itm.txn)
	})
}

// checkInvariants panics if the pool structures are inconsistent.
func (mp *Pool) checkInvariants() {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	if mp.verifiedTxes.len() != len(mp.verifiedMap) {
		panic(fmt.Sprintf("mempool: index has %d items, map has %d", mp.verifiedTxes.len(), len(mp.verifiedMap)))
	}
	if mp.byAge.Len() != len(mp.verifiedMap) {
		panic(fmt.Sprintf("mempool: age index has %d items, map has %d", mp.byAge.Len(), len(mp.verifiedMap)))
	}
	if len(mp.nonces) != len(mp.verifiedMap) {
		panic(fmt.Sprintf("mempool: %d sender slots for %d transactions", len(mp.nonces), len(mp.verifiedMap)))
	}
	if len(mp.verifiedMap) > mp.capacity {
		panic(fmt.Sprintf("mempool: %d transactions exceed capacity %d", len(mp.verifiedMap), mp.capacity))
	}
	mp.verifiedTxes.ascend(func(itm *Item) bool {
		h := itm.txn.Hash()
		if mp.verifiedMap[h] != itm {
			panic(fmt.Sprintf("mempool: indexed transaction %s is missing from the map", h.StringBE()))
		}
		if mp.nonces[senderNonce{sender: itm.txn.Sender, nonce: itm.txn.Nonce}] != h {
			panic(fmt.Sprintf("mempool: sender slot mismatch for %s", h.StringBE()))
		}
		return true
	})
}
