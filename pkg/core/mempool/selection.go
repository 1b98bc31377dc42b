package mempool

import (
	"github.com/google/btree"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
)

// Selection is a lazy sequence of pooled transactions ordered from the
// most prioritized to the least prioritized one. It's based on the pool
// snapshot taken at the moment of SelectForPropagation call, so
// subsequent pool modifications are not visible through it.
type Selection struct {
	tree *btree.BTreeG[*Item]
	last *Item
	left int
}

// SelectForPropagation returns at most limit transactions in the order
// they should be propagated or included into a block. Non-positive limit
// means no limit. It doesn't modify the pool, every call starts a new
// sequence.
func (mp *Pool) SelectForPropagation(limit int) *Selection {
	// Cloning changes tree internals, so the write lock is needed, but it's
	// cheap since the snapshot is copy-on-write.
	mp.lock.Lock()
	tree := mp.verifiedTxes.clone()
	mp.lock.Unlock()

	if limit <= 0 || limit > tree.Len() {
		limit = tree.Len()
	}
	return &Selection{
		tree: tree,
		left: limit,
	}
}

// Next returns the next transaction of the sequence. It returns false when
// the sequence is over.
func (s *Selection) Next() (*transaction.Transaction, bool) {
	if s.left <= 0 {
		return nil, false
	}
	var next *Item
	iter := func(itm *Item) bool {
		if itm == s.last {
			return true
		}
		next = itm
		return false
	}
	if s.last == nil {
		s.tree.Descend(iter)
	} else {
		s.tree.DescendLessOrEqual(s.last, iter)
	}
	if next == nil {
		s.left = 0
		return nil, false
	}
	s.last = next
	s.left--
	return next.txn, true
}

// Len returns the number of transactions left in the sequence.
func (s *Selection) Len() int {
	return s.left
}

// All drains the sequence into a slice.
func (s *Selection) All() []*transaction.Transaction {
	res := make([]*transaction.Transaction, 0, s.left)
	for tx, ok := s.Next(); ok; tx, ok = s.Next() {
		res = append(res, tx)
	}
	return res
}
