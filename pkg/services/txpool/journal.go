package txpool

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/nspcc-dev/txrelay/pkg/core/storage"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/zap"
)

// Journal persists locally submitted transactions, so that they're
// resubmitted after the node restart.
type Journal struct {
	log   *zap.Logger
	store storage.Store

	lock  sync.Mutex
	local map[util.Uint256]struct{}
}

// NewJournal creates a Journal over the given store.
func NewJournal(store storage.Store, log *zap.Logger) *Journal {
	return &Journal{
		log:   log,
		store: store,
		local: make(map[util.Uint256]struct{}),
	}
}

func journalKey(h util.Uint256) []byte {
	return storage.AppendPrefix(storage.JRNLTransaction, h.BytesBE())
}

// Insert stores the transaction in the journal.
func (j *Journal) Insert(tx *transaction.Transaction) error {
	h := tx.Hash()
	j.lock.Lock()
	defer j.lock.Unlock()
	if err := j.store.Put(journalKey(h), tx.Bytes()); err != nil {
		return fmt.Errorf("failed to journal %s: %w", h.StringBE(), err)
	}
	j.local[h] = struct{}{}
	updateJournalMetric(len(j.local))
	return nil
}

// Load reads all journaled transactions and passes them to add. Entries
// that can't be decoded or are rejected by add are removed from the
// journal. It returns the number of restored transactions.
func (j *Journal) Load(add func(*transaction.Transaction) error) (int, error) {
	var values [][]byte
	err := j.store.Seek(storage.JRNLTransaction.Bytes(), func(k, v []byte) bool {
		values = append(values, bytes.Clone(v))
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read journal: %w", err)
	}

	j.lock.Lock()
	defer j.lock.Unlock()
	var loaded int
	for _, v := range values {
		tx, err := transaction.NewTransactionFromBytes(v)
		if err != nil {
			j.log.Warn("corrupted journal entry", zap.Error(err))
			continue
		}
		h := tx.Hash()
		if err = add(tx); err != nil {
			j.log.Debug("journaled transaction rejected", zap.Stringer("hash", h), zap.Error(err))
			j.delete(h)
			continue
		}
		j.local[h] = struct{}{}
		loaded++
	}
	updateJournalMetric(len(j.local))
	return loaded, j.dropForeign()
}

// dropForeign removes undecodable entries, i.e. those that are not
// tracked after Load.
func (j *Journal) dropForeign() error {
	var stale [][]byte
	err := j.store.Seek(storage.JRNLTransaction.Bytes(), func(k, _ []byte) bool {
		h, err := util.Uint256DecodeBytesBE(k[1:])
		if _, ok := j.local[h]; err != nil || !ok {
			stale = append(stale, bytes.Clone(k))
		}
		return true
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err = j.store.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Rotate removes journaled transactions that are not pooled anymore
// (included, evicted, replaced or expired). It returns the number of
// removed entries.
func (j *Journal) Rotate(isPooled func(util.Uint256) bool) int {
	j.lock.Lock()
	defer j.lock.Unlock()
	var n int
	for h := range j.local {
		if !isPooled(h) {
			j.delete(h)
			n++
		}
	}
	updateJournalMetric(len(j.local))
	return n
}

// delete drops the entry, it must be called with the lock held.
func (j *Journal) delete(h util.Uint256) {
	delete(j.local, h)
	if err := j.store.Delete(journalKey(h)); err != nil {
		j.log.Warn("failed to remove journaled transaction", zap.Stringer("hash", h), zap.Error(err))
	}
}

// Len returns the number of journaled transactions.
func (j *Journal) Len() int {
	j.lock.Lock()
	defer j.lock.Unlock()
	return len(j.local)
}
