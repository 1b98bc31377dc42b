package payload

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/io"
)

// Transactions represents batch of transactions.
type Transactions struct {
	Values []*transaction.Transaction
}

// MaxBatchSize is maximum amount of transactions in batch.
const MaxBatchSize = MaxHashesCount

// batchPrefixSize is the maximum size of the encoded batch length.
const batchPrefixSize = 9

// SplitTransactions cuts the list into batches that fit into a single
// message both by the number of transactions and by the encoded size.
func SplitTransactions(txs []*transaction.Transaction) [][]*transaction.Transaction {
	var (
		res   [][]*transaction.Transaction
		start int
		size  = batchPrefixSize
	)
	for i, tx := range txs {
		txSize := tx.Size()
		if i > start && (i-start == MaxBatchSize || size+txSize > MaxSize) {
			res = append(res, txs[start:i])
			start = i
			size = batchPrefixSize
		}
		size += txSize
	}
	if start < len(txs) {
		res = append(res, txs[start:])
	}
	return res
}

// NewTransactions creates a batch of the given transactions.
func NewTransactions(txes ...*transaction.Transaction) *Transactions {
	return &Transactions{Values: txes}
}

// DecodeBinary implements io.Serializable interface.
func (t *Transactions) DecodeBinary(r *io.BinReader) {
	l := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if l == 0 {
		r.Err = errors.New("empty batch")
		return
	}
	if l > MaxBatchSize {
		r.Err = errors.New("batch is too big")
		return
	}

	t.Values = make([]*transaction.Transaction, l)
	for i := uint64(0); i < l; i++ {
		tx := new(transaction.Transaction)
		tx.DecodeBinary(r)
		if r.Err != nil {
			return
		}
		t.Values[i] = tx
	}
}

// EncodeBinary implements io.Serializable interface.
func (t *Transactions) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(t.Values)))
	for i := range t.Values {
		t.Values[i].EncodeBinary(w)
	}
}
