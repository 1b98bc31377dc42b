package mempool

import (
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

const (
	poolSize = 10000
)

func BenchmarkPool(b *testing.B) {
	txesSimple := make([]*transaction.Transaction, poolSize)
	for i := range txesSimple {
		txesSimple[i] = transaction.New(util.Uint160{1, 2, 3}, uint64(i), 100500, nil)
	}
	txesIncFee := make([]*transaction.Transaction, poolSize)
	for i := range txesIncFee {
		txesIncFee[i] = transaction.New(util.Uint160{1, 2, 3}, uint64(i), 10*uint64(i), nil)
	}
	txesMulti := make([]*transaction.Transaction, poolSize)
	for i := range txesMulti {
		txesMulti[i] = transaction.New(util.Uint160{1, 2, 3, byte(i % 256), byte(i / 256)}, 0, 100500, nil)
	}
	txesMultiInc := make([]*transaction.Transaction, poolSize)
	for i := range txesMultiInc {
		txesMultiInc[i] = transaction.New(util.Uint160{1, 2, 3, byte(i % 256), byte(i / 256)}, 0, 10*uint64(i), nil)
	}

	senders := make(map[string][]*transaction.Transaction)
	senders["one, same fee"] = txesSimple
	senders["one, incr fee"] = txesIncFee
	senders["many, same fee"] = txesMulti
	senders["many, incr fee"] = txesMultiInc
	for name, txes := range senders {
		b.Run(name, func(b *testing.B) {
			p := New(poolSize, nil, false, nil)
			hashes := make([]util.Uint256, len(txes))
			for j := range txes {
				hashes[j] = txes[j].Hash()
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for j := range txes {
					if p.Add(txes[j], nil) != nil {
						b.Fail()
					}
				}
				p.RemoveIncluded(hashes)
			}
		})
	}
}
