package mempool

import (
	"testing"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempoolevent"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestSubscriptions(t *testing.T) {
	t.Run("disabled subscriptions", func(t *testing.T) {
		mp := New(5, nil, false, nil)
		require.Panics(t, func() {
			mp.RunSubscriptions()
		})
		require.Panics(t, func() {
			mp.StopSubscriptions()
		})
	})

	t.Run("enabled subscriptions", func(t *testing.T) {
		mp := New(2, nil, true, nil)
		mp.RunSubscriptions()
		subChan1 := make(chan mempoolevent.Event, 3)
		subChan2 := make(chan mempoolevent.Event, 3)
		mp.SubscribeForTransactions(subChan1)
		t.Cleanup(mp.StopSubscriptions)

		txs := make([]*transaction.Transaction, 4)
		for i := range txs {
			txs[i] = newTx(1, uint64(i), uint64(i+1))
		}

		// add tx
		require.NoError(t, mp.Add(txs[0], nil))
		require.Eventually(t, func() bool { return len(subChan1) == 1 }, time.Second, time.Millisecond*100)
		event := <-subChan1
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[0]}, event)

		// several subscribers
		mp.SubscribeForTransactions(subChan2)
		require.NoError(t, mp.Add(txs[1], nil))
		require.Eventually(t, func() bool { return len(subChan1) == 1 && len(subChan2) == 1 }, time.Second, time.Millisecond*100)
		event1 := <-subChan1
		event2 := <-subChan2
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[1]}, event1)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[1]}, event2)

		// reach capacity
		require.NoError(t, mp.Add(txs[2], nil))
		require.Eventually(t, func() bool { return len(subChan1) == 2 && len(subChan2) == 2 }, time.Second, time.Millisecond*100)
		event1 = <-subChan1
		event2 = <-subChan2
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[0], Reason: mempoolevent.ReasonEvicted}, event1)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[0], Reason: mempoolevent.ReasonEvicted}, event2)
		event1 = <-subChan1
		event2 = <-subChan2
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[2]}, event1)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[2]}, event2)

		// remove tx
		mp.Remove(txs[1].Hash())
		require.Eventually(t, func() bool { return len(subChan1) == 1 && len(subChan2) == 1 }, time.Second, time.Millisecond*100)
		event1 = <-subChan1
		event2 = <-subChan2
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[1], Reason: mempoolevent.ReasonDropped}, event1)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[1], Reason: mempoolevent.ReasonDropped}, event2)

		// remove included
		mp.RemoveIncluded([]util.Uint256{txs[2].Hash()})
		require.Eventually(t, func() bool { return len(subChan1) == 1 && len(subChan2) == 1 }, time.Second, time.Millisecond*100)
		event1 = <-subChan1
		event2 = <-subChan2
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[2], Reason: mempoolevent.ReasonIncluded}, event1)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: txs[2], Reason: mempoolevent.ReasonIncluded}, event2)

		// unsubscribe
		mp.UnsubscribeFromTransactions(subChan1)
		require.NoError(t, mp.Add(txs[3], nil))
		require.Eventually(t, func() bool { return len(subChan2) == 1 }, time.Second, time.Millisecond*100)
		event2 = <-subChan2
		require.Equal(t, 0, len(subChan1))
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: txs[3]}, event2)
	})

	t.Run("replacement", func(t *testing.T) {
		mp := New(2, nil, true, nil)
		mp.RunSubscriptions()
		t.Cleanup(mp.StopSubscriptions)
		ch := make(chan mempoolevent.Event, 3)
		mp.SubscribeForTransactions(ch)

		orig := newTx(1, 0, 1)
		repl := newTx(1, 0, 2)
		require.NoError(t, mp.Add(orig, nil))
		require.NoError(t, mp.Add(repl, nil))
		require.Eventually(t, func() bool { return len(ch) == 3 }, time.Second, time.Millisecond*100)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: orig}, <-ch)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionRemoved, Tx: orig, Reason: mempoolevent.ReasonReplaced}, <-ch)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: repl}, <-ch)
	})

	t.Run("disabled pool", func(t *testing.T) {
		var enabled atomic.Bool
		mp := New(5, nil, true, nil)
		mp.SetEnabler(enabled.Load)
		mp.RunSubscriptions()
		t.Cleanup(mp.StopSubscriptions)
		ch := make(chan mempoolevent.Event, 2)
		mp.SubscribeForTransactions(ch)

		// The transaction is pooled, but nobody is notified.
		require.NoError(t, mp.Add(newTx(1, 0, 1), nil))
		require.Equal(t, 1, mp.Count())
		require.Never(t, func() bool { return len(ch) != 0 }, 200*time.Millisecond, 50*time.Millisecond)

		enabled.Store(true)
		tx := newTx(1, 1, 1)
		require.NoError(t, mp.Add(tx, nil))
		require.Eventually(t, func() bool { return len(ch) == 1 }, time.Second, time.Millisecond*100)
		require.Equal(t, mempoolevent.Event{Type: mempoolevent.TransactionAdded, Tx: tx}, <-ch)
	})
}
