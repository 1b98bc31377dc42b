package network

import (
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempoolevent"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/zap"
)

// eventsBufSize is the size of the mempool events channel of a sender.
const eventsBufSize = 1024

// broadcaster accumulates transactions added to the pool and passes them
// in batches to the send function. A batch is sent when it's full or when
// the batch interval passes.
type broadcaster struct {
	server *Server
	mode   string
	events chan mempoolevent.Event
	quit   chan struct{}
	done   chan struct{}
	send   func(p Peer, txs []*transaction.Transaction)
	peerOK func(p Peer) bool
}

// TxSender propagates full transactions to peers not known to have them.
type TxSender struct {
	broadcaster
}

// HashSender announces transaction hashes to peers not known to have them,
// peers fetch transactions they need with CMDGetData.
type HashSender struct {
	broadcaster
}

func newTxSender(s *Server) *TxSender {
	t := &TxSender{broadcaster{
		server: s,
		mode:   "full",
		peerOK: func(p Peer) bool { return !s.announces(p) },
	}}
	t.send = t.sendTxs
	return t
}

func newHashSender(s *Server) *HashSender {
	h := &HashSender{broadcaster{
		server: s,
		mode:   "announcement",
		peerOK: s.announces,
	}}
	h.send = h.sendHashes
	return h
}

func (b *broadcaster) start() {
	b.events = make(chan mempoolevent.Event, eventsBufSize)
	b.quit = make(chan struct{})
	b.done = make(chan struct{})
	b.server.mempool.SubscribeForTransactions(b.events)
	go b.run()
}

func (b *broadcaster) shutdown() {
	close(b.quit)
	<-b.done
}

// run is the main broadcasting loop.
func (b *broadcaster) run() {
	var (
		batch  = make([]*transaction.Transaction, 0, b.server.TxBatchSize)
		ticker = time.NewTicker(b.server.TxBatchInterval)
	)
	defer ticker.Stop()
runloop:
	for {
		select {
		case <-b.quit:
			break runloop
		case e := <-b.events:
			if e.Type != mempoolevent.TransactionAdded {
				continue
			}
			batch = append(batch, e.Tx)
			if len(batch) >= b.server.TxBatchSize {
				b.flush(batch)
				batch = batch[:0]
				ticker.Reset(b.server.TxBatchInterval)
			}
		case <-ticker.C:
			if len(batch) != 0 {
				b.flush(batch)
				batch = batch[:0]
			}
		}
	}
	// The dispatcher can be blocked on our channel, so it's drained
	// until unsubscription completes.
	unsubbed := make(chan struct{})
	go func() {
		b.server.mempool.UnsubscribeFromTransactions(b.events)
		close(unsubbed)
	}()
drainloop:
	for {
		select {
		case <-b.events:
		case <-unsubbed:
			break drainloop
		}
	}
	close(b.done)
}

// flush sends the batch to every eligible peer that doesn't know about
// the transactions yet.
func (b *broadcaster) flush(batch []*transaction.Transaction) {
	var (
		hashes = make([]util.Uint256, 0, len(batch))
		byHash = make(map[util.Uint256]*transaction.Transaction, len(batch))
	)
	for _, tx := range batch {
		h := tx.Hash()
		// Transaction could be evicted or included while waiting for the batch.
		if _, ok := byHash[h]; ok || !b.server.mempool.ContainsKey(h) {
			continue
		}
		hashes = append(hashes, h)
		byHash[h] = tx
	}
	if len(hashes) == 0 {
		return
	}
	for _, p := range b.server.getPeers(b.peerOK) {
		unknown := b.server.tracker.FilterUnknown(p, hashes)
		if len(unknown) == 0 {
			continue
		}
		txs := make([]*transaction.Transaction, len(unknown))
		for i, h := range unknown {
			txs[i] = byHash[h]
		}
		b.send(p, txs)
	}
}

// Run starts the sender loop in a separate goroutine.
func (t *TxSender) Run() { t.start() }

// Shutdown stops the sender loop.
func (t *TxSender) Shutdown() { t.shutdown() }

func (t *TxSender) sendTxs(p Peer, txs []*transaction.Transaction) {
	for _, batch := range payload.SplitTransactions(txs) {
		if !t.server.send(p, NewMessage(CMDTX, payload.NewTransactions(batch...))) {
			return
		}
		addTxsSentMetric(t.mode, len(batch))
	}
}

// Run starts the sender loop in a separate goroutine.
func (h *HashSender) Run() { h.start() }

// Shutdown stops the sender loop.
func (h *HashSender) Shutdown() { h.shutdown() }

func (h *HashSender) sendHashes(p Peer, txs []*transaction.Transaction) {
	for len(txs) > 0 {
		n := min(len(txs), payload.MaxHashesCount)
		var (
			hashes = make([]util.Uint256, n)
			sizes  = make([]uint32, n)
		)
		for i, tx := range txs[:n] {
			hashes[i] = tx.Hash()
			sizes[i] = uint32(tx.Size())
		}
		if !h.server.send(p, NewMessage(CMDPooledTxHashes, payload.NewAnnouncement(hashes, sizes))) {
			h.server.log.Debug("announcement dropped", zap.String("peer", p.ID()), zap.Int("count", n))
			return
		}
		addTxsSentMetric(h.mode, n)
		txs = txs[n:]
	}
}
