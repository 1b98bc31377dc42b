package network

import (
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// TxHandler handles full transactions received from peers (either
// gossiped or requested after announcement) and adds them to the pool.
type TxHandler struct {
	server    *Server
	verifier  mempool.Verifier
	keepAlive time.Duration
	now       func() time.Time
	enabled   atomic.Bool
	onInvalid atomic.Value
}

func newTxHandler(s *Server, v mempool.Verifier) *TxHandler {
	return &TxHandler{
		server:    s,
		verifier:  v,
		keepAlive: s.TxMessageKeepAlive,
		now:       time.Now,
	}
}

// IsEnabled returns whether the handler accepts transactions.
func (h *TxHandler) IsEnabled() bool {
	return h.enabled.Load()
}

// SetEnabled enables or disables the handler. Disabled handler drops all
// incoming transactions.
func (h *TxHandler) SetEnabled(enabled bool) {
	h.enabled.Store(enabled)
}

// SetOnInvalid sets the callback invoked for every transaction that fails
// verification, it can be used to adjust the peer reputation.
func (h *TxHandler) SetOnInvalid(f func(p Peer, tx *transaction.Transaction, err error)) {
	h.onInvalid.Store(f)
}

func (h *TxHandler) handleMessage(p Peer, msg *Message) error {
	txs, ok := msg.Payload.(*payload.Transactions)
	if !ok {
		return errInvalidPayload
	}
	if !h.IsEnabled() {
		addDroppedMessageMetric(msg.Command, "disabled")
		return nil
	}
	if h.keepAlive > 0 && !msg.Received.IsZero() && h.now().Sub(msg.Received) > h.keepAlive {
		h.server.log.Debug("transactions message expired",
			zap.String("peer", p.ID()),
			zap.Time("received", msg.Received))
		addDroppedMessageMetric(msg.Command, "expired")
		return nil
	}
	h.Handle(p, txs)
	return nil
}

// Handle adds transactions received from the peer to the pool if the
// handler is enabled. Peer-sourced failures are only logged.
func (h *TxHandler) Handle(p Peer, txs *payload.Transactions) {
	if !h.IsEnabled() {
		return
	}
	hashes := make([]util.Uint256, len(txs.Values))
	for i, tx := range txs.Values {
		hashes[i] = tx.Hash()
	}
	h.server.tracker.MarkKnown(p, hashes...)

	for i, tx := range txs.Values {
		err := h.server.mempool.Add(tx, h.verifier)
		h.server.requests.Done(hashes[i])
		reason := relayReasonFor(err)
		addRelayResultMetric(reason)
		switch reason {
		case RelaySucceed, RelayAlreadyExists:
			continue
		case RelayInvalid:
			if f, ok := h.onInvalid.Load().(func(Peer, *transaction.Transaction, error)); ok && f != nil {
				f(p, tx, err)
			}
		}
		h.server.log.Debug("transaction from peer rejected",
			zap.String("peer", p.ID()),
			zap.Stringer("hash", hashes[i]),
			zap.Stringer("reason", reason),
			zap.Error(err))
	}
}
