package network

import (
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/zap"
)

// handleGetDataCmd answers with requested pooled transactions, those that
// are not in the pool anymore are reported with CMDNotFound.
func (s *Server) handleGetDataCmd(p Peer, msg *Message) error {
	inv, ok := msg.Payload.(*payload.Inventory)
	if !ok {
		return errInvalidPayload
	}
	var (
		found    []*transaction.Transaction
		notFound []util.Uint256
	)
	for _, h := range inv.Hashes {
		tx, ok := s.mempool.TryGetValue(h)
		if !ok {
			notFound = append(notFound, h)
			continue
		}
		found = append(found, tx)
	}
	if len(found) != 0 {
		hashes := make([]util.Uint256, len(found))
		for i := range found {
			hashes[i] = found[i].Hash()
		}
		s.tracker.MarkKnown(p, hashes...)
		for _, batch := range payload.SplitTransactions(found) {
			if !s.send(p, NewMessage(CMDTX, payload.NewTransactions(batch...))) {
				return nil
			}
		}
	}
	if len(notFound) != 0 {
		s.log.Debug("requested transactions not found",
			zap.String("peer", p.ID()),
			zap.Int("count", len(notFound)))
		s.send(p, NewMessage(CMDNotFound, payload.NewInventory(payload.TXType, notFound)))
	}
	return nil
}

// handleNotFoundCmd moves requests sent to the peer for transactions it
// doesn't have anymore to other peers that announced them.
func (s *Server) handleNotFoundCmd(p Peer, msg *Message) error {
	inv, ok := msg.Payload.(*payload.Inventory)
	if !ok {
		return errInvalidPayload
	}
	s.requestTxs(s.requests.NotFound(p, inv.Hashes))
	return nil
}

// requestTxs sends CMDGetData to peers, requests that can't be sent are
// moved to other announcers.
func (s *Server) requestTxs(byPeer map[Peer][]util.Uint256) {
	for p, hashes := range byPeer {
		if !s.send(p, NewMessage(CMDGetData, payload.NewInventory(payload.TXType, hashes))) {
			s.requestTxs(s.requests.NotFound(p, hashes))
			continue
		}
		s.log.Debug("requested announced transactions",
			zap.String("peer", p.ID()),
			zap.Int("count", len(hashes)))
	}
}
