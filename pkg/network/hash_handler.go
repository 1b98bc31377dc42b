package network

import (
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/atomic"
)

// HashHandler handles transaction announcements and requests announced
// transactions the node doesn't have yet.
type HashHandler struct {
	server  *Server
	enabled atomic.Bool
}

func newHashHandler(s *Server) *HashHandler {
	return &HashHandler{server: s}
}

// IsEnabled returns whether the handler accepts announcements.
func (h *HashHandler) IsEnabled() bool {
	return h.enabled.Load()
}

// SetEnabled enables or disables the handler. Disabled handler drops all
// incoming announcements.
func (h *HashHandler) SetEnabled(enabled bool) {
	h.enabled.Store(enabled)
}

func (h *HashHandler) handleMessage(p Peer, msg *Message) error {
	ann, ok := msg.Payload.(*payload.Announcement)
	if !ok {
		return errInvalidPayload
	}
	if !h.IsEnabled() {
		addDroppedMessageMetric(msg.Command, "disabled")
		return nil
	}
	h.Handle(p, ann)
	return nil
}

// Handle requests announced transactions that are neither pooled nor
// requested from other peers already.
func (h *HashHandler) Handle(p Peer, ann *payload.Announcement) {
	if !h.IsEnabled() {
		return
	}
	h.server.tracker.MarkKnown(p, ann.Hashes...)
	reqHashes := h.server.requests.Add(p, ann.Hashes)
	if len(reqHashes) == 0 {
		return
	}
	h.server.requestTxs(map[Peer][]util.Uint256{p: reqHashes})
}

// RequestsDone marks requests for the given transactions as finished, so
// that they can be requested again if announced.
func (h *HashHandler) RequestsDone(hashes ...util.Uint256) {
	h.server.requests.Done(hashes...)
}

// PendingRequests returns the number of requested transactions not yet
// received.
func (h *HashHandler) PendingRequests() int {
	return h.server.requests.Len()
}
