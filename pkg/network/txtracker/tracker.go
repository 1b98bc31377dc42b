/*
Package txtracker keeps track of transactions known to be possessed by
connected peers, so that they're not sent the same transaction twice.
*/
package txtracker

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

// DefaultKnownTxsPerPeer is the default number of transaction hashes
// remembered for every peer.
const DefaultKnownTxsPerPeer = 32768

// Peer is a connected peer handle. Handles are compared by identity, so a
// reconnected peer gets a new clean state.
type Peer interface {
	ID() string
}

// Tracker stores the set of known transactions for every connected peer.
// It's safe for concurrent use.
type Tracker struct {
	lock  sync.RWMutex
	peers map[Peer]*lru.Cache
	size  int
}

// New creates a tracker remembering up to knownPerPeer hashes for every peer.
// Non-positive values mean DefaultKnownTxsPerPeer.
func New(knownPerPeer int) *Tracker {
	if knownPerPeer <= 0 {
		knownPerPeer = DefaultKnownTxsPerPeer
	}
	return &Tracker{
		peers: make(map[Peer]*lru.Cache),
		size:  knownPerPeer,
	}
}

// OnPeerConnected starts tracking the given peer. Calling it for an already
// tracked peer is a no-op.
func (t *Tracker) OnPeerConnected(p Peer) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, ok := t.peers[p]; ok {
		return
	}
	// The only possible error here is a non-positive size.
	c, _ := lru.New(t.size)
	t.peers[p] = c
}

// OnPeerDisconnected drops all the state of the given peer.
func (t *Tracker) OnPeerDisconnected(p Peer) {
	t.lock.Lock()
	delete(t.peers, p)
	t.lock.Unlock()
}

func (t *Tracker) known(p Peer) *lru.Cache {
	t.lock.RLock()
	c := t.peers[p]
	t.lock.RUnlock()
	return c
}

// MarkKnown marks hashes as known to the peer. It's a no-op for peers not
// being tracked (e.g. disconnected concurrently).
func (t *Tracker) MarkKnown(p Peer, hashes ...util.Uint256) {
	c := t.known(p)
	if c == nil {
		return
	}
	for _, h := range hashes {
		c.Add(h, struct{}{})
	}
}

// IsKnown returns whether the peer is known to have the transaction.
func (t *Tracker) IsKnown(p Peer, h util.Uint256) bool {
	c := t.known(p)
	if c == nil {
		return false
	}
	return c.Contains(h)
}

// FilterUnknown returns hashes not known to the peer and marks them as
// known in the same step. Unknown peers get nothing, there is no one to
// send transactions to.
func (t *Tracker) FilterUnknown(p Peer, hashes []util.Uint256) []util.Uint256 {
	c := t.known(p)
	if c == nil {
		return nil
	}
	var res []util.Uint256
	for _, h := range hashes {
		if ok, _ := c.ContainsOrAdd(h, struct{}{}); !ok {
			res = append(res, h)
		}
	}
	return res
}

// Len returns the number of tracked peers.
func (t *Tracker) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return len(t.peers)
}
