package network

import (
	"sync"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/util"
)

// maxAnnouncers is the number of alternative peers remembered for a pending
// request.
const maxAnnouncers = 8

// request is a transaction requested from a peer.
type request struct {
	peer     Peer
	deadline time.Time
	// announcers are other peers that announced the transaction while it
	// was requested, they're asked next if the request fails.
	announcers []Peer
}

// requests tracks transactions requested from peers, so that the same
// transaction is not requested twice while the first request is in
// progress. Requests that are not answered in time are moved to other
// peers that announced the transaction.
type requests struct {
	lock     sync.Mutex
	byHash   map[util.Uint256]*request
	byPeer   map[Peer]map[util.Uint256]struct{}
	timeout  time.Duration
	now      func() time.Time
	isInPool func(h util.Uint256) bool
}

// newRequests creates a new instance of requests.
func newRequests(timeout time.Duration, isInPool func(h util.Uint256) bool) *requests {
	return &requests{
		byHash:   make(map[util.Uint256]*request),
		byPeer:   make(map[Peer]map[util.Uint256]struct{}),
		timeout:  timeout,
		now:      time.Now,
		isInPool: isInPool,
	}
}

// Add atomically registers requests for hashes that are neither pooled nor
// requested yet and returns them. Expired requests are moved to p.
func (r *requests) Add(p Peer, hashes []util.Uint256) []util.Uint256 {
	var res []util.Uint256

	r.lock.Lock()
	defer r.lock.Unlock()
	now := r.now()
	for _, h := range hashes {
		if r.isInPool(h) {
			continue
		}
		req, ok := r.byHash[h]
		switch {
		case !ok:
			req = new(request)
			r.byHash[h] = req
		case req.peer == p:
			continue
		case now.Before(req.deadline):
			req.addAnnouncer(p)
			continue
		}
		r.assign(h, req, p, now)
		res = append(res, h)
	}
	updatePendingRequestsMetric(len(r.byHash))
	return res
}

// addAnnouncer remembers p as an alternative source of the transaction.
func (req *request) addAnnouncer(p Peer) {
	if len(req.announcers) >= maxAnnouncers {
		return
	}
	for _, a := range req.announcers {
		if a == p {
			return
		}
	}
	req.announcers = append(req.announcers, p)
}

// assign moves the request to p. It must be called with the lock held.
func (r *requests) assign(h util.Uint256, req *request, p Peer, now time.Time) {
	if req.peer != nil {
		r.unlinkPeer(req.peer, h)
	}
	req.peer = p
	req.deadline = now.Add(r.timeout)
	if r.byPeer[p] == nil {
		r.byPeer[p] = make(map[util.Uint256]struct{})
	}
	r.byPeer[p][h] = struct{}{}
}

func (r *requests) unlinkPeer(p Peer, h util.Uint256) {
	delete(r.byPeer[p], h)
	if len(r.byPeer[p]) == 0 {
		delete(r.byPeer, p)
	}
}

// retry moves the failed request to the next announcer adding the hash to
// res, the request is dropped if there are no announcers left. It must be
// called with the lock held.
func (r *requests) retry(h util.Uint256, req *request, now time.Time, res map[Peer][]util.Uint256) {
	if len(req.announcers) == 0 {
		r.unlinkPeer(req.peer, h)
		delete(r.byHash, h)
		return
	}
	next := req.announcers[0]
	req.announcers = req.announcers[1:]
	r.assign(h, req, next, now)
	res[next] = append(res[next], h)
}

// Contains returns whether the transaction is requested already.
func (r *requests) Contains(h util.Uint256) bool {
	r.lock.Lock()
	_, ok := r.byHash[h]
	r.lock.Unlock()
	return ok
}

// Done removes requests for the given hashes irrespective of the peer they
// were requested from.
func (r *requests) Done(hashes ...util.Uint256) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, h := range hashes {
		req, ok := r.byHash[h]
		if !ok {
			continue
		}
		delete(r.byHash, h)
		r.unlinkPeer(req.peer, h)
	}
	updatePendingRequestsMetric(len(r.byHash))
}

// NotFound handles the peer's reply that it doesn't have the transactions.
// Only requests sent to p are affected, they're moved to other announcers
// which are returned with the hashes to request from them.
func (r *requests) NotFound(p Peer, hashes []util.Uint256) map[Peer][]util.Uint256 {
	res := make(map[Peer][]util.Uint256)

	r.lock.Lock()
	defer r.lock.Unlock()
	now := r.now()
	for _, h := range hashes {
		if _, ok := r.byPeer[p][h]; !ok {
			continue
		}
		r.retry(h, r.byHash[h], now, res)
	}
	updatePendingRequestsMetric(len(r.byHash))
	return res
}

// Expire moves requests that are not answered in time to other announcers
// and returns them grouped by peer.
func (r *requests) Expire() map[Peer][]util.Uint256 {
	res := make(map[Peer][]util.Uint256)

	r.lock.Lock()
	defer r.lock.Unlock()
	now := r.now()
	for h, req := range r.byHash {
		if now.Before(req.deadline) {
			continue
		}
		r.retry(h, req, now, res)
	}
	updatePendingRequestsMetric(len(r.byHash))
	return res
}

// DropPeer abandons all requests sent to the peer moving them to other
// announcers, the peer is not asked for anything afterwards.
func (r *requests) DropPeer(p Peer) map[Peer][]util.Uint256 {
	res := make(map[Peer][]util.Uint256)

	r.lock.Lock()
	defer r.lock.Unlock()
	now := r.now()
	for _, req := range r.byHash {
		for i, a := range req.announcers {
			if a == p {
				req.announcers = append(req.announcers[:i], req.announcers[i+1:]...)
				break
			}
		}
	}
	for h := range r.byPeer[p] {
		r.retry(h, r.byHash[h], now, res)
	}
	delete(r.byPeer, p)
	updatePendingRequestsMetric(len(r.byHash))
	return res
}

// Len returns the number of pending requests.
func (r *requests) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.byHash)
}
