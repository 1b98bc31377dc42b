package network

import (
	"sync"
	"testing"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type localPeer struct {
	id        string
	announces bool

	lock sync.Mutex
	gone bool
	msgs []*Message
}

func newLocalPeer(id string) *localPeer {
	return &localPeer{id: id}
}

func (p *localPeer) ID() string { return p.id }

func (p *localPeer) EnqueueP2PMessage(msg *Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.gone {
		return ErrPeerGone
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *localPeer) Disconnect(error) {
	p.lock.Lock()
	p.gone = true
	p.lock.Unlock()
}

func (p *localPeer) SupportsTxAnnouncements() bool { return p.announces }

// messages returns all received messages with the given command.
func (p *localPeer) messages(cmd CommandType) []*Message {
	p.lock.Lock()
	defer p.lock.Unlock()
	var res []*Message
	for _, m := range p.msgs {
		if m.Command == cmd {
			res = append(res, m)
		}
	}
	return res
}

func (p *localPeer) reset() {
	p.lock.Lock()
	p.msgs = nil
	p.lock.Unlock()
}

func newTestPool(t *testing.T, capacity int) *mempool.Pool {
	mp := mempool.New(capacity, nil, true, nil)
	mp.RunSubscriptions()
	t.Cleanup(mp.StopSubscriptions)
	return mp
}

func newTestServer(t *testing.T, cfg ServerConfig, mp Mempool) *Server {
	s, err := NewServer(cfg, mp, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func newTestTx(sender byte, nonce uint64, fee uint64) *transaction.Transaction {
	return transaction.New(util.Uint160{sender}, nonce, fee, nil)
}

// sentTxHashes returns hashes of all full transactions sent to the peer.
func sentTxHashes(p *localPeer) []util.Uint256 {
	var res []util.Uint256
	for _, m := range p.messages(CMDTX) {
		for _, tx := range m.Payload.(*payload.Transactions).Values {
			res = append(res, tx.Hash())
		}
	}
	return res
}

// announcedHashes returns all transaction hashes announced to the peer.
func announcedHashes(p *localPeer) []util.Uint256 {
	var res []util.Uint256
	for _, m := range p.messages(CMDPooledTxHashes) {
		res = append(res, m.Payload.(*payload.Announcement).Hashes...)
	}
	return res
}

const (
	waitTime = time.Second
	tickTime = 10 * time.Millisecond
)
