package network

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/mempoolevent"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network/txtracker"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultTxBatchSize      = 64
	defaultTxBatchInterval  = 200 * time.Millisecond
	defaultTxRequestTimeout = 10 * time.Second
)

type (
	// Mempool is the transaction pool the server relays transactions of.
	Mempool interface {
		Add(*transaction.Transaction, mempool.Verifier) error
		ContainsKey(util.Uint256) bool
		TryGetValue(util.Uint256) (*transaction.Transaction, bool)
		SubscribeForTransactions(chan<- mempoolevent.Event)
		UnsubscribeFromTransactions(chan<- mempoolevent.Event)
	}

	// Server relays pooled transactions between the node and its peers.
	// Connections are managed by the transport, it registers peers with
	// the Server and passes decoded messages to HandleMessage.
	Server struct {
		// ServerConfig holds the Server configuration.
		ServerConfig

		log      *zap.Logger
		mempool  Mempool
		tracker  *txtracker.Tracker
		requests *requests

		lock  sync.RWMutex
		peers map[Peer]bool

		handlersLock sync.RWMutex
		handlers     map[CommandType]func(Peer, *Message) error

		txHandler   *TxHandler
		hashHandler *HashHandler
		txSender    *TxSender
		hashSender  *HashSender

		started atomic.Bool
		quit    chan struct{}
		done    chan struct{}
	}
)

// NewServer returns a new Server, initialized with the given configuration.
// Inbound transaction handlers are disabled until explicitly enabled.
func NewServer(config ServerConfig, pool Mempool, v mempool.Verifier, log *zap.Logger) (*Server, error) {
	if log == nil {
		return nil, errors.New("logger is a required parameter")
	}
	if pool == nil {
		return nil, errors.New("mempool is a required parameter")
	}
	if config.TxBatchSize <= 0 {
		config.TxBatchSize = defaultTxBatchSize
	}
	if config.TxBatchInterval <= 0 {
		config.TxBatchInterval = defaultTxBatchInterval
	}
	if config.TxRequestTimeout <= 0 {
		config.TxRequestTimeout = defaultTxRequestTimeout
	}

	s := &Server{
		ServerConfig: config,
		log:          log,
		mempool:      pool,
		tracker:      txtracker.New(config.KnownTxsPerPeer),
		peers:        make(map[Peer]bool),
		handlers:     make(map[CommandType]func(Peer, *Message) error),
	}
	s.requests = newRequests(config.TxRequestTimeout, pool.ContainsKey)
	s.txHandler = newTxHandler(s, v)
	s.hashHandler = newHashHandler(s)
	s.txSender = newTxSender(s)
	s.hashSender = newHashSender(s)

	s.RegisterHandler(CMDTX, s.txHandler.handleMessage)
	s.RegisterHandler(CMDPooledTxHashes, s.hashHandler.handleMessage)
	s.RegisterHandler(CMDGetData, s.handleGetDataCmd)
	s.RegisterHandler(CMDNotFound, s.handleNotFoundCmd)
	return s, nil
}

// Start starts transaction broadcasting. Mempool subscriptions must be
// running already.
func (s *Server) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("starting transaction relay",
		zap.Int("batch size", s.TxBatchSize),
		zap.Duration("batch interval", s.TxBatchInterval),
		zap.Bool("hash announcements", s.HashAnnouncements))
	s.txSender.start()
	s.hashSender.start()
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.requestsLoop()
}

// Shutdown stops transaction broadcasting.
func (s *Server) Shutdown() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.log.Info("shutting down transaction relay")
	close(s.quit)
	<-s.done
	s.txSender.shutdown()
	s.hashSender.shutdown()
}

// requestsLoop moves unanswered transaction requests to other peers.
func (s *Server) requestsLoop() {
	ticker := time.NewTicker(s.TxRequestTimeout / 2)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.requestTxs(s.requests.Expire())
		}
	}
}

// TxHandler returns full transactions handler of the server.
func (s *Server) TxHandler() *TxHandler {
	return s.txHandler
}

// HashHandler returns transaction announcements handler of the server.
func (s *Server) HashHandler() *HashHandler {
	return s.hashHandler
}

// Tracker returns the tracker of transactions known to peers.
func (s *Server) Tracker() *txtracker.Tracker {
	return s.tracker
}

// RegisterHandler sets the handler for the given command replacing the
// existing one if any.
func (s *Server) RegisterHandler(cmd CommandType, f func(Peer, *Message) error) {
	s.handlersLock.Lock()
	s.handlers[cmd] = f
	s.handlersLock.Unlock()
}

// HandleMessage processes the message received from the peer.
func (s *Server) HandleMessage(p Peer, msg *Message) error {
	s.handlersLock.RLock()
	f, ok := s.handlers[msg.Command]
	s.handlersLock.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, msg.Command)
	}
	start := time.Now()
	defer func() {
		addCmdTimeMetric(msg.Command, time.Since(start))
	}()
	return f(p, msg)
}

// RegisterPeer adds the peer to the list of peers transactions are
// relayed to.
func (s *Server) RegisterPeer(p Peer) {
	s.tracker.OnPeerConnected(p)
	s.lock.Lock()
	s.peers[p] = true
	updatePeersConnectedMetric(len(s.peers))
	s.lock.Unlock()
	s.log.Debug("new peer registered", zap.String("peer", p.ID()))
}

// UnregisterPeer drops all the state related to the peer including
// pending transaction requests.
func (s *Server) UnregisterPeer(p Peer, reason error) {
	s.lock.Lock()
	_, ok := s.peers[p]
	delete(s.peers, p)
	updatePeersConnectedMetric(len(s.peers))
	s.lock.Unlock()
	s.tracker.OnPeerDisconnected(p)
	if ok {
		s.log.Debug("peer unregistered", zap.String("peer", p.ID()), zap.Error(reason))
	}
	s.requestTxs(s.requests.DropPeer(p))
}

// PeerCount returns the number of registered peers.
func (s *Server) PeerCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.peers)
}

// getPeers returns the current list of peers matching the given filter.
func (s *Server) getPeers(isOK func(Peer) bool) []Peer {
	s.lock.RLock()
	defer s.lock.RUnlock()

	peers := make([]Peer, 0, len(s.peers))
	for p := range s.peers {
		if isOK != nil && !isOK(p) {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

// announces returns whether the peer gets transaction hashes instead of
// full transactions.
func (s *Server) announces(p Peer) bool {
	if !s.HashAnnouncements {
		return false
	}
	a, ok := p.(Announcer)
	return ok && a.SupportsTxAnnouncements()
}

// send queues the message to the peer. Failures are not fatal, the peer
// is either gone or too slow.
func (s *Server) send(p Peer, msg *Message) bool {
	err := p.EnqueueP2PMessage(msg)
	if err == nil {
		return true
	}
	s.log.Debug("failed to send message",
		zap.String("peer", p.ID()),
		zap.Stringer("command", msg.Command),
		zap.Error(err))
	if errors.Is(err, ErrPeerGone) {
		s.UnregisterPeer(p, err)
	}
	return false
}
