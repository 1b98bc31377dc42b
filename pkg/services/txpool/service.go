/*
Package txpool assembles the transaction pool, its gossip server and the
block inclusion pruner into a node service gated by the initial
synchronization.
*/
package txpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/nspcc-dev/txrelay/pkg/core/block"
	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/storage"
	"github.com/nspcc-dev/txrelay/pkg/core/syncstate"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/network"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// blockChanSize is the size of the new blocks channel.
const blockChanSize = 16

// ErrStopped is returned on an attempt to start the service after Shutdown.
var ErrStopped = errors.New("service is stopped")

type (
	// Blockchain is the chain the pool follows to prune included
	// transactions.
	Blockchain interface {
		SubscribeForBlocks(ch chan *block.Block)
		UnsubscribeFromBlocks(ch chan *block.Block)
	}

	// Config is the service configuration.
	Config struct {
		Mempool config.Mempool
		P2P     config.P2P
	}

	// Service is the transaction pool service.
	Service struct {
		Config

		log      *zap.Logger
		chain    Blockchain
		sync     *syncstate.State
		verifier mempool.Verifier
		pool     *mempool.Pool
		server   *network.Server
		journal  *Journal

		// gateLock serializes block subscription changes.
		gateLock   sync.Mutex
		subscribed atomic.Bool
		started    atomic.Bool
		stopped    atomic.Bool

		blockCh chan *block.Block
		quit    chan struct{}
		done    chan struct{}
	}
)

// New creates the service. Inbound transaction handlers are enabled and the
// pool follows the chain once the initial synchronization is done (or
// right away if there is no such phase). store is optional, local
// transactions are not journaled without it.
func New(cfg Config, chain Blockchain, st *syncstate.State, v mempool.Verifier, store storage.Store, log *zap.Logger) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is a required parameter")
	}
	if chain == nil {
		return nil, errors.New("blockchain is a required parameter")
	}
	if st == nil {
		return nil, errors.New("sync state is a required parameter")
	}
	policy, err := mempool.PolicyByName(cfg.Mempool.Policy)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", "txpool"))

	s := &Service{
		Config:   cfg,
		log:      log,
		chain:    chain,
		sync:     st,
		verifier: v,
		blockCh:  make(chan *block.Block, blockChanSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.pool = mempool.New(cfg.Mempool.MaxSize, policy, true, updateMempoolMetrics)
	s.pool.SetMinFee(cfg.Mempool.MinFee)
	s.pool.SetRetentionPeriod(cfg.Mempool.RetentionPeriod)
	s.pool.SetEnabler(s.IsEnabled)

	s.server, err = network.NewServer(network.NewServerConfig(cfg.P2P), s.pool, v, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction relay: %w", err)
	}
	if store != nil {
		s.journal = NewJournal(store, log)
	}

	if !st.IsInitialSyncDone() {
		log.Info("transaction pool is disabled until initial sync is done")
	}
	st.OnInitialSyncDone(s.onInitialSyncDone)
	return s, nil
}

// Name returns service name.
func (s *Service) Name() string {
	return "txpool"
}

// Pool returns the transaction pool of the service.
func (s *Service) Pool() *mempool.Pool {
	return s.pool
}

// Server returns the transaction relay server.
func (s *Service) Server() *network.Server {
	return s.server
}

// Journal returns the local transactions journal, nil if the service has
// no store.
func (s *Service) Journal() *Journal {
	return s.journal
}

// IsEnabled returns whether the pool accepts peer transactions and follows
// the chain.
func (s *Service) IsEnabled() bool {
	return s.sync.IsInitialSyncDone()
}

// IsSubscribed returns whether the service receives new blocks.
func (s *Service) IsSubscribed() bool {
	return s.subscribed.Load()
}

func (s *Service) onInitialSyncDone() {
	s.server.TxHandler().SetEnabled(true)
	s.server.HashHandler().SetEnabled(true)
	s.log.Info("transaction pool is enabled")
	s.subscribe()
}

// subscribe subscribes the service to new blocks once it's both started
// and synchronized.
func (s *Service) subscribe() {
	s.gateLock.Lock()
	defer s.gateLock.Unlock()
	if !s.started.Load() || !s.IsEnabled() {
		return
	}
	if s.subscribed.CompareAndSwap(false, true) {
		s.chain.SubscribeForBlocks(s.blockCh)
		s.log.Debug("subscribed for blocks")
	}
}

// Start runs the service. Journaled transactions are restored into the
// pool. The service can't be started again after Shutdown.
func (s *Service) Start() error {
	if s.stopped.Load() {
		return ErrStopped
	}
	if !s.started.CompareAndSwap(false, true) {
		s.log.Info("service already started")
		return nil
	}
	s.log.Info("starting service",
		zap.Int("capacity", s.pool.Capacity()),
		zap.String("policy", s.pool.Policy().Name()),
		zap.Duration("retention", s.Mempool.RetentionPeriod))
	s.pool.RunSubscriptions()
	s.server.Start()
	s.pool.RunRetention()
	go s.run()
	s.subscribe()

	if s.journal != nil {
		n, err := s.journal.Load(s.restore)
		if err != nil {
			s.Shutdown()
			return err
		}
		s.log.Info("journal restored", zap.Int("transactions", n))
	}
	return nil
}

// restore re-adds a journaled transaction to the pool.
func (s *Service) restore(tx *transaction.Transaction) error {
	err := s.pool.Add(tx, s.verifier)
	if errors.Is(err, mempool.ErrDup) {
		return nil
	}
	return err
}

// Shutdown stops the service.
func (s *Service) Shutdown() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.stopped.Store(true)
	s.log.Info("shutting down service")
	close(s.quit)
	<-s.done
	s.server.Shutdown()
	s.pool.StopRetention()
	s.pool.StopSubscriptions()
	if s.journal != nil {
		s.journal.Rotate(s.pool.ContainsKey)
	}
	_ = s.log.Sync()
}

// SubmitLocal adds a locally created transaction to the pool. Unlike
// transactions received from peers, the rejection reason is returned to
// the caller.
func (s *Service) SubmitLocal(tx *transaction.Transaction) error {
	err := s.pool.Add(tx, s.verifier)
	addLocalTxMetric(err == nil)
	if err != nil {
		return fmt.Errorf("transaction %s rejected: %w", tx.Hash().StringBE(), err)
	}
	if s.journal != nil {
		if jErr := s.journal.Insert(tx); jErr != nil {
			s.log.Warn("transaction is not journaled", zap.Error(jErr))
		}
	}
	return nil
}

// run is the block inclusion pruning loop.
func (s *Service) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			s.unsubscribe()
			return
		case b := <-s.blockCh:
			s.onBlock(b)
		}
	}
}

// unsubscribe drops the block subscription. The chain can be blocked on
// the block channel, so it's drained until unsubscription completes.
func (s *Service) unsubscribe() {
	s.gateLock.Lock()
	defer s.gateLock.Unlock()
	if !s.subscribed.CompareAndSwap(true, false) {
		return
	}
	unsubbed := make(chan struct{})
	go func() {
		s.chain.UnsubscribeFromBlocks(s.blockCh)
		close(unsubbed)
	}()
	for {
		select {
		case <-s.blockCh:
		case <-unsubbed:
			return
		}
	}
}

// onBlock removes transactions included into the block from the pool.
func (s *Service) onBlock(b *block.Block) {
	hashes := b.Hashes()
	n := s.pool.RemoveIncluded(hashes)
	s.server.HashHandler().RequestsDone(hashes...)
	addPrunedMetric(n)
	var rotated int
	if s.journal != nil {
		rotated = s.journal.Rotate(s.pool.ContainsKey)
	}
	s.log.Debug("block processed",
		zap.Uint32("index", b.Index),
		zap.Int("included", len(hashes)),
		zap.Int("pruned", n),
		zap.Int("unjournaled", rotated))
}
