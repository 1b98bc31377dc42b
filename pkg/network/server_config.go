package network

import (
	"time"

	"github.com/nspcc-dev/txrelay/pkg/config"
)

type (
	// ServerConfig holds the server configuration.
	ServerConfig struct {
		// TxBatchSize is the number of new transactions that triggers
		// an immediate broadcast.
		TxBatchSize int

		// TxBatchInterval is the maximum time a new transaction waits
		// for the batch to be filled before it's broadcasted.
		TxBatchInterval time.Duration

		// KnownTxsPerPeer is the number of transaction hashes remembered
		// for every peer.
		KnownTxsPerPeer int

		// TxMessageKeepAlive is the maximum age of inbound transaction
		// messages, older ones are dropped. Zero disables the check.
		TxMessageKeepAlive time.Duration

		// TxRequestTimeout is the time a peer is given to answer a
		// transaction request before it's sent to another peer.
		TxRequestTimeout time.Duration

		// HashAnnouncements enables hash announcements for peers supporting
		// them, other peers receive full transactions.
		HashAnnouncements bool
	}
)

// NewServerConfig creates a new ServerConfig struct
// using the main applications config.
func NewServerConfig(cfg config.P2P) ServerConfig {
	return ServerConfig{
		TxBatchSize:        cfg.TxBatchSize,
		TxBatchInterval:    cfg.TxBatchInterval,
		KnownTxsPerPeer:    cfg.KnownTxsPerPeer,
		TxMessageKeepAlive: cfg.TxMessageKeepAlive,
		TxRequestTimeout:   cfg.TxRequestTimeout,
		HashAnnouncements:  cfg.HashAnnouncements,
	}
}
