package config

import (
	"fmt"
	"time"
)

// P2P holds transaction relay configuration.
type P2P struct {
	// TxBatchSize is the number of new transactions that triggers an
	// immediate broadcast.
	TxBatchSize int `yaml:"TxBatchSize"`
	// TxBatchInterval is the maximum broadcast delay of a new transaction.
	TxBatchInterval time.Duration `yaml:"TxBatchInterval"`
	// KnownTxsPerPeer is the number of transaction hashes remembered for
	// every peer.
	KnownTxsPerPeer int `yaml:"KnownTxsPerPeer"`
	// TxMessageKeepAlive is the maximum age of inbound transaction messages.
	TxMessageKeepAlive time.Duration `yaml:"TxMessageKeepAlive"`
	// TxRequestTimeout is the time a peer is given to answer a transaction
	// request before another announcer is asked.
	TxRequestTimeout time.Duration `yaml:"TxRequestTimeout"`
	// HashAnnouncements enables transaction hash announcements.
	HashAnnouncements bool `yaml:"HashAnnouncements"`
}

// Validate returns an error if the P2P configuration is not valid.
func (p P2P) Validate() error {
	if p.TxBatchSize < 0 {
		return fmt.Errorf("TxBatchSize %w", errNegative)
	}
	if p.TxBatchInterval < 0 {
		return fmt.Errorf("TxBatchInterval %w", errNegative)
	}
	if p.KnownTxsPerPeer < 0 {
		return fmt.Errorf("KnownTxsPerPeer %w", errNegative)
	}
	if p.TxMessageKeepAlive < 0 {
		return fmt.Errorf("TxMessageKeepAlive %w", errNegative)
	}
	if p.TxRequestTimeout < 0 {
		return fmt.Errorf("TxRequestTimeout %w", errNegative)
	}
	return nil
}
