package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
)

// Mempool is the transaction pool configuration.
type Mempool struct {
	// MaxSize is the maximum number of pooled transactions.
	MaxSize int `yaml:"MaxSize"`
	// RetentionPeriod is the maximum time a transaction can stay in the
	// pool, zero disables the limit.
	RetentionPeriod time.Duration `yaml:"RetentionPeriod"`
	// InitialSync makes the node wait for the initial chain
	// synchronization before accepting and pruning transactions.
	InitialSync bool `yaml:"InitialSync"`
	// MinFee is the minimum acceptable offered fee.
	MinFee uint64 `yaml:"MinFee"`
	// Policy is the transaction ordering policy, "fee" or "arrival".
	Policy string `yaml:"Policy"`
}

// Validate returns an error if the Mempool configuration is not valid.
func (m Mempool) Validate() error {
	if m.MaxSize <= 0 {
		return errors.New("MaxSize should be positive")
	}
	if m.RetentionPeriod < 0 {
		return fmt.Errorf("RetentionPeriod %w", errNegative)
	}
	if _, err := mempool.PolicyByName(m.Policy); err != nil {
		return err
	}
	return nil
}
