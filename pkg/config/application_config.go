package config

import (
	"fmt"

	"github.com/nspcc-dev/txrelay/pkg/core/storage/dbconfig"
)

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	Logger `yaml:",inline"`

	Mempool    Mempool                  `yaml:"Mempool"`
	P2P        P2P                      `yaml:"P2P"`
	Prometheus BasicService             `yaml:"Prometheus"`
	Pprof      BasicService             `yaml:"Pprof"`
	Journal    dbconfig.DBConfiguration `yaml:"Journal"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	if err := a.Mempool.Validate(); err != nil {
		return fmt.Errorf("invalid Mempool config: %w", err)
	}
	if err := a.P2P.Validate(); err != nil {
		return fmt.Errorf("invalid P2P config: %w", err)
	}
	if err := a.Journal.Validate(); err != nil {
		return fmt.Errorf("invalid Journal config: %w", err)
	}
	return nil
}
