package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the config directory.
	DefaultConfigPath = "./config"
	// DefaultConfigFile is the name of the config file in the config directory.
	DefaultConfigFile = "txrelay.yml"

	// DefaultMaxPoolSize is the default number of transactions the pool can hold.
	DefaultMaxPoolSize = 50000
	// DefaultRetentionPeriod is the default period a transaction can stay in the pool.
	DefaultRetentionPeriod = 13 * time.Hour
	// DefaultTxBatchSize is the default number of transactions broadcasted at once.
	DefaultTxBatchSize = 64
	// DefaultTxBatchInterval is the default maximum broadcast delay.
	DefaultTxBatchInterval = 200 * time.Millisecond
	// DefaultKnownTxsPerPeer is the default number of hashes remembered per peer.
	DefaultKnownTxsPerPeer = 32768
	// DefaultTxRequestTimeout is the default time to wait for a requested
	// transaction.
	DefaultTxRequestTimeout = 10 * time.Second
)

// Version is the version of the node, set at build time.
var Version string

// Config top level struct representing the config
// for the node.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given path. relativePath is
// an optional prefix for all relative paths in the config.
func Load(path string, relativePath ...string) (Config, error) {
	return LoadFile(filepath.Join(path, DefaultConfigFile), relativePath...)
}

// LoadFile loads config from the provided path.
func LoadFile(configPath string, relativePath ...string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Parse(configData, relativePath...)
}

// Parse decodes YAML config data applying defaults to missing values and
// validates the result.
func Parse(configData []byte, relativePath ...string) (Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if len(relativePath) == 1 && relativePath[0] != "" {
		updateRelativePaths(relativePath[0], &config)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Default returns the configuration with all values set to defaults.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			Mempool: Mempool{
				MaxSize:         DefaultMaxPoolSize,
				RetentionPeriod: DefaultRetentionPeriod,
				Policy:          mempool.FeePolicyName,
			},
			P2P: P2P{
				TxBatchSize:      DefaultTxBatchSize,
				TxBatchInterval:  DefaultTxBatchInterval,
				KnownTxsPerPeer:  DefaultKnownTxsPerPeer,
				TxRequestTimeout: DefaultTxRequestTimeout,
			},
			Journal: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
		},
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	return c.ApplicationConfiguration.Validate()
}

// updateRelativePaths updates relative paths in the config structure based on the provided relative path.
func updateRelativePaths(relativePath string, config *Config) {
	updatePath := func(path *string) {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(relativePath, *path)
		}
	}

	updatePath(&config.ApplicationConfiguration.Journal.LevelDBOptions.DataDirectoryPath)
	updatePath(&config.ApplicationConfiguration.Journal.BoltDBOptions.FilePath)
	updatePath(&config.ApplicationConfiguration.Logger.LogPath)
}

var errNegative = errors.New("can't be negative")
