/*
Package dbconfig is a micropackage that contains storage DB configuration options.
*/
package dbconfig

import "fmt"

// Supported DB types.
const (
	LevelDB    = "leveldb"
	BoltDB     = "boltdb"
	InMemoryDB = "inmemory"
)

type (
	// DBConfiguration describes configuration for DB. Supported types:
	// [LevelDB], [BoltDB] or [InMemoryDB] (journal is lost on restart).
	DBConfiguration struct {
		Type           string         `yaml:"Type"`
		LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
		BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
	}
	// LevelDBOptions configuration for LevelDB.
	LevelDBOptions struct {
		DataDirectoryPath string `yaml:"DataDirectoryPath"`
		ReadOnly          bool   `yaml:"ReadOnly"`
	}
	// BoltDBOptions configuration for BoltDB.
	BoltDBOptions struct {
		FilePath string `yaml:"FilePath"`
		ReadOnly bool   `yaml:"ReadOnly"`
	}
)

// Validate checks that the DB type is known and its options are set.
func (c DBConfiguration) Validate() error {
	switch c.Type {
	case InMemoryDB:
	case LevelDB:
		if c.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("%s: empty DataDirectoryPath", c.Type)
		}
	case BoltDB:
		if c.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("%s: empty FilePath", c.Type)
		}
	default:
		return fmt.Errorf("unknown storage: %q", c.Type)
	}
	return nil
}
