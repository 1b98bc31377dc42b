package dbconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, DBConfiguration{Type: InMemoryDB}.Validate())
	require.Error(t, DBConfiguration{Type: "redis"}.Validate())
	require.Error(t, DBConfiguration{}.Validate())

	require.Error(t, DBConfiguration{Type: LevelDB}.Validate())
	require.NoError(t, DBConfiguration{Type: LevelDB, LevelDBOptions: LevelDBOptions{DataDirectoryPath: "./db"}}.Validate())

	require.Error(t, DBConfiguration{Type: BoltDB}.Validate())
	require.NoError(t, DBConfiguration{Type: BoltDB, BoltDBOptions: BoltDBOptions{FilePath: "./db.bolt"}}.Validate())
}
