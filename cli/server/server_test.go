package server

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/nspcc-dev/txrelay/pkg/core/blockfeed"
	"github.com/nspcc-dev/txrelay/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/txrelay/pkg/core/syncstate"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"go.uber.org/zap/zaptest"
)

func newTestContext(t *testing.T, args map[string]string, out *bytes.Buffer) *cli.Context {
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	for k, v := range args {
		set.String(k, v, "")
	}
	app := cli.NewApp()
	app.Writer = out
	return cli.NewContext(app, set, nil)
}

func TestCheckConfig(t *testing.T) {
	out := new(bytes.Buffer)
	ctx := newTestContext(t, map[string]string{"config-path": "../../config"}, out)
	require.NoError(t, checkConfig(ctx))
	require.Contains(t, out.String(), "configuration is valid")

	cfgFile := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("ApplicationConfiguration:\n  Mempool:\n    MaxSize: -1\n"), 0o644))
	ctx = newTestContext(t, map[string]string{"config-file": cfgFile}, out)
	require.Error(t, checkConfig(ctx))
}

func TestVerifyTx(t *testing.T) {
	require.ErrorIs(t, verifyTx(transaction.New(util.Uint160{}, 0, 1, nil)), errEmptySender)
	require.NoError(t, verifyTx(transaction.New(util.Uint160{1}, 0, 1, nil)))
}

func TestInitTxPool(t *testing.T) {
	log := zaptest.NewLogger(t)
	st := syncstate.New(true)
	feed, err := blockfeed.New(log, st, 0)
	require.NoError(t, err)

	cfg := config.Default().ApplicationConfiguration
	cfg.Journal = dbconfig.DBConfiguration{
		Type:          dbconfig.BoltDB,
		BoltDBOptions: dbconfig.BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "journal.bolt")},
	}
	svc, store, err := initTxPool(cfg, feed, st, log)
	require.NoError(t, err)
	require.NotNil(t, svc.Journal())
	require.False(t, svc.IsEnabled())
	require.NoError(t, store.Close())

	cfg.Journal.Type = "unknown"
	_, _, err = initTxPool(cfg, feed, st, log)
	require.Error(t, err)
}
