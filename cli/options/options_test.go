package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"go.uber.org/zap/zapcore"
)

func TestHandleLoggingParams(t *testing.T) {
	d := t.TempDir()
	testLog := filepath.Join(d, "file.log")

	t.Run("logdir is a file", func(t *testing.T) {
		logfile := filepath.Join(d, "logdir")
		require.NoError(t, os.WriteFile(logfile, []byte{1, 2, 3}, os.ModePerm))
		cfg := config.Logger{
			LogPath: filepath.Join(logfile, "file.log"),
		}
		_, lvl, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
		require.Nil(t, lvl)
	})

	t.Run("broken level", func(t *testing.T) {
		cfg := config.Logger{
			LogPath:  testLog,
			LogLevel: "qwerty",
		}
		_, lvl, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
		require.Nil(t, lvl)
	})

	t.Run("broken encoding", func(t *testing.T) {
		_, _, err := HandleLoggingParams(false, config.Logger{LogEncoding: "xml"})
		require.Error(t, err)
	})

	t.Run("default", func(t *testing.T) {
		cfg := config.Logger{
			LogPath: testLog,
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = logger.Sync()
		})
		require.Equal(t, zapcore.InfoLevel, lvl.Level())
		require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("warn", func(t *testing.T) {
		cfg := config.Logger{
			LogPath:     testLog,
			LogLevel:    "warn",
			LogEncoding: "json",
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = logger.Sync()
		})
		require.Equal(t, zapcore.WarnLevel, lvl.Level())
		require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
		require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("debug", func(t *testing.T) {
		cfg := config.Logger{
			LogPath:  testLog,
			LogLevel: "warn",
		}
		logger, lvl, err := HandleLoggingParams(true, cfg)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = logger.Sync()
		})
		require.Equal(t, zapcore.DebugLevel, lvl.Level())
		require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestGetConfigFromContext(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ExitOnError)
	set.String("config-path", "../../config", "")
	ctx := cli.NewContext(cli.NewApp(), set, nil)
	cfg, err := GetConfigFromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, config.DefaultMaxPoolSize, cfg.ApplicationConfiguration.Mempool.MaxSize)

	set = flag.NewFlagSet("flagSet", flag.ExitOnError)
	set.String("config-file", filepath.Join(t.TempDir(), "missing.yml"), "")
	ctx = cli.NewContext(cli.NewApp(), set, nil)
	_, err = GetConfigFromContext(ctx)
	require.Error(t, err)
}
