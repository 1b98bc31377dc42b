package server

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/txrelay/cli/options"
	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/nspcc-dev/txrelay/pkg/core/block"
	"github.com/nspcc-dev/txrelay/pkg/core/blockfeed"
	"github.com/nspcc-dev/txrelay/pkg/core/mempool"
	"github.com/nspcc-dev/txrelay/pkg/core/storage"
	"github.com/nspcc-dev/txrelay/pkg/core/syncstate"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/services/metrics"
	"github.com/nspcc-dev/txrelay/pkg/services/txpool"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errEmptySender = errors.New("empty sender")

// NewCommands returns 'node' command.
func NewCommands() []cli.Command {
	cfgFlags := []cli.Flag{options.Config, options.ConfigFile, options.RelativePath}
	cfgWithSync := append([]cli.Flag{}, cfgFlags...)
	cfgWithSync = append(cfgWithSync, options.Debug, cli.UintFlag{
		Name:  "sync-height",
		Usage: "index of the local chain block that completes the initial synchronization",
	})
	return []cli.Command{
		{
			Name:   "node",
			Usage:  "start a transaction relay node",
			Action: startServer,
			Flags:  cfgWithSync,
		},
		{
			Name:   "config",
			Usage:  "validate the node configuration",
			Action: checkConfig,
			Flags:  cfgFlags,
		},
	}
}

func checkConfig(ctx *cli.Context) error {
	if err := cmdargsEnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "configuration is valid: pool size %d, policy %s, journal %s\n",
		cfg.ApplicationConfiguration.Mempool.MaxSize,
		cfg.ApplicationConfiguration.Mempool.Policy,
		cfg.ApplicationConfiguration.Journal.Type)
	return nil
}

func cmdargsEnsureNone(ctx *cli.Context) error {
	if ctx.Args().Present() {
		return cli.NewExitError(fmt.Errorf("unexpected arguments: %v", ctx.Args()), 1)
	}
	return nil
}

// verifyTx is the stateless transaction check of a standalone node.
func verifyTx(tx *transaction.Transaction) error {
	if tx.Sender.Equals(util.Uint160{}) {
		return errEmptySender
	}
	return nil
}

func initTxPool(cfg config.ApplicationConfiguration, feed *blockfeed.Feed, st *syncstate.State, log *zap.Logger) (*txpool.Service, storage.Store, error) {
	store, err := storage.NewStore(cfg.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open journal: %w", err)
	}
	svc, err := txpool.New(txpool.Config{
		Mempool: cfg.Mempool,
		P2P:     cfg.P2P,
	}, feed, st, mempool.VerifierFunc(verifyTx), store, log)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}

func startServer(ctx *cli.Context) error {
	if err := cmdargsEnsureNone(ctx); err != nil {
		return err
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var logDebug = ctx.Bool("debug")
	log, logLevel, err := options.HandleLoggingParams(logDebug, cfg.ApplicationConfiguration.Logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	st := syncstate.New(cfg.ApplicationConfiguration.Mempool.InitialSync)
	feed, err := blockfeed.New(log, st, uint32(ctx.Uint("sync-height")))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	svc, store, err := initTxPool(cfg.ApplicationConfiguration, feed, st, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close journal", zap.Error(err))
		}
	}()

	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)
	if err = prometheus.Start(); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to start Prometheus service: %w", err), 1)
	}
	if err = pprof.Start(); err != nil {
		prometheus.ShutDown()
		return cli.NewExitError(fmt.Errorf("failed to start Pprof service: %w", err), 1)
	}

	feed.Run()
	if err = svc.Start(); err != nil {
		feed.Close()
		pprof.ShutDown()
		prometheus.ShutDown()
		return cli.NewExitError(fmt.Errorf("failed to start transaction pool: %w", err), 1)
	}
	if err = feed.AddBlock(block.New(0, uint64(time.Now().UnixMilli()))); err != nil {
		log.Warn("failed to add genesis block", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, sighup, sigusr1)
	defer signal.Stop(sigCh)

	fmt.Fprintln(ctx.App.Writer, "transaction relay node is running")
Main:
	for sig := range sigCh {
		switch sig {
		case sighup:
			newCfg, err := options.GetConfigFromContext(ctx)
			if err != nil {
				log.Warn("can't reread the config file, signal ignored", zap.Error(err))
				break // Continue working.
			}
			if !logDebug {
				lvl := zapcore.InfoLevel
				if newCfg.ApplicationConfiguration.LogLevel != "" {
					lvl, err = zapcore.ParseLevel(newCfg.ApplicationConfiguration.LogLevel)
					if err != nil {
						log.Warn("wrong LogLevel in ApplicationConfiguration, signal ignored", zap.Error(err))
						break
					}
				}
				logLevel.SetLevel(lvl)
				log.Info("log level changed", zap.Stringer("level", lvl))
			}
		case sigusr1:
			pool := svc.Pool()
			log.Info("transaction pool state",
				zap.Int("count", pool.Count()),
				zap.Int("capacity", pool.Capacity()),
				zap.Bool("enabled", pool.IsEnabled()),
				zap.Int("peers", svc.Server().PeerCount()),
				zap.Uint32("height", feed.BlockHeight()))
		default:
			break Main
		}
	}

	svc.Shutdown()
	feed.Close()
	pprof.ShutDown()
	prometheus.ShutDown()
	return nil
}
