package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/txrelay/cli/server"
	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "TxRelay\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a TxRelay instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "txrelay"
	ctl.Version = config.Version
	ctl.Usage = "Pending transaction pool and relay node"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	return ctl
}
