// Command firectl inspects and drives Akai Fire controllers from the shell.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-fire/config"
	"go-fire/debug"
)

// globals shared by every subcommand
type globals struct {
	configPath string
	prefix     string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "firectl",
		Short:         "Akai Fire test and monitoring tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if g.verbose {
				debug.EnableWriter(debug.ConsoleWriter(cmd.ErrOrStderr()))
			}
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default ~/.config/go-fire/config.toml)")
	root.PersistentFlags().StringVar(&g.prefix, "prefix", "", "port name prefix to match")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newListCmd(g),
		newDetectCmd(g),
		newColorCubeCmd(g),
		newClearCmd(g),
		newMonitorCmd(g),
		newPollCmd(g),
		newInitCmd(g),
	)
	return root
}

// load reads the config and applies flag overrides
func (g *globals) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.prefix != "" {
		cfg.Discovery.PortPrefix = g.prefix
	}
	if cfg.Log.Debug && !g.verbose {
		if err := debug.Enable(cfg.Log.Path); err != nil {
			return nil, fmt.Errorf("enable debug log: %w", err)
		}
	}
	return cfg, nil
}

func driver() (drivers.Driver, error) {
	drv := drivers.Get()
	if drv == nil {
		return nil, errors.New("no MIDI driver registered")
	}
	return drv, nil
}
