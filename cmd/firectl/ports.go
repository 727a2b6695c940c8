package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-fire/midi"
)

const listTimeout = 3 * time.Second

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all MIDI ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drv, err := driver()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "(waiting up to %s...)\n", listTimeout)

			type result struct {
				ins  []drivers.In
				outs []drivers.Out
				err  error
			}
			ch := make(chan result, 1)
			go func() {
				var r result
				r.ins, r.err = drv.Ins()
				if r.err == nil {
					r.outs, r.err = drv.Outs()
				}
				ch <- r
			}()

			select {
			case r := <-ch:
				if r.err != nil {
					return r.err
				}
				fmt.Fprintln(out, "=== MIDI Input Ports ===")
				for i, p := range r.ins {
					fmt.Fprintf(out, "  %d: %s\n", i, p.String())
				}
				fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
				for i, p := range r.outs {
					fmt.Fprintf(out, "  %d: %s\n", i, p.String())
				}
				return nil
			case <-time.After(listTimeout):
				return fmt.Errorf("port enumeration timed out after %s", listTimeout)
			}
		},
	}
}

func newDetectCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Find Fire port pairs without opening them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			drv, err := driver()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Looking for ports starting with %q...\n", cfg.Discovery.PortPrefix)
			names, err := midi.MatchingPortNames(drv, cfg.Discovery.PortPrefix)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "No Fire found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintf(out, "Found: %s\n", name)
			}
			fmt.Fprintf(out, "\n%d Fire(s) detected\n", len(names))
			return nil
		},
	}
}
