package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go-fire/midi"
)

func newColorCubeCmd(g *globals) *cobra.Command {
	var hue float64
	var sweep bool

	cmd := &cobra.Command{
		Use:   "colorcube",
		Short: "Paint the color cube (or a hue sweep) on every Fire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return paintAll(cmd, g, func(f *midi.LEDFrame) {
				if sweep {
					f.SetHueSweep(hue)
					return
				}
				f.SetColorCube()
			})
		},
	}
	cmd.Flags().BoolVar(&sweep, "sweep", false, "paint a hue sweep instead")
	cmd.Flags().Float64Var(&hue, "hue", 0, "hue offset in degrees for --sweep")
	return cmd
}

func newClearCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Turn every pad off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return paintAll(cmd, g, func(f *midi.LEDFrame) { f.Clear() })
		},
	}
}

// paintAll attaches to every Fire, applies paint to its frame and renders
func paintAll(cmd *cobra.Command, g *globals, paint func(f *midi.LEDFrame)) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	drv, err := driver()
	if err != nil {
		return err
	}

	controllers, attachErr := midi.AttachToAll(drv, cfg.Discovery.PortPrefix, cfg.SessionOptions())
	if len(controllers) == 0 {
		if attachErr != nil {
			return attachErr
		}
		return errors.New("no Fire found")
	}

	out := cmd.OutOrStdout()
	errs := []error{attachErr}
	for _, c := range controllers {
		paint(c.Frame())
		if err := c.Render(); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Fprintf(out, "painted %s\n", c.ID())
		}
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
