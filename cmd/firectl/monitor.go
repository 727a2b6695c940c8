package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"go-fire/debug"
	"go-fire/metrics"
	"go-fire/midi"
	"go-fire/tui"
)

func newMonitorCmd(g *globals) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print events from every Fire and light pressed pads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = cfg.Metrics.Addr
			}
			drv, err := driver()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			opts := cfg.SessionOptions()
			opts.OnOverflow = func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				opts.Metrics = metrics.New(reg)
				srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(reg)}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						debug.Warn("metrics", err, "server stopped")
					}
				}()
				defer srv.Close()
				fmt.Fprintf(out, "metrics on http://%s/metrics\n", metricsAddr)
			}

			controllers, attachErr := midi.AttachToAll(drv, cfg.Discovery.PortPrefix, opts)
			if attachErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", attachErr)
			}
			if len(controllers) == 0 {
				return errors.New("no Fire found")
			}

			return monitor(ctx, out, controllers)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// monitor is the single consumer loop: it owns every controller's frame
func monitor(ctx context.Context, out io.Writer, controllers []*midi.FireController) error {
	byID := make(map[string]*midi.FireController, len(controllers))
	pads := make(map[string]*tui.Pads, len(controllers))
	sources := make([]midi.Source, 0, len(controllers))
	for _, c := range controllers {
		byID[c.ID()] = c
		pads[c.ID()] = tui.NewPads(c.Frame())
		sources = append(sources, c)
		if err := c.Render(); err != nil {
			fmt.Fprintf(out, "render %s: %v\n", c.ID(), err)
		}
		fmt.Fprintf(out, "listening on %s\n", c.ID())
	}
	defer func() {
		for _, c := range controllers {
			c.Frame().Clear()
			if err := c.Render(); err != nil {
				debug.Warn("monitor", err, "clear on exit")
			}
			c.Close()
		}
	}()

	stream, err := midi.Multiplex(ctx, sources...)
	if err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	for {
		t, ok := stream.Next(ctx)
		if !ok {
			return nil
		}
		fmt.Fprintf(out, "%s  %-20s  %s\n", time.Now().Format("15:04:05.000"), t.DeviceID, t.Event)
		if pads[t.DeviceID].Handle(t.Event) {
			if err := byID[t.DeviceID].Render(); err != nil {
				fmt.Fprintf(out, "render %s: %v\n", t.DeviceID, err)
			}
		}
	}
}
