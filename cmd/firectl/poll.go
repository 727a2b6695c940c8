package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"go-fire/midi"
)

func newPollCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Watch Fires connect and disconnect",
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
			opts := cfg.ManagerOptions()
			fmt.Fprintf(out, "Polling every %s. Connect/disconnect a Fire to test. Ctrl+C to exit.\n", opts.PollInterval)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			dm := midi.NewDeviceManager(drv, opts)
			devices, unsub := subscribe(ctx, dm)
			defer unsub()

			done := make(chan struct{})
			go func() {
				defer close(done)
				watch(ctx, out, dm, devices)
			}()

			dm.Run(ctx)
			<-done
			return nil
		},
	}
}

// subscribe hands device events over to the consumer goroutine
func subscribe(ctx context.Context, dm *midi.DeviceManager) (<-chan midi.DeviceEvent, func()) {
	devices := make(chan midi.DeviceEvent, 16)
	unsub := dm.Subscribe(func(ev midi.DeviceEvent) {
		select {
		case devices <- ev:
		case <-ctx.Done():
		}
	})
	return devices, unsub
}

// watch is the only consumer for poll: it reports device changes, lights
// pad 0 on every new Fire and drains the merged stream so queues never
// back up.
func watch(ctx context.Context, out io.Writer, dm *midi.DeviceManager, devices <-chan midi.DeviceEvent) {
	stream := dm.Stream().Events()
	for {
		select {
		case ev := <-devices:
			fmt.Fprintf(out, "[%s] %s %s\n", time.Now().Format("15:04:05"), ev.Kind, ev.ID)
			if ev.Kind == midi.DeviceConnected {
				if err := lightPad(ev.Controller, 0); err != nil {
					fmt.Fprintf(out, "light %s: %v\n", ev.ID, err)
				}
			}
		case _, ok := <-stream:
			if !ok {
				stream = nil
			}
		case <-ctx.Done():
			return
		}
	}
}

// lightPad turns one pad white with a one-pad frame
func lightPad(c *midi.FireController, pad int) error {
	if err := c.Frame().SetLED(pad, midi.MaxColor, midi.MaxColor, midi.MaxColor); err != nil {
		return err
	}
	return c.RenderPads(pad)
}
