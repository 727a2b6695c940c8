package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-fire/config"
	"go-fire/debug"
	"go-fire/metrics"
	"go-fire/midi"
	"go-fire/theme"
	"go-fire/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Log.Debug {
		if err := debug.Enable(cfg.Log.Path); err != nil {
			return err
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	drv := drivers.Get()
	if drv == nil {
		return errors.New("no MIDI driver registered")
	}

	opts := cfg.ManagerOptions()
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		opts.Session.Metrics = metrics.New(reg)
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				debug.Warn("metrics", err, "server stopped")
			}
		}()
		defer srv.Close()
	}

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(drv, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		deviceMgr.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	m := tui.NewModel(ctx, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	return err
}
