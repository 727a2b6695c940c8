package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-fire/debug"
	"go-fire/midi"
	"go-fire/theme"
	"go-fire/widgets"
)

// maxLog is how many recent events the view keeps
const maxLog = 8

// device is everything the UI tracks for one Fire. A device that went
// away stays listed until it comes back.
type device struct {
	ctrl *midi.FireController
	pads *Pads
	last string
	err  error
	gone bool
}

type Model struct {
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	ctx      context.Context
	devices  map[string]*device
	deviceCh chan midi.DeviceEvent
	unsub    func()
	log      []string
	quitting bool
}

// StreamMsg carries one event from the merged controller stream
type StreamMsg midi.Tagged

// StreamEndedMsg is sent once the merged stream has ended
type StreamEndedMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(ctx context.Context, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	m := Model{
		DeviceMgr: deviceMgr,
		Theme:     th,
		ctx:       ctx,
		devices:   make(map[string]*device),
		deviceCh:  make(chan midi.DeviceEvent, 16),
	}
	ch := m.deviceCh
	m.unsub = deviceMgr.Subscribe(func(ev midi.DeviceEvent) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	})
	return m
}

// ListenForEvents reads the next event of the merged stream. The model is
// its only reader, so the frames it mutates have a single owner.
func ListenForEvents(ctx context.Context, stream *midi.Multiplexer) tea.Cmd {
	return func() tea.Msg {
		t, ok := stream.Next(ctx)
		if !ok {
			return StreamEndedMsg{}
		}
		return StreamMsg(t)
	}
}

func ListenForDevices(ctx context.Context, ch <-chan midi.DeviceEvent) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return DeviceEventMsg(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForEvents(m.ctx, m.DeviceMgr.Stream()),
		ListenForDevices(m.ctx, m.deviceCh),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.unsub()
			return m, tea.Quit
		case "c":
			m.each(func(d *device) { d.pads.Cube() })
		case "h":
			m.each(func(d *device) { d.pads.Sweep() })
		case "x":
			m.each(func(d *device) { d.pads.Clear() })
		}

	case StreamMsg:
		t := midi.Tagged(msg)
		if d := m.lookup(t.DeviceID); d != nil {
			d.last = t.Event.String()
			if d.pads.Handle(t.Event) {
				render(d)
			}
		}
		m.appendLog(fmt.Sprintf("%s  %s", shortID(t.DeviceID), t.Event))
		return m, ListenForEvents(m.ctx, m.DeviceMgr.Stream())

	case StreamEndedMsg:
		m.appendLog("event stream ended")
		return m, nil

	case DeviceEventMsg:
		ev := midi.DeviceEvent(msg)
		switch ev.Kind {
		case midi.DeviceConnected:
			if d, ok := m.devices[ev.ID]; !ok || d.ctrl != ev.Controller {
				m.attach(ev.ID, ev.Controller)
			}
		case midi.DeviceDisconnected:
			if d, ok := m.devices[ev.ID]; ok {
				d.gone = true
			}
		}
		m.appendLog(fmt.Sprintf("%s  %s", shortID(ev.ID), ev.Kind))
		return m, ListenForDevices(m.ctx, m.deviceCh)
	}

	return m, nil
}

// lookup finds the live device for id. Events can overtake the connect
// notice, so an unknown id is looked up in the manager.
func (m Model) lookup(id string) *device {
	if d, ok := m.devices[id]; ok && !d.gone {
		return d
	}
	c, ok := m.DeviceMgr.Controller(id)
	if !ok {
		return nil
	}
	if d, ok := m.devices[id]; ok && d.ctrl == c {
		return nil
	}
	return m.attach(id, c)
}

// attach paints the color cube on a newly seen controller
func (m Model) attach(id string, c *midi.FireController) *device {
	d := &device{ctrl: c, pads: NewPads(c.Frame())}
	render(d)
	m.devices[id] = d
	return d
}

func (m Model) each(fn func(d *device)) {
	for _, d := range m.devices {
		if d.gone {
			continue
		}
		fn(d)
		render(d)
	}
}

func render(d *device) {
	d.err = d.ctrl.Render()
	if d.err != nil {
		debug.Warn("tui", d.err, "render")
	}
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
}

// shortID trims the common port prefix for display
func shortID(id string) string {
	if s := strings.TrimPrefix(id, midi.DefaultPortPrefix); s != "" {
		return s
	}
	return id
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	liveStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	sym := m.Theme.Symbols

	ids := make([]string, 0, len(m.devices))
	live := 0
	for id, d := range m.devices {
		ids = append(ids, id)
		if !d.gone {
			live++
		}
	}
	sort.Strings(ids)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("go-fire  %d device(s)", live)))
	out.WriteString("\n\n")

	if live == 0 {
		out.WriteString(dimStyle.Render("Waiting for an Akai Fire - plug one in any time"))
		out.WriteString("\n\n")
	}

	for _, id := range ids {
		d := m.devices[id]
		if d.gone {
			out.WriteString(dimStyle.Render(fmt.Sprintf("%c %s  disconnected", sym.Disconnected, shortID(id))))
			out.WriteString("\n\n")
			continue
		}
		title := fmt.Sprintf("%c %s  hue %.0f  dropped %d", sym.Connected, shortID(id), d.pads.Hue(), d.ctrl.Dropped())
		out.WriteString(liveStyle.Render(title))
		out.WriteString("\n")
		out.WriteString(widgets.RenderPadGrid(d.ctrl.Frame().Colors(), d.pads.Pressed(), sym.Grid()))
		out.WriteString("\n")
		if d.last != "" {
			out.WriteString(fgStyle.Render("  last: " + d.last))
			out.WriteString("\n")
		}
		if d.err != nil {
			out.WriteString(errStyle.Render("  " + d.err.Error()))
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}

	if live > 0 {
		out.WriteString(widgets.RenderLegend(
			widgets.LegendItem{Symbol: sym.PadLit, Color: [3]uint8(m.Theme.Palette.Lookup(theme.RoleAccent)), Desc: "lit"},
			widgets.LegendItem{Symbol: sym.PadDark, Color: widgets.DarkPad, Desc: "off"},
			widgets.LegendItem{Symbol: sym.Pressed, Color: [3]uint8{0xFF, 0xFF, 0xFF}, Desc: "held"},
		))
		out.WriteString("\n\n")
	}

	for _, line := range m.log {
		out.WriteString(dimStyle.Render(line))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	help := widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "c", Desc: "color cube"},
			{Key: "h", Desc: "hue sweep (Select knob turns it)"},
			{Key: "x", Desc: "clear"},
			{Key: "q", Desc: "quit"},
		},
	}})
	out.WriteString(dimStyle.Render(help))

	return out.String()
}
