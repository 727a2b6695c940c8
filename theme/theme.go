package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-fire/widgets"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	PadLit  rune // ■ pad with a color
	PadDark rune // □ pad off
	Pressed rune // ◉ pad held down

	Connected    rune // ● device attached
	Disconnected rune // ○ device gone
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			PadLit:  '■',
			PadDark: '□',
			Pressed: '◉',

			Connected:    '●',
			Disconnected: '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.3
	RoleFG      = 0.6
	RoleAccent  = 0.5
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Grid returns the pad glyphs for widgets.RenderPadGrid
func (s Symbols) Grid() widgets.GridSymbols {
	return widgets.GridSymbols{Lit: s.PadLit, Dark: s.PadDark, Pressed: s.Pressed}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
