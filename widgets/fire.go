package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Fire grid geometry, row 0 on top as on the hardware
const (
	FireRows = 4
	FireCols = 16
)

// GridSymbols are the glyphs a pad can be drawn with
type GridSymbols struct {
	Lit     rune
	Dark    rune
	Pressed rune
}

// DarkPad is the color unlit pads are drawn in, so they stay visible
var DarkPad = [3]uint8{0x44, 0x44, 0x44}

// RenderPad renders one glyph in an 8-bit RGB color
func RenderPad(sym rune, color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(sym))
}

// RenderPadGrid renders the 4x16 grid from 7-bit LED colors in pad index
// order. Pads listed in pressed are drawn as held, pads that are off as dark.
func RenderPadGrid(colors [FireRows * FireCols][3]uint8, pressed map[int]bool, sym GridSymbols) string {
	var lines []string
	for row := 0; row < FireRows; row++ {
		var line strings.Builder
		for col := 0; col < FireCols; col++ {
			i := row*FireCols + col
			if col > 0 {
				line.WriteString(" ")
				if col%4 == 0 {
					line.WriteString(" ")
				}
			}
			c := scale7To8(colors[i])
			switch {
			case pressed[i]:
				line.WriteString(RenderPad(sym.Pressed, c))
			case c == [3]uint8{}:
				line.WriteString(RenderPad(sym.Dark, DarkPad))
			default:
				line.WriteString(RenderPad(sym.Lit, c))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// scale7To8 maps 0-127 LED values onto 0-255 for the terminal
func scale7To8(c [3]uint8) [3]uint8 {
	var out [3]uint8
	for i, v := range c {
		if v > 0x7F {
			v = 0x7F
		}
		out[i] = uint8(uint16(v) * 255 / 0x7F)
	}
	return out
}

// RenderLegend renders "<glyph> desc" items on one line
func RenderLegend(items ...LegendItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = RenderPad(it.Symbol, it.Color) + " " + it.Desc
	}
	return "  " + strings.Join(parts, "   ")
}

// LegendItem explains one pad glyph
type LegendItem struct {
	Symbol rune
	Color  [3]uint8
	Desc   string
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
