package midi

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

func cubeComponent(n int) uint8 {
	v := n * 32
	if v > int(MaxColor) {
		return MaxColor
	}
	return uint8(v)
}

// SetColorCube paints a 4x4x4 RGB cube across the grid: red follows the
// column within each group of four, green the row, blue the group.
func (f *LEDFrame) SetColorCube() {
	for i := 0; i < NumPads; i++ {
		x := i % 4
		y := i / 16
		z := (i % 16) / 4
		f.SetLED(i, cubeComponent(x), cubeComponent(y), cubeComponent(z))
	}
}

// SetHueSweep spreads the hue wheel across the 16 columns, starting at
// offset degrees. Rows get dimmer from top to bottom.
func (f *LEDFrame) SetHueSweep(offset float64) {
	for i := 0; i < NumPads; i++ {
		row, col := PadRowCol(uint8(i))
		hue := math.Mod(offset+float64(col)*360/GridCols, 360)
		if hue < 0 {
			hue += 360
		}
		value := 1 - float64(row)*0.2
		r, g, b := to7Bit(colorful.Hsv(hue, 1, value))
		f.SetLED(i, r, g, b)
	}
}

// to7Bit converts a colorful color to the Fire's 0-127 components
func to7Bit(c colorful.Color) (r, g, b uint8) {
	c = c.Clamped()
	scale := func(v float64) uint8 {
		return uint8(math.Round(v * float64(MaxColor)))
	}
	return scale(c.R), scale(c.G), scale(c.B)
}
