package tui

import (
	"go-fire/midi"
)

// hueStep is how far one Select click turns the sweep, in degrees
const hueStep = 7.5

// Pads drives one controller's LED frame from its input: pressed pads glow
// white by velocity and release back to the current pattern.
type Pads struct {
	frame   *midi.LEDFrame
	base    *midi.LEDFrame // pattern without presses
	pressed map[int]bool
	hue     float64
	sweep   bool
}

// NewPads paints the color cube into frame
func NewPads(frame *midi.LEDFrame) *Pads {
	p := &Pads{
		frame:   frame,
		base:    midi.NewLEDFrame(),
		pressed: make(map[int]bool),
	}
	p.Cube()
	return p
}

// Cube switches back to the color cube
func (p *Pads) Cube() {
	p.sweep = false
	p.base.SetColorCube()
	p.repaint()
}

// Sweep switches to the hue sweep at the current offset
func (p *Pads) Sweep() {
	p.sweep = true
	p.base.SetHueSweep(p.hue)
	p.repaint()
}

// Clear turns the pattern off. Held pads stay lit until released.
func (p *Pads) Clear() {
	p.sweep = false
	p.base.Clear()
	p.repaint()
}

func (p *Pads) Hue() float64 { return p.hue }

func (p *Pads) Pressed() map[int]bool { return p.pressed }

// Handle applies one event and reports whether the frame changed
func (p *Pads) Handle(ev midi.ControllerEvent) bool {
	switch e := ev.(type) {
	case midi.GridButton:
		i := int(e.Index)
		if e.State == midi.Down {
			p.pressed[i] = true
			v := e.Velocity
			p.frame.SetLED(i, v, v, v)
			return true
		}
		delete(p.pressed, i)
		p.restore(i)
		return true

	case midi.KnobTurn:
		if e.Knob != midi.Select {
			return false
		}
		p.hue += float64(e.Delta()) * hueStep
		p.Sweep()
		return true

	case midi.ControlButton:
		if e.State != midi.Down {
			return false
		}
		switch e.Button {
		case midi.Stop:
			p.Clear()
			return true
		case midi.Pattern:
			p.Cube()
			return true
		}
	}
	return false
}

func (p *Pads) restore(i int) {
	r, g, b, err := p.base.Pad(i)
	if err != nil {
		return
	}
	p.frame.SetLED(i, r, g, b)
}

// repaint copies the pattern to the frame, skipping held pads
func (p *Pads) repaint() {
	for i := 0; i < midi.NumPads; i++ {
		if p.pressed[i] {
			continue
		}
		p.restore(i)
	}
}
