package midi

import "fmt"

// MIDI status bytes the Fire sends on channel 0
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Grid geometry
const (
	GridRows = 4
	GridCols = 16
	NumPads  = GridRows * GridCols
)

// ButtonState is the up/down state of a button, pad or knob touch sensor
type ButtonState uint8

const (
	Down ButtonState = iota
	Up
)

func (s ButtonState) String() string {
	if s == Down {
		return "down"
	}
	return "up"
}

// ControllerButton names the labeled (non-grid) buttons, left-to-right,
// top-to-bottom. Row1-Row4 are the mute/solo buttons beside the grid.
type ControllerButton uint8

const (
	Channel ControllerButton = iota
	PatternUp
	PatternDown
	Browser
	GridLeft
	GridRight
	Row1
	Row2
	Row3
	Row4
	Step
	Note
	Drum
	Perform
	Shift
	Alt
	Pattern
	Play
	Stop
	Record
	// Mystery is any in-range button code without a name.
	Mystery
)

var buttonNames = [...]string{
	Channel:     "Channel",
	PatternUp:   "PatternUp",
	PatternDown: "PatternDown",
	Browser:     "Browser",
	GridLeft:    "GridLeft",
	GridRight:   "GridRight",
	Row1:        "Row1",
	Row2:        "Row2",
	Row3:        "Row3",
	Row4:        "Row4",
	Step:        "Step",
	Note:        "Note",
	Drum:        "Drum",
	Perform:     "Perform",
	Shift:       "Shift",
	Alt:         "Alt",
	Pattern:     "Pattern",
	Play:        "Play",
	Stop:        "Stop",
	Record:      "Record",
	Mystery:     "Mystery",
}

func (b ControllerButton) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ControllerKnob names the five rotary encoders
type ControllerKnob uint8

const (
	Volume ControllerKnob = iota
	Pan
	Filter
	Resonance
	Select
)

var knobNames = [...]string{
	Volume:    "Volume",
	Pan:       "Pan",
	Filter:    "Filter",
	Resonance: "Resonance",
	Select:    "Select",
}

func (k ControllerKnob) String() string {
	if int(k) < len(knobNames) {
		return knobNames[k]
	}
	return fmt.Sprintf("Knob(%d)", uint8(k))
}

// ControllerEvent is one decoded input from a controller. The set of
// implementations is closed: ControlButton, KnobTurn, KnobTouch, GridButton.
type ControllerEvent interface {
	fmt.Stringer
	controllerEvent()
}

// ControlButton is sent when a labeled button changes state
type ControlButton struct {
	Button ControllerButton
	State  ButtonState
}

// KnobTurn carries the knob's new position (0-127)
type KnobTurn struct {
	Knob  ControllerKnob
	Value uint8
}

// KnobTouch is sent when a knob's capacitive sensor is touched or released
type KnobTouch struct {
	Knob  ControllerKnob
	State ButtonState
}

// GridButton is sent when a pad changes state.
// Row = Index/16 and Col = Index%16.
type GridButton struct {
	Index    uint8
	Row, Col uint8
	State    ButtonState
	Velocity uint8
}

func (ControlButton) controllerEvent() {}
func (KnobTurn) controllerEvent()      {}
func (KnobTouch) controllerEvent()     {}
func (GridButton) controllerEvent()    {}

func (e ControlButton) String() string {
	return fmt.Sprintf("button %s %s", e.Button, e.State)
}

func (e KnobTurn) String() string {
	return fmt.Sprintf("knob %s turn %d", e.Knob, e.Value)
}

func (e KnobTouch) String() string {
	return fmt.Sprintf("knob %s touch %s", e.Knob, e.State)
}

func (e GridButton) String() string {
	return fmt.Sprintf("pad %d (r%d c%d) %s vel=%d", e.Index, e.Row, e.Col, e.State, e.Velocity)
}

// Delta reads Value as a 7-bit two's complement step, which is what the
// Fire's endless encoders send: 1 is one click clockwise, 127 one click back.
func (e KnobTurn) Delta() int {
	if e.Value >= 0x40 {
		return int(e.Value) - 0x80
	}
	return int(e.Value)
}
