package midi

// Fire note/CC number ranges
const (
	knobFirst   uint8 = 0x10
	knobLast    uint8 = 0x19
	buttonFirst uint8 = 0x1A
	buttonLast  uint8 = 0x35
	padFirst    uint8 = 0x36
	padLast     uint8 = 0x75
)

var knobCodes = map[uint8]ControllerKnob{
	0x10: Volume,
	0x11: Pan,
	0x12: Filter,
	0x13: Resonance,
	0x19: Select,
}

var buttonCodes = map[uint8]ControllerButton{
	0x1A: Channel,
	0x1F: PatternUp,
	0x20: PatternDown,
	0x21: Browser,
	0x22: GridLeft,
	0x23: GridRight,
	0x24: Row1,
	0x25: Row2,
	0x26: Row3,
	0x27: Step,
	0x2D: Note,
	0x2E: Drum,
	0x2F: Perform,
	0x30: Shift,
	0x31: Alt,
	0x32: Pattern,
	0x33: Play,
	0x34: Stop,
	0x35: Record,
}

// Decode turns one raw MIDI message from a Fire into an event.
// Anything that isn't a 3-byte message in the Fire's ranges returns ok=false.
func Decode(msg []byte) (ev ControllerEvent, ok bool) {
	if len(msg) != 3 {
		return nil, false
	}
	status, code, value := msg[0], msg[1], msg[2]

	switch status {
	case NoteOn, NoteOff:
		state := Up
		if status == NoteOn {
			state = Down
		}
		switch {
		case code >= knobFirst && code <= knobLast:
			knob, known := knobCodes[code]
			if !known {
				// 0x14-0x18 have no knob on the hardware
				return nil, false
			}
			return KnobTouch{Knob: knob, State: state}, true

		case code >= buttonFirst && code <= buttonLast:
			button, known := buttonCodes[code]
			if !known {
				button = Mystery
			}
			return ControlButton{Button: button, State: state}, true

		case code >= padFirst && code <= padLast:
			index := code - padFirst
			row, col := PadRowCol(index)
			return GridButton{Index: index, Row: row, Col: col, State: state, Velocity: value}, true
		}

	case CC:
		if code >= knobFirst && code <= knobLast {
			knob, known := knobCodes[code]
			if !known {
				return nil, false
			}
			return KnobTurn{Knob: knob, Value: value}, true
		}
	}

	return nil, false
}

// PadRowCol splits a pad index into its grid row and column
func PadRowCol(index uint8) (row, col uint8) {
	return index / GridCols, index % GridCols
}

// PadIndex is the inverse of PadRowCol
func PadIndex(row, col int) int {
	return row*GridCols + col
}
