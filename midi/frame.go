package midi

import "fmt"

// SysEx framing for the Fire's "set pad colors" command:
// F0 47 7F 43 65 <lenHi> <lenLo> [<idx> <r> <g> <b>]... F7
const (
	sysexStart   byte = 0xF0
	sysexEnd     byte = 0xF7
	akaiID       byte = 0x47
	allCallID    byte = 0x7F
	fireID       byte = 0x43
	cmdPadColors byte = 0x65

	headerLen  = 7
	padEntry   = 4
	payloadLen = NumPads * padEntry

	// FrameLen is the size of a full 64-pad LED frame on the wire
	FrameLen = headerLen + payloadLen + 1

	// MaxColor is the largest value a 7-bit color byte can carry
	MaxColor uint8 = 0x7F

	maxPayload = 0x3FFF // two 7-bit length bytes
)

// LEDFrame holds a device's pad colors laid out exactly as the SysEx frame
// that sets them. Pad index bytes are written once by Init and never change.
// A frame is not safe for concurrent use; the consumer loop owns it.
type LEDFrame struct {
	buf [FrameLen]byte
}

// NewLEDFrame returns an initialized frame with every pad off
func NewLEDFrame() *LEDFrame {
	f := &LEDFrame{}
	f.Init()
	return f
}

// Init writes the header, the pad index bytes and the terminator, and turns
// every pad off.
func (f *LEDFrame) Init() {
	writeHeader(f.buf[:headerLen], payloadLen)
	for i := 0; i < NumPads; i++ {
		off := headerLen + i*padEntry
		f.buf[off] = byte(i)
		f.buf[off+1], f.buf[off+2], f.buf[off+3] = 0, 0, 0
	}
	f.buf[FrameLen-1] = sysexEnd
}

func writeHeader(dst []byte, length int) {
	dst[0] = sysexStart
	dst[1] = akaiID
	dst[2] = allCallID
	dst[3] = fireID
	dst[4] = cmdPadColors
	dst[5] = byte(length>>7) & 0x7F
	dst[6] = byte(length) & 0x7F
}

func clampColor(c uint8) uint8 {
	if c > MaxColor {
		return MaxColor
	}
	return c
}

// SetLED sets one pad's color. Components above 127 are stored as 127.
func (f *LEDFrame) SetLED(pad int, r, g, b uint8) error {
	if pad < 0 || pad >= NumPads {
		return fmt.Errorf("%w: %d", ErrPadIndex, pad)
	}
	off := headerLen + pad*padEntry
	f.buf[off+1] = clampColor(r)
	f.buf[off+2] = clampColor(g)
	f.buf[off+3] = clampColor(b)
	return nil
}

// SetPad is SetLED addressed by grid row (0-3) and column (0-15)
func (f *LEDFrame) SetPad(row, col int, r, g, b uint8) error {
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return fmt.Errorf("%w: row=%d col=%d", ErrPadIndex, row, col)
	}
	return f.SetLED(PadIndex(row, col), r, g, b)
}

// Pad returns the stored color of one pad
func (f *LEDFrame) Pad(pad int) (r, g, b uint8, err error) {
	if pad < 0 || pad >= NumPads {
		return 0, 0, 0, fmt.Errorf("%w: %d", ErrPadIndex, pad)
	}
	off := headerLen + pad*padEntry
	return f.buf[off+1], f.buf[off+2], f.buf[off+3], nil
}

// Colors returns every pad's color in index order
func (f *LEDFrame) Colors() [NumPads][3]uint8 {
	var out [NumPads][3]uint8
	for i := range out {
		off := headerLen + i*padEntry
		out[i] = [3]uint8{f.buf[off+1], f.buf[off+2], f.buf[off+3]}
	}
	return out
}

// Clear turns every pad off
func (f *LEDFrame) Clear() {
	for i := 0; i < NumPads; i++ {
		f.SetLED(i, 0, 0, 0)
	}
}

// Bytes returns a copy of the complete frame, ready to send
func (f *LEDFrame) Bytes() []byte {
	out := make([]byte, FrameLen)
	copy(out, f.buf[:])
	return out
}

// EncodePads builds a partial frame that only updates the listed pads.
// The length header reflects 4 bytes per listed pad.
func (f *LEDFrame) EncodePads(pads ...int) ([]byte, error) {
	length := len(pads) * padEntry
	if length > maxPayload {
		return nil, fmt.Errorf("%w: %d pads", ErrPayloadTooLarge, len(pads))
	}

	out := make([]byte, headerLen, headerLen+length+1)
	writeHeader(out, length)
	for _, pad := range pads {
		if pad < 0 || pad >= NumPads {
			return nil, fmt.Errorf("%w: %d", ErrPadIndex, pad)
		}
		off := headerLen + pad*padEntry
		out = append(out, f.buf[off:off+padEntry]...)
	}
	return append(out, sysexEnd), nil
}
