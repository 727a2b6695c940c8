package midi

import "errors"

var (
	// ErrPadIndex is returned for a pad index outside 0-63
	ErrPadIndex = errors.New("pad index out of range")

	// ErrPayloadTooLarge is returned when a partial frame would not fit the 14-bit length field
	ErrPayloadTooLarge = errors.New("sysex payload too large")

	// ErrQueueFull is reported when a controller's event queue overflows
	ErrQueueFull = errors.New("event queue full")

	// ErrClosed is returned by operations on a closed controller
	ErrClosed = errors.New("controller closed")

	// ErrMuxClosed is returned when adding a source to a finished multiplexer
	ErrMuxClosed = errors.New("multiplexer closed")

	// ErrPortNotFound is returned when a discovered port name can't be reopened
	ErrPortNotFound = errors.New("port not found")
)
