package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go-fire/debug"
	"go-fire/metrics"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// State is a controller's connection state
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// OverflowPolicy decides what happens when a controller's event queue is full
type OverflowPolicy int

const (
	// OverflowDrop drops the new event and reports it
	OverflowDrop OverflowPolicy = iota
	// OverflowClose closes the controller, ending its event stream
	OverflowClose
)

func (p OverflowPolicy) String() string {
	if p == OverflowClose {
		return "close"
	}
	return "drop"
}

// ParseOverflowPolicy parses "drop" or "close"
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "drop":
		return OverflowDrop, nil
	case "close":
		return OverflowClose, nil
	}
	return OverflowDrop, fmt.Errorf("unknown overflow policy %q", s)
}

// DefaultQueueSize is the per-controller event queue capacity
const DefaultQueueSize = 100

// eventLogEvery thins the debug log on the driver callback
const eventLogEvery = 50

// Options configure a controller
type Options struct {
	QueueSize int
	Overflow  OverflowPolicy

	// OnOverflow is called from the driver callback with an error wrapping
	// ErrQueueFull. It must not block.
	OnOverflow func(err error)

	Metrics *metrics.Metrics
}

func (o Options) queueSize() int {
	if o.QueueSize <= 0 {
		return DefaultQueueSize
	}
	return o.QueueSize
}

// FireController is one attached Fire: its input and output ports, its LED
// frame and its queue of decoded events.
//
// Events are produced on the driver's callback goroutine. Frame and Render
// belong to the single consumer and need no locking.
type FireController struct {
	id      string
	inPort  drivers.In
	outPort drivers.Out
	send    func(msg gomidi.Message) error
	stop    func()
	frame   *LEDFrame
	opts    Options

	mu     sync.RWMutex // guards state and sends on events vs. close
	state  State
	events chan ControllerEvent

	dropped   atomic.Uint64
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewFireController opens both ports and starts listening. The returned
// controller is connected, with an initialized (all off) LED frame.
func NewFireController(id string, inPort drivers.In, outPort drivers.Out, opts Options) (*FireController, error) {
	c := &FireController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		frame:   NewLEDFrame(),
		opts:    opts,
		state:   StateDisconnected,
		events:  make(chan ControllerEvent, opts.queueSize()),
		done:    make(chan struct{}),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FireController) connect() error {
	send, err := gomidi.SendTo(c.outPort)
	if err != nil {
		return fmt.Errorf("open output %q: %w", c.id, err)
	}
	c.send = send

	stop, err := gomidi.ListenTo(c.inPort, c.receive, gomidi.HandleError(c.listenError))
	if err != nil {
		closePort(c.inPort)
		closePort(c.outPort)
		return fmt.Errorf("open input %q: %w", c.id, err)
	}
	c.stop = stop

	c.mu.Lock()
	c.state = StateConnected
	c.mu.Unlock()

	c.opts.Metrics.DeviceConnected()
	debug.Log("session", "connected %s queue=%d overflow=%s", c.id, cap(c.events), c.opts.Overflow)
	return nil
}

// receive runs on the driver's goroutine: decode, enqueue, never block
func (c *FireController) receive(msg gomidi.Message, timestampms int32) {
	ev, ok := Decode(msg)
	if !ok {
		return
	}

	c.mu.RLock()
	if c.state == StateClosed {
		c.mu.RUnlock()
		return
	}
	select {
	case c.events <- ev:
		c.mu.RUnlock()
		c.opts.Metrics.EventDecoded(c.id)
		debug.LogEvery(eventLogEvery, "session", "decoded %s", ev)
		return
	default:
	}
	c.mu.RUnlock()

	c.overflow(ev)
}

func (c *FireController) overflow(ev ControllerEvent) {
	n := c.dropped.Add(1)
	c.opts.Metrics.EventDropped(c.id)

	err := fmt.Errorf("%w: %s dropped %s (%d total)", ErrQueueFull, c.id, ev, n)
	debug.Warn("session", err, "queue overflow policy=%s", c.opts.Overflow)
	if c.opts.OnOverflow != nil {
		c.opts.OnOverflow(err)
	}

	if c.opts.Overflow == OverflowClose {
		// Close stops the listener; it can't run on the listener's goroutine
		go c.Close()
	}
}

func (c *FireController) listenError(err error) {
	debug.Warn("session", err, "listener error on %s, device likely disconnected", c.id)
	go c.Close()
}

// ID is the controller's port name, stable while it stays attached
func (c *FireController) ID() string {
	return c.id
}

// State returns the current connection state
func (c *FireController) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Events is closed when the controller closes
func (c *FireController) Events() <-chan ControllerEvent {
	return c.events
}

// Done is closed once Close has finished
func (c *FireController) Done() <-chan struct{} {
	return c.done
}

// Dropped is the number of events lost to queue overflow
func (c *FireController) Dropped() uint64 {
	return c.dropped.Load()
}

// Frame is the controller's LED state. Only the consumer loop may touch it.
func (c *FireController) Frame() *LEDFrame {
	return c.frame
}

// Render sends the whole LED frame as one SysEx message
func (c *FireController) Render() error {
	return c.transmit(c.frame.Bytes())
}

// RenderPads sends a partial frame that only updates the given pads
func (c *FireController) RenderPads(pads ...int) error {
	data, err := c.frame.EncodePads(pads...)
	if err != nil {
		return fmt.Errorf("render %s: %w", c.id, err)
	}
	return c.transmit(data)
}

func (c *FireController) transmit(data []byte) error {
	if c.State() == StateClosed {
		return fmt.Errorf("render %s: %w", c.id, ErrClosed)
	}
	if err := c.send(gomidi.Message(data)); err != nil {
		c.opts.Metrics.RenderError(c.id)
		debug.Warn("session", err, "render failed on %s", c.id)
		return fmt.Errorf("render %s: %w", c.id, err)
	}
	c.opts.Metrics.FrameSent(c.id)
	return nil
}

// Close stops listening, closes both ports and ends the event stream.
// It is safe to call more than once and from any goroutine other than the
// driver's listener.
func (c *FireController) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		wasConnected := c.state == StateConnected
		c.state = StateClosed
		close(c.events)
		c.mu.Unlock()

		if c.stop != nil {
			c.stop()
		}
		c.closeErr = errors.Join(closePort(c.inPort), closePort(c.outPort))

		if wasConnected {
			c.opts.Metrics.DeviceDisconnected()
		}
		debug.Log("session", "closed %s dropped=%d", c.id, c.dropped.Load())
		close(c.done)
	})
	<-c.done
	return c.closeErr
}

func closePort(p drivers.Port) error {
	if p == nil || !p.IsOpen() {
		return nil
	}
	return p.Close()
}
