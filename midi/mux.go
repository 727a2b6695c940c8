package midi

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Source is a per-device event stream. *FireController implements it.
type Source interface {
	ID() string
	Events() <-chan ControllerEvent
}

// Tagged is an event together with the device it came from
type Tagged struct {
	DeviceID string
	Event    ControllerEvent
}

// Multiplexer fans many device streams into one. Events from one device
// keep their order; across devices, whichever is ready goes first.
//
// The merged stream ends once the multiplexer is sealed and every source
// has ended, or when its context is cancelled.
type Multiplexer struct {
	ctx context.Context
	out chan Tagged

	mu     sync.Mutex
	active int
	sealed bool
	closed bool
}

// NewMultiplexer returns an open multiplexer; add sources with Add and call
// Seal once no more will come.
func NewMultiplexer(ctx context.Context) *Multiplexer {
	m := &Multiplexer{
		ctx: ctx,
		out: make(chan Tagged),
	}
	if ctx.Err() != nil {
		m.Seal()
		return m
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			m.Seal()
		}()
	}
	return m
}

// Multiplex merges a fixed set of sources. Sources that could not be added
// are reported in err; the rest still feed the returned stream.
func Multiplex(ctx context.Context, sources ...Source) (*Multiplexer, error) {
	m := NewMultiplexer(ctx)
	var errs []error
	for _, src := range sources {
		if err := m.Add(src); err != nil {
			errs = append(errs, fmt.Errorf("add %s: %w", src.ID(), err))
		}
	}
	m.Seal()
	return m, errors.Join(errs...)
}

// Add starts forwarding src. It fails with ErrMuxClosed once the merged
// stream has ended.
func (m *Multiplexer) Add(src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMuxClosed
	}
	m.active++
	go m.forward(src)
	return nil
}

// Seal marks that no more sources will be added
func (m *Multiplexer) Seal() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sealed = true
	m.maybeClose()
}

// maybeClose must be called with mu held
func (m *Multiplexer) maybeClose() {
	if m.sealed && m.active == 0 && !m.closed {
		m.closed = true
		close(m.out)
	}
}

func (m *Multiplexer) forward(src Source) {
	defer func() {
		m.mu.Lock()
		m.active--
		m.maybeClose()
		m.mu.Unlock()
	}()

	id := src.ID()
	events := src.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case m.out <- Tagged{DeviceID: id, Event: ev}:
			case <-m.ctx.Done():
				return
			}
		case <-m.ctx.Done():
			return
		}
	}
}

// Events is the merged stream, closed when it ends
func (m *Multiplexer) Events() <-chan Tagged {
	return m.out
}

// Next waits for the next event. ok is false when the stream has ended or
// ctx is done.
func (m *Multiplexer) Next(ctx context.Context) (t Tagged, ok bool) {
	select {
	case t, ok = <-m.out:
		return t, ok
	case <-ctx.Done():
		return Tagged{}, false
	}
}
