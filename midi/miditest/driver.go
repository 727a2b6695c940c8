// Package miditest provides an in-memory MIDI driver for tests: ports can be
// plugged and unplugged, inputs can be fed raw messages and outputs record
// what was sent.
package miditest

import (
	"errors"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrUnplugged is what an input's listener reports after Unplug
var ErrUnplugged = errors.New("device unplugged")

type port struct {
	name string
	num  int

	mu   sync.Mutex
	open bool
}

func (p *port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	return nil
}

func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

func (p *port) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *port) Number() int             { return p.num }
func (p *port) String() string          { return p.name }
func (p *port) Underlying() interface{} { return nil }

// In is a fake input port
type In struct {
	port
	onMsg func([]byte, int32)
	onErr func(error)
}

func (p *In) Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMsg = onMsg
	p.onErr = config.OnErr
	return func() {
		p.mu.Lock()
		p.onMsg = nil
		p.mu.Unlock()
	}, nil
}

// Emit delivers one raw message on the caller's goroutine, as the driver's
// callback would. It is a no-op when nobody listens.
func (p *In) Emit(msg ...byte) {
	p.mu.Lock()
	fn := p.onMsg
	p.mu.Unlock()
	if fn != nil {
		fn(msg, 0)
	}
}

// Out is a fake output port that records every message
type Out struct {
	port
	sent [][]byte
}

func (p *Out) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, append([]byte(nil), data...))
	return nil
}

// Sent returns a copy of everything sent so far
func (p *Out) Sent() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.sent...)
}

// Driver lists a mutable set of port pairs. It satisfies midi.PortLister.
type Driver struct {
	mu   sync.Mutex
	ins  []*In
	outs []*Out
}

// Plug adds an input and output pair under name
func (d *Driver) Plug(name string) (*In, *Out) {
	d.mu.Lock()
	defer d.mu.Unlock()
	in := &In{port: port{name: name, num: len(d.ins)}}
	out := &Out{port: port{name: name, num: len(d.outs)}}
	d.ins = append(d.ins, in)
	d.outs = append(d.outs, out)
	return in, out
}

// Unplug removes the pair and fails its listener, as a real driver does
func (d *Driver) Unplug(name string) {
	d.mu.Lock()
	var gone []*In
	ins := d.ins[:0:0]
	for _, in := range d.ins {
		if in.name == name {
			gone = append(gone, in)
			continue
		}
		ins = append(ins, in)
	}
	outs := d.outs[:0:0]
	for _, out := range d.outs {
		if out.name != name {
			outs = append(outs, out)
		}
	}
	d.ins, d.outs = ins, outs
	d.mu.Unlock()

	for _, in := range gone {
		in.mu.Lock()
		fn := in.onErr
		in.mu.Unlock()
		if fn != nil {
			fn(ErrUnplugged)
		}
	}
}

func (d *Driver) Ins() ([]drivers.In, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ins := make([]drivers.In, len(d.ins))
	for i, in := range d.ins {
		ins[i] = in
	}
	return ins, nil
}

func (d *Driver) Outs() ([]drivers.Out, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	outs := make([]drivers.Out, len(d.outs))
	for i, out := range d.outs {
		outs[i] = out
	}
	return outs, nil
}
