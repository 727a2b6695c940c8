package midi

import (
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// fakePort is the shared part of the fake driver's ports
type fakePort struct {
	name string
	num  int

	mu      sync.Mutex
	open    bool
	opened  int
	closed  int
	openErr error
}

func (p *fakePort) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return p.openErr
	}
	p.open = true
	p.opened++
	return nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.closed++
	return nil
}

func (p *fakePort) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *fakePort) Number() int             { return p.num }
func (p *fakePort) String() string          { return p.name }
func (p *fakePort) Underlying() interface{} { return nil }

type fakeIn struct {
	fakePort
	onMsg     func([]byte, int32)
	onErr     func(error)
	listenErr error
}

func (p *fakeIn) Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listenErr != nil {
		return nil, p.listenErr
	}
	p.onMsg = onMsg
	p.onErr = config.OnErr
	return func() {
		p.mu.Lock()
		p.onMsg = nil
		p.mu.Unlock()
	}, nil
}

// emit delivers one raw message as the driver's callback would
func (p *fakeIn) emit(msg ...byte) {
	p.mu.Lock()
	fn := p.onMsg
	p.mu.Unlock()
	if fn != nil {
		fn(msg, 0)
	}
}

// fail reports a listener error, as when the device is unplugged
func (p *fakeIn) fail(err error) {
	p.mu.Lock()
	fn := p.onErr
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (p *fakeIn) listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onMsg != nil
}

type fakeOut struct {
	fakePort
	sent    [][]byte
	sendErr error
}

func (p *fakeOut) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, append([]byte(nil), data...))
	return nil
}

func (p *fakeOut) setSendErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendErr = err
}

func (p *fakeOut) sends() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.sent...)
}

// fakeDriver lists a mutable set of port pairs
type fakeDriver struct {
	mu      sync.Mutex
	ins     []*fakeIn
	outs    []*fakeOut
	listErr error
	block   chan struct{} // when set, Ins waits on it
}

func (d *fakeDriver) plug(name string) (*fakeIn, *fakeOut) {
	d.mu.Lock()
	defer d.mu.Unlock()
	in := &fakeIn{fakePort: fakePort{name: name, num: len(d.ins)}}
	out := &fakeOut{fakePort: fakePort{name: name, num: len(d.outs)}}
	d.ins = append(d.ins, in)
	d.outs = append(d.outs, out)
	return in, out
}

// plugIn adds an input with no matching output
func (d *fakeDriver) plugIn(name string) *fakeIn {
	d.mu.Lock()
	defer d.mu.Unlock()
	in := &fakeIn{fakePort: fakePort{name: name, num: len(d.ins)}}
	d.ins = append(d.ins, in)
	return in
}

func (d *fakeDriver) unplug(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ins []*fakeIn
	for _, in := range d.ins {
		if in.name != name {
			ins = append(ins, in)
		}
	}
	var outs []*fakeOut
	for _, out := range d.outs {
		if out.name != name {
			outs = append(outs, out)
		}
	}
	d.ins, d.outs = ins, outs
}

func (d *fakeDriver) Ins() ([]drivers.In, error) {
	d.mu.Lock()
	block := d.block
	d.mu.Unlock()
	if block != nil {
		<-block
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	ins := make([]drivers.In, len(d.ins))
	for i, in := range d.ins {
		ins[i] = in
	}
	return ins, nil
}

func (d *fakeDriver) Outs() ([]drivers.Out, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	outs := make([]drivers.Out, len(d.outs))
	for i, out := range d.outs {
		outs[i] = out
	}
	return outs, nil
}

const (
	fireA = DefaultPortPrefix + "24:0"
	fireB = DefaultPortPrefix + "28:0"
)
