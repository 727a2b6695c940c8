package midi

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-fire/debug"

	"github.com/kelindar/event"
)

// DeviceEvent is published when controllers connect/disconnect
type DeviceEvent struct {
	Kind       DeviceEventKind
	ID         string
	Controller *FireController
}

type DeviceEventKind int

const (
	DeviceConnected DeviceEventKind = iota
	DeviceDisconnected
)

func (k DeviceEventKind) String() string {
	if k == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

const typeDeviceEvent uint32 = 1

// Type identifies DeviceEvent to the event dispatcher
func (DeviceEvent) Type() uint32 { return typeDeviceEvent }

// ManagerOptions configure a DeviceManager
type ManagerOptions struct {
	Prefix       string
	PollInterval time.Duration
	ScanTimeout  time.Duration
	Session      Options
}

func (o *ManagerOptions) setDefaults() {
	if o.Prefix == "" {
		o.Prefix = DefaultPortPrefix
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = 3 * time.Second
	}
}

// DeviceManager handles hot-plug of Fire controllers. Every connected
// controller feeds the manager's multiplexed Stream.
type DeviceManager struct {
	ports       PortLister
	opts        ManagerOptions
	controllers map[string]*FireController
	mu          sync.RWMutex
	dispatcher  *event.Dispatcher
	stream      *Multiplexer
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(ports PortLister, opts ManagerOptions) *DeviceManager {
	opts.setDefaults()
	return &DeviceManager{
		ports:       ports,
		opts:        opts,
		controllers: make(map[string]*FireController),
		dispatcher:  event.NewDispatcher(),
		stream:      NewMultiplexer(context.Background()),
	}
}

// Subscribe registers handler for connect/disconnect events and returns
// the unsubscribe function. Handlers run on the dispatcher's goroutine.
func (dm *DeviceManager) Subscribe(handler func(DeviceEvent)) func() {
	return event.Subscribe(dm.dispatcher, handler)
}

// Stream is the merged event stream of every controller the manager has
// connected. It ends after Run returns.
func (dm *DeviceManager) Stream() *Multiplexer {
	return dm.stream
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]*FireController {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]*FireController, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Controller returns the connected controller with the given ID
func (dm *DeviceManager) Controller(id string) (*FireController, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	c, ok := dm.controllers[id]
	return c, ok
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.opts.PollInterval)
	defer ticker.Stop()

	// Initial scan
	dm.Scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			dm.stream.Seal()
			return
		case <-ticker.C:
			dm.Scan()
		}
	}
}

var errScanTimeout = errors.New("port enumeration timed out")

// listNames runs the first discovery pass with a timeout (CoreMIDI can hang)
func (dm *DeviceManager) listNames() ([]string, error) {
	type result struct {
		names []string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		names, err := MatchingPortNames(dm.ports, dm.opts.Prefix)
		ch <- result{names: names, err: err}
	}()

	select {
	case r := <-ch:
		return r.names, r.err
	case <-time.After(dm.opts.ScanTimeout):
		return nil, errScanTimeout
	}
}

// Scan does one discovery pass: attach new Fires, drop vanished or
// closed ones.
func (dm *DeviceManager) Scan() {
	names, err := dm.listNames()
	if err != nil {
		debug.Warn("manager", err, "scan skipped")
		return
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := Attach(dm.ports, name, dm.opts.Session)
		if err != nil {
			debug.Warn("manager", err, "attach failed")
			continue
		}

		// announce before the first event can reach the stream
		dm.mu.Lock()
		dm.controllers[name] = c
		dm.mu.Unlock()
		event.Publish(dm.dispatcher, DeviceEvent{Kind: DeviceConnected, ID: name, Controller: c})

		if err := dm.stream.Add(c); err != nil {
			debug.Warn("manager", err, "stream ended, dropping %s", name)
			c.Close()
			dm.mu.Lock()
			delete(dm.controllers, name)
			dm.mu.Unlock()
			event.Publish(dm.dispatcher, DeviceEvent{Kind: DeviceDisconnected, ID: name})
		}
	}

	// Check for disconnects, and controllers that closed themselves
	dm.mu.Lock()
	var removed []string
	for id, c := range dm.controllers {
		if !seen[id] || c.State() == StateClosed {
			c.Close()
			delete(dm.controllers, id)
			removed = append(removed, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range removed {
		debug.Log("manager", "removed %s", id)
		event.Publish(dm.dispatcher, DeviceEvent{Kind: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]*FireController)
}
