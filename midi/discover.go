package midi

import (
	"errors"
	"fmt"
	"strings"

	"go-fire/debug"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// DefaultPortPrefix matches Fire ports as ALSA reports them, e.g.
// "FL STUDIO FIRE:FL STUDIO FIRE MIDI 1 32:0"
const DefaultPortPrefix = "FL STUDIO FIRE:FL STUDIO FIRE MIDI 1 "

// PortLister enumerates MIDI ports. drivers.Driver satisfies it.
type PortLister interface {
	Ins() ([]drivers.In, error)
	Outs() ([]drivers.Out, error)
}

// MatchingPortNames returns the names of input ports starting with prefix.
// It only reads names and opens nothing.
func MatchingPortNames(ports PortLister, prefix string) ([]string, error) {
	ins, err := ports.Ins()
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}

	var names []string
	for _, in := range ins {
		if name := in.String(); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// AttachToAll connects to every Fire whose ports start with prefix.
//
// Discovery runs in two passes so enumeration handles and connection handles
// never overlap: first collect the wanted names, then reopen each pair by
// exact name. A failing device doesn't stop the others; its error is joined
// into the returned error next to the controllers that did connect.
func AttachToAll(ports PortLister, prefix string, opts Options) ([]*FireController, error) {
	names, err := MatchingPortNames(ports, prefix)
	if err != nil {
		return nil, err
	}

	var (
		controllers []*FireController
		errs        []error
	)
	for _, name := range names {
		c, err := Attach(ports, name, opts)
		if err != nil {
			debug.Warn("discover", err, "skipping %s", name)
			errs = append(errs, err)
			continue
		}
		controllers = append(controllers, c)
	}

	debug.Log("discover", "attached %d of %d candidates", len(controllers), len(names))
	return controllers, errors.Join(errs...)
}

// Attach opens the input and output ports both named exactly name
func Attach(ports PortLister, name string, opts Options) (*FireController, error) {
	in, err := findIn(ports, name)
	if err != nil {
		return nil, fmt.Errorf("attach %q: %w", name, err)
	}
	out, err := findOut(ports, name)
	if err != nil {
		return nil, fmt.Errorf("attach %q: %w", name, err)
	}

	c, err := NewFireController(name, in, out, opts)
	if err != nil {
		return nil, fmt.Errorf("attach %q: %w", name, err)
	}
	return c, nil
}

func findIn(ports PortLister, name string) (drivers.In, error) {
	ins, err := ports.Ins()
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	for _, in := range ins {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input: %w", ErrPortNotFound)
}

func findOut(ports PortLister, name string) (drivers.Out, error) {
	outs, err := ports.Outs()
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	return nil, fmt.Errorf("output: %w", ErrPortNotFound)
}
