package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchingPortNames(t *testing.T) {
	d := &fakeDriver{}
	d.plug("Midi Through:Midi Through Port-0 14:0")
	d.plug(fireA)
	d.plug("Launchpad X:Launchpad X LPX MIDI 1 20:0")
	d.plug(fireB)

	names, err := MatchingPortNames(d, DefaultPortPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{fireA, fireB}, names)

	names, err = MatchingPortNames(d, "Nothing")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMatchingPortNamesOpensNothing(t *testing.T) {
	d := &fakeDriver{}
	in, out := d.plug(fireA)

	_, err := MatchingPortNames(d, DefaultPortPrefix)
	require.NoError(t, err)
	assert.Zero(t, in.opened)
	assert.Zero(t, out.opened)
}

func TestMatchingPortNamesListError(t *testing.T) {
	d := &fakeDriver{listErr: errors.New("alsa unavailable")}
	_, err := MatchingPortNames(d, DefaultPortPrefix)
	assert.Error(t, err)
}

func TestAttachToAll(t *testing.T) {
	d := &fakeDriver{}
	d.plug("Midi Through:Midi Through Port-0 14:0")
	inA, _ := d.plug(fireA)
	inB, _ := d.plug(fireB)

	controllers, err := AttachToAll(d, DefaultPortPrefix, Options{})
	require.NoError(t, err)
	require.Len(t, controllers, 2)
	t.Cleanup(func() {
		for _, c := range controllers {
			c.Close()
		}
	})

	assert.Equal(t, fireA, controllers[0].ID())
	assert.Equal(t, fireB, controllers[1].ID())
	assert.True(t, inA.listening())
	assert.True(t, inB.listening())
	for _, c := range controllers {
		assert.Equal(t, StateConnected, c.State())
	}
}

func TestAttachToAllNone(t *testing.T) {
	d := &fakeDriver{}
	d.plug("Midi Through:Midi Through Port-0 14:0")

	controllers, err := AttachToAll(d, DefaultPortPrefix, Options{})
	require.NoError(t, err)
	assert.Empty(t, controllers)
}

func TestAttachToAllKeepsGoodDevices(t *testing.T) {
	d := &fakeDriver{}
	d.plugIn(fireA) // input only, no output port
	d.plug(fireB)

	controllers, err := AttachToAll(d, DefaultPortPrefix, Options{})
	require.Len(t, controllers, 1)
	t.Cleanup(func() { controllers[0].Close() })

	assert.Equal(t, fireB, controllers[0].ID())
	assert.ErrorIs(t, err, ErrPortNotFound)
	assert.Contains(t, err.Error(), fireA)
}

func TestAttachByName(t *testing.T) {
	d := &fakeDriver{}
	d.plug(fireA)
	in, out := d.plug(fireB)

	c, err := Attach(d, fireB, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	assert.Equal(t, fireB, c.ID())
	assert.True(t, in.IsOpen())
	assert.True(t, out.IsOpen())

	_, err = Attach(d, "missing", Options{})
	assert.ErrorIs(t, err, ErrPortNotFound)
}
