package midi

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-fire/debug"
	"go-fire/metrics"
)

func newTestController(t *testing.T, opts Options) (*FireController, *fakeIn, *fakeOut) {
	t.Helper()
	d := &fakeDriver{}
	in, out := d.plug(fireA)
	c, err := NewFireController(fireA, in, out, opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, in, out
}

func recv(t *testing.T, ch <-chan ControllerEvent) ControllerEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestNewFireControllerConnects(t *testing.T) {
	c, in, out := newTestController(t, Options{})

	assert.Equal(t, fireA, c.ID())
	assert.Equal(t, StateConnected, c.State())
	assert.True(t, in.IsOpen())
	assert.True(t, out.IsOpen())
	assert.True(t, in.listening())
	assert.Equal(t, DefaultQueueSize, cap(c.events))
	assert.Equal(t, NewLEDFrame().Bytes(), c.Frame().Bytes())
}

func TestNewFireControllerOpenError(t *testing.T) {
	d := &fakeDriver{}
	in, out := d.plug(fireA)
	out.openErr = errors.New("busy")

	_, err := NewFireController(fireA, in, out, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open output")
}

func TestNewFireControllerListenErrorClosesBothPorts(t *testing.T) {
	d := &fakeDriver{}
	in, out := d.plug(fireA)
	in.listenErr = errors.New("listener refused")

	_, err := NewFireController(fireA, in, out, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
	assert.False(t, in.IsOpen())
	assert.False(t, out.IsOpen())
	assert.Equal(t, 1, in.closed)
	assert.Equal(t, 1, out.closed)
}

func TestEventsArriveInOrder(t *testing.T) {
	c, in, _ := newTestController(t, Options{})

	in.emit(0x90, 0x36, 0x40)
	in.emit(0xB0, 0x10, 0x01)
	in.emit(0x80, 0x36, 0x00)

	assert.Equal(t, GridButton{Index: 0, State: Down, Velocity: 0x40}, recv(t, c.Events()))
	assert.Equal(t, KnobTurn{Knob: Volume, Value: 1}, recv(t, c.Events()))
	assert.Equal(t, GridButton{Index: 0, State: Up}, recv(t, c.Events()))
}

func TestDecodedEventsAreLoggedSparsely(t *testing.T) {
	debug.Disable()
	var buf bytes.Buffer
	debug.EnableWriter(&buf)
	t.Cleanup(debug.Disable)

	c, in, _ := newTestController(t, Options{QueueSize: 4 * eventLogEvery})
	for i := 0; i < 2*eventLogEvery+1; i++ {
		in.emit(0x90, 0x36, 0x7F)
	}

	assert.Len(t, c.Events(), 2*eventLogEvery+1)
	assert.Equal(t, 2, strings.Count(buf.String(), "decoded pad 0"))
}

func TestUndecodableMessagesAreSkipped(t *testing.T) {
	c, in, _ := newTestController(t, Options{})

	in.emit(0x90, 0x14, 0x7F) // unnamed knob code
	in.emit(0xE0, 0x00, 0x40)
	in.emit(0x90, 0x33, 0x7F)

	assert.Equal(t, ControlButton{Button: Play, State: Down}, recv(t, c.Events()))
	assert.Len(t, c.Events(), 0)
}

func TestOverflowDropReportsAndKeepsOldest(t *testing.T) {
	var (
		mu       sync.Mutex
		reported []error
	)
	c, in, _ := newTestController(t, Options{
		QueueSize: 2,
		OnOverflow: func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		},
	})

	in.emit(0x90, 0x36, 1)
	in.emit(0x90, 0x37, 2)
	in.emit(0x90, 0x38, 3)

	assert.Equal(t, uint64(1), c.Dropped())
	assert.Equal(t, StateConnected, c.State())

	mu.Lock()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrQueueFull)
	mu.Unlock()

	assert.Equal(t, uint8(0), recv(t, c.Events()).(GridButton).Index)
	assert.Equal(t, uint8(1), recv(t, c.Events()).(GridButton).Index)

	// room again after draining
	in.emit(0x90, 0x39, 4)
	assert.Equal(t, uint8(3), recv(t, c.Events()).(GridButton).Index)
}

func TestOverflowCloseEndsStream(t *testing.T) {
	c, in, out := newTestController(t, Options{QueueSize: 1, Overflow: OverflowClose})

	in.emit(0x90, 0x36, 1)
	in.emit(0x90, 0x37, 2)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not close on overflow")
	}
	assert.Equal(t, StateClosed, c.State())
	assert.False(t, in.IsOpen())
	assert.False(t, out.IsOpen())

	// the queued event is still delivered before the stream ends
	ev, ok := <-c.Events()
	require.True(t, ok)
	assert.Equal(t, uint8(0), ev.(GridButton).Index)
	_, ok = <-c.Events()
	assert.False(t, ok)
}

func TestListenErrorCloses(t *testing.T) {
	c, in, _ := newTestController(t, Options{})

	in.fail(errors.New("device gone"))

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not close on listener error")
	}
	assert.Equal(t, StateClosed, c.State())
}

func TestRender(t *testing.T) {
	c, _, out := newTestController(t, Options{})

	c.Frame().SetColorCube()
	require.NoError(t, c.Render())

	sent := out.sends()
	require.Len(t, sent, 1)
	assert.Equal(t, c.Frame().Bytes(), sent[0])
	assert.Len(t, sent[0], FrameLen)
}

func TestRenderPads(t *testing.T) {
	c, _, out := newTestController(t, Options{})

	require.NoError(t, c.Frame().SetLED(0, 0x7F, 0x7F, 0x7F))
	require.NoError(t, c.RenderPads(0))

	sent := out.sends()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{0xF0, 0x47, 0x7F, 0x43, 0x65, 0x00, 0x04, 0x00, 0x7F, 0x7F, 0x7F, 0xF7}, sent[0])

	err := c.RenderPads(99)
	assert.ErrorIs(t, err, ErrPadIndex)
	assert.Len(t, out.sends(), 1)
}

func TestRenderSendError(t *testing.T) {
	c, _, out := newTestController(t, Options{})
	sendErr := errors.New("write failed")
	out.setSendErr(sendErr)

	err := c.Render()
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, StateConnected, c.State())
}

func TestRenderAfterClose(t *testing.T) {
	c, _, out := newTestController(t, Options{})
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Render(), ErrClosed)
	assert.ErrorIs(t, c.RenderPads(0), ErrClosed)
	assert.Empty(t, out.sends())
}

func TestCloseIsIdempotent(t *testing.T) {
	c, in, out := newTestController(t, Options{})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, StateClosed, c.State())
	assert.False(t, in.listening())
	assert.Equal(t, 1, in.closed)
	assert.Equal(t, 1, out.closed)

	// input after close is ignored
	in.emit(0x90, 0x36, 1)
	_, ok := <-c.Events()
	assert.False(t, ok)
}

func TestControllerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c, in, _ := newTestController(t, Options{QueueSize: 1, Metrics: m})

	in.emit(0x90, 0x36, 1)
	in.emit(0x90, 0x37, 1)
	require.NoError(t, c.Render())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connected()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decoded(fireA)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped(fireA)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesSent(fireA)))

	require.NoError(t, c.Close())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connected()))
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverflowDrop, p)

	p, err = ParseOverflowPolicy("CLOSE")
	require.NoError(t, err)
	assert.Equal(t, OverflowClose, p)

	_, err = ParseOverflowPolicy("block")
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
