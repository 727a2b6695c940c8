package debug

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestDisabledByDefault(t *testing.T) {
	Disable()
	Log("test", "nothing %d", 1) // must not panic
	LogEvery(1, "test", "nothing")
}

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	Log("session", "connected %s", "fire-a")

	got := lines(t, &buf)
	require.Len(t, got, 2) // start banner + our line
	assert.Equal(t, "session", got[1]["category"])
	assert.Equal(t, "debug", got[1]["level"])
	assert.Equal(t, "connected fire-a", got[1]["message"])
}

func TestWarnCarriesError(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	Warn("session", errors.New("queue full"), "overflow on %s", "fire-a")

	got := lines(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "warn", got[1]["level"])
	assert.Equal(t, "queue full", got[1]["error"])
	assert.Equal(t, "overflow on fire-a", got[1]["message"])
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	for i := 0; i < 7; i++ {
		LogEvery(3, "pads", "tick")
	}

	got := lines(t, &buf)
	require.Len(t, got, 3) // banner + count 3 + count 6
	assert.Equal(t, "tick (every 3, count=3)", got[1]["message"])
	assert.Equal(t, "tick (every 3, count=6)", got[2]["message"])
}

func TestLogEveryBelowOneLogsEachCall(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	assert.NotPanics(t, func() {
		LogEvery(0, "pads", "tick")
		LogEvery(-2, "pads", "tock")
	})

	got := lines(t, &buf)
	require.Len(t, got, 3)
	assert.Equal(t, "tick (every 1, count=1)", got[1]["message"])
	assert.Equal(t, "tock (every 1, count=1)", got[2]["message"])
}

func TestDisableStopsOutput(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()

	Log("session", "dropped")
	assert.Len(t, lines(t, &buf), 1)
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Enable(path))
	require.NoError(t, Enable(path)) // already on

	Log("test", "to file")
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
