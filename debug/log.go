package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	file     *os.File
	mu       sync.Mutex
	enabled  bool
	logger   = zerolog.Nop()
	counters = make(map[string]int)
)

// DefaultPath is ~/.config/go-fire/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-fire", "debug.log")
}

// Enable starts debug logging to the file at path (DefaultPath if empty).
// The file is truncated.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	start(f)
	return nil
}

// EnableWriter starts debug logging to w (a zerolog.ConsoleWriter for
// terminals, a buffer in tests)
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	start(w)
}

// start must be called with mu held
func start(w io.Writer) {
	logger = zerolog.New(w).With().Timestamp().Logger()
	enabled = true
	logger.Info().Str("category", "debug").Msg("=== Debug logging started ===")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = zerolog.Nop()
	enabled = false
	counters = make(map[string]int)
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.Debug().Str("category", category).Msgf(format, args...)
}

// Warn writes a message at warn level
func Warn(category string, err error, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.Warn().Err(err).Str("category", category).Msgf(format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events).
// n below 1 logs every call.
func LogEvery(n int, category, format string, args ...any) {
	if n < 1 {
		n = 1
	}
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// ConsoleWriter is the human-readable writer used by the CLI
func ConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}
