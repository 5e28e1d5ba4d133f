// Package logger owns the process-wide structured logger. Records are JSON
// lines written under <project>/.fragfusion/logs; until Setup succeeds every
// record is discarded.
package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/buildinfo"
)

// MaxSize is the log size past which Setup rotates the file to <name>.1.
const MaxSize = 10 << 20

// Config selects where the log file lives and how verbose it is.
// Debug wins over Level and adds source locations.
type Config struct {
	Root  string
	Level string
	Debug bool
}

type state struct {
	log  *slog.Logger
	file *os.File
	path string
}

var (
	mu  sync.RWMutex
	cur = discarded()
)

func discarded() state {
	return state{log: slog.New(slog.DiscardHandler)}
}

// Dir is the log directory of the project at root.
func Dir(root string) string {
	return filepath.Join(root, ".fragfusion", "logs")
}

// Setup opens (or rotates and reopens) the project log and installs it as the
// global logger. The returned cleanup closes the file and goes back to
// discarding.
func Setup(cfg Config) (func() error, error) {
	root := "."
	if cfg.Root != "" {
		root = filepath.Clean(cfg.Root)
	}

	path := filepath.Join(Dir(root), "fragfusion.log")
	f, err := open(path)
	if err != nil {
		reset()
		return nil, err
	}

	level := ParseLevel(cfg.Level)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.Debug,
		ReplaceAttr: utcTime,
	})
	l := slog.New(h).With("version", buildinfo.Get().Version)

	mu.Lock()
	cur = state{log: l, file: f, path: path}
	mu.Unlock()

	l.Info("logger.initialized", "path", path, "level", level.String())

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		var cerr error
		if cur.file != nil {
			cerr = cur.file.Close()
		}
		cur = discarded()
		return cerr
	}, nil
}

func open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if st, err := os.Stat(path); err == nil && st.Size() > MaxSize {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("rotate log: %w", err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
	}
	return a
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the current logger. It never returns nil.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return cur.log
}

// Path is the open log file, or "" when logs are discarded.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return cur.path
}

// IsReady reports an error while logs are being discarded.
func IsReady() error {
	mu.RLock()
	defer mu.RUnlock()
	if cur.file == nil {
		return errors.New("logger not initialized")
	}
	return nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = discarded()
}
