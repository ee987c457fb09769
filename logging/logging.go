// Package logging wraps zerolog with the defaults used across the extractor:
// one root logger per process and request-scoped children carried in a
// context.Context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Options configures the root logger.
type Options struct {
	Level  string
	Format string // console, json or empty for auto-detection
	Writer io.Writer
}

var (
	once sync.Once
	root zerolog.Logger
)

// Init builds the root logger. Only the first call has an effect.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}

		if useConsole(opt.Format, w) {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		root = zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &root
	})
}

// Get returns the root logger, initializing it with defaults if needed.
func Get() *zerolog.Logger {
	Init(Options{})

	return &root
}

// WithRequest returns a context carrying a child logger tagged with a fresh
// request id, together with that id.
func WithRequest(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	l := Get().With().Str("request_id", id).Logger()

	return l.WithContext(ctx), id
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func useConsole(format string, w io.Writer) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "json":
		return false
	}

	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
