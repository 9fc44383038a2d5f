package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05"

type Config struct {
	Level  string
	Format string
}

// New builds the process logger. Format is "console" or "json"; an unknown
// level falls back to info.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	out := w
	if !strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
