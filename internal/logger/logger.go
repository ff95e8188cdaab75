package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes a zerolog.Logger writing to stderr. devMode enables
// human-readable console output. An unknown level falls back to info.
func New(devMode bool, level string) zerolog.Logger {
	return newLogger(os.Stderr, devMode, level)
}

func newLogger(out io.Writer, devMode bool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if devMode {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
