package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human-readable console writer,
// production gets JSON lines on stdout.
func New(isProduction bool, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if !isProduction {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "barbershop-backend").
		Logger()
}
