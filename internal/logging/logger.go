// Package logging centralizes the process-wide zerolog logger: one
// global logger, console-rendered when attached to a terminal, JSON
// otherwise.
package logging

import (
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Logger returns the process-wide logger, initializing it on first use.
// Initialization is idempotent: calling Logger from multiple goroutines
// or multiple times during startup never reinitializes or races.
func Logger() *zerolog.Logger {
	once.Do(func() {
		var out interface {
			Write([]byte) (int, error)
		}
		if isatty.IsTerminal(os.Stdout.Fd()) {
			out = zerolog.ConsoleWriter{Out: colorable.NewColorableStdout(), TimeFormat: "15:04:05"}
		} else {
			out = os.Stdout
		}
		logger = zerolog.New(out).With().Timestamp().Logger()
	})
	return &logger
}

// SetLevel adjusts the global minimum log level. Useful for cmd/
// binaries that expose a -v/-verbose flag.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
