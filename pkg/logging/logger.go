// Package logging provides structured logging for waypoint using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("handler", "home").Msg("Dispatching")
//
//	// Carry a request-scoped logger through the pipeline
//	ctx := logging.WithRequestID(context.Background(), id)
//	ctx = logging.WithHandler(ctx, "home")
//	logging.FromContext(ctx).Debug().Msg("Handler resolved")
package logging

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	SetDefault(NewLoggerFromConfig(ConfigFromEnv()))
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the default logger and zerolog's global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger.Store(&logger)
	log.Logger = logger
}

// Debug starts a new debug level entry on the default logger.
func Debug() *zerolog.Event { return Default().Debug() }

// Info starts a new info level entry on the default logger.
func Info() *zerolog.Event { return Default().Info() }

// Warn starts a new warning level entry on the default logger.
func Warn() *zerolog.Event { return Default().Warn() }

// Error starts a new error level entry on the default logger.
func Error() *zerolog.Event { return Default().Error() }

// Err starts an entry for err: error level, or info when err is nil.
func Err(err error) *zerolog.Event { return Default().Err(err) }

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
