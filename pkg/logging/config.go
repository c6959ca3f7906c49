package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/pkg/constants"
)

// Environment variables read by ConfigFromEnv. They share the WAYPOINT_
// prefix with the rest of the configuration, so WAYPOINT_LOG_LEVEL also
// feeds log.level in the config file loader.
const (
	EnvLevel      = "WAYPOINT_LOG_LEVEL"
	EnvFormat     = "WAYPOINT_LOG_FORMAT"
	EnvOutput     = "WAYPOINT_LOG_OUTPUT"
	EnvTimeFormat = "WAYPOINT_LOG_TIME_FORMAT"
	EnvCaller     = "WAYPOINT_LOG_CALLER"
	EnvDebug      = "WAYPOINT_DEBUG"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or disabled
	Level string

	// Format is auto, json, console or pretty. Auto picks console for a
	// terminal and json otherwise.
	Format string

	// Output is stderr, stdout, discard or a file path
	Output string

	// TimeFormat names a console timestamp layout (kitchen, rfc3339, ...)
	// or is a Go layout itself
	TimeFormat string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every entry
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// ConfigFromEnv builds a Config from the WAYPOINT_LOG_* variables.
// WAYPOINT_DEBUG selects the debug level when no level is set.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = v
	} else if os.Getenv(EnvDebug) != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv(EnvTimeFormat); v != "" {
		cfg.TimeFormat = v
	}
	cfg.AddCaller = os.Getenv(EnvCaller) == "true"
	return cfg
}

// NewLoggerFromConfig creates a new logger from configuration. Debug and
// trace loggers always record the caller.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := ParseLevel(cfg.Level)

	ctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	if len(cfg.Fields) > 0 {
		ctx = ctx.Fields(cfg.Fields)
	}
	return ctx.Logger()
}

var levelAliases = map[string]string{
	"warning": "warn",
	"none":    "disabled",
	"off":     "disabled",
}

// ParseLevel parses a level name. Unknown names yield info.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := levelAliases[name]; ok {
		name = alias
	}
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

var timeFormats = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"unix":        "",
	"epoch":       "",
}

func (c *Config) timeFormat() string {
	if layout, ok := timeFormats[strings.ToLower(c.TimeFormat)]; ok {
		return layout
	}
	if strings.Contains(c.TimeFormat, "2006") || strings.Contains(c.TimeFormat, "15:04") {
		return c.TimeFormat
	}
	return time.Kitchen
}

// writer opens the output and wraps it for console formats.
func (c *Config) writer() io.Writer {
	out := openOutput(c.Output)

	format := strings.ToLower(c.Format)
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(out) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: c.timeFormat(),
		NoColor:    c.NoColor,
	}
}

// openOutput resolves an output name. A file that cannot be opened falls
// back to stderr.
func openOutput(name string) io.Writer {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.LogFilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}
