// Package app wires configuration, logging and the waypoint application
// together for the CLI.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/internal/config"
	"github.com/agentstation/waypoint/internal/server"
	"github.com/agentstation/waypoint/pkg/errors"
)

// Flags holds the global command-line flags.
type Flags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	LogLevel   string
}

// App represents the waypoint CLI with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	flags  Flags
	config *config.Config
	logger *zerolog.Logger
	out    io.Writer

	// configFixed is set when the config came from WithConfig and must not
	// be reloaded from disk.
	configFixed bool

	mu     sync.Mutex
	server *server.Server
}

// New creates an App with the configuration found in the working
// directory and environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config == nil {
		cfg, err := config.Load(config.Options{})
		if err != nil {
			return nil, err
		}
		a.config = cfg
	}
	if a.logger == nil {
		logger := NewLogger(a.config, a.flags)
		a.logger = &logger
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Shutdown stops the background services of a running server.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return errors.WrapIO("shutdown", "server", err)
	}
	return nil
}

func (a *App) setServer(srv *server.Server) {
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a configuration and disables loading from disk.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		a.configFixed = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
