package app

import (
	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/internal/server"
	"github.com/agentstation/waypoint/internal/welcome"
	"github.com/agentstation/waypoint/pkg/view"
)

// NewApplication builds the waypoint application: the welcome site, then
// the configured settings, then extra. Configured template directories are
// searched before the embedded templates.
func (a *App) NewApplication(extra ...waypoint.Option) (waypoint.Application, error) {
	opts := welcome.Options()

	cfgOpts, resolver, err := a.config.ApplicationOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, cfgOpts...)
	if resolver != nil {
		opts = append(opts, waypoint.WithResolver(view.NewAggregateResolver(resolver, welcome.Resolver())))
	}

	return waypoint.New(append(opts, extra...)...)
}

// ServerConfig maps the server section of the configuration.
func (a *App) ServerConfig() server.Config {
	s := a.config.Server
	return server.Config{
		Host:            s.Host,
		Port:            s.Port,
		CORSEnabled:     s.CORS,
		CORSOrigins:     s.CORSOrigins,
		RateLimit:       s.RateLimit,
		CacheEnabled:    s.Cache,
		CacheTTL:        s.CacheTTL,
		MonitorEnabled:  s.Monitor,
		MonitorToken:    s.MonitorToken,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		IdleTimeout:     s.IdleTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}
