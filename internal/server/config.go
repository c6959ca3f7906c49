package server

import (
	"net"
	"strconv"
	"time"

	"github.com/agentstation/waypoint/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	// CORS
	CORSEnabled bool
	CORSOrigins []string

	// RateLimit is requests per minute per IP; 0 disables limiting.
	RateLimit int

	// Page cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// Monitor endpoints. A non-empty token protects them.
	MonitorEnabled bool
	MonitorToken   string

	// HTTP timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		RateLimit:       0,
		CacheEnabled:    false,
		CacheTTL:        constants.DefaultCacheTTL,
		MonitorEnabled:  true,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
