// Package server serves a waypoint application over HTTP, together with
// health, live monitor and page cache endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/internal/server/cache"
	"github.com/agentstation/waypoint/internal/server/middleware"
	"github.com/agentstation/waypoint/internal/server/monitor"
	"github.com/agentstation/waypoint/internal/server/monitor/adapters"
	"github.com/agentstation/waypoint/internal/server/sse"
	ws "github.com/agentstation/waypoint/internal/server/websocket"
	"github.com/agentstation/waypoint/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            waypoint.Application
	cache          *cache.PageCache
	broker         *monitor.Broker
	reporter       *monitor.Reporter
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
}

// New creates a server. Build the application with Options, then Mount it.
func New(cfg Config, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}

	broker := monitor.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		broker:         broker,
		reporter:       monitor.NewReporter(broker),
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.CacheEnabled {
		s.cache = cache.New(cfg.CacheTTL, cfg.CacheTTL*2)
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	return s
}

// Options returns the application options the server contributes: the
// dispatch failure monitor and, when enabled, the page cache listeners.
func (s *Server) Options() []waypoint.Option {
	opts := []waypoint.Option{waypoint.WithMonitor(s.reporter)}
	if s.cache != nil {
		opts = append(opts, waypoint.WithListener(s.cache))
	}
	return opts
}

// Mount sets the application served by the catch-all route and connects
// its render and finish hooks to the monitor.
func (s *Server) Mount(app waypoint.Application) error {
	if app == nil {
		return errors.NewConfigError("server", "application is required", nil)
	}
	if err := app.Bootstrap(); err != nil {
		return err
	}
	s.app = app
	app.OnRenderError(s.reporter.RenderFailed)
	app.OnFinish(s.reporter.Finished)
	s.logger.Debug().Int("routes", len(app.Router().Routes())).Msg("Application mounted")
	return nil
}

// Start starts the background services.
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)
	if s.rateLimiter != nil {
		go s.rateLimiter.Run(s.ctx)
	}
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server configured from Config.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown stops the background services. Monitor clients are closed; the
// caller shuts down the http.Server itself.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	select {
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		s.logger.Info().Msg("Background services stopped")
		return nil
	}
}

// App returns the mounted application.
func (s *Server) App() waypoint.Application { return s.app }

// Cache returns the page cache, or nil when disabled.
func (s *Server) Cache() *cache.PageCache { return s.cache }

// Broker returns the monitor broker.
func (s *Server) Broker() *monitor.Broker { return s.broker }

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub { return s.wsHub }

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster { return s.sseBroadcaster }

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time { return s.startTime }
