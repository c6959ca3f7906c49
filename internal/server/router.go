package server

import (
	"net/http"

	"github.com/agentstation/waypoint/internal/server/handlers"
	"github.com/agentstation/waypoint/internal/server/middleware"
)

// MonitorPrefix is the path prefix of the operational endpoints.
const MonitorPrefix = "/_monitor"

func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.app, s.cache, s.broker, s.wsHub, s.sseBroadcaster, &s.upgrader, s.logger, s.startTime)
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /ready", h.HandleReady)

	if s.config.MonitorEnabled {
		mux.HandleFunc("GET "+MonitorPrefix+"/stream", h.HandleSSE)
		mux.HandleFunc("GET "+MonitorPrefix+"/ws", h.HandleWebSocket)
		if s.cache != nil {
			mux.HandleFunc("DELETE "+MonitorPrefix+"/cache", h.HandleCachePurge)
		}
	}

	// everything else belongs to the application
	mux.Handle("/", h.App())
}

func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config
	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	}
	if cfg.CORSEnabled {
		cors := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			cors.AllowedOrigins = cfg.CORSOrigins
		}
		chain = append(chain, middleware.CORS(cors))
	}
	if cfg.MonitorToken != "" {
		chain = append(chain, middleware.Auth(middleware.AuthConfig{
			Token:     cfg.MonitorToken,
			Protected: []string{MonitorPrefix},
		}, s.logger))
	}
	if s.rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(s.rateLimiter))
	}
	return middleware.Chain(chain...)(handler)
}
