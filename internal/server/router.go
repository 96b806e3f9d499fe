package server

import (
	"net/http"

	"github.com/waajacu/minerals/internal/metrics"
	"github.com/waajacu/minerals/internal/server/handlers"
	"github.com/waajacu/minerals/internal/server/middleware"
	"github.com/waajacu/minerals/pkg/constants"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.svc,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.logger,
		handlers.Config{
			DefaultLang:    s.config.DefaultLang,
			SecureCookies:  s.config.SecureCookies,
			MaxUploadBytes: s.config.MaxUploadBytes,
			StartTime:      s.startTime,
		},
	)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix
	admin := s.config.AdminPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Languages
	mux.HandleFunc("GET "+prefix+"/languages", h.HandleLanguages)
	mux.HandleFunc("GET "+prefix+"/ui", h.HandleUIText)
	mux.HandleFunc("POST /language", h.HandleSetLanguage)

	// Catalog
	mux.HandleFunc("GET "+prefix+"/minerals", h.HandleListMinerals)
	mux.HandleFunc("GET "+prefix+"/minerals/{id}", h.HandleGetMineral)
	mux.HandleFunc("GET "+prefix+"/minerals/{id}/report", h.HandleReport)
	mux.HandleFunc("POST "+prefix+"/minerals/{id}/report", h.HandleReport)
	mux.HandleFunc("POST "+prefix+"/minerals/{id}/pdf", h.HandleRenderReport)
	mux.HandleFunc("GET "+constants.PublicDataPrefix+"/{folder}/{file}", h.HandleDataFile)

	// Information pages
	mux.HandleFunc("GET "+prefix+"/info", h.HandleInfoPages)
	mux.HandleFunc("GET "+prefix+"/info/{page}", h.HandleInfoPage)

	// Admin session
	mux.HandleFunc("POST "+admin+"/login", h.HandleLogin)
	mux.HandleFunc("POST "+admin+"/logout", h.HandleLogout)

	// Admin operations
	requireAdmin := middleware.AdminAuth(s.svc, s.logger)
	mux.Handle("POST "+admin+"/minerals/suggest", requireAdmin(http.HandlerFunc(h.HandleSuggest)))
	mux.Handle("POST "+admin+"/minerals/publish", requireAdmin(http.HandlerFunc(h.HandlePublish)))
	mux.Handle("POST "+admin+"/sweep", requireAdmin(http.HandlerFunc(h.HandleSweep)))
	mux.Handle("POST "+admin+"/reload", requireAdmin(http.HandlerFunc(h.HandleReload)))
	mux.Handle("GET "+admin+"/stats", requireAdmin(http.HandlerFunc(h.HandleStats)))

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.rateLimiter != nil {
		handler = middleware.RateLimit(s.rateLimiter)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}
