// Package server provides the HTTP server for the minerals catalog API.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/internal/publish"
	"github.com/waajacu/minerals/internal/server/events"
	"github.com/waajacu/minerals/internal/server/events/adapters"
	"github.com/waajacu/minerals/internal/server/middleware"
	"github.com/waajacu/minerals/internal/server/sse"
	ws "github.com/waajacu/minerals/internal/server/websocket"
	"github.com/waajacu/minerals/internal/service"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	svc            *service.Service
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startTime      time.Time
}

// New creates a new server instance with the given configuration.
func New(svc *service.Service, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		svc:            svc,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		logger:         logger,
		config:         cfg,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	s.connectHooks()
	logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks forwards service hooks to the event broker.
func (s *Server) connectHooks() {
	s.svc.OnPublished(func(r publish.Result) {
		s.broker.Publish(events.MineralPublished, r)
		s.logger.Debug().
			Str("mineral", r.Identifier).
			Msg("Mineral published event queued")
	})

	s.svc.OnInvalidated(func() {
		s.broker.Publish(events.CatalogInvalidated, map[string]any{
			"cache_generation": s.svc.Stats().Generation,
		})
	})

	s.svc.OnDraftsCleared(func(n int) {
		s.broker.Publish(events.DraftsCleared, map[string]any{"cleared": n})
	})

	s.svc.OnSwept(func(removed []string) {
		s.broker.Publish(events.OrphansSwept, map[string]any{"removed": removed})
	})

	s.logger.Debug().Msg("Service hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	s.wg.Add(3)
	go func() { defer s.wg.Done(); s.broker.Run(s.ctx) }()
	go func() { defer s.wg.Done(); s.wsHub.Run(s.ctx) }()
	go func() { defer s.wg.Done(); s.sseBroadcaster.Run(s.ctx) }()
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the handler using the configured
// address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
}

// Shutdown stops background services and waits for them until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
