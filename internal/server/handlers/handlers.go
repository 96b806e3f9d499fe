// Package handlers provides HTTP request handlers for the minerals API.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/internal/publish"
	"github.com/waajacu/minerals/internal/render"
	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/server/events"
	"github.com/waajacu/minerals/internal/server/sse"
	ws "github.com/waajacu/minerals/internal/server/websocket"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Service is the catalog service the handlers drive. *service.Service
// implements it.
type Service interface {
	Store() *store.Store
	AIProvider() string
	Catalog(ctx context.Context, lang i18n.Code) (*minerals.Catalog, error)
	Mineral(ctx context.Context, lang i18n.Code, id string) (minerals.Mineral, error)
	Invalidate()

	Login(password string) (string, error)
	Authorized(token string) bool
	SessionTTL() time.Duration
	Logout(ctx context.Context, token string)

	Suggest(ctx context.Context, in service.SuggestInput) (service.SuggestResult, error)
	Publish(ctx context.Context, draftID string, fields publish.Fields) (publish.Result, error)
	Sweep(ctx context.Context, olderThan time.Duration, apply bool) (service.SweepResult, error)

	Report(ctx context.Context, lang i18n.Code, id string, req report.Request) (report.Report, error)
	RenderReport(ctx context.Context, lang i18n.Code, id string, req report.Request) (render.Artifacts, error)

	Stats() service.Stats
}

// Config holds handler settings taken from the server config.
type Config struct {
	DefaultLang    i18n.Code
	SecureCookies  bool
	MaxUploadBytes int64
	StartTime      time.Time
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	svc            Service
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	logger         *zerolog.Logger
	config         Config
}

// New creates a new Handlers instance.
func New(
	svc Service,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	logger *zerolog.Logger,
	cfg Config,
) *Handlers {
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = i18n.Base()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.MaxUploadBytes
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	return &Handlers{
		svc:            svc,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		logger:         logger,
		config:         cfg,
	}
}
