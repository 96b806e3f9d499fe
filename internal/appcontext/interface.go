// Package appcontext defines what commands need from the application so
// they can be tested without the real CLI wiring.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/internal/server"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/i18n"
)

// Interface is implemented by the CLI app and by Mock.
type Interface interface {
	// Store returns the record store for the configured data root.
	Store() *store.Store

	// Service builds the catalog service, AI provider and archive mirror.
	// It fails when no admin password is configured.
	Service(ctx context.Context) (*service.Service, error)

	// ServerConfig returns the HTTP settings from config and environment,
	// before command flags are applied.
	ServerConfig() server.Config

	// DefaultLanguage is the configured fallback language.
	DefaultLanguage() i18n.Code

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format value (json, yaml, table, wide).
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
