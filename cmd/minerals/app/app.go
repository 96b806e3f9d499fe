// Package app wires configuration, logging and the catalog service for the
// minerals CLI.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/internal/ai"
	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/archive"
	"github.com/waajacu/minerals/internal/server"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
)

// App holds the CLI dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu      sync.Mutex
	service *service.Service
}

var _ appcontext.Interface = (*App)(nil)

// New creates an App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// Store returns a record store for the configured data root.
func (a *App) Store() *store.Store {
	return store.New(a.config.DataRoot)
}

// DefaultLanguage returns the configured default language. An unsupported
// DEFAULT_LANG is logged and replaced by the base language.
func (a *App) DefaultLanguage() i18n.Code {
	code, ok := a.config.Language()
	if !ok {
		a.logger.Warn().
			Str("default_lang", a.config.DefaultLang).
			Str("using", string(code)).
			Msg("Unsupported DEFAULT_LANG, falling back to the base language")
	}
	return code
}

// ServerConfig returns the HTTP settings from config and environment.
func (a *App) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	if a.config.Host != "" {
		cfg.Host = a.config.Host
	}
	if a.config.Port != 0 {
		cfg.Port = a.config.Port
	}
	cfg.DefaultLang = a.DefaultLanguage()
	return cfg
}

// Service returns the catalog service, creating it on first use.
func (a *App) Service(ctx context.Context) (*service.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.service != nil {
		return a.service, nil
	}

	provider, err := ai.New(a.config.AI)
	if err != nil {
		return nil, err
	}
	opts := []service.Option{service.WithAI(provider)}

	if a.config.Archive.Enabled() {
		arch, err := archive.NewS3(ctx, a.config.Archive)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithArchiver(arch))
		a.logger.Info().Str("bucket", a.config.Archive.Bucket).Msg("Archive mirror enabled")
	}

	svc, err := service.New(service.Config{
		DataRoot:             a.config.DataRoot,
		AdminPassword:        a.config.AdminPassword,
		TranslateTimeout:     a.config.TranslateTimeout,
		TranslateConcurrency: a.config.TranslateConcurrency,
	}, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("data_root", a.config.DataRoot).
		Str("ai_provider", provider.Name()).
		Msg("Catalog service created")

	a.service = svc
	return svc, nil
}

// Shutdown waits for background work started by the service.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	svc := a.service
	a.mu.Unlock()
	if svc == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
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
