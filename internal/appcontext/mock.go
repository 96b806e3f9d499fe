package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/internal/server"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
)

// Mock provides a mock implementation of Interface for testing.
// If a function field is nil, the method returns a default value.
type Mock struct {
	StoreFunc        func() *store.Store
	ServiceFunc      func(ctx context.Context) (*service.Service, error)
	ServerConfigFunc func() server.Config
	LoggerFunc       func() *zerolog.Logger
	Format           string
	Lang             i18n.Code
}

var _ Interface = (*Mock)(nil)

// Store returns the mock store or nil.
func (m *Mock) Store() *store.Store {
	if m.StoreFunc != nil {
		return m.StoreFunc()
	}
	return nil
}

// Service returns the mock service or a config error.
func (m *Mock) Service(ctx context.Context) (*service.Service, error) {
	if m.ServiceFunc != nil {
		return m.ServiceFunc(ctx)
	}
	return nil, errors.NewConfigError("service", "not configured", nil)
}

// ServerConfig returns the mock config or the server defaults.
func (m *Mock) ServerConfig() server.Config {
	if m.ServerConfigFunc != nil {
		return m.ServerConfigFunc()
	}
	return server.DefaultConfig()
}

// DefaultLanguage returns Lang or the base language.
func (m *Mock) DefaultLanguage() i18n.Code {
	if m.Lang != "" {
		return m.Lang
	}
	return i18n.Base()
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Version returns a fixed test version.
func (m *Mock) Version() string { return "test" }

// Commit returns a fixed test commit.
func (m *Mock) Commit() string { return "none" }

// Date returns a fixed test date.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a fixed test builder.
func (m *Mock) BuiltBy() string { return "test" }
