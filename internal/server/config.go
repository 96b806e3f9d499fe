package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string `validate:"omitempty,hostname|ip"`
	Port int    `validate:"gte=0,lte=65535"`

	// API settings
	PathPrefix  string `validate:"omitempty,startswith=/"`
	AdminPrefix string `validate:"required,startswith=/"`
	DefaultLang i18n.Code

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Performance settings
	RateLimit      int   `validate:"gte=0"` // requests per minute per IP, 0 disables
	MaxUploadBytes int64 `validate:"gt=0"`

	// HTTP timeouts. WriteTimeout stays 0 by default so event streams and
	// slow publishes are not cut off.
	ReadTimeout       time.Duration `validate:"gte=0"`
	ReadHeaderTimeout time.Duration `validate:"gte=0"`
	WriteTimeout      time.Duration `validate:"gte=0"`
	IdleTimeout       time.Duration `validate:"gte=0"`

	// Features
	MetricsEnabled bool
	SecureCookies  bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              7979,
		PathPrefix:        "/api/v1",
		AdminPrefix:       "/api/admin",
		DefaultLang:       i18n.Base(),
		CORSEnabled:       false,
		CORSOrigins:       []string{},
		RateLimit:         600,
		MaxUploadBytes:    constants.MaxUploadBytes,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
		MetricsEnabled:    true,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config and reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if _, ok := i18n.Lookup(c.DefaultLang); !ok {
			return errors.NewConfigError("server", fmt.Sprintf("unsupported default language %q", c.DefaultLang), nil)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.NewConfigError("server", "invalid configuration", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.NewConfigError("server", strings.Join(msgs, "; "), err)
}
