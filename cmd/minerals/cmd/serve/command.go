// Package serve provides the serve command.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/server"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the catalog HTTP service",
		Long: `Start the HTTP service for the minerals catalog.

Features:
  - Localized catalog, record and report endpoints (/api/v1)
  - Admin login, photo suggestion and publishing (/api/admin)
  - Record images and report documents under /data/minerals
  - WebSocket (/api/v1/updates/ws) and SSE (/api/v1/updates/stream) updates
  - Rate limiting, CORS, request logging and panic recovery
  - Prometheus metrics at /metrics
  - Graceful shutdown on SIGINT/SIGTERM

ADMIN_PASSWORD must be set. Only one serve process may use a data root.`,
		Example: `  # Start on the default port 7979
  ADMIN_PASSWORD=secret minerals serve

  # Custom port, CORS for one origin
  minerals serve --port 8080 --cors-origins https://example.com

  # Disable rate limiting
  minerals serve --rate-limit 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app)
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().Int("port", defaults.Port, "Server port (env PORT)")
	cmd.Flags().String("host", defaults.Host, "Bind address (env HOST)")
	cmd.Flags().String("prefix", defaults.PathPrefix, "Public API path prefix")
	cmd.Flags().String("admin-prefix", defaults.AdminPrefix, "Admin API path prefix")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Int64("max-upload", defaults.MaxUploadBytes, "Maximum photo upload size in bytes")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout (0 keeps streams open)")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable the /metrics endpoint")
	cmd.Flags().Bool("secure-cookies", false, "Mark cookies Secure (serve behind HTTPS)")

	return cmd
}

// runServer starts the HTTP service and blocks until the command context is
// cancelled.
func runServer(cmd *cobra.Command, app appcontext.Interface) error {
	logger := app.Logger()
	cfg := applyFlags(cmd, app.ServerConfig())
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := app.Service(cmd.Context())
	if err != nil {
		return err
	}

	lock, err := svc.Store().Lock()
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return fmt.Errorf("data root %s is in use by another minerals process", svc.Store().Root())
		}
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release data root lock")
		}
	}()

	srv, err := server.New(svc, cfg, logger)
	if err != nil {
		return err
	}
	srv.Start()

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("data_root", svc.Store().Root()).
		Str("default_lang", string(cfg.DefaultLang)).
		Str("ai_provider", svc.AIProvider()).
		Bool("cors", cfg.CORSEnabled).
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting minerals service")

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return errors.WrapIO("listen", cfg.Addr(), err)
	}
	return serveUntilDone(cmd.Context(), srv.HTTPServer(), ln, srv, logger)
}

// applyFlags overrides cfg with the flags the user set explicitly so that
// environment values survive flag defaults.
func applyFlags(cmd *cobra.Command, cfg server.Config) server.Config {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("host") {
		cfg.Host, _ = f.GetString("host")
	}
	if f.Changed("prefix") {
		cfg.PathPrefix, _ = f.GetString("prefix")
	}
	if f.Changed("admin-prefix") {
		cfg.AdminPrefix, _ = f.GetString("admin-prefix")
	}
	if f.Changed("cors") {
		cfg.CORSEnabled, _ = f.GetBool("cors")
	}
	if f.Changed("cors-origins") {
		cfg.CORSOrigins, _ = f.GetStringSlice("cors-origins")
		cfg.CORSEnabled = cfg.CORSEnabled || len(cfg.CORSOrigins) > 0
	}
	if f.Changed("rate-limit") {
		cfg.RateLimit, _ = f.GetInt("rate-limit")
	}
	if f.Changed("max-upload") {
		cfg.MaxUploadBytes, _ = f.GetInt64("max-upload")
	}
	if f.Changed("read-timeout") {
		cfg.ReadTimeout, _ = f.GetDuration("read-timeout")
	}
	if f.Changed("write-timeout") {
		cfg.WriteTimeout, _ = f.GetDuration("write-timeout")
	}
	if f.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = f.GetDuration("idle-timeout")
	}
	if f.Changed("metrics") {
		cfg.MetricsEnabled, _ = f.GetBool("metrics")
	}
	if f.Changed("secure-cookies") {
		cfg.SecureCookies, _ = f.GetBool("secure-cookies")
	}
	return cfg
}

// serveUntilDone serves on ln until ctx is cancelled, then drains
// connections and stops the background services.
func serveUntilDone(ctx context.Context, httpServer *http.Server, ln net.Listener, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	// The parent context is already cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Background services shutdown had issues")
	}
	logger.Info().Dur("took", time.Since(start)).Msg("Server stopped gracefully")
	return nil
}
