// Package main serves the value distribution calculator over HTTP.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/app"
	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	"github.com/mpz/devops/tools/value-distribution/internal/httputil"
)

func main() {
	logger := config.NewLogger()
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("ignoring .env file", slog.String("error", err.Error()))
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Error("config init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Debug("configuration loaded", slog.Any("config", cfg.Redacted()))

	calc, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Error("calculator init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := serve(cfg, httputil.NewRequestHandler(calc, logger), logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("calculator stopped")
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests.
func serve(cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	port := cfg.Port
	if port == "" {
		port = constants.DefaultHTTPPort
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  constants.DefaultReadTimeout,
		WriteTimeout: constants.DefaultWriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		logger.Info("calculator shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("calculator listening",
		slog.String("port", port),
		slog.String("base_path", cfg.BasePath),
		slog.String("locale", cfg.Locale),
		slog.Bool("tls", cfg.TLSEnabled))

	var err error
	if cfg.TLSEnabled && cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-drained
	return nil
}
