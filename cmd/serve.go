package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
)

// apiHandler builds the API router. CORS wraps the whole router so preflight requests to any path are answered.
func (r *Runner) apiHandler() http.Handler {
	logger := shared.WithLogger(r.logger, "component", "api")

	router := server.NewBasicRouter()
	router.Use(server.RequestIDMiddleware(), server.RecoverMiddleware(logger), server.LoggingMiddleware(logger))
	server.NewAPI(r.session, r.collections, r.catalog, r.images, logger).Mount(router)

	return server.CORSMiddleware()(router)
}

// Serve runs the JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if r.catalog == nil {
		r.logger.Warn("no catalog credentials; movie endpoints will return 503")
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r.apiHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving API at http://%v", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}
	return nil
}
