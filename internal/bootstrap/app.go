package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/comfortlab/roomsense/internal/domain/monitor"
	"github.com/comfortlab/roomsense/internal/infra/config"
)

// App encapsulates the refresh loop and HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	store  *monitor.Store
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, store *monitor.Store) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, store: store}
}

// Run starts the store refresh loop and the HTTP server, then blocks
// until shutdown.
func (a *App) Run(ctx context.Context) error {
	storeCtx, stopStore := context.WithCancel(ctx)
	defer stopStore()
	go func() {
		a.logger.Info("sensor store refresh loop starting")
		if err := a.store.Run(storeCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("sensor store stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
