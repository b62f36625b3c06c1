// Package httpapi exposes the monitoring engine over a REST and
// WebSocket surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mikrosense/mikrosense/internal/session"
)

// API holds the handler dependencies.
type API struct {
	registry *session.Registry
	logger   *slog.Logger
}

// New builds the API facade over the connection registry.
func New(registry *session.Registry, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{registry: registry, logger: logger}
}

// Logger exposes the API logger for middleware.
func (a *API) Logger() *slog.Logger { return a.logger }

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// RunServer starts and gracefully stops the HTTP server with context
// cancellation.
func RunServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "err", err)
			return err
		}
		return nil
	}
}
