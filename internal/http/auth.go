package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mikrosense/mikrosense/internal/routeros"
)

type loginRequest struct {
	Host      string `json:"host"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SSL       bool   `json:"ssl"`
	VerifyTLS bool   `json:"verify_tls"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	payload.Host = strings.TrimSpace(payload.Host)
	if payload.Host == "" || payload.Username == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials", "host and username are required")
		return
	}

	token, conn, err := a.registry.Login(r.Context(), routeros.Config{
		Host:      payload.Host,
		Username:  payload.Username,
		Password:  payload.Password,
		SSL:       payload.SSL,
		VerifyTLS: payload.VerifyTLS,
	})
	if err != nil {
		status := http.StatusBadGateway
		code := "router_unreachable"
		if routeros.IsUnauthorized(err) {
			status = http.StatusUnauthorized
			code = "router_rejected_credentials"
		}
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"connection": map[string]any{
			"id":         conn.ID,
			"router":     conn.RouterHost,
			"created_at": conn.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	a.registry.Logout(conn.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"router":     conn.RouterHost,
		"created_at": conn.CreatedAt.Format(time.RFC3339),
		"monitoring": conn.Monitor.Running(),
	})
}

// proxyError maps common router failures onto HTTP statuses for the
// proxy handlers.
func proxyError(w http.ResponseWriter, err error) {
	switch {
	case routeros.IsUnauthorized(err):
		writeError(w, http.StatusBadGateway, "router_auth_lost", "Router rejected stored credentials")
	case routeros.IsTransport(err), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusBadGateway, "router_unreachable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "router_query_failed", err.Error())
	}
}
