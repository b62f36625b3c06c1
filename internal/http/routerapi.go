package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func (a *API) routerInfo(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	info, err := conn.Client.FetchSystemInfo(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) routerInterfaces(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	interfaces, err := conn.Client.FetchInterfaces(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": interfaces})
}

func (a *API) routerWireless(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	stations, err := conn.Client.FetchWirelessRegistrations(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": stations})
}

func (a *API) routerDHCPLeases(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	leases, err := conn.Client.FetchDHCPLeases(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": leases})
}

func (a *API) routerHotspotActive(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	clients, err := conn.Client.FetchActiveClients(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": clients, "count": len(clients)})
}

func (a *API) routerLogs(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	limit := queryInt(r, "limit", 50)
	entries, err := conn.Client.FetchRecentLogs(r.Context(), limit)
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (a *API) routerBandwidth(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	traffic, err := conn.Client.FetchBandwidth(r.Context())
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": traffic})
}

func (a *API) activeUsers(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	sessions := conn.Tracker.ActiveSessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": sessions,
		"count": len(sessions),
	})
}

// executableReads lists the read-only prints the execute endpoint
// accepts; executableWrites the few mutations. Anything else is rejected
// rather than forwarded.
var executableReads = map[string]struct{}{
	"/system/resource":                       {},
	"/system/identity":                       {},
	"/system/clock":                          {},
	"/interface":                             {},
	"/ip/address":                            {},
	"/ip/dhcp-server/lease":                  {},
	"/ip/hotspot/active":                     {},
	"/ip/hotspot/user":                       {},
	"/interface/wireless/registration-table": {},
	"/log":                                   {},
}

var executableWrites = map[string]struct{}{
	"/ip/hotspot/active/remove": {},
}

type executeRequest struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

func (a *API) executeCommand(w http.ResponseWriter, r *http.Request) {
	var payload executeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	command := strings.TrimSpace(payload.Command)
	conn := connectionFrom(r)

	if _, ok := executableWrites[command]; ok {
		if err := conn.Client.RunWrite(r.Context(), command, payload.Params); err != nil {
			proxyError(w, err)
			return
		}
		conn.Monitor.TriggerScan()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if _, ok := executableReads[command]; !ok {
		writeError(w, http.StatusForbidden, "command_not_allowed", "Command is not in the allowed set")
		return
	}
	rows, err := conn.Client.RunCommand(r.Context(), command)
	if err != nil {
		proxyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}

type kickRequest struct {
	ID string `json:"id"`
}

func (a *API) kickClient(w http.ResponseWriter, r *http.Request) {
	var payload kickRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.ID) == "" {
		writeError(w, http.StatusBadRequest, "missing_id", "active session id is required")
		return
	}

	conn := connectionFrom(r)
	if err := conn.Client.KickActiveClient(r.Context(), payload.ID); err != nil {
		proxyError(w, err)
		return
	}
	// Surface the departure promptly instead of waiting out the interval.
	conn.Monitor.TriggerScan()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
