package httpapi

import (
	"context"
	"net/http"
)

func (a *API) monitoringStart(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	// The scan schedule must outlive this request; it is bounded by the
	// connection's lifetime instead.
	conn.Monitor.Start(context.Background())
	writeJSON(w, http.StatusOK, conn.Monitor.CurrentStatus())
}

func (a *API) monitoringStop(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	conn.Monitor.Stop()
	writeJSON(w, http.StatusOK, conn.Monitor.CurrentStatus())
}

func (a *API) monitoringScan(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	if !conn.Monitor.Running() {
		writeError(w, http.StatusConflict, "monitoring_stopped", "Monitoring is not running")
		return
	}
	conn.Monitor.TriggerScan()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (a *API) monitoringStatus(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	writeJSON(w, http.StatusOK, conn.Monitor.CurrentStatus())
}
