package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mikrosense/mikrosense/internal/model"
)

func (a *API) listAlerts(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	alerts := conn.Sink.Alerts()
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(alerts) {
		alerts = alerts[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": alerts, "count": len(alerts)})
}

func (a *API) listUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	alerts := conn.Sink.UnreadAlerts()
	writeJSON(w, http.StatusOK, map[string]any{"items": alerts, "count": len(alerts)})
}

func (a *API) markAlertRead(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	id := chi.URLParam(r, "id")
	if !conn.Sink.MarkRead(id) {
		writeError(w, http.StatusNotFound, "alert_not_found", "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) markAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	conn.Sink.MarkAllRead()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) clearOldAlerts(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	hours := queryInt(r, "hours", 24)
	removed := conn.Sink.ClearOlderThan(time.Duration(hours) * time.Hour)
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (a *API) notificationsStatus(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	writeJSON(w, http.StatusOK, conn.Sink.CurrentStatus())
}

func (a *API) testAlert(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	alert := conn.Sink.CreateAlert(
		model.AlertSystemWarning,
		"Test Alert",
		"This is a test alert to verify notification delivery",
		map[string]string{"Router": conn.RouterHost},
	)
	writeJSON(w, http.StatusOK, alert)
}
