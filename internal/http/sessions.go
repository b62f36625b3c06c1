package httpapi

import (
	"net/http"
)

func (a *API) sessionStatistics(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	stats, err := conn.History.Statistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "statistics_failed", err.Error())
		return
	}
	active := conn.Tracker.ActiveSessions()
	recent := conn.Tracker.RecentlyDisconnected()
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions":       len(active),
		"active":                active,
		"recently_disconnected": len(recent),
		"recent":                recent,
		"completed":             stats,
	})
}

func (a *API) sessionHistory(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	rows, err := conn.History.RecentSessions(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (a *API) mostConnected(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)
	top, err := conn.History.MostConnectedMACs(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "aggregation_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": top})
}
