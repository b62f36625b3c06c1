package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the full HTTP routing tree.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON)
	r.Use(RequestLogger(a))

	r.Get("/healthz", a.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", a.login)

		api.Group(func(authed chi.Router) {
			authed.Use(a.requireAuth)
			// Long-lived websocket connections must not inherit the
			// request timeout, so it applies inside this group only.
			authed.Get("/notifications/ws", a.notificationsWS)

			authed.Group(func(timed chi.Router) {
				timed.Use(middleware.Timeout(30 * time.Second))

				timed.Post("/auth/logout", a.logout)
				timed.Get("/auth/verify", a.verify)

				timed.Route("/router", func(router chi.Router) {
					router.Get("/info", a.routerInfo)
					router.Get("/interfaces", a.routerInterfaces)
					router.Get("/wireless", a.routerWireless)
					router.Get("/dhcp-leases", a.routerDHCPLeases)
					router.Get("/hotspot-active", a.routerHotspotActive)
					router.Get("/logs", a.routerLogs)
					router.Get("/bandwidth", a.routerBandwidth)
					router.Get("/active-users", a.activeUsers)
					router.Get("/most-connected-macs", a.mostConnected)
					router.Post("/execute", a.executeCommand)
					router.Post("/kick", a.kickClient)
				})

				timed.Route("/monitoring", func(mon chi.Router) {
					mon.Post("/start", a.monitoringStart)
					mon.Post("/stop", a.monitoringStop)
					mon.Post("/scan", a.monitoringScan)
					mon.Get("/status", a.monitoringStatus)
				})

				timed.Route("/notifications", func(notif chi.Router) {
					notif.Get("/alerts", a.listAlerts)
					notif.Get("/alerts/unread", a.listUnreadAlerts)
					notif.Post("/alerts/{id}/read", a.markAlertRead)
					notif.Post("/alerts/read-all", a.markAllAlertsRead)
					notif.Post("/alerts/clear-old", a.clearOldAlerts)
					notif.Get("/status", a.notificationsStatus)
					notif.Post("/test", a.testAlert)
				})

				timed.Route("/sessions", func(sess chi.Router) {
					sess.Get("/statistics", a.sessionStatistics)
					sess.Get("/history", a.sessionHistory)
					sess.Get("/most-connected", a.mostConnected)
				})
			})
		})
	})

	return r
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": a.registry.Count(),
	})
}
