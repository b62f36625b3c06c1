package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
	// Token auth already gates the endpoint; cross-origin dashboards
	// are expected.
	CheckOrigin: func(*http.Request) bool { return true },
}

// notificationsWS streams new alerts to the client as JSON frames until
// either side closes.
func (a *API) notificationsWS(w http.ResponseWriter, r *http.Request) {
	conn := connectionFrom(r)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer ws.Close()

	alertCh, cancel := conn.Sink.Subscribe()
	defer cancel()

	// Reader only services control frames and surfaces client closes.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case alert, ok := <-alertCh:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteJSON(alert); err != nil {
				return
			}
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
