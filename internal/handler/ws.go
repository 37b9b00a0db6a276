package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/loginwatch/platform/internal/store"
)

// AlertFeed streams the alert log over a websocket with poll-on-ping
// semantics: the full current list is sent on connect and again after
// every message the client sends. Not true push; clients ping to refresh.
type AlertFeed struct {
	alerts   store.AlertLog
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewAlertFeed creates an AlertFeed over the given log.
func NewAlertFeed(alerts store.AlertLog, logger *slog.Logger) *AlertFeed {
	return &AlertFeed{
		alerts: alerts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API carries no credentials, so cross-origin reads are fine.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /ws/alerts.
func (f *AlertFeed) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		alerts, err := f.alerts.List(r.Context())
		if err != nil {
			f.logger.Error("alert feed list failed", "error", err)
			return
		}
		for _, alert := range alerts {
			if err := conn.WriteJSON(alert); err != nil {
				return
			}
		}
		// Block until the client sends anything, then re-send the list.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
