package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/store"
)

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAlertFeed_SendsCurrentAlertsOnConnect(t *testing.T) {
	ctx := context.Background()
	alerts := store.NewMemoryAlertLog()
	require.NoError(t, alerts.Append(ctx, &domain.AnomalyAlert{AlertID: "A-1", Username: "eve", Severity: domain.SeverityHigh}))
	require.NoError(t, alerts.Append(ctx, &domain.AnomalyAlert{AlertID: "A-2", Username: "bob", Severity: domain.SeverityMedium}))

	feed := NewAlertFeed(alerts, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(feed.Serve))
	defer srv.Close()

	conn := dialFeed(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first, second domain.AnomalyAlert
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "A-1", first.AlertID)
	assert.Equal(t, "A-2", second.AlertID)
}

func TestAlertFeed_RefreshesOnClientMessage(t *testing.T) {
	ctx := context.Background()
	alerts := store.NewMemoryAlertLog()
	require.NoError(t, alerts.Append(ctx, &domain.AnomalyAlert{AlertID: "A-1", Username: "eve"}))

	feed := NewAlertFeed(alerts, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(feed.Serve))
	defer srv.Close()

	conn := dialFeed(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var alert domain.AnomalyAlert
	require.NoError(t, conn.ReadJSON(&alert))
	assert.Equal(t, "A-1", alert.AlertID)

	// A new alert lands, the client pings, the full list is re-sent.
	require.NoError(t, alerts.Append(ctx, &domain.AnomalyAlert{AlertID: "A-2", Username: "bob"}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("refresh")))

	require.NoError(t, conn.ReadJSON(&alert))
	assert.Equal(t, "A-1", alert.AlertID)
	require.NoError(t, conn.ReadJSON(&alert))
	assert.Equal(t, "A-2", alert.AlertID)
}
