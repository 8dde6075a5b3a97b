package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSHandlerPushesToConnectedUser(t *testing.T) {
	hub := realtime.NewHub(nil)
	handler := NewWSHandler(hub, nil)
	e := newTestServer(func(g *echo.Group) {
		g.GET("/ws", handler.Serve)
	})
	server := httptest.NewServer(e)
	defer server.Close()

	header := http.Header{}
	header.Set(testUserHeader, "7")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/api/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 5*time.Millisecond)
	hub.SendToUser(7, &realtime.Message{Event: "notification", Data: map[string]any{"type": "like"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Event)
	assert.Equal(t, "like", msg.Data["type"])

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(7) }, time.Second, 5*time.Millisecond)
}

func TestWSHandlerRequiresUser(t *testing.T) {
	handler := NewWSHandler(realtime.NewHub(nil), nil)
	e := newTestServer(func(g *echo.Group) {
		g.GET("/ws", handler.Serve)
	})

	rec := doJSON(e, http.MethodGet, "/api/ws", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWSHandlerOriginCheck(t *testing.T) {
	handler := NewWSHandler(realtime.NewHub(nil), []string{"https://app.example"})
	check := handler.upgrader.CheckOrigin

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "requests without Origin are not browsers")

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
