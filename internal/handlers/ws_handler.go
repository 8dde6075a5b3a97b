package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WSHandler upgrades authenticated requests to a websocket that receives live notifications.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler builds the handler. An empty allowedOrigins list, or one containing "*", accepts
// any origin.
func NewWSHandler(hub *realtime.Hub, allowedOrigins []string) *WSHandler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *WSHandler) Serve(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logging.FromContext(c.Request().Context()).Warn("websocket upgrade failed", "error", err)
		return nil
	}

	client := realtime.NewClient(h.hub, conn, currentUserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}
