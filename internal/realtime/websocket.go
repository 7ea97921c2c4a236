// internal/realtime/websocket.go
package realtime

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebSocketConn wraps websocket.Conn so hub.go does not import websocket.
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

// Serve attaches c to the hub as a client of userID and pumps hub messages
// out until the peer disconnects. Incoming frames are only read to notice
// the disconnect.
func (h *Hub) Serve(c *websocket.Conn, userID uuid.UUID) {
	client := NewClient(userID, NewWebSocketConn(c))
	if !h.RegisterClient(client) {
		_ = c.Close()
		return
	}
	h.log.Info("websocket connected", zap.String("user", userID.String()), zap.String("client", client.ID))
	defer func() {
		h.UnregisterClient(client)
		h.log.Info("websocket disconnected", zap.String("user", userID.String()), zap.String("client", client.ID))
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("websocket write", zap.String("client", client.ID), zap.Error(err))
				return
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
