package handler

import (
	"net/http"

	"CrediAgenda/pkg/ws"
	"CrediAgenda/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin handling lives in the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub *ws.Hub
}

func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Conectar upgrades the request and keeps the connection in the hub so push
// alerts reach the user in real time.
func (h *WsHandler) Conectar(c *gin.Context) {
	usuarioID := c.GetString("uuid")
	if usuarioID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Warn("ws upgrade failed", zap.String("usuario_id", usuarioID), zap.Error(err))
		return
	}

	cliente := ws.NewClient(usuarioID, conn)
	h.hub.Register(cliente)

	go cliente.WritePump()
	go cliente.ReadPump(h.hub.Unregister)
}
