package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-social/internal/hub"
	"github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated requests onto the realtime hub.
type WSHandler struct {
	hub            *hub.Hub
	authMiddleware *middleware.AuthMiddleware
	cfg            hub.Config
}

func NewWSHandler(h *hub.Hub, authMiddleware *middleware.AuthMiddleware, cfg hub.Config) *WSHandler {
	return &WSHandler{hub: h, authMiddleware: authMiddleware, cfg: cfg}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/notifications", h.HandleWebSocket)
}

// HandleWebSocket validates the credential before upgrading. A rejected
// handshake gets a plain 401 and never becomes a websocket.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	userID, err := h.authMiddleware.Authenticate(c.Request)
	if err != nil {
		l.Warn().Err(err).Msg("websocket handshake rejected")
		response.Unauthorized(c, "invalid or missing access token")
		return
	}
	c.Set(log.FieldUserID, userID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), userID, h.hub, conn, h.cfg)
	h.hub.Join(client)

	go client.WritePump()
	go client.ReadPump()
}
