package handler

import (
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/pkg/serverutils"
	internalWS "context-generator-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request and streams the session's progress events.
// The session comes from the cookie set by SessionMiddleware.
func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := serverutils.SessionID(c)
	if sessionID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing session")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("ProgressHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ProgressHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/progress", h.ServeWs)
}
