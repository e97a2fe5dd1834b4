package handler

import (
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/pkg/serverutils"
	internalWS "pattern-sphere-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventHandler serves the live catalog change feed.
type EventHandler struct {
	hub    *internalWS.Hub
	secret string
	logger logger.ILogger
}

func NewEventHandler(hub *internalWS.Hub, secret string, log logger.ILogger) *EventHandler {
	return &EventHandler{
		hub:    hub,
		secret: secret,
		logger: log,
	}
}

// ServeWs upgrades an authenticated request to the event feed. Browsers
// cannot set headers on a websocket handshake, so the token may also come
// from the "token" query parameter.
func (h *EventHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token (query 'token' or header 'Authorization')"})
	}

	subject, err := serverutils.ParseToken(h.secret, tokenStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EventHandler", "Feed opened", map[string]interface{}{"subject": subject})
		internalWS.ServeWs(h.hub, conn, subject)
		h.logger.Info("EventHandler", "Feed closed", map[string]interface{}{"subject": subject})
	})(c)
}

func (h *EventHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/events/v1/ws", h.ServeWs)
}
