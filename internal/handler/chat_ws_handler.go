package handler

import (
	"os"

	"catalog-assist-be/internal/pkg/logger"
	internalWS "catalog-assist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ChatWsHandler upgrades authenticated clients onto the hub so they get
// pushed when their session completes.
type ChatWsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatWsHandler(hub *internalWS.Hub, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{hub: hub, logger: log}
}

func (h *ChatWsHandler) RegisterRoutes(r fiber.Router) {
	ws := r.Group("/ws")
	ws.Use("/chat/:session_id", h.upgradeGuard)
	ws.Get("/chat/:session_id", websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("session_id")
		internalWS.ServeWs(h.hub, c, sessionID)
	}))
}

// upgradeGuard authenticates the handshake. Browsers cannot set headers
// on websocket requests, so the token may also come as a query param.
func (h *ChatWsHandler) upgradeGuard(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (query 'token' or Authorization header)"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("ChatWsHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	return c.Next()
}
