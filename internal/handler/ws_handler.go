package handler

import (
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/pkg/serverutils"
	"last20-backend/internal/service"
	internalWS "last20-backend/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WsHandler upgrades the two websocket surfaces: the per-user notification
// feed and the per-session signaling relay.
type WsHandler struct {
	hub            *internalWS.Hub
	relay          *internalWS.SessionRelay
	sessionService service.ISessionService
	logger         logger.ILogger
}

func NewWsHandler(hub *internalWS.Hub, relay *internalWS.SessionRelay, sessionService service.ISessionService, log logger.ILogger) *WsHandler {
	return &WsHandler{
		hub:            hub,
		relay:          relay,
		sessionService: sessionService,
		logger:         log,
	}
}

// RegisterRoutes registers the websocket endpoints.
func (h *WsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeNotificationWs)
	router.Get("/ws/sessions/:id", h.ServeSessionWs)
}

// wsToken pulls the JWT from the query param (browser clients) or the
// Authorization header (tooling).
func wsToken(c *fiber.Ctx) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

func (h *WsHandler) authenticate(c *fiber.Ctx) (uuid.UUID, error) {
	tokenStr := wsToken(c)
	if tokenStr == "" {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (query 'token' or Authorization header)"})
	}

	userIDStr, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user id in token"})
	}
	return userID, nil
}

// ServeNotificationWs streams the user's real-time notifications.
func (h *WsHandler) ServeNotificationWs(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("WsHandler", "Notification socket opened", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("WsHandler", "Notification socket closed", map[string]interface{}{"user_id": userID})
	})(c)
}

// ServeSessionWs joins a session participant to the signaling relay. Only
// the session's requester and its expert may connect.
func (h *WsHandler) ServeSessionWs(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	requesterID, expertUserID, err := h.sessionService.Participants(c.UserContext(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}
	if userID != requesterID && userID != expertUserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not a session participant"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("WsHandler", "Signaling socket opened", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		})
		h.relay.Serve(conn, sessionID, userID)
		h.logger.Info("WsHandler", "Signaling socket closed", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		})
	})(c)
}
