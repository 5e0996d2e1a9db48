package handler

import (
	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/credential"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/internal/pkg/serverutils"
	internalWS "intellius-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatStreamHandler pushes every stored chat message of the caller over a websocket.
type ChatStreamHandler struct {
	credentials credential.IService
	users       serverutils.UserResolver
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatStreamHandler(creds credential.IService, users serverutils.UserResolver, hub *internalWS.Hub, log logger.ILogger) *ChatStreamHandler {
	return &ChatStreamHandler{
		credentials: creds,
		users:       users,
		hub:         hub,
		logger:      log,
	}
}

// ServeWs authenticates the handshake before upgrading. Browsers cannot set headers
// on a websocket request, so the token may also come from the "token" query param.
func (h *ChatStreamHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr, _ = serverutils.BearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if tokenStr == "" {
		return apperror.Unauthorized("Missing token (query 'token' or Authorization header)")
	}

	username, err := h.credentials.DecodeToken(tokenStr)
	if err != nil {
		h.logger.Warn("ChatStream", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return apperror.Unauthorized("Invalid or expired token")
	}

	user, err := h.users.FindActiveByUsername(c.UserContext(), username)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.Unauthorized("User no longer exists")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := user.Id
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatStream", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("ChatStream", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

// RegisterRoutes must run before any group middleware on /chat, since the
// handshake carries its own authentication.
func (h *ChatStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat/ws", h.ServeWs)
}
