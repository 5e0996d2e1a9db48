package controller

import (
	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/pkg/serverutils"
	"intellius-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	ListSessions(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat", auth)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:id/messages", c.ListMessages)
	h.Post("/send", c.Send)
	h.Delete("/sessions/:id", c.DeleteSession)
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListSessions(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := serverutils.ParamUUID(ctx, "id", "Chat session")
	if err != nil {
		return err
	}

	res, err := c.service.ListMessages(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat messages", res))
}

// Send blocks for the counselor's thinking delay before answering.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := serverutils.ParamUUID(ctx, "id", "Chat session")
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.UserContext(), userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Chat session deleted", nil))
}
