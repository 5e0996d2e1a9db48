package controller

import (
	"intellius-chat-be/internal/pkg/serverutils"
	"intellius-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Get("/:id", c.Show)
}

func (c *userController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id", "User")
	if err != nil {
		return err
	}

	res, err := c.service.GetById(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get user", res))
}
