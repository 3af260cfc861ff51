package controller

import (
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPersonaController interface {
	RegisterRoutes(r fiber.Router)
	Suggest(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type personaController struct {
	service service.IPersonaService
}

func NewPersonaController(service service.IPersonaService) IPersonaController {
	return &personaController{service: service}
}

func (c *personaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/persona")
	h.Get("", c.Get)
	h.Post("suggest", c.Suggest)
}

func (c *personaController) Suggest(ctx *fiber.Ctx) error {
	res, err := c.service.Suggest(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Persona suggested", res))
}

func (c *personaController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get persona", res))
}
