package controller

import (
	"path/filepath"

	"context-generator-be/internal/dto"
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContextController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Output(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type contextController struct {
	service service.IContextService
}

func NewContextController(service service.IContextService) IContextController {
	return &contextController{service: service}
}

func (c *contextController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/context")
	h.Post("generate", c.Generate)
	h.Get("output", c.Output)
	h.Get("download", c.Download)
}

func (c *contextController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.Generate(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Context generated", res))
}

func (c *contextController) Output(ctx *fiber.Ctx) error {
	res, err := c.service.Output(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get output", res))
}

func (c *contextController) Download(ctx *fiber.Ctx) error {
	path, err := c.service.DownloadPath(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return ctx.Download(path, filepath.Base(path))
}
