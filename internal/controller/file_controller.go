package controller

import (
	"net/url"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFileController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type fileController struct {
	service service.IFileService
}

func NewFileController(service service.IFileService) IFileController {
	return &fileController{service: service}
}

func (c *fileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/files")
	h.Get(":kind", c.List)
	h.Post(":kind", c.Upload)
	h.Delete(":kind/:name", c.Delete)
}

func kindParam(ctx *fiber.Ctx) (entity.FileKind, error) {
	kind, err := entity.ParseFileKind(ctx.Params("kind"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return kind, nil
}

func (c *fileController) List(ctx *fiber.Ctx) error {
	kind, err := kindParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.SessionID(ctx), kind)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list files", res))
}

func (c *fileController) Upload(ctx *fiber.Ctx) error {
	kind, err := kindParam(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Expected a multipart form with a 'files' field")
	}

	res, err := c.service.Upload(ctx.UserContext(), serverutils.SessionID(ctx), kind, form.File["files"])
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Upload finished", res))
}

func (c *fileController) Delete(ctx *fiber.Ctx) error {
	kind, err := kindParam(ctx)
	if err != nil {
		return err
	}

	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid file name")
	}

	res, err := c.service.Delete(ctx.UserContext(), serverutils.SessionID(ctx), kind, name)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("File deleted", res))
}
