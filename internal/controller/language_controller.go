package controller

import (
	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILanguageController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Members(ctx *fiber.Ctx) error
	ReconcileMembers(ctx *fiber.Ctx) error
}

type languageController struct {
	service service.ILanguageService
}

func NewLanguageController(service service.ILanguageService) ILanguageController {
	return &languageController{service: service}
}

func (c *languageController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/language/v1")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/members", c.Members)
	h.Post("", protected, c.Create)
	h.Put(":id", protected, c.Update)
	h.Delete(":id", protected, c.Delete)
	h.Put(":id/members", protected, c.ReconcileMembers)
}

func (c *languageController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list languages", res))
}

func (c *languageController) Show(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show language", res))
}

func (c *languageController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateLanguageRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create language", res))
}

func (c *languageController) Update(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateLanguageRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update language", res))
}

func (c *languageController) Delete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete language", nil))
}

func (c *languageController) Members(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Members(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list members", res))
}

func (c *languageController) ReconcileMembers(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ReconcileMembersRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.LanguageId = id

	res, err := c.service.ReconcileMembers(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reconcile members", res))
}
