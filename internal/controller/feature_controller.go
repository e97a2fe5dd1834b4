package controller

import (
	"strconv"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/service"
	"pattern-sphere-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type IFeatureController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type featureController struct {
	service service.IFeatureService
}

func NewFeatureController(service service.IFeatureService) IFeatureController {
	return &featureController{service: service}
}

func (c *featureController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/feature/v1")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/stats", c.Stats)
	h.Post("", protected, c.Create)
	h.Put(":id", protected, c.Update)
	h.Delete(":id", protected, c.Delete)
}

func (c *featureController) List(ctx *fiber.Ctx) error {
	req := dto.ListFeaturesRequest{Type: ctx.Query("type")}
	if raw := ctx.Query("required"); raw != "" {
		required, err := strconv.ParseBool(raw)
		if err != nil {
			return apperror.Validation("required must be true or false")
		}
		req.Required = &required
	}

	res, err := c.service.List(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list features", res))
}

func (c *featureController) Show(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show feature", res))
}

func (c *featureController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFeatureRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create feature", res))
}

func (c *featureController) Update(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateFeatureRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update feature", res))
}

func (c *featureController) Delete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete feature", nil))
}

func (c *featureController) Stats(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.UsageStats(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success feature stats", res))
}
