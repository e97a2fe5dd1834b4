package controller

import (
	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITemplateController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	AttachFeature(ctx *fiber.Ctx) error
	DetachFeature(ctx *fiber.Ctx) error
	CountFeatureValues(ctx *fiber.Ctx) error
	CountPatterns(ctx *fiber.Ctx) error
}

type templateController struct {
	service        service.ITemplateService
	patternService service.IPatternService
}

func NewTemplateController(service service.ITemplateService, patternService service.IPatternService) ITemplateController {
	return &templateController{service: service, patternService: patternService}
}

func (c *templateController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/template/v1")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/patterns/count", c.CountPatterns)
	h.Get(":id/features/:featureId/count", c.CountFeatureValues)
	h.Post("", protected, c.Create)
	h.Put(":id", protected, c.Update)
	h.Delete(":id", protected, c.Delete)
	h.Post(":id/features/:featureId", protected, c.AttachFeature)
	h.Delete(":id/features/:featureId", protected, c.DetachFeature)
}

func (c *templateController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list templates", res))
}

func (c *templateController) Show(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show template", res))
}

func (c *templateController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateTemplateRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create template", res))
}

func (c *templateController) Update(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTemplateRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update template", res))
}

func (c *templateController) Delete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete template", nil))
}

func (c *templateController) AttachFeature(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	featureId, err := paramID(ctx, "featureId")
	if err != nil {
		return err
	}
	if err := c.service.AttachFeature(ctx.Context(), id, featureId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success attach feature", nil))
}

func (c *templateController) DetachFeature(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	featureId, err := paramID(ctx, "featureId")
	if err != nil {
		return err
	}
	lost, err := c.service.DetachFeature(ctx.Context(), id, featureId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success detach feature", dto.CountResponse{Count: lost}))
}

func (c *templateController) CountFeatureValues(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	featureId, err := paramID(ctx, "featureId")
	if err != nil {
		return err
	}
	n, err := c.service.CountFeatureValues(ctx.Context(), id, featureId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success count feature values", dto.CountResponse{Count: n}))
}

func (c *templateController) CountPatterns(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	n, err := c.patternService.Count(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success count patterns", dto.CountResponse{Count: n}))
}
