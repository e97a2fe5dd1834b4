package controller

import (
	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// layoutField is the multipart part carrying an uploaded layout file.
const layoutField = "layout"

type IViewController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Lint(ctx *fiber.Ctx) error
	Layout(ctx *fiber.Ctx) error
	Render(ctx *fiber.Ctx) error
}

type viewController struct {
	service service.IViewService
}

func NewViewController(service service.IViewService) IViewController {
	return &viewController{service: service}
}

func (c *viewController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/view/v1")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/lint", c.Lint)
	h.Get(":id/layout", c.Layout)
	h.Get(":id/render/:patternId", c.Render)
	h.Post("", protected, c.Create)
	h.Put(":id", protected, c.Update)
	h.Delete(":id", protected, c.Delete)
}

func (c *viewController) List(ctx *fiber.Ctx) error {
	templateId, err := queryID(ctx, "template_id")
	if err != nil {
		return err
	}
	res, err := c.service.List(ctx.Context(), &dto.ListViewsRequest{TemplateId: templateId})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list views", res))
}

func (c *viewController) Show(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show view", res))
}

func (c *viewController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateViewRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	file, err := layoutUpload(ctx)
	if err != nil {
		return err
	}
	req.LayoutFile = file

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create view", res))
}

func (c *viewController) Update(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateViewRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	file, err := layoutUpload(ctx)
	if err != nil {
		return err
	}
	req.LayoutFile = file

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update view", res))
}

func (c *viewController) Delete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete view", nil))
}

func (c *viewController) Lint(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Lint(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success lint view", res))
}

func (c *viewController) Layout(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Layout(ctx.Context(), id)
	if err != nil {
		return err
	}
	ctx.Attachment(res.Filename)
	ctx.Type("html")
	return ctx.SendString(res.Content)
}

func (c *viewController) Render(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	patternId, err := paramID(ctx, "patternId")
	if err != nil {
		return err
	}
	out, err := c.service.Render(ctx.Context(), id, patternId)
	if err != nil {
		return err
	}
	ctx.Type("html")
	return ctx.SendString(out)
}

func layoutUpload(ctx *fiber.Ctx) (*dto.LayoutUpload, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	fh, err := ctx.FormFile(layoutField)
	if err != nil {
		// No layout part was sent.
		return nil, nil
	}
	data, err := readPart(fh)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unreadable layout upload")
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &dto.LayoutUpload{Filename: fh.Filename, Data: data}, nil
}
