package controller

import (
	"strings"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/service"
	"pattern-sphere-be/pkg/identifier"

	"github.com/gofiber/fiber/v2"
)

type IPatternController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type patternController struct {
	service service.IPatternService
}

func NewPatternController(service service.IPatternService) IPatternController {
	return &patternController{service: service}
}

func (c *patternController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/pattern/v1")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post("", protected, c.Create)
	h.Put(":id", protected, c.Update)
	h.Delete(":id", protected, c.Delete)
}

func (c *patternController) List(ctx *fiber.Ctx) error {
	templateId, err := queryID(ctx, "template_id")
	if err != nil {
		return err
	}
	languageId, err := queryID(ctx, "language_id")
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), &dto.ListPatternsRequest{TemplateId: templateId, LanguageId: languageId})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list patterns", res))
}

func (c *patternController) Show(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show pattern", res))
}

func (c *patternController) Create(ctx *fiber.Ctx) error {
	var req dto.InsertPatternRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	values, err := attachUploads(ctx, req.Values)
	if err != nil {
		return err
	}
	req.Values = values

	res, err := c.service.Insert(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create pattern", res))
}

func (c *patternController) Update(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdatePatternRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id
	values, err := attachUploads(ctx, req.Values)
	if err != nil {
		return err
	}
	req.Values = values

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update pattern", res))
}

func (c *patternController) Delete(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete pattern", nil))
}

// attachUploads pairs file parts named f-<feature> with the submitted
// values of that feature.
func attachUploads(ctx *fiber.Ctx, values map[string]dto.FieldInput) (map[string]dto.FieldInput, error) {
	if !isMultipart(ctx) {
		return values, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "malformed multipart body")
	}
	if values == nil {
		values = make(map[string]dto.FieldInput)
	}
	for key, files := range form.File {
		name, ok := strings.CutPrefix(key, identifier.ReservedPrefix)
		if !ok || name == "" || len(files) == 0 {
			continue
		}
		data, err := readPart(files[0])
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unreadable upload "+key)
		}
		if len(data) == 0 {
			continue
		}
		input := values[name]
		input.Upload = &dto.ImageUpload{Filename: files[0].Filename, Data: data}
		values[name] = input
	}
	return values, nil
}
