package controller

import (
	"pattern-sphere-be/internal/service"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/blobstore"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router)
	Serve(ctx *fiber.Ctx) error
}

type imageController struct {
	service service.IImageService
}

func NewImageController(service service.IImageService) IImageController {
	return &imageController{service: service}
}

func (c *imageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/image/v1")
	h.Get(":hash", c.Serve)
}

// Serve streams a blob. Blobs are immutable, so clients may cache them.
func (c *imageController) Serve(ctx *fiber.Ctx) error {
	hash := ctx.Params("hash")
	if !blobstore.ValidHash(hash) {
		return apperror.NotFound("image", hash)
	}
	body, mimeType, err := c.service.Open(ctx.Context(), hash)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, mimeType)
	ctx.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return ctx.SendStream(body)
}
