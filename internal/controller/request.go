package controller

import (
	"io"
	"mime/multipart"
	"strings"

	"pattern-sphere-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// payloadField is the multipart part carrying the JSON body of an upload
// request.
const payloadField = "payload"

func paramID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("%s is not a valid id", name)
	}
	return id, nil
}

// queryID returns nil when the query parameter is absent.
func queryID(ctx *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("%s is not a valid id", name)
	}
	return &id, nil
}

func isMultipart(ctx *fiber.Ctx) bool {
	return strings.HasPrefix(string(ctx.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// decodeBody reads a JSON body, or the payload part of a multipart body.
func decodeBody(ctx *fiber.Ctx, v interface{}) error {
	if !isMultipart(ctx) {
		if len(ctx.Body()) == 0 {
			return nil
		}
		if err := ctx.BodyParser(v); err != nil {
			return apperror.Validation("malformed request body: %v", err)
		}
		return nil
	}
	payload := ctx.FormValue(payloadField)
	if payload == "" {
		return nil
	}
	if err := ctx.App().Config().JSONDecoder([]byte(payload), v); err != nil {
		return apperror.Validation("malformed %s part: %v", payloadField, err)
	}
	return nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
