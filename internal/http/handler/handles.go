package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfviewer/internal/handle"
)

// ServeHandle streams the bytes behind a live page handle.
//
//	@Summary	Page image
//	@Tags		handles
//	@Produce	png
//	@Param		id	path	string	true	"handle id"
//	@Success	200
//	@Failure	404	{object}	errorPayload
//	@Router		/handles/{id} [get]
func ServeHandle(handles *handle.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := handles.Open(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "handle not found")
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		return c.Send(res.Data)
	}
}
