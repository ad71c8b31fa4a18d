package middleware

import "github.com/gofiber/fiber/v2"

// NoStore marks responses as private, uncacheable inline content.
// Page images served through it are only reachable while their handle is live.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store, private")
		c.Set(fiber.HeaderContentDisposition, "inline")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		return c.Next()
	}
}
