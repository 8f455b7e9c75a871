package tagging

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the tagging feature
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api/tags")
	api.Get("/", handler.GetTags)
	api.Get("/history", handler.GetHistory)
	api.Post("/save", handler.SaveTags)
	api.Post("/rewrite", handler.RewriteFrame)
	api.Post("/cover", handler.SetCover)
}
