package playback

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the playback feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/api/search", handler.Search)

	api := app.Group("/api/playback")
	api.Post("/:chat/play", handler.Play)
	api.Post("/:chat/stop", handler.Stop)
	api.Get("/:chat/history", handler.History)
	api.Get("/:chat/current", handler.StreamCurrent)
}
