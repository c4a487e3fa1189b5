package queue

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the queue feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	ui := app.Group("/ui")
	ui.Get("/queues", handler.RenderQueues)

	api := app.Group("/api/queues")
	api.Get("/", handler.GetQueues)
	api.Get("/:chat", handler.GetQueue)
	api.Post("/:chat/skip", handler.Skip)
	api.Post("/:chat/shuffle", handler.Shuffle)
	api.Post("/:chat/move", handler.Move)
	api.Delete("/:chat", handler.Clear)
	api.Delete("/:chat/:pos", handler.Remove)
}
