package hosting

import (
	"fmt"
	"log/slog"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/contre95/tubequeue/src/features/metrics"
	"github.com/contre95/tubequeue/src/features/playback"
	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/music"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, queueService *queue.Service, playbackService *playback.Service, gatherer prometheus.Gatherer) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	engine.AddFunc("duration", music.FormatDuration)
	engine.AddFunc("truncate", playback.Truncate)

	app := newApp(cfg, engine)

	queue.RegisterRoutes(app, queueService)
	playback.RegisterRoutes(app, playbackService)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app, gatherer)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// newApp builds the fiber app with the shared middleware and health check.
func newApp(cfg *config.Manager, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views: views,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("Internal Server Error", "error", err)
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "Tubequeue",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(RecoverMiddleware())
	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
