package playback

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/gofiber/fiber/v2"
)

// Handler is the HTTP handler for the playback feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the playback feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func chatID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("chat"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid chat id")
	}
	return id, nil
}

// statusFor maps playback failures to HTTP status codes.
func statusFor(err error) int {
	var tooLong *resolving.TooLongError
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		return fiber.StatusConflict
	case errors.As(err, &tooLong):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, resolving.ErrEmptyQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, resolving.ErrNoResults), errors.Is(err, ErrNothingPlaying):
		return fiber.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("Playback request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// Search returns candidate songs for the q query parameter.
func (h *Handler) Search(c *fiber.Ctx) error {
	songs, err := h.service.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(songs)
}

// Play resolves the q query parameter and queues it in the conversation.
func (h *Handler) Play(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	res, err := h.service.Play(c.UserContext(), id, c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"song":        res.Song,
		"position":    res.Position,
		"now_playing": res.NowPlaying(),
	})
}

// Stop clears the conversation queue.
func (h *Handler) Stop(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	if !h.service.Stop(id) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nothing is playing"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History returns the latest songs queued in the conversation.
func (h *Handler) History(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	plays, err := h.service.History(c.UserContext(), id, c.QueryInt("limit", historyLength))
	if err != nil {
		return err
	}
	return c.JSON(plays)
}

// StreamCurrent downloads the song now playing and streams it to the client.
func (h *Handler) StreamCurrent(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	reader, contentType, err := h.service.StreamCurrent(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	// fasthttp closes the reader once the body is written, removing the file.
	return c.SendStream(reader)
}
