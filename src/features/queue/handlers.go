package queue

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"

	"github.com/contre95/tubequeue/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the HTTP handler for the queue feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the queue feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type queueView struct {
	ChatID int64        `json:"chat_id"`
	Info   Info         `json:"info"`
	Songs  []music.Song `json:"songs"`
}

func chatID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("chat"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid chat id")
	}
	return id, nil
}

// GetQueues returns a summary of every conversation queue.
func (h *Handler) GetQueues(c *fiber.Ctx) error {
	slog.Debug("GetQueues handler called")
	return c.JSON(h.service.Snapshot())
}

// GetQueue returns the songs of one conversation.
func (h *Handler) GetQueue(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	if !h.service.Exists(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no queue for chat", "chat_id": id})
	}
	return c.JSON(queueView{
		ChatID: id,
		Info:   h.service.Info(id),
		Songs:  h.service.List(id),
	})
}

// Skip pops the current song.
func (h *Handler) Skip(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	skipped, ok := h.service.Skip(id)
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nothing is playing"})
	}
	next, _ := h.service.Current(id)
	return c.JSON(fiber.Map{"skipped": skipped, "current": next})
}

// Shuffle reorders the upcoming songs.
func (h *Handler) Shuffle(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	h.service.Shuffle(id)
	return c.JSON(h.service.List(id))
}

// Move relocates an upcoming song using the from and to query parameters.
func (h *Handler) Move(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	from := c.QueryInt("from", -1)
	to := c.QueryInt("to", -1)
	if !h.service.Move(id, from, to) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cannot move song", "from": from, "to": to})
	}
	return c.JSON(h.service.List(id))
}

// Remove deletes a song by its position relative to the current one.
func (h *Handler) Remove(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	pos, err := c.ParamsInt("pos")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid position")
	}
	removed, ok := h.service.Remove(id, pos)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no song at position", "position": pos})
	}
	return c.JSON(fiber.Map{"removed": removed})
}

// Clear empties a conversation queue.
func (h *Handler) Clear(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	h.service.Clear(id)
	return c.SendStatus(fiber.StatusNoContent)
}

// RenderQueues renders the HTML overview of all queues.
func (h *Handler) RenderQueues(c *fiber.Ctx) error {
	views := make([]queueView, 0)
	for id, info := range h.service.Snapshot() {
		views = append(views, queueView{ChatID: id, Info: info, Songs: h.service.List(id)})
	}
	slices.SortFunc(views, func(a, b queueView) int { return cmp.Compare(a.ChatID, b.ChatID) })
	return c.Render("queues", fiber.Map{
		"Queues":        views,
		"Conversations": h.service.Conversations(),
	})
}
