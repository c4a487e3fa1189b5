package queue

import (
	"errors"
	"log/slog"

	"github.com/contre95/tubequeue/src/features/metrics"
	"github.com/contre95/tubequeue/src/music"
)

// Service exposes queue operations addressed by conversation id.
type Service struct {
	registry *Registry
	metrics  *metrics.Collector
}

// NewService creates a new queue service. A nil collector disables metrics.
func NewService(registry *Registry, collector *metrics.Collector) *Service {
	return &Service{
		registry: registry,
		metrics:  collector,
	}
}

// Add queues a song for a conversation and returns its position (0 = now playing).
func (s *Service) Add(chatID int64, song music.Song) (int, error) {
	position, err := s.registry.GetOrCreate(chatID).Add(song)
	if err != nil {
		if errors.Is(err, ErrQueueFull) {
			slog.Warn("Queue full", "chat_id", chatID, "song_id", song.ID)
			s.metrics.QueueFull()
		}
		return 0, err
	}
	slog.Info("Song queued", "chat_id", chatID, "song_id", song.ID, "position", position)
	s.metrics.SongAdded()
	return position, nil
}

// Exists reports whether a conversation has a queue.
func (s *Service) Exists(chatID int64) bool {
	_, ok := s.registry.Lookup(chatID)
	return ok
}

// Current returns the song being played in a conversation.
func (s *Service) Current(chatID int64) (music.Song, bool) {
	q, ok := s.registry.Lookup(chatID)
	if !ok {
		return music.Song{}, false
	}
	return q.Current()
}

// Skip pops the current song of a conversation.
func (s *Service) Skip(chatID int64) (music.Song, bool) {
	skipped, ok := s.registry.GetOrCreate(chatID).Skip()
	if ok {
		slog.Info("Song skipped", "chat_id", chatID, "song_id", skipped.ID)
		s.metrics.SongSkipped()
	}
	return skipped, ok
}

// List returns the unplayed songs of a conversation.
func (s *Service) List(chatID int64) []music.Song {
	q, ok := s.registry.Lookup(chatID)
	if !ok {
		return []music.Song{}
	}
	return q.List()
}

// Clear empties the queue of a conversation.
func (s *Service) Clear(chatID int64) {
	s.registry.GetOrCreate(chatID).Clear()
	slog.Info("Queue cleared", "chat_id", chatID)
}

// Remove deletes a song by position relative to the current one.
func (s *Service) Remove(chatID int64, index int) (music.Song, bool) {
	removed, ok := s.registry.GetOrCreate(chatID).Remove(index)
	if ok {
		slog.Info("Song removed", "chat_id", chatID, "song_id", removed.ID, "index", index)
	}
	return removed, ok
}

// Move relocates an upcoming song.
func (s *Service) Move(chatID int64, from, to int) bool {
	ok := s.registry.GetOrCreate(chatID).Move(from, to)
	slog.Debug("Move requested", "chat_id", chatID, "from", from, "to", to, "moved", ok)
	return ok
}

// Shuffle reorders the upcoming songs of a conversation.
func (s *Service) Shuffle(chatID int64) {
	s.registry.GetOrCreate(chatID).ShuffleUpcoming()
}

// Info summarizes a conversation queue.
func (s *Service) Info(chatID int64) Info {
	q, ok := s.registry.Lookup(chatID)
	if !ok {
		return Info{IsEmpty: true}
	}
	return q.Info()
}

// Snapshot returns the summary of every known conversation without creating new queues.
func (s *Service) Snapshot() map[int64]Info {
	snapshot := make(map[int64]Info)
	for _, id := range s.registry.ChatIDs() {
		if q, ok := s.registry.Lookup(id); ok {
			snapshot[id] = q.Info()
		}
	}
	return snapshot
}

// Conversations returns the number of conversations with a queue.
func (s *Service) Conversations() int {
	return s.registry.Len()
}

// MaxSize returns the capacity of a conversation queue.
func (s *Service) MaxSize(chatID int64) int {
	q, ok := s.registry.Lookup(chatID)
	if !ok {
		return s.registry.MaxSize()
	}
	return q.MaxSize()
}
