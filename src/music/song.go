package music

import (
	"fmt"
	"strings"
)

// Song represents a single resolved media entry that can be queued and played.
// Only ID, Title and Duration are interpreted; the rest is carried through for display.
type Song struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"` // Seconds, 0 means unknown
	Uploader  string `json:"uploader"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	ViewCount int64  `json:"view_count"`
}

// Validate validates the song fields.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("song id cannot be empty")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title cannot be empty: id -> %s", s.ID)
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("title cannot exceed 500 characters, got %d: title -> %s", len(s.Title), s.Title)
	}
	if s.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %d: id -> %s", s.Duration, s.ID)
	}
	return nil
}

// WatchURL returns the canonical URL for the song, falling back to the YouTube watch URL.
func (s Song) WatchURL() string {
	if s.URL != "" {
		return s.URL
	}
	return "https://youtube.com/watch?v=" + s.ID
}

// FormatDuration renders seconds as M:SS, or H:MM:SS for an hour or more.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	minutes := seconds / 60
	seconds = seconds % 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
