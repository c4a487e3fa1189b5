package playback

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/contre95/tubequeue/src/music"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a very long song title", 10, "a very ..."},
		{"ñandú ñandú ñandú", 8, "ñandú..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	if got := StripMarkdown("*Best* of [the_80s] `live`"); got != "Best of the80s live" {
		t.Errorf("StripMarkdown() = %q", got)
	}
}

func TestQueueText(t *testing.T) {
	if got := queueText(nil, queue.Info{IsEmpty: true}, 50); got != "📝 Queue is empty." {
		t.Errorf("queueText(empty) = %q", got)
	}

	songs := []music.Song{songA, songB}
	got := queueText(songs, queue.Info{TotalSongs: 2, TotalDuration: 380}, 50)
	for _, want := range []string{"🎵 Now Playing - Song A", "#1 - Song B", "Duration: 3:20", "2/50 songs, total 6:20"} {
		if !strings.Contains(got, want) {
			t.Errorf("queueText() missing %q in:\n%s", want, got)
		}
	}
}

func TestSearchKeyboard(t *testing.T) {
	kb := searchKeyboard([]music.Song{songA, {ID: "zzzzzzzzzzz", Title: strings.Repeat("x", 60), Duration: 0}})
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(kb.InlineKeyboard))
	}
	first := kb.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "play_"+songA.ID {
		t.Errorf("callback data = %v", first.CallbackData)
	}
	if first.Text != "🎵 Song A (3:20)" {
		t.Errorf("button text = %q", first.Text)
	}
	if second := kb.InlineKeyboard[1][0].Text; !strings.HasSuffix(second, "... (0:00)") {
		t.Errorf("long title button = %q", second)
	}
}

func TestPlayedText(t *testing.T) {
	now := playedText(PlayResult{Song: songA, Position: 0})
	if !strings.HasPrefix(now, "🎵 Now playing: *Song A*") {
		t.Errorf("playedText(now) = %q", now)
	}
	queued := playedText(PlayResult{Song: songB, Position: 2})
	if !strings.HasPrefix(queued, "✅ Added to queue (position 3): *Song B*") {
		t.Errorf("playedText(queued) = %q", queued)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"too long", &resolving.TooLongError{Duration: 700, Max: 600}, "❌ Song is too long (11:40). Maximum duration is 10:00."},
		{"queue full", fmt.Errorf("add: %w", &queue.QueueFullError{Max: 50}), "❌ Queue is full (maximum 50 songs). Use /skip or /remove first."},
		{"no results", fmt.Errorf("%w for %q", resolving.ErrNoResults, "x"), "❌ No results found for your search."},
		{"nothing playing", ErrNothingPlaying, "❌ No song is currently playing."},
		{"other", errors.New("boom"), "❌ An error occurred while processing your request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Errorf("userMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
