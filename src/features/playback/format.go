package playback

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/contre95/tubequeue/src/music"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var markdownReplacer = strings.NewReplacer("*", "", "_", "", "[", "", "]", "", "`", "")

// Truncate shortens s to at most maxLen runes, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// StripMarkdown removes the characters that break Telegram's legacy Markdown.
func StripMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

func queueText(songs []music.Song, info queue.Info, maxSize int) string {
	if len(songs) == 0 {
		return "📝 Queue is empty."
	}
	var b strings.Builder
	b.WriteString("📝 *Current Queue*\n\n")
	for i, song := range songs {
		status := fmt.Sprintf("#%d", i)
		if i == 0 {
			status = "🎵 Now Playing"
		}
		fmt.Fprintf(&b, "%s - %s\n   Duration: %s\n\n", status, StripMarkdown(song.Title), music.FormatDuration(song.Duration))
	}
	fmt.Fprintf(&b, "%d/%d songs, total %s", info.TotalSongs, maxSize, music.FormatDuration(info.TotalDuration))
	return b.String()
}

func searchKeyboard(songs []music.Song) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(songs))
	for _, song := range songs {
		text := fmt.Sprintf("🎵 %s (%s)", Truncate(song.Title, 40), music.FormatDuration(song.Duration))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, playCallbackPrefix+song.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func playedText(res PlayResult) string {
	title := StripMarkdown(res.Song.Title)
	if res.NowPlaying() {
		return fmt.Sprintf("🎵 Now playing: *%s*\nDuration: %s\nDownloading and sending...",
			title, music.FormatDuration(res.Song.Duration))
	}
	return fmt.Sprintf("✅ Added to queue (position %d): *%s*\nDuration: %s",
		res.Position+1, title, music.FormatDuration(res.Song.Duration))
}

func historyText(plays []music.Play) string {
	if len(plays) == 0 {
		return "🕘 Nothing has been played here yet."
	}
	var b strings.Builder
	b.WriteString("🕘 *Recently queued*\n\n")
	for i, p := range plays {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, StripMarkdown(Truncate(p.Song.Title, 60)),
			music.FormatDuration(p.Song.Duration), p.PlayedAt.Format("Jan 2 15:04"))
	}
	return b.String()
}

func audioCaption(song music.Song) string {
	return fmt.Sprintf("🎵 %s\n🔗 %s", song.Title, song.WatchURL())
}

// userMessage turns a failure into the text shown in the chat.
func userMessage(err error) string {
	var tooLong *resolving.TooLongError
	var full *queue.QueueFullError
	switch {
	case errors.As(err, &tooLong):
		return fmt.Sprintf("❌ Song is too long (%s). Maximum duration is %s.",
			music.FormatDuration(tooLong.Duration), music.FormatDuration(tooLong.Max))
	case errors.As(err, &full):
		return fmt.Sprintf("❌ Queue is full (maximum %d songs). Use /skip or /remove first.", full.Max)
	case errors.Is(err, queue.ErrQueueFull):
		return "❌ Queue is full."
	case errors.Is(err, resolving.ErrNoResults):
		return "❌ No results found for your search."
	case errors.Is(err, resolving.ErrEmptyQuery):
		return "❌ Please provide a song name or YouTube URL."
	case errors.Is(err, resolving.ErrNotAudio):
		return "❌ Failed to download audio."
	case errors.Is(err, ErrNothingPlaying):
		return "❌ No song is currently playing."
	default:
		return "❌ An error occurred while processing your request."
	}
}
