package playback

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/contre95/tubequeue/src/music"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	playCallbackPrefix = "play_"
	requestTimeout     = 5 * time.Minute
	historyLength      = 10
)

// TelegramHandler handles Telegram commands for playback and queue management
type TelegramHandler struct {
	service *Service
	queue   *queue.Service
}

// NewTelegramHandler creates a new Telegram handler for the playback feature
func NewTelegramHandler(service *Service, queueService *queue.Service) *TelegramHandler {
	return &TelegramHandler{service: service, queue: queueService}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"search":   "Search for songs on YouTube",
		"play":     "Queue a song by name or YouTube URL",
		"download": "Download and send a song without queueing it",
		"queue":    "View the current queue",
		"now":      "Show the song now playing",
		"skip":     "Skip the current song",
		"stop":     "Stop playback and clear the queue",
		"remove":   "Remove a queued song: /remove <n>",
		"move":     "Move a queued song: /move <from> <to>",
		"shuffle":  "Shuffle the upcoming songs",
		"history":  "Show recently queued songs",
	}
}

// HandleCommand processes playback-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID, userID int64, command string, args string) error {
	args = strings.TrimSpace(args)
	switch command {
	case "search", "play", "download":
		if args == "" {
			return h.send(bot, chatID, fmt.Sprintf("Please provide a song name or YouTube URL.\nExample: /%s Bohemian Rhapsody", command))
		}
		if !h.service.Allow(userID) {
			return h.send(bot, chatID, "⏳ Too many requests, please wait a minute.")
		}
	}

	switch command {
	case "search":
		return h.handleSearch(bot, chatID, args)
	case "play":
		return h.handlePlay(bot, chatID, args)
	case "download":
		return h.handleDownload(bot, chatID, args)
	case "queue":
		return h.send(bot, chatID, queueText(h.queue.List(chatID), h.queue.Info(chatID), h.queue.MaxSize(chatID)))
	case "now":
		return h.handleNow(bot, chatID)
	case "skip":
		return h.handleSkip(bot, chatID)
	case "stop":
		if !h.service.Stop(chatID) {
			return h.send(bot, chatID, "❌ No song is currently playing.")
		}
		return h.send(bot, chatID, "⏹️ Stopped playback and cleared queue.")
	case "remove":
		return h.handleRemove(bot, chatID, args)
	case "move":
		return h.handleMove(bot, chatID, args)
	case "shuffle":
		if h.queue.Info(chatID).TotalSongs < 3 {
			return h.send(bot, chatID, "🔀 Not enough upcoming songs to shuffle.")
		}
		h.queue.Shuffle(chatID)
		return h.send(bot, chatID, "🔀 Shuffled the upcoming songs.")
	case "history":
		return h.handleHistory(bot, chatID)
	default:
		return h.send(bot, chatID, "❌ Unknown command. Send /help to see available commands.")
	}
}

// HandleCallback handles the search result buttons
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	videoID, ok := strings.CutPrefix(callback.Data, playCallbackPrefix)
	if !ok || callback.Message == nil {
		return false
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := h.service.Enqueue(ctx, chatID, videoID)
	if err != nil {
		slog.Warn("Failed to queue selected song", "chat_id", chatID, "id", videoID, "error", err)
		h.edit(bot, chatID, messageID, userMessage(err))
		return true
	}
	h.edit(bot, chatID, messageID, playedText(res))
	if res.NowPlaying() {
		h.sendSong(ctx, bot, chatID, messageID, res.Song)
	}
	return true
}

func (h *TelegramHandler) handleSearch(bot *tgbotapi.BotAPI, chatID int64, query string) error {
	msg, err := h.sendPlain(bot, chatID, "🔍 Searching for music...")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	songs, err := h.service.Search(ctx, query, 0)
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		h.edit(bot, chatID, msg.MessageID, "❌ An error occurred while searching. Please try again.")
		return nil
	}
	if len(songs) == 0 {
		h.edit(bot, chatID, msg.MessageID, "❌ No results found for your search.")
		return nil
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msg.MessageID,
		fmt.Sprintf("🎵 Search results for: *%s*\n\nSelect a song to play:", StripMarkdown(query)),
		searchKeyboard(songs))
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err = bot.Send(edit)
	return err
}

func (h *TelegramHandler) handlePlay(bot *tgbotapi.BotAPI, chatID int64, query string) error {
	msg, err := h.sendPlain(bot, chatID, "🔍 Finding music...")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := h.service.Play(ctx, chatID, query)
	if err != nil {
		slog.Warn("Play request failed", "chat_id", chatID, "query", query, "error", err)
		h.edit(bot, chatID, msg.MessageID, userMessage(err))
		return nil
	}
	h.edit(bot, chatID, msg.MessageID, playedText(res))
	if res.NowPlaying() {
		h.sendSong(ctx, bot, chatID, msg.MessageID, res.Song)
	}
	return nil
}

func (h *TelegramHandler) handleDownload(bot *tgbotapi.BotAPI, chatID int64, query string) error {
	msg, err := h.sendPlain(bot, chatID, "💾 Finding and downloading your music...")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	audio, err := h.service.Download(ctx, query)
	if err != nil {
		slog.Warn("Download request failed", "chat_id", chatID, "query", query, "error", err)
		h.edit(bot, chatID, msg.MessageID, userMessage(err))
		return nil
	}
	defer audio.Cleanup()
	h.deliver(bot, chatID, msg.MessageID, audio)
	return nil
}

func (h *TelegramHandler) handleNow(bot *tgbotapi.BotAPI, chatID int64) error {
	song, ok := h.queue.Current(chatID)
	if !ok {
		return h.send(bot, chatID, "❌ No song is currently playing.")
	}
	return h.send(bot, chatID, fmt.Sprintf("🎵 Now playing: *%s*\nUploader: %s\nDuration: %s\n[Watch on YouTube](%s)",
		StripMarkdown(song.Title), StripMarkdown(song.Uploader), music.FormatDuration(song.Duration), song.WatchURL()))
}

func (h *TelegramHandler) handleSkip(bot *tgbotapi.BotAPI, chatID int64) error {
	res, ok := h.service.Skip(chatID)
	if !ok {
		return h.send(bot, chatID, "❌ No song is currently playing.")
	}
	skipped := StripMarkdown(res.Skipped.Title)
	if !res.HasNext {
		return h.send(bot, chatID, fmt.Sprintf("⏭️ Skipped: %s\n📝 Queue is now empty.", skipped))
	}

	if err := h.send(bot, chatID, fmt.Sprintf("⏭️ Skipped: %s\n🎵 Now playing: %s", skipped, StripMarkdown(res.Next.Title))); err != nil {
		return err
	}
	msg, err := h.sendPlain(bot, chatID, "🎵 Preparing next song...")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	h.sendSong(ctx, bot, chatID, msg.MessageID, res.Next)
	return nil
}

func (h *TelegramHandler) handleRemove(bot *tgbotapi.BotAPI, chatID int64, args string) error {
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		return h.send(bot, chatID, "Usage: /remove <n>, where n is the number shown in /queue. Use /skip for the current song.")
	}
	song, ok := h.queue.Remove(chatID, n)
	if !ok {
		return h.send(bot, chatID, fmt.Sprintf("❌ There is no song #%d in the queue.", n))
	}
	return h.send(bot, chatID, fmt.Sprintf("🗑️ Removed: %s", StripMarkdown(song.Title)))
}

func (h *TelegramHandler) handleMove(bot *tgbotapi.BotAPI, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return h.send(bot, chatID, "Usage: /move <from> <to>, using the numbers shown in /queue.")
	}
	from, errFrom := strconv.Atoi(fields[0])
	to, errTo := strconv.Atoi(fields[1])
	if errFrom != nil || errTo != nil {
		return h.send(bot, chatID, "Usage: /move <from> <to>, using the numbers shown in /queue.")
	}
	if !h.queue.Move(chatID, from, to) {
		return h.send(bot, chatID, "❌ Can't move that song. The current song stays in place.")
	}
	return h.send(bot, chatID, fmt.Sprintf("↕️ Moved #%d to #%d.", from, to))
}

func (h *TelegramHandler) handleHistory(bot *tgbotapi.BotAPI, chatID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	plays, err := h.service.History(ctx, chatID, historyLength)
	if err != nil {
		return err
	}
	return h.send(bot, chatID, historyText(plays))
}

// sendSong fetches the audio of song and sends it, reporting progress in the status message.
func (h *TelegramHandler) sendSong(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64, statusID int, song music.Song) {
	audio, err := h.service.Fetch(ctx, song)
	if err != nil {
		slog.Error("Failed to fetch audio", "chat_id", chatID, "id", song.ID, "error", err)
		h.edit(bot, chatID, statusID, "❌ Failed to download audio.")
		return
	}
	defer audio.Cleanup()
	h.deliver(bot, chatID, statusID, audio)
}

func (h *TelegramHandler) deliver(bot *tgbotapi.BotAPI, chatID int64, statusID int, audio *resolving.Audio) {
	title := StripMarkdown(audio.Song.Title)
	h.edit(bot, chatID, statusID, fmt.Sprintf("📤 Sending: %s", title))

	upload := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(audio.Path))
	upload.Title = audio.Song.Title
	upload.Performer = audio.Song.Uploader
	upload.Duration = audio.Song.Duration
	upload.Caption = audioCaption(audio.Song)
	if len(audio.Cover) > 0 {
		upload.Thumb = tgbotapi.FileBytes{Name: "thumb.jpg", Bytes: audio.Cover}
	}
	if _, err := bot.Send(upload); err != nil {
		slog.Error("Failed to send audio", "chat_id", chatID, "path", audio.Path, "error", err)
		h.edit(bot, chatID, statusID, "❌ Failed to download or send audio.")
		return
	}
	h.edit(bot, chatID, statusID, fmt.Sprintf("✅ Sent: %s", title))
}

func (h *TelegramHandler) send(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

func (h *TelegramHandler) sendPlain(bot *tgbotapi.BotAPI, chatID int64, text string) (tgbotapi.Message, error) {
	return bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (h *TelegramHandler) edit(bot *tgbotapi.BotAPI, chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(edit); err != nil {
		slog.Error("Failed to edit message", "chat_id", chatID, "error", err)
	}
}
