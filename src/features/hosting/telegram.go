package hosting

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/contre95/tubequeue/src/features/playback"
	"github.com/contre95/tubequeue/src/features/queue"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
)

// TelegramCommandHandler interface that each feature implements
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID, userID int64, command string, args string) error
	GetCommands() map[string]string                                             // Returns command -> description mapping
	HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool // Handle feature-specific callbacks
}

// commandMap routes each command to the feature handling it.
var commandMap = map[string]string{
	"search":   "playback",
	"play":     "playback",
	"download": "playback",
	"queue":    "playback",
	"now":      "playback",
	"skip":     "playback",
	"stop":     "playback",
	"remove":   "playback",
	"move":     "playback",
	"shuffle":  "playback",
	"history":  "playback",
	"config":   "config",
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot           *tgbotapi.BotAPI
	config        *config.Manager
	handlers      map[string]TelegramCommandHandler
	updates       tgbotapi.UpdatesChannel
	stopChan      chan struct{}
	mu            sync.Mutex
	pendingInputs map[string]string // chatID_messageID -> callbackData
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(cfg *config.Manager, playbackService *playback.Service, queueService *queue.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}

	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := newTelegramBot(bot, cfg)
	telegramBot.updates = bot.GetUpdatesChan(updateConfig)

	telegramBot.RegisterHandler("playback", playback.NewTelegramHandler(playbackService, queueService))
	telegramBot.RegisterHandler("config", config.NewTelegramHandler(cfg))

	return telegramBot, nil
}

func newTelegramBot(bot *tgbotapi.BotAPI, cfg *config.Manager) *TelegramBot {
	return &TelegramBot{
		bot:           bot,
		config:        cfg,
		handlers:      make(map[string]TelegramCommandHandler),
		stopChan:      make(chan struct{}),
		pendingInputs: make(map[string]string),
	}
}

// RegisterHandler registers a feature's command handler
func (t *TelegramBot) RegisterHandler(feature string, handler TelegramCommandHandler) {
	t.handlers[feature] = handler
	slog.Debug("Registered Telegram handler", "feature", feature)
}

// Start begins listening for Telegram updates
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update)
			}
			if update.CallbackQuery != nil {
				go t.handleCallbackQuery(update)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			t.bot.StopReceivingUpdates()
			return
		}
	}
}

// Stop gracefully stops the bot
func (t *TelegramBot) Stop() {
	close(t.stopChan)
}

// authorized reports whether the sender is listed in telegram.allowedUsers.
func (t *TelegramBot) authorized(user *tgbotapi.User, chatID int64) bool {
	allowedUsers := t.config.Get().Telegram.AllowedUsers
	if len(allowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return false
	}
	if user == nil {
		return false
	}

	username := user.UserName
	if username == "" {
		username = user.FirstName
		if user.LastName != "" {
			username += " " + user.LastName
		}
	}
	if !slices.Contains(allowedUsers, username) {
		slog.Warn("Unauthorized user", "username", username, "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return false
	}
	return true
}

// handleMessage processes incoming messages
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	if !t.authorized(message.From, chatID) {
		return
	}

	if message.IsCommand() {
		t.handleCommand(update)
		return
	}

	if message.ReplyToMessage != nil && t.handleReplyInput(message) {
		return
	}

	t.sendMessage(chatID, "🤖 Send /menu or /help to see available options")
}

// handleCommand processes bot commands
func (t *TelegramBot) handleCommand(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID
	command := message.Command()
	args := message.CommandArguments()

	slog.Debug("Processing command", "command", command, "args", args, "chat_id", chatID)

	switch command {
	case "start":
		t.handleStart(chatID, message.From)
	case "help":
		t.handleHelp(chatID)
	case "menu":
		t.handleMenu(chatID)
	default:
		if err := t.routeCommand(command, args, chatID, message.From.ID); err != nil {
			slog.Error("Failed to handle command", "command", command, "error", err)
			t.sendMessage(chatID, "❌ An error occurred while processing your request.")
		}
	}
}

// routeCommand routes commands to the appropriate feature handler
func (t *TelegramBot) routeCommand(command, args string, chatID, userID int64) error {
	feature, exists := commandMap[command]
	if !exists {
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
		return nil
	}

	handler, exists := t.handlers[feature]
	if !exists {
		t.sendMessage(chatID, fmt.Sprintf("❌ %s feature not available", playback.StripMarkdown(feature)))
		return nil
	}

	return handler.HandleCommand(t.bot, chatID, userID, command, args)
}

// sendMessage sends a message to the specified chat
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}

// handleCallbackQuery handles callback queries from inline keyboards
func (t *TelegramBot) handleCallbackQuery(update tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback.Message == nil || !t.authorized(callback.From, callback.Message.Chat.ID) {
		t.answerCallback(callback.ID)
		return
	}

	if strings.HasPrefix(callback.Data, "menu_") {
		t.handleMenuCallback(callback)
		return
	}

	// Answer first, a play callback may spend minutes downloading.
	t.answerCallback(callback.ID)

	handled := false
	for _, handler := range t.handlers {
		if handler.HandleCallback(t.bot, callback) {
			handled = true
			break
		}
	}
	if !handled {
		slog.Warn("Unhandled callback", "data", callback.Data, "chat_id", callback.Message.Chat.ID)
	}
}

func (t *TelegramBot) answerCallback(id string) {
	if _, err := t.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Debug("Failed to answer callback", "error", err)
	}
}

// handleStart greets the user and shows the menu
func (t *TelegramBot) handleStart(chatID int64, user *tgbotapi.User) {
	name := "there"
	if user != nil && user.FirstName != "" {
		name = playback.StripMarkdown(user.FirstName)
	}
	t.sendMessage(chatID, fmt.Sprintf(`🎵 *Welcome to Tubequeue, %s!*

I can search YouTube, queue songs for this chat and send you their audio.

Use /search <song name> to find music, or /play <song name or URL> to queue it directly.
Send /help for the full list of commands.`, name))
	t.handleMenu(chatID)
}

// handleHelp lists every registered command
func (t *TelegramBot) handleHelp(chatID int64) {
	var b strings.Builder
	b.WriteString("*🤖 Tubequeue Commands*\n\n")
	b.WriteString("/start - Start the bot\n/help - Show this help message\n/menu - Show the main menu\n")

	for _, feature := range []string{"playback", "config"} {
		handler, ok := t.handlers[feature]
		if !ok {
			continue
		}
		commands := handler.GetCommands()
		names := lo.Keys(commands)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(&b, "/%s - %s\n", name, commands[name])
		}
	}
	t.sendMessage(chatID, b.String())
}

// handleMenu shows main menu with inline keyboard
func (t *TelegramBot) handleMenu(chatID int64) {
	text := `*🤖 Tubequeue Main Menu*

Choose an action below or use commands directly:`

	buttons := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search", "menu_search"),
			tgbotapi.NewInlineKeyboardButtonData("▶️ Play", "menu_play"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("📝 Queue", "menu_queue"),
			tgbotapi.NewInlineKeyboardButtonData("🎵 Now Playing", "menu_now"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Skip", "menu_skip"),
			tgbotapi.NewInlineKeyboardButtonData("🔀 Shuffle", "menu_shuffle"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("🕘 History", "menu_history"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Config", "menu_config"),
		},
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send menu", "error", err, "chat_id", chatID)
	}
}

// handleMenuCallback handles main menu callback queries
func (t *TelegramBot) handleMenuCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID
	t.answerCallback(callback.ID)

	switch data := callback.Data; data {
	case "menu_search":
		t.promptForInput(chatID, "🔍 *Search for music*\n\nPlease reply with your search query:", data)
	case "menu_play":
		t.promptForInput(chatID, "▶️ *Play music*\n\nPlease reply with a song name or YouTube URL:", data)
	case "menu_queue", "menu_now", "menu_skip", "menu_shuffle", "menu_history", "menu_config":
		t.routeMenuCommand(strings.TrimPrefix(data, "menu_"), "", chatID, userID)
	default:
		t.sendMessage(chatID, "❌ Unknown menu option")
	}
}

// promptForInput sends a message that forces user to reply with input
func (t *TelegramBot) promptForInput(chatID int64, promptText, callbackData string) {
	msg := tgbotapi.NewMessage(chatID, promptText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}

	sentMsg, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Failed to send prompt", "error", err)
		return
	}
	t.storePendingInput(chatID, sentMsg.MessageID, callbackData)
}

func pendingKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}

// storePendingInput stores information about pending user input
func (t *TelegramBot) storePendingInput(chatID int64, messageID int, callbackData string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendingInputs[pendingKey(chatID, messageID)] = callbackData
}

// takePendingInput returns and forgets the prompt a message replies to.
func (t *TelegramBot) takePendingInput(chatID int64, messageID int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := pendingKey(chatID, messageID)
	data, ok := t.pendingInputs[key]
	delete(t.pendingInputs, key)
	return data, ok
}

// handleReplyInput handles replies to our input prompts
func (t *TelegramBot) handleReplyInput(message *tgbotapi.Message) bool {
	chatID := message.Chat.ID
	callbackData, exists := t.takePendingInput(chatID, message.ReplyToMessage.MessageID)
	if !exists {
		return false
	}

	switch callbackData {
	case "menu_search":
		t.routeMenuCommand("search", message.Text, chatID, message.From.ID)
	case "menu_play":
		t.routeMenuCommand("play", message.Text, chatID, message.From.ID)
	default:
		return false
	}
	return true
}

// routeMenuCommand runs a command picked from the menu
func (t *TelegramBot) routeMenuCommand(command, args string, chatID, userID int64) {
	if err := t.routeCommand(command, args, chatID, userID); err != nil {
		slog.Error("Failed to handle menu command", "command", command, "error", err)
		t.sendMessage(chatID, "❌ An error occurred while processing your request.")
	}
}
