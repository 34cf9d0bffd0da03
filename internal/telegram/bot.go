package telegram

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mpetrov/threadsync/internal/config"
	"github.com/mpetrov/threadsync/internal/database"
)

// Bot represents the Telegram bot
type Bot struct {
	bot    *bot.Bot
	db     *database.DB
	logger *slog.Logger
	config *config.Config

	mu           sync.Mutex
	awaitingDate map[int64]struct{} // users mid /setsyncdate dialog
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config *config.Config
	DB     *database.DB
	Logger *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		db:           deps.DB,
		logger:       deps.Logger.With("component", "telegram_bot"),
		config:       deps.Config,
		awaitingDate: make(map[int64]struct{}),
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/auth", bot.MatchTypePrefix, b.handleAuth)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/setsyncdate", bot.MatchTypePrefix, b.handleSetSyncDate)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, b.handleStatus)
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// Client exposes the underlying API client for the channel sender
func (b *Bot) Client() *bot.Bot {
	return b.bot
}

// defaultHandler routes channel membership updates and the date-entry dialog
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.MyChatMember != nil {
		b.handleMyChatMember(ctx, update.MyChatMember)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if b.isAwaitingDate(update.Message.From.ID) {
		b.handleDateEntry(ctx, update.Message)
		return
	}

	// Log unknown commands
	if update.Message.Text != "" && update.Message.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", update.Message.Text)
	}
}

func (b *Bot) setAwaitingDate(telegramID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.awaitingDate[telegramID] = struct{}{}
}

func (b *Bot) clearAwaitingDate(telegramID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.awaitingDate, telegramID)
}

func (b *Bot) isAwaitingDate(telegramID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.awaitingDate[telegramID]
	return ok
}

// sendMessage sends an HTML message to a chat
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
