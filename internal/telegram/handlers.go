package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/mpetrov/threadsync/internal/database"
)

// handleStart handles /start, including the auth deep-link markers the
// callback server redirects through
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}

	// Create the user lazily so a later channel promotion can link to it
	user, err := b.db.EnsureUser(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("failed to ensure user", "telegram_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	param := ""
	if parts := strings.Fields(msg.Text); len(parts) > 1 {
		param = parts[1]
	}

	switch param {
	case "auth_success":
		b.sendMessage(ctx, msg.Chat.ID,
			"✅ Successfully authenticated with Threads!\n\n"+
				"Next: set your sync start date with /setsyncdate, then add this bot as an admin to your Telegram channel. New Threads posts will be reposted there automatically.")
		return
	case "auth_error":
		b.sendMessage(ctx, msg.Chat.ID, "❌ Authentication failed. Please try again with /auth.")
		return
	}

	if user.ThreadsLongLivedToken == nil {
		b.sendMessage(ctx, msg.Chat.ID,
			"👋 Welcome! This bot reposts your Threads posts to your Telegram channels.\n\n"+
				"1️⃣ Use /auth to connect your Threads account.\n"+
				"2️⃣ Use /setsyncdate to set from which date to sync (YYYY-MM-DD).\n"+
				"3️⃣ Add this bot as an admin to your Telegram channel.\n\n"+
				"Start with /auth.")
		return
	}

	if user.SyncStartDate == nil {
		b.sendMessage(ctx, msg.Chat.ID,
			"✅ Threads connected.\n\n"+
				"Set your sync start date with /setsyncdate, then add this bot as an admin to your Telegram channel.")
		return
	}

	channelCount, err := b.db.CountChannelsByOwner(ctx, user.ID)
	if err != nil {
		b.logger.Error("failed to count channels", "telegram_id", msg.From.ID, "error", err)
		channelCount = 0
	}

	b.sendMessage(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ You're set up.\n\n"+
			"📅 Sync from: %s\n"+
			"📢 Channels: %d\n\n"+
			"Commands: /help | /status | /setsyncdate | /auth",
		user.SyncStartDate.Format("2006-01-02"), channelCount))
}

// handleHelp handles /help command
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	msg := update.Message

	text := `<b>Threads → Telegram Reposter</b>

Reposts your Threads posts to Telegram channels where this bot is admin.

<b>Commands:</b>
/start - Check status
/auth - Connect Threads account
/setsyncdate - Set date to sync from (YYYY-MM-DD)
/status - View config and channels
/help - This message

<b>Setup:</b>
1. /auth and open the link to connect Threads
2. /setsyncdate and enter a date
3. Add this bot as admin to your channel
4. New posts are reposted every minute.`

	b.sendMessage(ctx, msg.Chat.ID, text)
}

// handleAuth handles /auth command
func (b *Bot) handleAuth(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}

	authURL := fmt.Sprintf("%s/auth/threads/authorize?telegramId=%d", b.config.BaseURL, msg.From.ID)
	b.sendMessage(ctx, msg.Chat.ID,
		"🔐 To connect your Threads account, open the link below:\n\n"+
			fmt.Sprintf(`<a href="%s">🔗 Authenticate with Threads</a>`, authURL))
}

// handleSetSyncDate starts the date-entry dialog
func (b *Bot) handleSetSyncDate(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}

	if _, err := b.db.EnsureUser(ctx, msg.From.ID); err != nil {
		b.logger.Error("failed to ensure user", "telegram_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	b.setAwaitingDate(msg.From.ID)
	b.sendMessage(ctx, msg.Chat.ID,
		"📅 Please enter your sync start date in YYYY-MM-DD format.\n\n"+
			"Example: 2024-01-01\n\n"+
			"Posts created on or after this date will be synced to your Telegram channels. Use /cancel to cancel.")
}

// handleDateEntry consumes the next message of a user who ran /setsyncdate
func (b *Bot) handleDateEntry(ctx context.Context, msg *tgmodels.Message) {
	text := strings.TrimSpace(msg.Text)

	if text == "/cancel" {
		b.clearAwaitingDate(msg.From.ID)
		b.sendMessage(ctx, msg.Chat.ID, "Cancelled.")
		return
	}

	date, err := parseSyncDate(text, time.Now())
	if err != nil {
		// Keep the dialog open so the user can retry
		b.sendMessage(ctx, msg.Chat.ID, fmt.Sprintf("❌ %s\n\nTry again or use /cancel.", err))
		return
	}

	if err := b.db.SetSyncStartDate(ctx, msg.From.ID, date); err != nil {
		b.clearAwaitingDate(msg.From.ID)
		if errors.Is(err, database.ErrNotFound) {
			b.sendMessage(ctx, msg.Chat.ID, "❌ User not found. Please use /start to get started.")
			return
		}
		b.logger.Error("failed to set sync start date", "telegram_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	b.clearAwaitingDate(msg.From.ID)
	b.sendMessage(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Sync start date has been set to %s!\n\n"+
			"Your Threads posts will now be automatically synced to your Telegram channels.",
		date.Format("2006-01-02")))
}

// parseSyncDate validates a YYYY-MM-DD watermark date. time.Parse rejects
// impossible dates like 2024-02-31.
func parseSyncDate(text string, now time.Time) (time.Time, error) {
	date, err := time.Parse("2006-01-02", text)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, please use YYYY-MM-DD (e.g. 2024-01-01)")
	}
	if date.After(now) {
		return time.Time{}, errors.New("sync start date cannot be in the future")
	}
	return date, nil
}

// handleStatus handles /status command
func (b *Bot) handleStatus(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}

	user, err := b.db.GetUserByTelegramID(ctx, msg.From.ID)
	if errors.Is(err, database.ErrNotFound) {
		b.sendMessage(ctx, msg.Chat.ID, "❌ You are not registered. Use /start to get started.")
		return
	}
	if err != nil {
		b.logger.Error("failed to get user", "telegram_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	channels, err := b.db.GetChannelsByOwner(ctx, user.ID)
	if err != nil {
		b.logger.Error("failed to list channels", "telegram_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Your Status:\n\n")

	threadsUserID := "N/A"
	if user.ThreadsUserID != nil {
		threadsUserID = *user.ThreadsUserID
	}
	syncDate := "Not set"
	if user.SyncStartDate != nil {
		syncDate = user.SyncStartDate.Format("2006-01-02")
	}
	status := "🔴 Inactive"
	if user.IsActive {
		status = "🟢 Active"
	}

	sb.WriteString(fmt.Sprintf("Threads User ID: %s\n", threadsUserID))
	sb.WriteString(fmt.Sprintf("Sync Start Date: %s\n", syncDate))
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))
	sb.WriteString(fmt.Sprintf("Channels: %d\n", len(channels)))

	if len(channels) > 0 {
		sb.WriteString("\n📢 Your Channels:\n")
		for _, channel := range channels {
			sb.WriteString(fmt.Sprintf("  • %s\n", channel.ChannelID))
		}
	}

	b.sendMessage(ctx, msg.Chat.ID, sb.String())
}

// handleMyChatMember tracks the bot being promoted to or demoted from channel
// admin, which is how channels get registered and removed
func (b *Bot) handleMyChatMember(ctx context.Context, upd *tgmodels.ChatMemberUpdated) {
	wasAdmin := upd.OldChatMember.Type == tgmodels.ChatMemberTypeAdministrator
	isAdmin := upd.NewChatMember.Type == tgmodels.ChatMemberTypeAdministrator
	if wasAdmin == isAdmin {
		return
	}

	channelID := channelIdentifier(upd.Chat)

	user, err := b.db.EnsureUser(ctx, upd.From.ID)
	if err != nil {
		b.logger.Error("failed to ensure user for channel update", "telegram_id", upd.From.ID, "error", err)
		return
	}

	if isAdmin {
		if err := b.db.UpsertChannel(ctx, channelID, user.ID); err != nil {
			b.logger.Error("failed to add channel", "channel_id", channelID, "error", err)
			b.sendMessage(ctx, upd.From.ID, "❌ Error adding channel. Please try again.")
			return
		}
		b.logger.Info("channel added", "channel_id", channelID, "telegram_id", upd.From.ID)
		b.sendMessage(ctx, upd.From.ID, fmt.Sprintf("✅ Channel %s has been added! Posts will be synced to this channel.", channelID))
		return
	}

	if err := b.db.DeleteChannels(ctx, channelID, user.ID); err != nil {
		b.logger.Error("failed to remove channel", "channel_id", channelID, "error", err)
		return
	}
	b.logger.Info("channel removed", "channel_id", channelID, "telegram_id", upd.From.ID)
	b.sendMessage(ctx, upd.From.ID, fmt.Sprintf("ℹ️ Channel %s has been removed from syncing.", channelID))
}

// channelIdentifier picks the stable identifier to store for a chat: the
// numeric id for channels, @username for public chats, the id otherwise
func channelIdentifier(chat tgmodels.Chat) string {
	if chat.Type == "channel" {
		return strconv.FormatInt(chat.ID, 10)
	}
	if chat.Username != "" {
		return "@" + chat.Username
	}
	return strconv.FormatInt(chat.ID, 10)
}
