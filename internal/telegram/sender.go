package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/mpetrov/threadsync/internal/formatter"
	"github.com/mpetrov/threadsync/pkg/models"
)

// telegramAPI is the subset of bot.Bot the sender uses
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SendMediaGroup(ctx context.Context, params *bot.SendMediaGroupParams) ([]*tgmodels.Message, error)
}

// channelStore loads the destination channels for a user
type channelStore interface {
	GetChannelsByOwner(ctx context.Context, ownerID int64) ([]*models.Channel, error)
}

// Sender fans one post out to every channel its owner controls
type Sender struct {
	api       telegramAPI
	store     channelStore
	formatter *formatter.TelegramFormatter
	logger    *slog.Logger
}

// NewSender creates a new channel sender
func NewSender(api telegramAPI, store channelStore, f *formatter.TelegramFormatter, logger *slog.Logger) *Sender {
	return &Sender{
		api:       api,
		store:     store,
		formatter: f,
		logger:    logger.With("component", "sender"),
	}
}

// SendToChannels delivers a post to every channel owned by the user. Sends
// are attempted per channel: a failure on one channel is logged and does not
// abort the remaining channels.
func (s *Sender) SendToChannels(ctx context.Context, user *models.User, caption string, media []models.MediaItem) error {
	channels, err := s.store.GetChannelsByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load channels: %w", err)
	}

	for _, channel := range channels {
		if err := s.sendToChannel(ctx, channel.ChannelID, caption, media); err != nil {
			s.logger.Error("failed to send to channel",
				"channel_id", channel.ChannelID,
				"telegram_id", user.TelegramID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *Sender) sendToChannel(ctx context.Context, channelID, caption string, media []models.MediaItem) error {
	// Telegram rejects empty media groups, so text-only posts go out as a
	// plain message
	if len(media) == 0 {
		_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    channelID,
			Text:      s.formatter.Message(caption),
			ParseMode: tgmodels.ParseModeHTML,
		})
		return err
	}

	_, err := s.api.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID: channelID,
		Media:  s.buildMediaGroup(caption, media),
	})
	return err
}

// buildMediaGroup converts media items to Telegram input media. The caption
// goes on the first item only; Telegram shows it for the whole group.
func (s *Sender) buildMediaGroup(caption string, media []models.MediaItem) []tgmodels.InputMedia {
	group := make([]tgmodels.InputMedia, 0, len(media))
	for i, item := range media {
		var itemCaption string
		var parseMode tgmodels.ParseMode
		if i == 0 {
			itemCaption = s.formatter.Caption(caption)
			parseMode = tgmodels.ParseModeHTML
		}

		switch item.Kind {
		case models.MediaKindVideo:
			group = append(group, &tgmodels.InputMediaVideo{
				Media:     item.URL,
				Caption:   itemCaption,
				ParseMode: parseMode,
			})
		default:
			group = append(group, &tgmodels.InputMediaPhoto{
				Media:     item.URL,
				Caption:   itemCaption,
				ParseMode: parseMode,
			})
		}
	}
	return group
}
