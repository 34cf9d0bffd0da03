package models

import "time"

// Channel represents a Telegram channel the bot mirrors posts into.
type Channel struct {
	ID        int64     `db:"id"`
	ChannelID string    `db:"channel_id"` // numeric chat id, or @username for public channels
	OwnerID   int64     `db:"owner_id"`   // FK to User
	CreatedAt time.Time `db:"created_at"`
}
