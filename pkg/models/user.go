package models

import "time"

// User represents a Telegram account known to the bot. Credentials are filled
// in by the Threads authorization flow; a user is eligible for syncing once
// they are active, hold an unexpired long-lived token and have set a sync
// start date.
type User struct {
	ID                    int64      `db:"id"`
	TelegramID            int64      `db:"telegram_id"`
	ThreadsAccessToken    *string    `db:"threads_access_token"`     // short-lived token from the code exchange
	ThreadsLongLivedToken *string    `db:"threads_long_lived_token"` // 60-day token used for content fetches
	TokenExpiresAt        *time.Time `db:"token_expires_at"`
	ThreadsUserID         *string    `db:"threads_user_id"`
	SyncStartDate         *time.Time `db:"sync_start_date"` // posts created before this date are never mirrored
	IsActive              bool       `db:"is_active"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}
