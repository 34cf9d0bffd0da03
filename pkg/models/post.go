package models

import "time"

// MediaKind is the closed set of media types Telegram accepts in a media group.
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is a single entry of a media group, in delivery order.
type MediaItem struct {
	Kind MediaKind
	URL  string
}

// ProcessedPost records that a Threads post has already been delivered for a
// user. Rows are append-only.
type ProcessedPost struct {
	ID            int64     `db:"id"`
	ThreadsPostID string    `db:"threads_post_id"`
	UserID        int64     `db:"user_id"` // FK to User
	CreatedAt     time.Time `db:"created_at"`
}
