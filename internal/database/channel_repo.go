package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mpetrov/threadsync/pkg/models"
)

// UpsertChannel registers a channel for a user. Registering the same channel
// twice for the same owner is a no-op.
func (db *DB) UpsertChannel(ctx context.Context, channelID string, ownerID int64) error {
	query := `INSERT OR IGNORE INTO channels (channel_id, owner_id, created_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, query, channelID, ownerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

// DeleteChannels removes a channel registration for a user
func (db *DB) DeleteChannels(ctx context.Context, channelID string, ownerID int64) error {
	query := `DELETE FROM channels WHERE channel_id = ? AND owner_id = ?`
	_, err := db.ExecContext(ctx, query, channelID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete channels: %w", err)
	}
	return nil
}

// GetChannelsByOwner returns all channels registered by a user
func (db *DB) GetChannelsByOwner(ctx context.Context, ownerID int64) ([]*models.Channel, error) {
	var channels []*models.Channel
	query := `SELECT * FROM channels WHERE owner_id = ? ORDER BY created_at`
	err := db.SelectContext(ctx, &channels, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}
	return channels, nil
}

// CountChannelsByOwner returns the number of channels registered by a user
func (db *DB) CountChannelsByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM channels WHERE owner_id = ?`
	err := db.GetContext(ctx, &count, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}
	return count, nil
}
