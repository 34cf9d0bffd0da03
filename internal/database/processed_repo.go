package database

import (
	"context"
	"fmt"
	"time"
)

// RecordProcessed appends an idempotency record for a delivered post. Returns
// ErrAlreadyExists if the (post, user) pair was already recorded; callers must
// treat that as benign.
func (db *DB) RecordProcessed(ctx context.Context, threadsPostID string, userID int64) error {
	query := `INSERT OR IGNORE INTO processed_posts (threads_post_id, user_id, created_at) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, threadsPostID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record processed post: %w", err)
	}

	// Check if row was actually inserted (not ignored due to duplicate)
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetProcessedPostIDs returns the set of Threads post ids already delivered
// for a user. Loaded once per user per cycle for O(1) membership checks.
func (db *DB) GetProcessedPostIDs(ctx context.Context, userID int64) (map[string]struct{}, error) {
	var ids []string
	query := `SELECT threads_post_id FROM processed_posts WHERE user_id = ?`
	err := db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get processed post ids: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
