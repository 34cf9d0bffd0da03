package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mpetrov/threadsync/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when trying to insert a duplicate record
var ErrAlreadyExists = errors.New("record already exists")

// EnsureUser creates an empty user record for a Telegram id if one does not
// exist yet, so that channel promotions can link to it before the user ever
// authenticates.
func (db *DB) EnsureUser(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `INSERT INTO users (telegram_id, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT(telegram_id) DO NOTHING`
	now := time.Now()
	if _, err := db.ExecContext(ctx, query, telegramID, now, now); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return db.GetUserByTelegramID(ctx, telegramID)
}

// GetUserByTelegramID returns a user by Telegram id
func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE telegram_id = ?`
	err := db.GetContext(ctx, &user, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SaveCredentials upserts the user's Threads tokens and activates the user.
// This is the only write path that makes a user eligible for syncing from a
// credentials standpoint.
func (db *DB) SaveCredentials(ctx context.Context, telegramID int64, shortLivedToken, longLivedToken string, expiresIn int64, threadsUserID string) error {
	now := time.Now()
	expiresAt := now.Add(time.Duration(expiresIn) * time.Second)
	query := `
		INSERT INTO users (telegram_id, threads_access_token, threads_long_lived_token, token_expires_at, threads_user_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			threads_access_token = excluded.threads_access_token,
			threads_long_lived_token = excluded.threads_long_lived_token,
			token_expires_at = excluded.token_expires_at,
			threads_user_id = excluded.threads_user_id,
			is_active = true,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query, telegramID, shortLivedToken, longLivedToken, expiresAt, threadsUserID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// SetSyncStartDate sets the date from which posts are mirrored and activates
// the user.
func (db *DB) SetSyncStartDate(ctx context.Context, telegramID int64, date time.Time) error {
	query := `UPDATE users SET sync_start_date = ?, is_active = true, updated_at = ? WHERE telegram_id = ?`
	result, err := db.ExecContext(ctx, query, date, time.Now(), telegramID)
	if err != nil {
		return fmt.Errorf("failed to set sync start date: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEligibleUsers returns all users that qualify for a polling cycle: active,
// holding an unexpired long-lived token, with a sync start date and at least
// one channel.
func (db *DB) GetEligibleUsers(ctx context.Context, now time.Time) ([]*models.User, error) {
	var users []*models.User
	query := `
		SELECT u.* FROM users u
		WHERE u.is_active = true
		  AND u.threads_long_lived_token IS NOT NULL
		  AND u.sync_start_date IS NOT NULL
		  AND datetime(u.token_expires_at) > datetime(?)
		  AND EXISTS (SELECT 1 FROM channels c WHERE c.owner_id = u.id)
	`
	err := db.SelectContext(ctx, &users, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible users: %w", err)
	}
	return users, nil
}
