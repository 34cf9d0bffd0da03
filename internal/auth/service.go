package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mpetrov/threadsync/internal/threads"
)

// threadsAPI is the slice of the Threads client the auth flow uses
type threadsAPI interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*threads.TokenResponse, error)
	ExchangeLongLived(ctx context.Context, shortLivedToken string) (*threads.TokenResponse, error)
	Me(ctx context.Context, accessToken string) (*threads.Profile, error)
}

// credentialStore persists the outcome of a successful authorization
type credentialStore interface {
	SaveCredentials(ctx context.Context, telegramID int64, shortLivedToken, longLivedToken string, expiresIn int64, threadsUserID string) error
}

// Service runs the Threads authorization-code flow for Telegram users
type Service struct {
	client threadsAPI
	store  credentialStore
	logger *slog.Logger
}

// NewService creates a new auth service
func NewService(client threadsAPI, store credentialStore, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.With("component", "auth"),
	}
}

// AuthorizationURL builds the consent URL, carrying the Telegram id as state
func (s *Service) AuthorizationURL(telegramID int64) string {
	return s.client.AuthorizationURL(strconv.FormatInt(telegramID, 10))
}

// CompleteAuthorization exchanges the callback code for tokens and persists
// them. The chain is strictly sequential and non-retried: a failure at any
// step aborts the whole attempt and nothing is persisted.
func (s *Service) CompleteAuthorization(ctx context.Context, code, state string) error {
	telegramID, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid state %q: %w", state, err)
	}

	shortLived, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	longLived, err := s.client.ExchangeLongLived(ctx, shortLived.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to exchange for long-lived token: %w", err)
	}

	profile, err := s.client.Me(ctx, longLived.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to resolve threads profile: %w", err)
	}

	if err := s.store.SaveCredentials(ctx, telegramID, shortLived.AccessToken, longLived.AccessToken, longLived.ExpiresIn, profile.ID); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.logger.Info("user authenticated with threads",
		"telegram_id", telegramID,
		"threads_user_id", profile.ID,
		"threads_username", profile.Username,
	)
	return nil
}
