package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/threadsync/internal/threads"
)

type fakeThreadsAPI struct {
	exchangeCodeErr error
	longLivedErr    error
	meErr           error

	exchangedCode  string
	upgradedToken  string
	profileQueried string
}

func (f *fakeThreadsAPI) AuthorizationURL(state string) string {
	return "https://auth.test/oauth/authorize?state=" + state
}

func (f *fakeThreadsAPI) ExchangeCode(ctx context.Context, code string) (*threads.TokenResponse, error) {
	if f.exchangeCodeErr != nil {
		return nil, f.exchangeCodeErr
	}
	f.exchangedCode = code
	return &threads.TokenResponse{AccessToken: "short-lived", ExpiresIn: 3600}, nil
}

func (f *fakeThreadsAPI) ExchangeLongLived(ctx context.Context, shortLivedToken string) (*threads.TokenResponse, error) {
	if f.longLivedErr != nil {
		return nil, f.longLivedErr
	}
	f.upgradedToken = shortLivedToken
	return &threads.TokenResponse{AccessToken: "long-lived", ExpiresIn: 5184000}, nil
}

func (f *fakeThreadsAPI) Me(ctx context.Context, accessToken string) (*threads.Profile, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	f.profileQueried = accessToken
	return &threads.Profile{ID: "threads-42", Username: "alice"}, nil
}

type savedCredentials struct {
	telegramID    int64
	shortLived    string
	longLived     string
	expiresIn     int64
	threadsUserID string
}

type fakeCredentialStore struct {
	saved []savedCredentials
	err   error
}

func (f *fakeCredentialStore) SaveCredentials(ctx context.Context, telegramID int64, shortLivedToken, longLivedToken string, expiresIn int64, threadsUserID string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, savedCredentials{telegramID, shortLivedToken, longLivedToken, expiresIn, threadsUserID})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompleteAuthorization(t *testing.T) {
	api := &fakeThreadsAPI{}
	store := &fakeCredentialStore{}
	svc := NewService(api, store, testLogger())

	err := svc.CompleteAuthorization(context.Background(), "the-code", "12345")
	require.NoError(t, err)

	assert.Equal(t, "the-code", api.exchangedCode)
	assert.Equal(t, "short-lived", api.upgradedToken)
	assert.Equal(t, "long-lived", api.profileQueried)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, int64(12345), saved.telegramID)
	assert.Equal(t, "short-lived", saved.shortLived)
	assert.Equal(t, "long-lived", saved.longLived)
	assert.Equal(t, int64(5184000), saved.expiresIn)
	assert.Equal(t, "threads-42", saved.threadsUserID)
}

func TestCompleteAuthorizationInvalidState(t *testing.T) {
	store := &fakeCredentialStore{}
	svc := NewService(&fakeThreadsAPI{}, store, testLogger())

	err := svc.CompleteAuthorization(context.Background(), "the-code", "not-a-number")
	require.Error(t, err)
	assert.Empty(t, store.saved)
}

func TestCompleteAuthorizationAbortsWithoutPartialPersist(t *testing.T) {
	upstream := errors.New("upstream rejected")

	tests := []struct {
		name string
		api  *fakeThreadsAPI
	}{
		{"code exchange fails", &fakeThreadsAPI{exchangeCodeErr: upstream}},
		{"long-lived upgrade fails", &fakeThreadsAPI{longLivedErr: upstream}},
		{"profile lookup fails", &fakeThreadsAPI{meErr: upstream}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCredentialStore{}
			svc := NewService(tt.api, store, testLogger())

			err := svc.CompleteAuthorization(context.Background(), "the-code", "12345")
			require.ErrorIs(t, err, upstream)
			assert.Empty(t, store.saved, "no credentials may be persisted on a failed chain")
		})
	}
}
