package threads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(graphURL string) *Client {
	return NewClient(Config{
		AppID:        "app-id",
		AppSecret:    "app-secret",
		RedirectURI:  "https://bot.example.com/auth/threads/callback",
		AuthBaseURL:  "https://auth.test",
		GraphBaseURL: graphURL,
	})
}

func TestAuthorizationURL(t *testing.T) {
	c := testClient("https://graph.test")

	raw := c.AuthorizationURL("12345")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "https://bot.example.com/auth/threads/callback", q.Get("redirect_uri"))
	assert.Equal(t, "threads_basic,threads_content_publish", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "12345", q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "app-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "app-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"short-lived","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	token, err := testClient(srv.URL).ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "short-lived", token.AccessToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)
}

func TestExchangeCodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid code"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "invalid code")
}

func TestExchangeLongLived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "fb_exchange_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "short-lived", r.PostForm.Get("fb_exchange_token"))

		w.Write([]byte(`{"access_token":"long-lived","token_type":"bearer","expires_in":5184000}`))
	}))
	defer srv.Close()

	token, err := testClient(srv.URL).ExchangeLongLived(context.Background(), "short-lived")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token.AccessToken)
	assert.Equal(t, int64(5184000), token.ExpiresIn)
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/me", r.URL.Path)
		assert.Equal(t, "long-lived", r.URL.Query().Get("access_token"))
		assert.Equal(t, "id,username", r.URL.Query().Get("fields"))

		w.Write([]byte(`{"id":"threads-42","username":"alice"}`))
	}))
	defer srv.Close()

	profile, err := testClient(srv.URL).Me(context.Background(), "long-lived")
	require.NoError(t, err)
	assert.Equal(t, "threads-42", profile.ID)
	assert.Equal(t, "alice", profile.Username)
}

func TestPostsSinceSortsAscending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/me/threads", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2024-01-01", q.Get("since"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Contains(t, q.Get("fields"), "children{id,media_type,media_url,thumbnail_url}")

		// Out of order on purpose; timestamps use the API's +0000 zone form
		w.Write([]byte(`{"data":[
			{"id":"p3","timestamp":"2024-01-03T10:00:00+0000"},
			{"id":"p1","timestamp":"2024-01-01T10:00:00+0000"},
			{"id":"p2","timestamp":"2024-01-02T10:00:00+0000"}
		]}`))
	}))
	defer srv.Close()

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts, err := testClient(srv.URL).PostsSince(context.Background(), "long-lived", since)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	assert.Equal(t, "p3", posts[2].ID)
}

func TestPostsSinceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"token expired"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PostsSince(context.Background(), "stale", time.Now())
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Body, "token expired")
}

func TestTimestampParsesRFC3339(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.UnmarshalJSON([]byte(`"2024-01-02T10:00:00Z"`)))
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), ts.Time)
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, ts.UnmarshalJSON([]byte(`"yesterday"`)))
}
