package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	defaultAuthBaseURL  = "https://www.threads.net"
	defaultGraphBaseURL = "https://graph.threads.net"

	// Scopes requested during authorization
	oauthScopes = "threads_basic,threads_content_publish"

	// Field projection for the content listing endpoint
	postFields = "id,text,media_type,media_url,thumbnail_url,timestamp,permalink,children{id,media_type,media_url,thumbnail_url}"
)

// Client is a Threads Graph API client
type Client struct {
	appID        string
	appSecret    string
	redirectURI  string
	authBaseURL  string
	graphBaseURL string
	httpClient   *http.Client
}

// Config for Threads client
type Config struct {
	AppID       string
	AppSecret   string
	RedirectURI string

	// Overridable for tests; defaults point at the real endpoints.
	AuthBaseURL  string
	GraphBaseURL string
}

// NewClient creates a new Threads API client
func NewClient(cfg Config) *Client {
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = defaultAuthBaseURL
	}
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = defaultGraphBaseURL
	}
	return &Client{
		appID:        cfg.AppID,
		appSecret:    cfg.AppSecret,
		redirectURI:  cfg.RedirectURI,
		authBaseURL:  cfg.AuthBaseURL,
		graphBaseURL: cfg.GraphBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthorizationURL builds the consent URL for the authorization-code flow.
// The opaque state is round-tripped by Threads so the callback can recover
// which user started the flow.
func (c *Client) AuthorizationURL(state string) string {
	v := url.Values{}
	v.Set("client_id", c.appID)
	v.Set("redirect_uri", c.redirectURI)
	v.Set("scope", oauthScopes)
	v.Set("response_type", "code")
	v.Set("state", state)
	return c.authBaseURL + "/oauth/authorize?" + v.Encode()
}

// ExchangeCode exchanges an authorization code for a short-lived access token
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.appID)
	form.Set("client_secret", c.appSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.redirectURI)
	form.Set("code", code)
	return c.postToken(ctx, form)
}

// ExchangeLongLived upgrades a short-lived token to a long-lived one (60 days)
func (c *Client) ExchangeLongLived(ctx context.Context, shortLivedToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.appID)
	form.Set("client_secret", c.appSecret)
	form.Set("grant_type", "fb_exchange_token")
	form.Set("fb_exchange_token", shortLivedToken)
	return c.postToken(ctx, form)
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.graphBaseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w (body: %s)", err, string(body))
	}
	return &token, nil
}

// Me resolves the Threads account behind an access token
func (c *Client) Me(ctx context.Context, accessToken string) (*Profile, error) {
	v := url.Values{}
	v.Set("access_token", accessToken)
	v.Set("fields", "id,username")

	req, err := http.NewRequestWithContext(ctx, "GET", c.graphBaseURL+"/v1.0/me?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w (body: %s)", err, string(body))
	}
	return &profile, nil
}

// PostsSince fetches the token owner's posts created at or after the given
// date, sorted ascending by timestamp so callers deliver in chronological
// order even when the API does not guarantee it.
func (c *Client) PostsSince(ctx context.Context, accessToken string, since time.Time) ([]Post, error) {
	v := url.Values{}
	v.Set("access_token", accessToken)
	v.Set("fields", postFields)
	v.Set("since", since.Format("2006-01-02"))
	v.Set("limit", "25")

	req, err := http.NewRequestWithContext(ctx, "GET", c.graphBaseURL+"/v1.0/me/threads?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var listing struct {
		Data []Post `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing response: %w (body: %s)", err, string(body))
	}

	posts := listing.Data
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.Before(posts[j].Timestamp.Time)
	})
	return posts, nil
}
