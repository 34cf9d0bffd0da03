package threads

import (
	"fmt"
	"strconv"
	"time"
)

// TokenResponse is the body of the token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Profile identifies the Threads account behind a token
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Post is a single entry of the content listing. media_type is one of
// TEXT_POST, IMAGE, VIDEO, CAROUSEL_ALBUM, AUDIO or REPOST_FACADE; the post
// text lives in the text field, not in a caption.
type Post struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	MediaType    string    `json:"media_type"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Timestamp    Timestamp `json:"timestamp"`
	Permalink    string    `json:"permalink"`
	Children     *Children `json:"children"`
}

// Children wraps carousel/album members
type Children struct {
	Data []Child `json:"data"`
}

// Child is one carousel item
type Child struct {
	ID           string `json:"id"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Timestamp parses the timestamps the Graph API emits. They are mostly
// RFC3339, but the zone can come as +0000 without a colon.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp format %q", s)
}

// AuthError is a non-success response from the token or profile endpoints
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("threads auth request failed with status %d: %s", e.StatusCode, e.Body)
}

// FetchError is a non-success response from the content listing endpoint
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("threads fetch failed with status %d: %s", e.StatusCode, e.Body)
}
