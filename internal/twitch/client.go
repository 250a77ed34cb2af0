// Package twitch is a minimal Twitch Helix client for stream liveness
// queries.
package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.twitch.tv/helix"
	tokenURL       = "https://id.twitch.tv/oauth2/token"
)

// Stream describes a live stream as reported by Helix. All fields beyond
// UserName are best effort.
type Stream struct {
	UserName     string    `json:"user_name"`
	Title        string    `json:"title"`
	GameName     string    `json:"game_name"`
	ViewerCount  int       `json:"viewer_count"`
	ThumbnailURL string    `json:"thumbnail_url"`
	StartedAt    time.Time `json:"started_at"`
}

// Client queries the Helix streams endpoint. The zero value is not usable;
// construct with New or NewDisabled.
type Client struct {
	clientID   string
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	disabled   bool
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Helix endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a Client. accessToken takes precedence over clientSecret; with
// only a secret, an app access token is fetched and cached on demand.
func New(clientID, clientSecret, accessToken string, opts ...Option) *Client {
	c := &Client{
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if accessToken != "" {
		c.tokens = staticToken(accessToken)
	} else {
		c.tokens = &appTokenSource{clientID: clientID, clientSecret: clientSecret, httpClient: c.httpClient}
	}
	return c
}

// NewDisabled builds a Client whose every query reports offline. Used when
// no Twitch credentials are configured so the watcher can keep running.
func NewDisabled() *Client {
	return &Client{disabled: true}
}

// CheckLive returns the live stream for login, or nil when offline.
func (c *Client) CheckLive(ctx context.Context, login string) (*Stream, error) {
	if c.disabled {
		return nil, nil
	}
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("twitch token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/streams", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("user_login", login)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitch streams request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("twitch streams: status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []Stream `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twitch streams response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, nil
	}
	return &payload.Data[0], nil
}
