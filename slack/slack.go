// Package slack posts checklists to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookError is returned when Slack answers with anything but 200.
// Slack puts a short reason such as "invalid_payload" in the body.
type WebhookError struct {
	StatusCode int
	Reason     string
}

func (e *WebhookError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("slack webhook: status %d", e.StatusCode)
	}
	return fmt.Sprintf("slack webhook: status %d: %s", e.StatusCode, e.Reason)
}

// Client posts to one webhook URL as a fixed bot identity.
type Client struct {
	webhookURL string
	httpClient doer
	username   string
	iconEmoji  string
}

type Option func(*Client)

// WithIdentity overrides the bot name and icon shown in the channel.
func WithIdentity(username, iconEmoji string) Option {
	return func(c *Client) {
		c.username = username
		c.iconEmoji = iconEmoji
	}
}

func NewClient(webhookURL string, httpClient doer, opts ...Option) *Client {
	c := &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
		username:   "listscribe",
		iconEmoji:  ":shopping_trolley:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type webhookPayload struct {
	Channel   string `json:"channel,omitempty"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// PostMessage implements listscribe.SlackClient.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	return c.post(ctx, webhookPayload{
		Channel:   channel,
		Text:      message,
		Username:  c.username,
		IconEmoji: c.iconEmoji,
	})
}

func (c *Client) post(ctx context.Context, p webhookPayload) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(p); err != nil {
		return fmt.Errorf("slack webhook: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck
		return nil
	}
	reason, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &WebhookError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(reason))}
}
