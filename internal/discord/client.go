package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/workhq/workplace-bot/internal"
)

const defaultUserAgent = "DiscordBot (https://github.com/workhq/workplace-bot, 1.0)"

// Client is a minimal REST client for the handful of Discord endpoints the
// bot calls outside the interaction response: posting channel messages,
// editing approval cards and opening DM channels.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// AllowedMentions controls who a message may ping. Parse is always set to an
// empty list so names and @-lookalikes in user-supplied text never notify
// anyone; pings happen only through the explicit Roles and Users lists.
type AllowedMentions struct {
	Parse []string `json:"parse"`
	Roles []string `json:"roles,omitempty"`
	Users []string `json:"users,omitempty"`
}

type OutboundMessage struct {
	Content         string           `json:"content"`
	Components      []Component      `json:"components,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

func (m *OutboundMessage) withMentionSuppression() *OutboundMessage {
	if m.AllowedMentions == nil {
		m.AllowedMentions = &AllowedMentions{}
	}
	if m.AllowedMentions.Parse == nil {
		m.AllowedMentions.Parse = []string{}
	}
	return m
}

// PostMessage creates a message in the given channel and returns its ID.
func (c *Client) PostMessage(ctx context.Context, channelID string, msg *OutboundMessage) (string, error) {
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	body, err := c.do(ctx, http.MethodPost, path, msg.withMentionSuppression())
	if err != nil {
		return "", err
	}
	var created Message
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode message response: %w", err)
	}
	return created.ID, nil
}

// EditMessage replaces the content and components of an existing message,
// typically to disable the buttons on a decided approval card.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, msg *OutboundMessage) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	_, err := c.do(ctx, http.MethodPatch, path, msg.withMentionSuppression())
	return err
}

// GetMessage fetches a message, used to read back the card text when a
// decision arrives without a stored request row.
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}

// OpenDM opens (or reuses) the DM channel with a user and returns its
// channel ID, which PostMessage then accepts like any other channel.
func (c *Client) OpenDM(ctx context.Context, userID string) (string, error) {
	payload := map[string]string{"recipient_id": userID}
	body, err := c.do(ctx, http.MethodPost, "/users/@me/channels", payload)
	if err != nil {
		return "", err
	}
	var ch struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &ch); err != nil {
		return "", fmt.Errorf("decode dm channel: %w", err)
	}
	return ch.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", defaultUserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Discord API request failed", apperrors.ErrCodeDiscordUnavailable,
			fmt.Errorf("discord request %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read discord response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("discord api error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", truncateRunes(string(body), 300))
		return nil, apperrors.NewUpstreamError("Discord API request failed", apperrors.ErrCodeDiscordUnavailable,
			fmt.Errorf("discord api %s %s: status %d", method, path, resp.StatusCode))
	}

	return body, nil
}
