package centrifugo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	publishMethod = "publish"

	inboxChannelPrefix = "inbox:"
	chatChannelPrefix  = "chat:"
)

// InboxChannel carries a user's conversation list updates.
func InboxChannel(userID string) string {
	return inboxChannelPrefix + userID
}

// ChatChannel carries the updates of the conversation a user has open.
func ChatChannel(userID string) string {
	return chatChannelPrefix + userID
}

// OwnsChannel reports whether channel is one of userID's private channels.
func OwnsChannel(userID, channel string) bool {
	return channel == InboxChannel(userID) || channel == ChatChannel(userID)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.Centrifuge.BaseURL,
		apiKey:  cfg.Centrifuge.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Centrifuge.Timeout,
		},
	}
}

func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) Publish(ctx context.Context, channel string, data interface{}) error {
	payload := model.CentrifugoEvent{
		Method: publishMethod,
		Params: model.CentrifugoEventParams{
			Channel: channel,
			Data:    data,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "apikey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w: %w", model.ErrTransientIO, err)
	}
	defer resp.Body.Close() //nolint:errcheck // .

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, model.ErrTransientIO)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if errorData, exists := response["error"]; exists && errorData != nil {
		return fmt.Errorf("centrifugo error: %v", errorData)
	}

	return nil
}
