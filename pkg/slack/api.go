package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	postMessagePath = "/chat.postMessage"
	timeout         = 3 * time.Second
	maxSize         = 64 * 1024 // 64 KiB.
)

// MessageSender is the outbound capability used by [MentionHandler].
type MessageSender interface {
	PostMessage(ctx context.Context, msg Message) error
}

// Message is the body of a https://docs.slack.dev/reference/methods/chat.postMessage call.
type Message struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type slackAPIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

// APIClient calls Slack Web API methods with a bot token.
type APIClient struct {
	baseURL  string
	botToken string
	client   *http.Client
}

func NewAPIClient(cfg Config) *APIClient {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &APIClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		botToken: cfg.BotToken,
		client:   http.DefaultClient,
	}
}

// PostMessage sends a message to a channel, and reports both
// HTTP errors and Slack API errors ("ok": false) as errors.
func (c *APIClient) PostMessage(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode JSON request body: %w", err)
	}

	// Construct and send the request.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+postMessagePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to construct HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	// Read and parse the response.
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		return fmt.Errorf("failed to read HTTP response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errMsg := resp.Status
		if len(body) > 0 {
			errMsg = fmt.Sprintf("%s: %s", errMsg, string(body))
		}
		return errors.New(errMsg)
	}

	decoded := &slackAPIResponse{}
	if err := json.Unmarshal(body, decoded); err != nil {
		return fmt.Errorf("failed to parse JSON in HTTP response body: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("Slack API error: %s", decoded.Error)
	}

	return nil
}
