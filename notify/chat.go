package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ontora-ai/pipelines/errors"
)

const (
	defaultAPIURL  = "https://slack.com/api/chat.postMessage"
	defaultTimeout = 10 * time.Second
)

// Chat posts messages to a Slack-compatible chat API using a bot token.
type Chat struct {
	token   string
	apiURL  string
	client  *http.Client
	channel string
}

// ChatOption configures a Chat notifier.
type ChatOption func(*Chat)

// WithAPIURL overrides the chat API endpoint. Used by tests.
func WithAPIURL(url string) ChatOption {
	return func(c *Chat) { c.apiURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ChatOption {
	return func(c *Chat) { c.client = client }
}

// NewChat creates a chat notifier. The default channel is used when a
// message leaves Channel empty.
func NewChat(token, defaultChannel string, opts ...ChatOption) (*Chat, error) {
	if token == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "chat token cannot be empty")
	}

	c := &Chat{
		token:   token,
		apiURL:  defaultAPIURL,
		client:  &http.Client{Timeout: defaultTimeout},
		channel: defaultChannel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatPayload struct {
	Channel     string           `json:"channel"`
	Text        string           `json:"text"`
	Attachments []chatAttachment `json:"attachments,omitempty"`
}

type chatAttachment struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

type chatResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Notify implements Notifier.
func (c *Chat) Notify(ctx context.Context, msg Message) error {
	channel := msg.Channel
	if channel == "" {
		channel = c.channel
	}

	color := "#2eb67d"
	if !msg.Success {
		color = "#e01e5a"
	}

	payload := chatPayload{
		Channel: channel,
		Text:    msg.Title,
	}
	if msg.Text != "" {
		payload.Attachments = []chatAttachment{{Color: color, Text: msg.Text}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build notification request")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "failed to deliver notification")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.CodeNetwork, "chat API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "failed to read chat API response")
	}

	var result chatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "failed to decode chat API response")
	}
	if !result.OK {
		return errors.New(errors.CodeNetwork, fmt.Sprintf("chat API rejected message: %s", result.Error))
	}
	return nil
}
