package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-ok response from the Telegram Bot API. The status code
// and description are surfaced verbatim to single-destination relay callers.
type APIError struct {
	StatusCode  int    `json:"status_code"`
	Description string `json:"description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: %d %s", e.StatusCode, e.Description)
}

// apiEnvelope is the standard Bot API response wrapper.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Client calls the Telegram Bot API over HTTP. It is safe for concurrent use.
type Client struct {
	base   string // e.g. https://api.telegram.org
	token  string
	client *http.Client
}

// NewClient builds a Client for the given API base URL and bot token.
// The HTTP client timeout generously exceeds the long-poll wait so getUpdates
// can block server-side without tripping the transport.
func NewClient(base, token string, pollTimeout time.Duration) *Client {
	return &Client{
		base:  base,
		token: token,
		client: &http.Client{
			Timeout: pollTimeout + 15*time.Second,
		},
	}
}

// sendMessageRequest is the JSON body for the sendMessage method.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage delivers text to chatID with HTML formatting. On a non-ok API
// response it returns an *APIError carrying the upstream status and
// description.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*Message, error) {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode sendMessage response: %w", err)
	}
	if !env.OK {
		return nil, &APIError{StatusCode: resp.StatusCode, Description: env.Description}
	}

	var msg Message
	if err := json.Unmarshal(env.Result, &msg); err != nil {
		return nil, fmt.Errorf("decode sendMessage result: %w", err)
	}
	return &msg, nil
}

// GetUpdates long-polls for updates with update_id >= offset, waiting up to
// timeout server-side. The returned slice may be empty when the wait expires.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}
	if !env.OK {
		return nil, &APIError{StatusCode: resp.StatusCode, Description: env.Description}
	}

	var updates []Update
	if err := json.Unmarshal(env.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode getUpdates result: %w", err)
	}
	return updates, nil
}

// methodURL joins base, token, and method into a Bot API endpoint.
func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
}
