package vestaboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// BaseURL is the Vestaboard Read/Write API endpoint.
	BaseURL = "https://rw.vestaboard.com/"
)

// Client talks to the Vestaboard Read/Write API.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Vestaboard client using the given read/write key.
func NewClient(key string) *Client {
	return &Client{
		key:     key,
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if the client has a key.
func (c *Client) IsConfigured() bool {
	return c.key != ""
}

// SetBaseURL overrides the API endpoint (used in tests).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type message struct {
	Text string `json:"text"`
}

// SendText writes the given text to the board. The board applies its own
// layout rules; this client just delivers the string.
func (c *Client) SendText(ctx context.Context, text string) error {
	payload, err := json.Marshal(message{Text: text})
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Vestaboard-Read-Write-Key", c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
