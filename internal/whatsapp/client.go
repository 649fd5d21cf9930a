// Package whatsapp delivers outbound messages through the WhatsApp
// Business API. Delivery is fire-and-forget from the core's perspective:
// failures are logged by callers, never propagated into cart state.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	tokens     TokenStore
	baseURL    string
	log        *slog.Logger
}

func NewClient(tokens TokenStore, baseURL string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
		baseURL:    baseURL,
		log:        log,
	}
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendMessage sends text to a customer through the business channel
// identified by phoneNumberID.
func (c *Client) SendMessage(ctx context.Context, phoneNumberID, to, text string) error {
	token, err := c.tokens.Token(ctx, phoneNumberID)
	if err != nil {
		return fmt.Errorf("failed to resolve channel token: %w", err)
	}

	payload := textPayload{MessagingProduct: "whatsapp", To: to}
	payload.Text.Body = text
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call whatsapp api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, detail)
	}

	c.log.Info("message delivered", "to", to, "channel", phoneNumberID)
	return nil
}
