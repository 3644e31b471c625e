package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIChannel posts to a transactional email HTTP API using a bearer key. The
// payload shape is the one Resend and compatible providers accept.
type APIChannel struct {
	URL    string
	Key    string
	From   string
	Client *http.Client
}

type apiPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

func NewAPIChannel(url, key, from string) *APIChannel {
	return &APIChannel{
		URL:    url,
		Key:    key,
		From:   from,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIChannel) Name() string { return "email_api" }

func (c *APIChannel) Send(ctx context.Context, e Email) error {
	body, err := json.Marshal(apiPayload{
		From:    c.From,
		To:      []string{e.To},
		Subject: e.Subject,
		Text:    e.Text,
		HTML:    e.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
