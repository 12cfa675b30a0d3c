// Package deploy asks the remote form backend to pick up a new
// configuration. What a redeploy does on the far side is opaque here.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

type Trigger interface {
	Redeploy(ctx context.Context) error
}

// Noop accepts every redeploy. Used when no deploy hook is configured.
type Noop struct{}

func (Noop) Redeploy(ctx context.Context) error {
	log.Printf("[Deploy] no deploy hook configured, skipping redeploy")
	return nil
}

type hookRequest struct {
	Description string    `json:"description"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Webhook posts a JSON notice to a deploy hook URL. Any non-2xx answer is
// an error.
type Webhook struct {
	URL        string
	Token      string
	HTTPClient *http.Client
	Now        func() time.Time
}

func NewWebhook(url, token string) *Webhook {
	return &Webhook{
		URL:        url,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Now:        time.Now,
	}
}

func (w *Webhook) Redeploy(ctx context.Context) error {
	now := w.Now().UTC()
	payload, err := json.Marshal(hookRequest{
		Description: "Deploy from admin console: " + now.Format(time.RFC3339),
		RequestedAt: now,
	})
	if err != nil {
		return fmt.Errorf("deploy: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Token)
	}

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("deploy: calling hook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("deploy: hook returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	log.Printf("[Deploy] redeploy requested (HTTP %d)", resp.StatusCode)
	return nil
}
