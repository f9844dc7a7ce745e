// Package webhook delivers messages to a configured HTTP endpoint, signing
// each request with a short-lived token so receivers can verify origin.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 5 * time.Minute

// Sender is the webhook delivery provider.
type Sender struct {
	httpClient *http.Client
	url        string
	signingKey []byte
}

func NewSender(cfg *config.Config) (*Sender, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is not set")
	}
	if cfg.WebhookSigningKey == "" {
		return nil, fmt.Errorf("WEBHOOK_SIGNING_KEY is not set")
	}
	return &Sender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		url:        cfg.WebhookURL,
		signingKey: []byte(cfg.WebhookSigningKey),
	}, nil
}

func (s *Sender) Send(ctx context.Context, msg *domain.RankedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "go-notify-dispatch",
		"sub": msg.Event.EventID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return fmt.Errorf("sign webhook token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook endpoint: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
