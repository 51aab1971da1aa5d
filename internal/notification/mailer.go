package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phegon/phegonbank/internal/logging"
)

// GatewayClient delivers rendered emails to an HTTP mail gateway. Locally the
// gateway is cmd/mock-mailer; in production it is whatever transactional mail
// service fronts SMTP.
type GatewayClient struct {
	baseURL    string
	from       string
	httpClient *http.Client
}

func NewGatewayClient(baseURL, from string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		from:    from,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type mailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *GatewayClient) Send(ctx context.Context, to, subject, body string) error {
	log := logging.FromContext(ctx)

	payload, err := json.Marshal(mailPayload{
		From:    c.from,
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("Send: marshal: %w", err)
	}

	url := c.baseURL + "/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("Send: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Send: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("mail gateway response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Send: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
