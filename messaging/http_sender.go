package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPSender forwards messages to the notification gateway's REST API.
type HTTPSender struct {
	baseURL    string
	senderID   string
	httpClient *http.Client
}

func NewHTTPSender(baseURL, senderID string) *HTTPSender {
	return &HTTPSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		senderID:   senderID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) SendSMS(ctx context.Context, numbers []string, text string) error {
	return s.post(ctx, "/sms", map[string]any{
		"sender":  s.senderID,
		"numbers": numbers,
		"text":    text,
	})
}

func (s *HTTPSender) SendPush(ctx context.Context, tokens []string, message PushMessage) error {
	return s.post(ctx, "/push", map[string]any{
		"tokens": tokens,
		"title":  message.Title,
		"body":   message.Body,
		"data":   message.Data,
	})
}

func (s *HTTPSender) post(ctx context.Context, path string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("gateway request: unexpected status %d", res.StatusCode)
	}

	return nil
}
