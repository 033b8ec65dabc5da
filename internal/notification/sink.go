package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Sink hands a rendered message to the chat gateway or wherever it goes.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// LogSink writes messages to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		"intent_id", msg.IntentID,
		"kind", msg.Kind,
		"recipient_id", msg.RecipientID,
		"text", msg.Text)
	return nil
}

type WebhookConfig struct {
	URL        string
	MaxRetries uint64
	Backoff    time.Duration
	Timeout    time.Duration
}

// WebhookSink POSTs each message as JSON, retrying transport errors, 429 and 5xx.
type WebhookSink struct {
	url        string
	client     *http.Client
	maxRetries uint64
	backoff    time.Duration
	logger     *slog.Logger
}

func NewWebhookSink(cfg WebhookConfig, client *http.Client, logger *slog.Logger) *WebhookSink {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &WebhookSink{
		url:        cfg.URL,
		client:     client,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

func (s *WebhookSink) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	b := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.backoff))
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Intent-ID", msg.IntentID)

		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Debug("webhook delivery attempt failed", "attempt", attempt, "intent_id", msg.IntentID, "error", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			s.logger.Debug("webhook delivery attempt rejected", "attempt", attempt, "intent_id", msg.IntentID, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
		case resp.StatusCode >= 300:
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	})
}
