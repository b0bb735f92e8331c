// pkg/alert/webhook.go - one-line failure notifications to a messaging webhook

package alert

import (
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const messagePrefix = "Spotify Tracker Failed:\n"

// Sink posts failure messages to a Discord-style webhook. A sink built with
// an empty URL is a no-op, so callers never need to nil-check.
type Sink struct {
	webhookURL string
	client     *resty.Client
}

// NewSink builds a sink for the given webhook URL.
func NewSink(webhookURL string) *Sink {
	return &Sink{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(10 * time.Second),
	}
}

// Notify sends one message. Delivery failures are logged and swallowed: the
// alert channel must never mask the error that triggered it, and there is no
// retry.
func (s *Sink) Notify(message string) {
	if s.webhookURL == "" {
		slog.Debug("alert webhook not configured, skipping notification")
		return
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"content": messagePrefix + message}).
		Post(s.webhookURL)
	if err != nil {
		slog.Error("failed to send alert", "error", err)
		return
	}

	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		slog.Info("alert sent successfully")
	} else {
		slog.Error("failed to send alert", "status", resp.StatusCode())
	}
}
