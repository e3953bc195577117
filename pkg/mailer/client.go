// Package mailer sends notification emails through a Mailgun-style REST API.
// Dispatch is fire-and-forget: no delivery confirmation is consumed.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier defines the interface for an email notifier.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Config holds the mail API settings.
type Config struct {
	BaseURL string
	APIKey  string
	From    string
}

type client struct {
	http *resty.Client
	from string
}

// NewClient creates a new mail API client.
func NewClient(cfg Config) Notifier {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth("api", cfg.APIKey).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &client{http: httpClient, from: cfg.From}
}

// Send posts one message to the mail API.
func (c *client) Send(ctx context.Context, to, subject, htmlBody string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"from":    c.from,
			"to":      to,
			"subject": subject,
			"html":    htmlBody,
		}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
