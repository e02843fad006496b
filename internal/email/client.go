package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/subledger/subledger/internal/config"
	ierr "github.com/subledger/subledger/internal/errors"
)

// EmailClient wraps the resend API client.
type EmailClient struct {
	client      *resend.Client
	fromAddress string
	enabled     bool
}

// NewEmailClient creates a new email client from configuration. When email
// is disabled the client is a no-op and sends are skipped.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	c := &EmailClient{
		fromAddress: cfg.Email.FromEmail,
		enabled:     cfg.Email.Enabled && cfg.Email.APIKey != "",
	}
	if c.enabled {
		c.client = resend.NewClient(cfg.Email.APIKey)
	}
	return c
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends one email and returns the provider message ID.
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			Mark(ierr.ErrHTTPClient)
	}

	return sent.Id, nil
}
