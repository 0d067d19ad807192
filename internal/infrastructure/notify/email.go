// Package notify delivers routing notifications to tenant targets. Both
// senders are fire-and-forget from the pipeline's point of view: callers log
// failures and keep going.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailSender delivers routing notifications through Resend. A nil client
// (no API key configured) turns sends into no-ops.
type EmailSender struct {
	client *resend.Client
	from   string
}

func NewEmailSender(apiKey, from string) *EmailSender {
	if apiKey == "" {
		return &EmailSender{from: from}
	}
	return &EmailSender{client: resend.NewClient(apiKey), from: from}
}

func (s *EmailSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	if s.client == nil || len(recipients) == 0 {
		return nil
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      recipients,
		Subject: subject,
		Text:    body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}
