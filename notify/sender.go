package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	if sent == nil || sent.Id == "" {
		return fmt.Errorf("send email to %s: provider returned no id", to)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them. It is used
// when no provider key is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log.With("component", "mailer")}
}

func (s *LogSender) Send(_ context.Context, to, subject, html string) error {
	s.log.Info("Email not delivered, no provider configured", "to", to, "subject", subject, "bytes", len(html))
	return nil
}
