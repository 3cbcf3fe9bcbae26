package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/resendlabs/resend-go"
)

// ErrNotConfigured is returned when a required mail setting is missing.
var ErrNotConfigured = errors.New("notification: not configured")

// Email is a plain-text transactional message.
type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
}

// Sender delivers an Email. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender; apiKey must be set. Each API request is
// cut off after timeout (DefaultTimeout when not positive).
func NewResendSender(apiKey string, timeout time.Duration) (*ResendSender, error) {
	key := strings.Trim(strings.TrimSpace(apiKey), "'")
	if key == "" {
		return nil, fmt.Errorf("%w: RESEND_API_KEY is empty", ErrNotConfigured)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ResendSender{
		client: resend.NewCustomClient(&http.Client{Timeout: timeout}, key),
	}, nil
}

// Send posts the message. A non-2xx answer from Resend is returned as an error.
// Returning on ctx does not abort the request; the client timeout does.
func (s *ResendSender) Send(ctx context.Context, e Email) error {
	req := &resend.SendEmailRequest{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		Text:    e.Text,
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.client.Emails.Send(req)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email via Resend: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email via Resend: %w", ctx.Err())
	}
}
