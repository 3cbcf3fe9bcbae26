package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"portfolio/internal/domain/lead"
)

const DefaultTimeout = 10 * time.Second

// Config holds the admin mail settings.
type Config struct {
	AdminEmail string
	FromEmail  string
	BaseURL    string
	Timeout    time.Duration
}

func (c Config) validate() error {
	switch {
	case c.AdminEmail == "":
		return fmt.Errorf("%w: ADMIN_EMAIL is empty", ErrNotConfigured)
	case c.FromEmail == "":
		return fmt.Errorf("%w: FROM_EMAIL is empty", ErrNotConfigured)
	}
	return nil
}

// Dispatcher sends the admin email for new leads in the background.
type Dispatcher struct {
	sender Sender
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

var _ lead.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. A nil sender makes every dispatch fail
// with ErrNotConfigured.
func NewDispatcher(sender Sender, cfg Config, logger zerolog.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger.With().Str("component", "notification").Logger(),
		now:    time.Now,
	}
}

// NotifyLead sends the notification on its own goroutine and returns at once.
// Failures are logged and never retried.
func (d *Dispatcher) NotifyLead(nl lead.NewLead) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Interface("panic", r).Int64("lead_id", nl.LeadID).Msg("admin notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
		defer cancel()

		if err := d.Dispatch(ctx, nl); err != nil {
			d.logger.Error().Err(err).Int64("lead_id", nl.LeadID).Msg("admin notification failed")
			return
		}
		d.logger.Info().Int64("lead_id", nl.LeadID).Msg("admin notification sent")
	}()
}

// Dispatch builds and sends the notification synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, nl lead.NewLead) error {
	if d.sender == nil {
		return fmt.Errorf("%w: no mail sender", ErrNotConfigured)
	}
	if err := d.cfg.validate(); err != nil {
		return err
	}

	email, err := BuildEmail(d.cfg, nl, d.now())
	if err != nil {
		return fmt.Errorf("build email: %w", err)
	}

	d.logger.Debug().
		Int64("lead_id", nl.LeadID).
		Str("subject", email.Subject).
		Int("body_len", len(email.Text)).
		Msg("sending admin notification")

	return d.sender.Send(ctx, email)
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
