package mail

import (
	"context"
	"fmt"

	"ivyresort/internal/config"
	"ivyresort/internal/metrics"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
)

// Chain tries each transport in order, at most once per send, and stops
// at the first success. No retries, no backoff.
type Chain struct {
	fromName string
	senders  []Sender
	logger   *zerolog.Logger
}

func NewChain(fromName string, senders []Sender, logger *zerolog.Logger) *Chain {
	return &Chain{fromName: fromName, senders: senders, logger: logger}
}

// NewChainFromConfig wires the standard transport order: webhook when an
// endpoint is configured, SMTP when credentials are configured, and the
// outbox fallback last.
func NewChainFromConfig(cfg config.MailConfig, logger *zerolog.Logger) *Chain {
	var senders []Sender
	if cfg.WebhookURL != "" {
		senders = append(senders, NewWebhookSender(cfg.WebhookURL, cfg.WebhookToken))
	}
	if cfg.SMTP.Host != "" {
		senders = append(senders, NewSMTPSender(cfg.SMTP))
	}
	senders = append(senders, NewOutboxSender(logger))
	return NewChain(cfg.FromName, senders, logger)
}

// SendConfirmation renders and delivers the confirmation for a
// reservation. Validation failures return before any transport runs.
func (c *Chain) SendConfirmation(ctx context.Context, res *models.Reservation) error {
	msg, err := RenderConfirmation(res, c.fromName)
	if err != nil {
		return err
	}

	var lastErr error
	for _, sender := range c.senders {
		err := sender.Send(ctx, msg)
		if err == nil {
			metrics.IncEmail(sender.Name(), "ok")
			c.logger.Info().
				Str("transport", sender.Name()).
				Str("to", msg.Recipient).
				Str("confirmation_id", res.ConfirmationID).
				Msg("confirmation email sent")
			return nil
		}

		metrics.IncEmail(sender.Name(), "error")
		c.logger.Error().Err(err).
			Str("transport", sender.Name()).
			Str("confirmation_id", res.ConfirmationID).
			Msg("email transport failed, trying next")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no email transports configured")
	}
	return fmt.Errorf("all email transports failed: %w", lastErr)
}
