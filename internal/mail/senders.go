package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"ivyresort/internal/config"

	"github.com/rs/zerolog"
)

// Sender is one transport in the delivery chain.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// WebhookSender posts the rendered message to an external email endpoint.
type WebhookSender struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhookSender(url, token string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) Name() string { return "webhook" }

func (s *WebhookSender) Send(ctx context.Context, msg *Message) error {
	payload := map[string]string{
		"to":      msg.Recipient,
		"subject": msg.Subject,
		"text":    msg.Text,
		"html":    msg.HTML,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected message: status %d", resp.StatusCode)
	}
	return nil
}

// SMTPSender delivers the message as a multipart/alternative email.
type SMTPSender struct {
	cfg config.SMTPConfig
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.cfg.Host == "" || s.cfg.Port == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("smtp is not configured")
	}

	from := fmt.Sprintf("%s <%s>", msg.FromName, s.cfg.Username)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	boundary := "----=_IVY_EMAIL_BOUNDARY"

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", msg.Recipient))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.Text + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := s.send(addr, auth, s.cfg.Username, []string{msg.Recipient}, []byte(sb.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// OutboxSender is the terminal fallback: it logs the full rendered
// message so staff can complete delivery by hand. Always succeeds.
type OutboxSender struct {
	logger *zerolog.Logger
}

func NewOutboxSender(logger *zerolog.Logger) *OutboxSender {
	return &OutboxSender{logger: logger}
}

func (s *OutboxSender) Name() string { return "outbox" }

func (s *OutboxSender) Send(ctx context.Context, msg *Message) error {
	s.logger.Warn().
		Str("to", msg.Recipient).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("confirmation email dropped to outbox, deliver manually")
	return nil
}
