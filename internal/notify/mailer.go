package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/config"
)

// Message is a templated notification addressed to a single recipient.
type Message struct {
	TemplateKey string         `json:"template_key"`
	To          string         `json:"to"`
	ToName      string         `json:"to_name,omitempty"`
	Subject     string         `json:"subject"`
	Data        map[string]any `json:"data,omitempty"`
}

// Mailer dispatches a message to one recipient. Implementations must treat a
// failure as affecting that recipient only.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// webhookMailer forwards messages as JSON to the configured delivery webhook,
// logging the payload when no webhook is configured.
type webhookMailer struct {
	cfg    config.NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewMailer constructs the default mailer.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	return &webhookMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (m *webhookMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("message has no recipient address")
	}
	if strings.TrimSpace(m.cfg.WebhookURL) == "" {
		m.logger.Info("mail delivery (no webhook configured)",
			zap.String("template", msg.TemplateKey),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	payload := struct {
		From string `json:"from"`
		Message
	}{From: m.cfg.EmailFrom, Message: msg}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return fmt.Errorf("delivery webhook returned %d", resp.StatusCode)
	}
	return nil
}
