package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"go.uber.org/zap"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier posts text messages to a webhook endpoint such as a Feishu
// or Slack incoming webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *logger.Logger
}

// webhookPayload is the text message body understood by Feishu-style webhooks.
type webhookPayload struct {
	MsgType string         `json:"msg_type"`
	Content webhookContent `json:"content"`
}

type webhookContent struct {
	Text string `json:"text"`
}

// NewWebhookNotifier creates a webhook notifier with a bounded request timeout.
func NewWebhookNotifier(url string, logger *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
		logger: logger,
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, severity Severity, title, message string) error {
	payload := webhookPayload{
		MsgType: "text",
		Content: webhookContent{
			Text: fmt.Sprintf("[%s] %s\n%s", severity, title, message),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to encode webhook payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to build webhook request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to deliver webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf(errors.ErrCodeNotificationFailed, "webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("delivered notification",
		zap.String("title", title),
		zap.String("severity", string(severity)),
	)

	return nil
}
