// Package final holds built-in final add-ons: notifications fired once a
// run's report is fully assembled.
package final

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blackcoderx/diffrun/pkg/addon"
)

// WebhookConfig configures the Webhook add-on.
type WebhookConfig struct {
	URL string
}

// Webhook POSTs the completed report as JSON to a configured URL —
// notification fan-out the teacher does with external services (issue
// trackers, chat webhooks) generalized to this run's own report payload.
// Grounded on spec.md's "final" stage notifier description; no single
// teacher file covers outbound webhooks, so this follows the teacher's
// general httpTool-less outbound call convention using stdlib net/http
// directly, same as its own simpler tools do for one-shot requests.
type Webhook struct {
	Config WebhookConfig
	client *http.Client
}

// NewWebhook constructs a Webhook add-on from raw config.
func NewWebhook(cfg map[string]interface{}) (*Webhook, error) {
	url, _ := cfg["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("final/webhook: url is required")
	}
	return &Webhook{
		Config: WebhookConfig{URL: url},
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (w *Webhook) Exec(ctx context.Context, p addon.FinalPayload, _ addon.FinalReference) (addon.FinalPayload, error) {
	body, err := json.Marshal(p.Report)
	if err != nil {
		return p, fmt.Errorf("marshaling report for webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Config.URL, bytes.NewReader(body))
	if err != nil {
		return p, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return p, fmt.Errorf("posting report to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return p, fmt.Errorf("webhook %s responded %d", w.Config.URL, resp.StatusCode)
	}

	return p, nil
}
