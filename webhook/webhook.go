// Package webhook reports judged submissions to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/use-agent/algoserve/config"
)

// EventJudged is sent once a submission has a final verdict.
const EventJudged = "submission.judged"

// SignatureHeader carries "sha256=" and the hex HMAC-SHA256 of the body.
const SignatureHeader = "X-Algoserve-Signature"

// Event is the payload posted to the endpoint.
type Event struct {
	Type         string `json:"type"`
	SubmissionID string `json:"submission_id"`
	Timestamp    int64  `json:"timestamp"`
	Data         any    `json:"data"`
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Notifier posts judged verdicts to one endpoint.
type Notifier struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

// NewNotifier returns nil when no endpoint is configured.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	if cfg.URL == "" {
		return nil
	}
	return &Notifier{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// URL is the configured endpoint.
func (n *Notifier) URL() string { return n.url }

// Judged reports the verdict of submissionID. The body is signed when a
// secret is set; any non-2xx answer is an error.
func (n *Notifier) Judged(ctx context.Context, submissionID string, verdict any) error {
	body, err := json.Marshal(Event{
		Type:         EventJudged,
		SubmissionID: submissionID,
		Timestamp:    n.now().Unix(),
		Data:         verdict,
	})
	if err != nil {
		return fmt.Errorf("webhook: encode %s: %w", EventJudged, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post %s: %w", EventJudged, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: %s answered %s", n.url, resp.Status)
	}
	return nil
}
