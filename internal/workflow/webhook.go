// internal/workflow/webhook.go
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	httpclient "chat-automation/internal/common/http"
	"chat-automation/internal/common/logger"
)

type webhookPayload struct {
	Intent    string                 `json:"intent"`
	Data      map[string]interface{} `json:"data"`
	UserID    string                 `json:"userId"`
	SessionID string                 `json:"sessionId"`
	Timestamp string                 `json:"timestamp"`
}

// WebhookExecutor posts approved actions to an n8n webhook.
type WebhookExecutor struct {
	url  string
	http *httpclient.Client
	log  logger.Logger
	now  func() time.Time
}

func NewWebhookExecutor(url string, timeout time.Duration, log logger.Logger) *WebhookExecutor {
	return &WebhookExecutor{
		url:  url,
		http: httpclient.NewClient(timeout),
		log:  log.With(map[string]interface{}{"component": "webhook_executor"}),
		now:  time.Now,
	}
}

func (e *WebhookExecutor) Send(ctx context.Context, params map[string]interface{}, userID, sessionID string) (*Result, error) {
	if e.url == "" {
		return nil, fmt.Errorf("%w: webhook url not configured", ErrExecutorFailed)
	}

	payload, err := json.Marshal(webhookPayload{
		Intent:    intentOf(params),
		Data:      params,
		UserID:    userID,
		SessionID: sessionID,
		Timestamp: e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrExecutorFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutorFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.DoWithContext(ctx, req)
	if err != nil {
		e.log.Error("webhook delivery failed", map[string]interface{}{
			"intent": intentOf(params),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrExecutorFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	result := &Result{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
	}

	var decoded interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			decoded = string(body)
		}
		result.Response = decoded
	}
	if !result.Success {
		result.Error = fmt.Sprintf("webhook returned status %d", resp.StatusCode)
	}

	e.log.Info("webhook delivered", map[string]interface{}{
		"intent":     intentOf(params),
		"statusCode": resp.StatusCode,
		"success":    result.Success,
	})
	return result, nil
}
