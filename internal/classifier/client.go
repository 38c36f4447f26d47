// internal/classifier/client.go
package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "chat-automation/internal/common/http"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/automation"
)

var (
	ErrClassificationFailed = errors.New("CLASSIFICATION_FAILED")
	ErrClassifierTimeout    = errors.New("CLASSIFIER_TIMEOUT")
)

type RoutingDecision struct {
	PrimaryModel string  `json:"primaryModel"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Result is the classifier's verdict for a single message.
type Result struct {
	Intent       automation.IntentRecord `json:"intentData"`
	ResponseText string                  `json:"response"`
	Routing      RoutingDecision         `json:"routing"`
}

type classifyRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Client calls the external intent classification service.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	log     logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries int, log logger.Logger) *Client {
	return &Client{
		http:    httpclient.NewClient(timeout).WithRetries(maxRetries),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log.With(map[string]interface{}{"component": "classifier"}),
	}
}

func (c *Client) Classify(ctx context.Context, message, sessionID string) (*Result, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var result Result
	err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/api/ai/classify", headers,
		classifyRequest{Message: message, SessionID: sessionID}, &result)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) {
			return nil, ErrClassifierTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	if result.Intent.Intent == "" {
		result.Intent = result.Intent.With("intent", string(automation.IntentGeneralChat))
	}

	c.log.Debug("message classified", map[string]interface{}{
		"sessionId":  sessionID,
		"intent":     string(result.Intent.Intent),
		"confidence": result.Intent.Confidence,
	})
	return &result, nil
}
