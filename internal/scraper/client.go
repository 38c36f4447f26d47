// internal/scraper/client.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "chat-automation/internal/common/http"
	"chat-automation/internal/common/logger"
)

var (
	ErrScraperUnavailable = errors.New("SCRAPER_UNAVAILABLE")
	ErrScraperTimeout     = errors.New("SCRAPER_TIMEOUT")
)

// Result is the browser-automation service's reply. Success=false is a
// reported failure, not a transport error.
type Result struct {
	Success       bool                   `json:"success"`
	Data          map[string]interface{} `json:"data"`
	Message       string                 `json:"message"`
	ExecutionTime float64                `json:"executionTime"`
}

type Client struct {
	http    *httpclient.Client
	baseURL string
	log     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, log logger.Logger) *Client {
	return &Client{
		http:    httpclient.NewClient(timeout).WithRetries(maxRetries),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With(map[string]interface{}{"component": "scraper"}),
	}
}

// ExtractData loads url, optionally waits for waitFor to appear, and returns
// the text matched by each named CSS selector.
func (c *Client) ExtractData(ctx context.Context, url string, selectors map[string]interface{}, waitFor string) (*Result, error) {
	if selectors == nil {
		selectors = map[string]interface{}{}
	}
	return c.call(ctx, "/api/scrape/extract", map[string]interface{}{
		"url":       url,
		"selectors": selectors,
		"waitFor":   waitFor,
	})
}

func (c *Client) ScrapeLinkedInInsights(ctx context.Context, email, password, insightType string) (*Result, error) {
	if insightType == "" {
		insightType = "notifications"
	}
	return c.call(ctx, "/api/scrape/linkedin", map[string]interface{}{
		"email":       email,
		"password":    password,
		"insightType": insightType,
	})
}

func (c *Client) AutomateEmail(ctx context.Context, provider, email, password, action string, params map[string]interface{}) (*Result, error) {
	if action == "" {
		action = "check_inbox"
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return c.call(ctx, "/api/scrape/email", map[string]interface{}{
		"provider":     provider,
		"email":        email,
		"password":     password,
		"action":       action,
		"actionParams": params,
	})
}

func (c *Client) MonitorPrice(ctx context.Context, productURL, priceSelector, productName string) (*Result, error) {
	return c.call(ctx, "/api/scrape/price", map[string]interface{}{
		"productUrl":    productURL,
		"priceSelector": priceSelector,
		"productName":   productName,
	})
}

func (c *Client) call(ctx context.Context, path string, body map[string]interface{}) (*Result, error) {
	start := time.Now()

	var result Result
	err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+path, nil, body, &result)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) {
			return nil, ErrScraperTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrScraperUnavailable, err)
	}

	if result.Data == nil {
		result.Data = map[string]interface{}{}
	}
	if result.ExecutionTime == 0 {
		result.ExecutionTime = time.Since(start).Seconds()
	}

	c.log.Info("scrape completed", map[string]interface{}{
		"path":          path,
		"success":       result.Success,
		"executionTime": result.ExecutionTime,
	})
	return &result, nil
}
