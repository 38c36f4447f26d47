// internal/api/automation.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"chat-automation/internal/automation"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/validation"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"
	"chat-automation/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AutomationWebScraping     = "web_scraping"
	AutomationDataExtraction  = "data_extraction"
	AutomationLinkedIn        = "linkedin_insights"
	AutomationEmail           = "email_automation"
	AutomationPriceMonitoring = "price_monitoring"
)

type WebAutomationRequest struct {
	SessionID      string                 `json:"sessionId"`
	AutomationType string                 `json:"automationType" binding:"required"`
	Parameters     map[string]interface{} `json:"parameters"`
}

type WebAutomationResponse struct {
	Success       bool                   `json:"success"`
	Data          map[string]interface{} `json:"data"`
	Message       string                 `json:"message"`
	ExecutionTime float64                `json:"executionTime"`
	AutomationID  string                 `json:"automationId"`
}

type webAutomation struct {
	schema  *validation.Schema
	invalid string
	run     func(h *Handler, c *gin.Context, p map[string]interface{}) (*scraper.Result, error)
}

var scrapeSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["url", "selectors"],
	"properties": {
		"url": {"type": "string", "minLength": 1},
		"selectors": {"type": "object", "minProperties": 1},
		"wait_for_element": {"type": "string"}
	}
}`)

var webAutomations = map[string]webAutomation{
	AutomationWebScraping: {
		schema:  scrapeSchema,
		invalid: "URL and selectors are required for web scraping",
		run:     runExtract,
	},
	AutomationDataExtraction: {
		schema:  scrapeSchema,
		invalid: "URL and selectors are required for web scraping",
		run:     runExtract,
	},
	AutomationLinkedIn: {
		schema: validation.MustCompile(`{
			"type": "object",
			"required": ["email", "password"],
			"properties": {
				"email": {"type": "string", "minLength": 1},
				"password": {"type": "string", "minLength": 1},
				"insight_type": {"type": "string"}
			}
		}`),
		invalid: "LinkedIn email and password are required",
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (*scraper.Result, error) {
			return h.deps.Scraper.ScrapeLinkedInInsights(c.Request.Context(),
				stringParam(p, "email", ""), stringParam(p, "password", ""), stringParam(p, "insight_type", "notifications"))
		},
	},
	AutomationEmail: {
		schema: validation.MustCompile(`{
			"type": "object",
			"required": ["provider", "email", "password"],
			"properties": {
				"provider": {"type": "string", "minLength": 1},
				"email": {"type": "string", "minLength": 1},
				"password": {"type": "string", "minLength": 1},
				"action": {"type": "string"},
				"action_params": {"type": "object"}
			}
		}`),
		invalid: "Provider, email, and password are required",
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (*scraper.Result, error) {
			return h.deps.Scraper.AutomateEmail(c.Request.Context(),
				stringParam(p, "provider", ""), stringParam(p, "email", ""), stringParam(p, "password", ""),
				stringParam(p, "action", "check_inbox"), mapParam(p, "action_params"))
		},
	},
	AutomationPriceMonitoring: {
		schema: validation.MustCompile(`{
			"type": "object",
			"required": ["product_url", "price_selector"],
			"properties": {
				"product_url": {"type": "string", "minLength": 1},
				"price_selector": {"type": "string", "minLength": 1},
				"product_name": {"type": "string"}
			}
		}`),
		invalid: "Product URL and price selector are required",
		run: func(h *Handler, c *gin.Context, p map[string]interface{}) (*scraper.Result, error) {
			return h.deps.Scraper.MonitorPrice(c.Request.Context(),
				stringParam(p, "product_url", ""), stringParam(p, "price_selector", ""), stringParam(p, "product_name", ""))
		},
	},
}

func runExtract(h *Handler, c *gin.Context, p map[string]interface{}) (*scraper.Result, error) {
	return h.deps.Scraper.ExtractData(c.Request.Context(),
		stringParam(p, "url", ""), mapParam(p, "selectors"), stringParam(p, "wait_for_element", ""))
}

// WebAutomation handles POST /api/web-automation.
func (h *Handler) WebAutomation(c *gin.Context) {
	var req WebAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationFailedError(err.Error()))
		return
	}

	wa, ok := webAutomations[req.AutomationType]
	if !ok {
		errors.Respond(c, errors.NewValidationFailedError(
			fmt.Sprintf("Unsupported automation type: %s", req.AutomationType)))
		return
	}

	if res := wa.schema.Validate(req.Parameters); !res.Valid {
		errors.Respond(c, errors.NewValidationFailedError(wa.invalid).
			WithMetadata("errors", res.GetErrorMessages()))
		return
	}

	h.log.Info("web automation requested", map[string]interface{}{
		"sessionId":      req.SessionID,
		"automationType": req.AutomationType,
	})

	result, err := wa.run(h, c, req.Parameters)
	if err != nil {
		errors.Respond(c, errors.NewScraperFailedError(err))
		return
	}

	entry := &models.AutomationLogEntry{
		ID:             uuid.NewString(),
		SessionID:      req.SessionID,
		AutomationType: req.AutomationType,
		Parameters:     req.Parameters,
		Result:         result.Data,
		Success:        result.Success,
		Message:        result.Message,
		ExecutionTime:  result.ExecutionTime,
	}
	if err := h.deps.Recorder.Record(c.Request.Context(), entry); err != nil {
		errors.Respond(c, errors.NewPersistenceFailedError("insert_automation_log", err))
		return
	}

	c.JSON(http.StatusOK, WebAutomationResponse{
		Success:       result.Success,
		Data:          result.Data,
		Message:       result.Message,
		ExecutionTime: result.ExecutionTime,
		AutomationID:  entry.ID,
	})
}

// AutomationHistory handles GET /api/automation-history/:sessionId. With ?q=
// the search index is queried instead of Postgres.
func (h *Handler) AutomationHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")
	query := c.Query("q")
	ctx := c.Request.Context()

	var (
		entries []*models.AutomationLogEntry
		err     error
	)
	if query != "" && h.deps.LogSearch != nil {
		entries, err = h.deps.LogSearch.Search(ctx, sessionID, query, store.DefaultLogLimit)
		if err != nil {
			errors.Respond(c, errors.NewSearchQueryFailedError("automation_logs", err))
			return
		}
	} else {
		entries, err = h.deps.Logs.ListBySession(ctx, sessionID, store.DefaultLogLimit)
		if err != nil {
			errors.Respond(c, errors.NewPersistenceFailedError("list_automation_logs", err))
			return
		}
	}

	if entries == nil {
		entries = []*models.AutomationLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"automationHistory": entries})
}

// AutomationStatus handles GET /api/automation-status/:intent.
func (h *Handler) AutomationStatus(c *gin.Context) {
	intent := automation.Intent(c.Param("intent"))

	c.JSON(http.StatusOK, gin.H{
		"intent":             intent,
		"statusMessage":      h.deps.Registry.StatusMessage(intent),
		"isDirectAutomation": h.deps.Registry.IsDirect(intent),
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

// RoutingStats handles GET /api/routing-stats/:sessionId.
func (h *Handler) RoutingStats(c *gin.Context) {
	sessionID := c.Param("sessionId")

	stats := map[string]int64{}
	if h.deps.Routing != nil {
		var err error
		stats, err = h.deps.Routing.Get(c.Request.Context(), sessionID)
		if err != nil {
			errors.Respond(c, errors.NewExternalServiceError("redis", err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":         sessionID,
		"routingStatistics": stats,
	})
}

func stringParam(p map[string]interface{}, key, def string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return def
}

func mapParam(p map[string]interface{}, key string) map[string]interface{} {
	if m, ok := p[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func intParam(p map[string]interface{}, key string, def int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
