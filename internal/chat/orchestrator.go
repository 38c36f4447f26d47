// internal/chat/orchestrator.go
package chat

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"chat-automation/internal/automation"
	"chat-automation/internal/classifier"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/metrics"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"

	"github.com/google/uuid"
)

type Classifier interface {
	Classify(ctx context.Context, message, sessionID string) (*classifier.Result, error)
}

type Scraper interface {
	ExtractData(ctx context.Context, url string, selectors map[string]interface{}, waitFor string) (*scraper.Result, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, record automation.IntentRecord) automation.Envelope
	Registry() *automation.Registry
}

type RoutingRecorder interface {
	Record(ctx context.Context, sessionID, primaryModel string) error
}

type LogRecorder interface {
	Record(ctx context.Context, entry *models.AutomationLogEntry) error
}

// Orchestrator turns one chat message into a persisted conversation turn.
type Orchestrator struct {
	classifier Classifier
	dispatcher Dispatcher
	scraper    Scraper
	turns      models.ConversationRepository
	logs       LogRecorder
	routing    RoutingRecorder
	log        logger.Logger
	now        func() time.Time
}

func NewOrchestrator(
	cls Classifier,
	dispatcher Dispatcher,
	scr Scraper,
	turns models.ConversationRepository,
	logs LogRecorder,
	routing RoutingRecorder,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: cls,
		dispatcher: dispatcher,
		scraper:    scr,
		turns:      turns,
		logs:       logs,
		routing:    routing,
		log:        log.With(map[string]interface{}{"component": "chat_orchestrator"}),
		now:        time.Now,
	}
}

// HandleMessage classifies message, runs direct or eager automation when the
// intent allows it, and stores the resulting turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, message, sessionID, userID string) (*models.ConversationTurn, error) {
	if userID == "" {
		userID = models.DefaultUserID
	}

	result, err := o.classifier.Classify(ctx, message, sessionID)
	if err != nil {
		if stderrors.Is(err, classifier.ErrClassifierTimeout) {
			return nil, errors.NewClassifierTimeoutError()
		}
		return nil, errors.NewClassificationFailedError(err)
	}

	record := result.Intent
	if record.Intent == "" {
		record = record.With("intent", string(automation.IntentGeneralChat))
	}
	o.recordRouting(ctx, sessionID, record, result.Routing)

	response := result.ResponseText
	needsApproval := record.Intent != automation.IntentGeneralChat
	route := metrics.RouteApproval
	if !needsApproval {
		route = metrics.RouteChat
	}

	switch {
	case o.dispatcher.Registry().IsDirect(record.Intent):
		response, record = o.runDirect(ctx, sessionID, record)
		needsApproval = false
		route = metrics.RouteDirect

	case record.Intent == automation.IntentWebScraping && record.String("url", "") != "":
		var scraped bool
		response, record, scraped = o.runEager(ctx, sessionID, response, record)
		if scraped {
			needsApproval = false
			route = metrics.RouteEager
		}
	}

	turn := &models.ConversationTurn{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		UserID:        userID,
		Message:       message,
		Response:      response,
		IntentData:    &record,
		NeedsApproval: needsApproval,
		Timestamp:     o.now().UTC(),
	}
	if !needsApproval {
		turn.Approved = models.BoolPtr(true)
	}

	if err := o.turns.Create(ctx, turn); err != nil {
		return nil, errors.NewPersistenceFailedError("create_turn", err)
	}

	metrics.ChatTurns.WithLabelValues(route).Inc()
	o.log.Info("chat turn stored", map[string]interface{}{
		"turnId":        turn.ID,
		"sessionId":     sessionID,
		"intent":        string(record.Intent),
		"route":         route,
		"needsApproval": needsApproval,
	})
	return turn, nil
}

func (o *Orchestrator) recordRouting(ctx context.Context, sessionID string, record automation.IntentRecord, routing classifier.RoutingDecision) {
	o.log.Info("routing decision", map[string]interface{}{
		"sessionId":    sessionID,
		"intent":       string(record.Intent),
		"primaryModel": routing.PrimaryModel,
		"confidence":   routing.Confidence,
		"reasoning":    routing.Reasoning,
	})

	if o.routing == nil {
		return
	}
	if err := o.routing.Record(ctx, sessionID, routing.PrimaryModel); err != nil {
		o.log.Warn("failed to record routing stats", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}

func (o *Orchestrator) runDirect(ctx context.Context, sessionID string, record automation.IntentRecord) (string, automation.IntentRecord) {
	env := o.dispatcher.Dispatch(ctx, record)

	o.writeLog(ctx, &models.AutomationLogEntry{
		SessionID:      sessionID,
		AutomationType: string(record.Intent),
		Parameters:     record.Map(),
		Result:         env.Data,
		Success:        env.Success,
		Message:        env.Message,
		ExecutionTime:  env.ExecutionTimeSeconds,
	})

	return env.Message, record.Merge(map[string]interface{}{
		"automationResult":  env.Data,
		"automationSuccess": env.Success,
		"executionTime":     env.ExecutionTimeSeconds,
		"directAutomation":  true,
	})
}

// runEager scrapes the record's url inline. The bool result reports whether
// the scrape succeeded.
func (o *Orchestrator) runEager(ctx context.Context, sessionID, response string, record automation.IntentRecord) (string, automation.IntentRecord, bool) {
	url := record.String("url", "")
	selectors := map[string]interface{}{}
	if v, ok := record.Param("selectors"); ok {
		if m, ok := v.(map[string]interface{}); ok {
			selectors = m
		}
	}

	res, err := o.scraper.ExtractData(ctx, url, selectors, record.String("wait_for_element", ""))
	if err != nil {
		o.log.Error("eager web scraping failed", map[string]interface{}{
			"sessionId": sessionID,
			"url":       url,
			"error":     err.Error(),
		})
		return response + fmt.Sprintf("\n\n❌ **Automation Error:** %s", err.Error()), record, false
	}

	if !res.Success {
		return response + fmt.Sprintf("\n\n⚠️ **Scraping Error:** %s", res.Message),
			record.With("automationError", res.Message), false
	}

	pretty, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		pretty = []byte("{}")
	}

	o.writeLog(ctx, &models.AutomationLogEntry{
		SessionID:      sessionID,
		AutomationType: string(automation.IntentWebScraping),
		Parameters:     record.Map(),
		Result:         res.Data,
		Success:        true,
		Message:        res.Message,
		ExecutionTime:  res.ExecutionTime,
	})

	return response + "\n\n🔍 **Web Scraping Results:**\n" + string(pretty),
		record.Merge(map[string]interface{}{
			"automationResult":  res.Data,
			"automationSuccess": true,
		}), true
}

func (o *Orchestrator) writeLog(ctx context.Context, entry *models.AutomationLogEntry) {
	if o.logs == nil {
		return
	}
	if err := o.logs.Record(ctx, entry); err != nil {
		o.log.Warn("failed to write automation log", map[string]interface{}{
			"sessionId":      entry.SessionID,
			"automationType": entry.AutomationType,
			"error":          err.Error(),
		})
	}
}
