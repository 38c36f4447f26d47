// internal/api/handler.go
package api

import (
	"context"

	"chat-automation/internal/approval"
	"chat-automation/internal/automation"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/mailbox"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"
)

type ChatService interface {
	HandleMessage(ctx context.Context, message, sessionID, userID string) (*models.ConversationTurn, error)
}

type ApprovalService interface {
	Resolve(ctx context.Context, turnID string, approved bool, edited map[string]interface{}) (*approval.Resolution, error)
}

type LogRecorder interface {
	Record(ctx context.Context, entry *models.AutomationLogEntry) error
}

type RoutingStats interface {
	Get(ctx context.Context, sessionID string) (map[string]int64, error)
}

type Scraper interface {
	ExtractData(ctx context.Context, url string, selectors map[string]interface{}, waitFor string) (*scraper.Result, error)
	ScrapeLinkedInInsights(ctx context.Context, email, password, insightType string) (*scraper.Result, error)
	AutomateEmail(ctx context.Context, provider, email, password, action string, params map[string]interface{}) (*scraper.Result, error)
	MonitorPrice(ctx context.Context, productURL, priceSelector, productName string) (*scraper.Result, error)
}

type Mailbox interface {
	EnsureAuthenticated(ctx context.Context) error
	IsAuthenticated() bool
	InboxMessages(ctx context.Context, maxResults int, query string) (*mailbox.MessageList, error)
	SearchMessages(ctx context.Context, query string, maxResults int) (*mailbox.MessageList, error)
	UnreadCount(ctx context.Context) (*mailbox.UnreadCount, error)
	Send(ctx context.Context, req mailbox.SendRequest) (*mailbox.SendResult, error)
	MarkRead(ctx context.Context, ids []string) (*mailbox.MarkReadResult, error)
	Profile(ctx context.Context) (*mailbox.Profile, error)
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Deps collects everything the handlers need. LogSearch and Routing may be
// nil when Elasticsearch or Redis are not configured.
type Deps struct {
	Chat      ChatService
	Approvals ApprovalService
	Turns     models.ConversationRepository
	Logs      models.AutomationLogRepository
	LogSearch models.AutomationLogSearcher
	Recorder  LogRecorder
	Routing   RoutingStats
	Scraper   Scraper
	Mailbox   Mailbox
	Registry  *automation.Registry
	Health    map[string]HealthCheck
	Version   string
}

type Handler struct {
	deps Deps
	log  logger.Logger
}

func NewHandler(deps Deps, log logger.Logger) *Handler {
	if deps.Registry == nil {
		deps.Registry = automation.NewRegistry()
	}
	return &Handler{
		deps: deps,
		log:  log.With(map[string]interface{}{"component": "api"}),
	}
}
