// internal/api/mocks_test.go
package api

import (
	"context"

	"chat-automation/internal/approval"
	"chat-automation/internal/mailbox"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"

	"github.com/stretchr/testify/mock"
)

type mockChat struct{ mock.Mock }

func (m *mockChat) HandleMessage(ctx context.Context, message, sessionID, userID string) (*models.ConversationTurn, error) {
	args := m.Called(ctx, message, sessionID, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.ConversationTurn), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockApprovals struct{ mock.Mock }

func (m *mockApprovals) Resolve(ctx context.Context, turnID string, approved bool, edited map[string]interface{}) (*approval.Resolution, error) {
	args := m.Called(ctx, turnID, approved, edited)
	if v := args.Get(0); v != nil {
		return v.(*approval.Resolution), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTurns struct{ mock.Mock }

func (m *mockTurns) Create(ctx context.Context, turn *models.ConversationTurn) error {
	return m.Called(ctx, turn).Error(0)
}

func (m *mockTurns) Get(ctx context.Context, id string) (*models.ConversationTurn, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.ConversationTurn), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTurns) ListBySession(ctx context.Context, sessionID string) ([]*models.ConversationTurn, error) {
	args := m.Called(ctx, sessionID)
	if v := args.Get(0); v != nil {
		return v.([]*models.ConversationTurn), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTurns) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTurns) Resolve(ctx context.Context, id string, update models.ApprovalUpdate) (bool, error) {
	args := m.Called(ctx, id, update)
	return args.Bool(0), args.Error(1)
}

type mockLogs struct{ mock.Mock }

func (m *mockLogs) Insert(ctx context.Context, entry *models.AutomationLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockLogs) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.AutomationLogEntry, error) {
	args := m.Called(ctx, sessionID, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.AutomationLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLogSearch struct{ mock.Mock }

func (m *mockLogSearch) Index(ctx context.Context, entry *models.AutomationLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockLogSearch) Search(ctx context.Context, sessionID, query string, limit int) ([]*models.AutomationLogEntry, error) {
	args := m.Called(ctx, sessionID, query, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.AutomationLogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Record(ctx context.Context, entry *models.AutomationLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type mockRouting struct{ mock.Mock }

func (m *mockRouting) Get(ctx context.Context, sessionID string) (map[string]int64, error) {
	args := m.Called(ctx, sessionID)
	if v := args.Get(0); v != nil {
		return v.(map[string]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockScraper struct{ mock.Mock }

func (m *mockScraper) result(args mock.Arguments) (*scraper.Result, error) {
	if v := args.Get(0); v != nil {
		return v.(*scraper.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScraper) ExtractData(ctx context.Context, url string, selectors map[string]interface{}, waitFor string) (*scraper.Result, error) {
	return m.result(m.Called(ctx, url, selectors, waitFor))
}

func (m *mockScraper) ScrapeLinkedInInsights(ctx context.Context, email, password, insightType string) (*scraper.Result, error) {
	return m.result(m.Called(ctx, email, password, insightType))
}

func (m *mockScraper) AutomateEmail(ctx context.Context, provider, email, password, action string, params map[string]interface{}) (*scraper.Result, error) {
	return m.result(m.Called(ctx, provider, email, password, action, params))
}

func (m *mockScraper) MonitorPrice(ctx context.Context, productURL, priceSelector, productName string) (*scraper.Result, error) {
	return m.result(m.Called(ctx, productURL, priceSelector, productName))
}

type mockMailbox struct{ mock.Mock }

func (m *mockMailbox) EnsureAuthenticated(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockMailbox) IsAuthenticated() bool {
	return m.Called().Bool(0)
}

func (m *mockMailbox) InboxMessages(ctx context.Context, maxResults int, query string) (*mailbox.MessageList, error) {
	args := m.Called(ctx, maxResults, query)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.MessageList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMailbox) SearchMessages(ctx context.Context, query string, maxResults int) (*mailbox.MessageList, error) {
	args := m.Called(ctx, query, maxResults)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.MessageList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMailbox) UnreadCount(ctx context.Context) (*mailbox.UnreadCount, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.UnreadCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMailbox) Send(ctx context.Context, req mailbox.SendRequest) (*mailbox.SendResult, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.SendResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMailbox) MarkRead(ctx context.Context, ids []string) (*mailbox.MarkReadResult, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.MarkReadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMailbox) Profile(ctx context.Context) (*mailbox.Profile, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*mailbox.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}
