// internal/api/handler_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-automation/internal/approval"
	"chat-automation/internal/automation"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/mailbox"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"
	"chat-automation/internal/store"
	"chat-automation/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type testMocks struct {
	chat      *mockChat
	approvals *mockApprovals
	turns     *mockTurns
	logs      *mockLogs
	search    *mockLogSearch
	recorder  *mockRecorder
	routing   *mockRouting
	scraper   *mockScraper
	mailbox   *mockMailbox
	health    map[string]HealthCheck
}

func createTestRouter(t *testing.T) (*gin.Engine, *testMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &testMocks{
		chat:      new(mockChat),
		approvals: new(mockApprovals),
		turns:     new(mockTurns),
		logs:      new(mockLogs),
		search:    new(mockLogSearch),
		recorder:  new(mockRecorder),
		routing:   new(mockRouting),
		scraper:   new(mockScraper),
		mailbox:   new(mockMailbox),
		health:    map[string]HealthCheck{},
	}
	log := logger.NewTestLogger(t)
	h := NewHandler(Deps{
		Chat:      m.chat,
		Approvals: m.approvals,
		Turns:     m.turns,
		Logs:      m.logs,
		LogSearch: m.search,
		Recorder:  m.recorder,
		Routing:   m.routing,
		Scraper:   m.scraper,
		Mailbox:   m.mailbox,
		Health:    m.health,
		Version:   "test",
	}, log)
	return NewRouter(h, nil, log), m
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, w)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return e
}

// ==========================
// Chat
// ==========================

func TestChat_Success(t *testing.T) {
	r, m := createTestRouter(t)
	record := automation.NewIntentRecord(automation.IntentGeneralChat, 0.99, nil)
	turn := &models.ConversationTurn{
		ID:         "t1",
		SessionID:  "s1",
		UserID:     models.DefaultUserID,
		Message:    "hi",
		Response:   "hello!",
		IntentData: &record,
		Approved:   models.BoolPtr(true),
		Timestamp:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	m.chat.On("HandleMessage", mock.Anything, "hi", "s1", models.DefaultUserID).Return(turn, nil)

	w := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "hi", "sessionId": "s1"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "t1", body["id"])
	assert.Equal(t, "hello!", body["response"])
	assert.Equal(t, false, body["needsApproval"])
	assert.Equal(t, "general_chat", body["intentData"].(map[string]interface{})["intent"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing message",
			body:       map[string]string{"sessionId": "s1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "classifier down",
			body:       map[string]string{"message": "hi", "sessionId": "s1"},
			err:        errors.NewClassificationFailedError(stderrors.New("502 from upstream")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "CLASSIFICATION_FAILED",
		},
		{
			name:       "persistence",
			body:       map[string]string{"message": "hi", "sessionId": "s1"},
			err:        errors.NewPersistenceFailedError("create_turn", stderrors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "PERSISTENCE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := createTestRouter(t)
			if tt.err != nil {
				m.chat.On("HandleMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			w := doJSON(t, r, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorBody(t, w)["code"])
		})
	}
}

// ==========================
// Approve
// ==========================

func TestApprove(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]interface{}
		res        *approval.Resolution
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "approved",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "t1", "approved": true},
			res:        &approval.Resolution{Success: true, Message: approval.MessageExecuted, N8nResponse: map[string]interface{}{"success": true}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "t1", "approved": false},
			res:        &approval.Resolution{Success: true, Message: approval.MessageCancelled},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown id",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "nope", "approved": true},
			err:        approval.ErrTurnNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "TURN_NOT_FOUND",
		},
		{
			name:       "already resolved",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "t1", "approved": true},
			err:        approval.ErrAlreadyResolved,
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_RESOLVED",
		},
		{
			name:       "executor raised",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "t1", "approved": true},
			err:        workflow.ErrExecutorFailed,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "EXTERNAL_EXECUTOR_FAILED",
		},
		{
			name:       "missing approved flag",
			body:       map[string]interface{}{"sessionId": "s1", "messageId": "t1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := createTestRouter(t)
			if tt.res != nil || tt.err != nil {
				m.approvals.On("Resolve", mock.Anything, tt.body["messageId"], tt.body["approved"], mock.Anything).
					Return(tt.res, tt.err)
			}

			w := doJSON(t, r, http.MethodPost, "/api/approve", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorBody(t, w)["code"])
				return
			}
			body := decode(t, w)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, tt.res.Message, body["message"])
		})
	}
}

func TestApprove_PassesEditedData(t *testing.T) {
	r, m := createTestRouter(t)
	edited := map[string]interface{}{"intent": "send_email", "recipient_name": "Alice"}
	m.approvals.On("Resolve", mock.Anything, "t1", true, edited).
		Return(&approval.Resolution{Success: true, Message: approval.MessageExecuted}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/approve", map[string]interface{}{
		"sessionId": "s1", "messageId": "t1", "approved": true, "editedData": edited,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	m.approvals.AssertExpectations(t)
}

// ==========================
// History
// ==========================

func TestHistory(t *testing.T) {
	r, m := createTestRouter(t)
	m.turns.On("ListBySession", mock.Anything, "s1").Return([]*models.ConversationTurn{
		{ID: "a", SessionID: "s1"}, {ID: "b", SessionID: "s1"},
	}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/history/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 2)
}

func TestHistory_EmptyIsArray(t *testing.T) {
	r, m := createTestRouter(t)
	m.turns.On("ListBySession", mock.Anything, "s2").Return(nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/history/s2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"messages": []}`, w.Body.String())
}

func TestClearHistory(t *testing.T) {
	r, m := createTestRouter(t)
	m.turns.On("DeleteBySession", mock.Anything, "s1").Return(int64(3), nil)

	w := doJSON(t, r, http.MethodDelete, "/api/history/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Cleared 3 messages from chat history", body["message"])
	assert.Equal(t, float64(3), body["deletedCount"])
}

// ==========================
// Web automation
// ==========================

func TestWebAutomation_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		wantDetails string
	}{
		{
			name:        "unsupported type",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "teleport", "parameters": map[string]interface{}{}},
			wantDetails: "Unsupported automation type: teleport",
		},
		{
			name:        "scraping without selectors",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "web_scraping", "parameters": map[string]interface{}{"url": "https://x"}},
			wantDetails: "URL and selectors are required for web scraping",
		},
		{
			name:        "scraping with empty selectors",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "data_extraction", "parameters": map[string]interface{}{"url": "https://x", "selectors": map[string]interface{}{}}},
			wantDetails: "URL and selectors are required for web scraping",
		},
		{
			name:        "linkedin without password",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "linkedin_insights", "parameters": map[string]interface{}{"email": "a@b.c"}},
			wantDetails: "LinkedIn email and password are required",
		},
		{
			name:        "email without provider",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "email_automation", "parameters": map[string]interface{}{"email": "a@b.c", "password": "pw"}},
			wantDetails: "Provider, email, and password are required",
		},
		{
			name:        "price without selector",
			body:        map[string]interface{}{"sessionId": "s1", "automationType": "price_monitoring", "parameters": map[string]interface{}{"product_url": "https://shop/p"}},
			wantDetails: "Product URL and price selector are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := createTestRouter(t)

			w := doJSON(t, r, http.MethodPost, "/api/web-automation", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			e := errorBody(t, w)
			assert.Equal(t, "VALIDATION_FAILED", e["code"])
			assert.Equal(t, tt.wantDetails, e["details"])
			m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		})
	}
}

func TestWebAutomation_PriceMonitoring(t *testing.T) {
	r, m := createTestRouter(t)
	m.scraper.On("MonitorPrice", mock.Anything, "https://shop/p/1", ".price", "Widget").
		Return(&scraper.Result{Success: true, Data: map[string]interface{}{"price": "$10"}, Message: "ok", ExecutionTime: 2.5}, nil)

	var logged *models.AutomationLogEntry
	m.recorder.On("Record", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { logged = args.Get(1).(*models.AutomationLogEntry) }).
		Return(nil)

	w := doJSON(t, r, http.MethodPost, "/api/web-automation", map[string]interface{}{
		"sessionId":      "s1",
		"automationType": "price_monitoring",
		"parameters": map[string]interface{}{
			"product_url":    "https://shop/p/1",
			"price_selector": ".price",
			"product_name":   "Widget",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 2.5, body["executionTime"])
	require.NotNil(t, logged)
	assert.Equal(t, logged.ID, body["automationId"])
	assert.Equal(t, "price_monitoring", logged.AutomationType)
	assert.Equal(t, "s1", logged.SessionID)
}

func TestWebAutomation_ExtractDefaults(t *testing.T) {
	r, m := createTestRouter(t)
	m.scraper.On("ExtractData", mock.Anything, "https://x", map[string]interface{}{"title": "h1"}, "").
		Return(&scraper.Result{Success: false, Data: map[string]interface{}{}, Message: "timeout"}, nil)
	m.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)

	w := doJSON(t, r, http.MethodPost, "/api/web-automation", map[string]interface{}{
		"sessionId":      "s1",
		"automationType": "web_scraping",
		"parameters":     map[string]interface{}{"url": "https://x", "selectors": map[string]interface{}{"title": "h1"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestWebAutomation_ScraperError(t *testing.T) {
	r, m := createTestRouter(t)
	m.scraper.On("ScrapeLinkedInInsights", mock.Anything, "a@b.c", "pw", "notifications").
		Return(nil, scraper.ErrScraperUnavailable)

	w := doJSON(t, r, http.MethodPost, "/api/web-automation", map[string]interface{}{
		"sessionId":      "s1",
		"automationType": "linkedin_insights",
		"parameters":     map[string]interface{}{"email": "a@b.c", "password": "pw"},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "SCRAPER_FAILED", errorBody(t, w)["code"])
}

// ==========================
// Automation history, status and routing
// ==========================

func TestAutomationHistory(t *testing.T) {
	r, m := createTestRouter(t)
	m.logs.On("ListBySession", mock.Anything, "s1", store.DefaultLogLimit).
		Return([]*models.AutomationLogEntry{{ID: "l1"}}, nil)
	m.search.On("Search", mock.Anything, "s1", "price", store.DefaultLogLimit).
		Return([]*models.AutomationLogEntry{{ID: "l2"}, {ID: "l3"}}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/automation-history/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["automationHistory"], 1)

	w = doJSON(t, r, http.MethodGet, "/api/automation-history/s1?q=price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["automationHistory"], 2)
}

func TestAutomationHistory_SearchFailure(t *testing.T) {
	r, m := createTestRouter(t)
	m.search.On("Search", mock.Anything, "s1", "x", store.DefaultLogLimit).Return(nil, stderrors.New("es down"))

	w := doJSON(t, r, http.MethodGet, "/api/automation-history/s1?q=x", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SEARCH_QUERY_FAILED", errorBody(t, w)["code"])
}

func TestAutomationStatus(t *testing.T) {
	r, _ := createTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/automation-status/scrape_price", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "scrape_price", body["intent"])
	assert.Equal(t, true, body["isDirectAutomation"])
	assert.NotEmpty(t, body["statusMessage"])

	w = doJSON(t, r, http.MethodGet, "/api/automation-status/send_email", nil)
	assert.Equal(t, false, decode(t, w)["isDirectAutomation"])
}

func TestRoutingStats(t *testing.T) {
	r, m := createTestRouter(t)
	m.routing.On("Get", mock.Anything, "s1").Return(map[string]int64{"claude": 2, "total": 2}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/routing-stats/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionId": "s1", "routingStatistics": {"claude": 2, "total": 2}}`, w.Body.String())
}

// ==========================
// Gmail
// ==========================

func TestGmailAutomation_UnsupportedAction(t *testing.T) {
	r, _ := createTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{"action": "archive_all"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unsupported Gmail action: archive_all", errorBody(t, w)["details"])
}

func TestGmailAutomation_InvalidParameters(t *testing.T) {
	r, m := createTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{
		"action":     "send",
		"parameters": map[string]interface{}{"subject": "hi", "body": "there"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorBody(t, w)["code"])
	m.mailbox.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestGmailAutomation_AuthenticationFailed(t *testing.T) {
	r, m := createTestRouter(t)
	m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(mailbox.ErrTokenMissing)

	w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{"action": "unread_count"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, automation.AuthFailedMessage, errorBody(t, w)["details"])
}

func TestGmailAutomation_Actions(t *testing.T) {
	r, m := createTestRouter(t)
	m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(nil)
	m.mailbox.On("UnreadCount", mock.Anything).Return(&mailbox.UnreadCount{UnreadCount: 4}, nil)
	m.mailbox.On("InboxMessages", mock.Anything, 10, "").Return(&mailbox.MessageList{Count: 0}, nil)
	m.mailbox.On("SearchMessages", mock.Anything, "from:bob", 5).Return(&mailbox.MessageList{Count: 1}, nil)
	m.mailbox.On("Send", mock.Anything, mailbox.SendRequest{To: "bob@example.com", Subject: "Hi", Body: "Hello"}).
		Return(&mailbox.SendResult{MessageID: "m1"}, nil)
	m.mailbox.On("MarkRead", mock.Anything, []string{"a", "b"}).Return(&mailbox.MarkReadResult{Count: 2}, nil)

	tests := []struct {
		action string
		params map[string]interface{}
		check  func(t *testing.T, data map[string]interface{})
	}{
		{"unread_count", nil, func(t *testing.T, d map[string]interface{}) { assert.Equal(t, float64(4), d["unreadCount"]) }},
		{"check_inbox", nil, func(t *testing.T, d map[string]interface{}) { assert.Equal(t, float64(0), d["count"]) }},
		{"search", map[string]interface{}{"query": "from:bob", "max_results": 5}, func(t *testing.T, d map[string]interface{}) { assert.Equal(t, float64(1), d["count"]) }},
		{"send", map[string]interface{}{"to": "bob@example.com", "subject": "Hi", "body": "Hello"}, func(t *testing.T, d map[string]interface{}) { assert.Equal(t, "m1", d["messageId"]) }},
		{"mark_read", map[string]interface{}{"message_ids": []string{"a", "b"}}, func(t *testing.T, d map[string]interface{}) { assert.Equal(t, float64(2), d["count"]) }},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{
				"action":     tt.action,
				"parameters": tt.params,
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, true, body["success"])
			tt.check(t, body["data"].(map[string]interface{}))
		})
	}
}

func TestGmailAutomation_MailboxError(t *testing.T) {
	r, m := createTestRouter(t)
	m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(nil)
	m.mailbox.On("UnreadCount", mock.Anything).Return(nil, mailbox.ErrRequestFailed)

	w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{"action": "unread_count"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "MAILBOX_FAILED", errorBody(t, w)["code"])
}

func TestGmailAutomation_InvalidHeaderIsValidationError(t *testing.T) {
	r, m := createTestRouter(t)
	m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(nil)
	m.mailbox.On("Send", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: To contains a line break", mailbox.ErrInvalidHeader))

	w := doJSON(t, r, http.MethodPost, "/api/gmail-automation", map[string]interface{}{
		"action":     "send",
		"parameters": map[string]interface{}{"to": "bob@example.com\r\nBcc: eve@example.com", "subject": "Hi", "body": "Hello"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorBody(t, w)["code"])
}

func TestGmailAuthStatus(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		r, m := createTestRouter(t)
		m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(mailbox.ErrTokenMissing)

		w := doJSON(t, r, http.MethodGet, "/api/gmail-auth-status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["authenticated"])
	})

	t.Run("authenticated", func(t *testing.T) {
		r, m := createTestRouter(t)
		m.mailbox.On("EnsureAuthenticated", mock.Anything).Return(nil)
		m.mailbox.On("Profile", mock.Anything).Return(&mailbox.Profile{EmailAddress: "me@example.com"}, nil)

		w := doJSON(t, r, http.MethodGet, "/api/gmail-auth-status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, "me@example.com", body["emailAddress"])
		assert.Equal(t, "Connected to Gmail API", body["status"])
	})
}

// ==========================
// Health and metrics
// ==========================

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r, m := createTestRouter(t)
		m.health["postgres"] = func(ctx context.Context) error { return nil }
		m.health["redis"] = func(ctx context.Context) error { return nil }
		m.mailbox.On("IsAuthenticated").Return(false)

		w := doJSON(t, r, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "connected", body["dependencies"].(map[string]interface{})["postgres"])
		assert.Equal(t, "not_authenticated", body["mailbox"])
	})

	t.Run("postgres down", func(t *testing.T) {
		r, m := createTestRouter(t)
		m.health["postgres"] = func(ctx context.Context) error { return stderrors.New("connection refused") }
		m.mailbox.On("IsAuthenticated").Return(true)

		w := doJSON(t, r, http.MethodGet, "/api/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode(t, w)["status"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := createTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_in_flight")
}
