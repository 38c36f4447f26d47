// internal/automation/handlers.go
package automation

import (
	"context"
	"strings"
	"time"

	"chat-automation/internal/mailbox"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	AuthFailedMessage = "Gmail authentication failed. Please set up Gmail API credentials."
	timestampLayout   = "2006-01-02 15:04:05"
)

// HandlerResult is the raw outcome of a category handler before formatting.
type HandlerResult struct {
	Success bool
	Data    map[string]interface{}
	Message string
}

func failure(message string) HandlerResult {
	return HandlerResult{Success: false, Data: map[string]interface{}{}, Message: message}
}

// Mailbox is the part of the mailbox client the handlers need.
type Mailbox interface {
	EnsureAuthenticated(ctx context.Context) error
	InboxMessages(ctx context.Context, maxResults int, query string) (*mailbox.MessageList, error)
	UnreadCount(ctx context.Context) (*mailbox.UnreadCount, error)
}

// CategoryHandlers executes intents grouped by Category.
type CategoryHandlers interface {
	LinkedIn(ctx context.Context, record IntentRecord) (HandlerResult, error)
	Price(ctx context.Context, record IntentRecord) (HandlerResult, error)
	DataExtraction(ctx context.Context, record IntentRecord) (HandlerResult, error)
	WebScraping(ctx context.Context, record IntentRecord) (HandlerResult, error)
	Mailbox(ctx context.Context, record IntentRecord) (HandlerResult, error)
}

// Handlers answers the LinkedIn, price, extraction and scraping categories
// from fixed sample data and the mailbox category from the mailbox client.
type Handlers struct {
	mailbox Mailbox
	now     func() time.Time
	title   cases.Caser
}

func NewHandlers(mb Mailbox) *Handlers {
	return &Handlers{
		mailbox: mb,
		now:     time.Now,
		title:   cases.Title(language.Und),
	}
}

var (
	sampleNotifications = []map[string]interface{}{
		{"type": "connection", "name": "John Doe", "message": "wants to connect"},
		{"type": "message", "name": "Sarah Smith", "message": "sent you a message"},
		{"type": "post_like", "name": "Mike Johnson", "message": "liked your post"},
	}

	sampleJobs = []map[string]interface{}{
		{"title": "Senior Software Engineer", "company": "Tech Corp", "location": "Remote", "posted": "2 days ago"},
		{"title": "Full Stack Developer", "company": "StartupX", "location": "New York", "posted": "1 day ago"},
	}

	samplePrices = map[string]string{
		"amazon":   "$299.99",
		"flipkart": "₹24,999",
		"ebay":     "$279.95",
	}

	sampleListings = []map[string]interface{}{
		{"name": "Gaming Laptop X1", "price": "$1,299.99", "rating": "4.5/5", "reviews": "1,234"},
		{"name": "Professional Laptop Pro", "price": "$899.99", "rating": "4.3/5", "reviews": "856"},
		{"name": "Budget Laptop Lite", "price": "$499.99", "rating": "4.1/5", "reviews": "423"},
	}

	sampleInsights = map[string]string{
		"pricing":   "Competitor reduced prices by 15% this week",
		"products":  "2 new products launched in Q1",
		"marketing": "Increased social media activity by 40%",
	}

	sampleWebsiteChanges = []string{
		"New blog post published: 'AI Trends 2025'",
		"Product pricing updated in shop section",
		"2 new team member profiles added",
	}

	sampleArticles = []map[string]interface{}{
		{"title": "AI Revolution in Healthcare: New Breakthrough", "source": "Tech Times", "published": "2 hours ago"},
		{"title": "Quantum Computing Achieves Major Milestone", "source": "Science Daily", "published": "4 hours ago"},
		{"title": "Green Technology Investments Surge in 2025", "source": "Clean Energy News", "published": "6 hours ago"},
	}
)

// copyItems keeps callers from mutating the shared sample slices.
func copyItems(src []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, len(src))
	for i, item := range src {
		m := make(map[string]interface{}, len(item))
		for k, v := range item {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

func (h *Handlers) LinkedIn(ctx context.Context, record IntentRecord) (HandlerResult, error) {
	switch record.Intent {
	case IntentCheckLinkedInNotifications:
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"count":         len(sampleNotifications),
				"notifications": copyItems(sampleNotifications),
			},
			Message: "Notifications retrieved successfully",
		}, nil
	case IntentLinkedInJobAlerts:
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"count": len(sampleJobs),
				"jobs":  copyItems(sampleJobs),
			},
			Message: "Job alerts retrieved successfully",
		}, nil
	}
	return failure("LinkedIn automation not implemented"), nil
}

// Price looks the platform up case-insensitively; unknown platforms report
// $0.00.
func (h *Handlers) Price(ctx context.Context, record IntentRecord) (HandlerResult, error) {
	product := record.String("product", "Unknown Product")
	platform := record.String("platform", "amazon")

	price, ok := samplePrices[strings.ToLower(platform)]
	if !ok {
		price = "$0.00"
	}

	return HandlerResult{
		Success: true,
		Data: map[string]interface{}{
			"product":     product,
			"price":       price,
			"platform":    h.title.String(platform),
			"lastUpdated": h.now().Format(timestampLayout),
		},
		Message: "Price retrieved successfully",
	}, nil
}

func (h *Handlers) DataExtraction(ctx context.Context, record IntentRecord) (HandlerResult, error) {
	switch record.Intent {
	case IntentScrapeProductListings:
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"count":    len(sampleListings),
				"listings": copyItems(sampleListings),
				"category": record.String("category", "electronics"),
				"platform": record.String("platform", "amazon"),
			},
			Message: "Product listings retrieved successfully",
		}, nil
	case IntentMonitorCompetitors:
		dataType := record.String("data_type", "pricing")
		insights, ok := sampleInsights[dataType]
		if !ok {
			insights = "No insights available"
		}
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"company":    record.String("company", "Unknown Company"),
				"insights":   insights,
				"dataType":   dataType,
				"analyzedAt": h.now().Format(timestampLayout),
			},
			Message: "Competitor analysis completed",
		}, nil
	}
	return failure("Data extraction not implemented"), nil
}

func (h *Handlers) WebScraping(ctx context.Context, record IntentRecord) (HandlerResult, error) {
	switch record.Intent {
	case IntentCheckWebsiteUpdates:
		lines := make([]string, len(sampleWebsiteChanges))
		for i, change := range sampleWebsiteChanges {
			lines[i] = "• " + change
		}
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"website":   record.String("website", "Unknown Website"),
				"changes":   strings.Join(lines, "\n"),
				"section":   record.String("section", "homepage"),
				"checkedAt": h.now().Format(timestampLayout),
			},
			Message: "Website updates retrieved successfully",
		}, nil
	case IntentScrapeNewsArticles:
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"count":    len(sampleArticles),
				"articles": copyItems(sampleArticles),
				"topic":    record.String("topic", "technology"),
				"source":   record.String("source", "tech news"),
			},
			Message: "News articles retrieved successfully",
		}, nil
	}
	return failure("Web scraping not implemented"), nil
}

// Mailbox authenticates lazily; an authentication failure is reported as a
// failed result rather than an error.
func (h *Handlers) Mailbox(ctx context.Context, record IntentRecord) (HandlerResult, error) {
	if h.mailbox == nil || h.mailbox.EnsureAuthenticated(ctx) != nil {
		return failure(AuthFailedMessage), nil
	}

	switch record.Intent {
	case IntentGmailCheckInbox:
		list, err := h.mailbox.InboxMessages(ctx, record.Int("max_results", 10), record.String("query", ""))
		if err != nil {
			return failure(err.Error()), nil
		}
		return HandlerResult{
			Success: true,
			Data: map[string]interface{}{
				"count":        list.Count,
				"messages":     messageItems(list.Messages),
				"totalInInbox": list.TotalEstimate,
			},
			Message: list.Message,
		}, nil
	case IntentGmailUnreadCount:
		unread, err := h.mailbox.UnreadCount(ctx)
		if err != nil {
			return failure(err.Error()), nil
		}
		return HandlerResult{
			Success: true,
			Data:    map[string]interface{}{"unreadCount": unread.UnreadCount},
			Message: unread.Message,
		}, nil
	}
	return failure("Gmail automation not implemented"), nil
}

func messageItems(msgs []mailbox.Message) []map[string]interface{} {
	out := make([]map[string]interface{}, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]interface{}{
			"id":          m.ID,
			"threadId":    m.ThreadID,
			"subject":     m.Subject,
			"sender":      m.Sender,
			"date":        m.Date,
			"bodyPreview": m.BodyPreview,
			"isUnread":    m.IsUnread,
		}
	}
	return out
}
