// internal/automation/formatter_test.go
package automation

import (
	"strings"
	"sync"
	"testing"

	"chat-automation/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

// recordingLogger captures warnings so tests can assert on them.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }
func (l *recordingLogger) WithError(err error) logger.Logger                      { return l }
func (l *recordingLogger) With(fields map[string]interface{}) logger.Logger       { return l }

func entryFor(t *testing.T, intent Intent) TemplateEntry {
	t.Helper()
	e, ok := NewRegistry().Lookup(intent)
	if !ok {
		t.Fatalf("no entry for %s", intent)
	}
	return e
}

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(logger.NewNoOpLogger())

	tests := []struct {
		name   string
		intent Intent
		data   map[string]interface{}
		want   string
	}{
		{
			name:   "notifications",
			intent: IntentCheckLinkedInNotifications,
			data: map[string]interface{}{
				"count": 2,
				"notifications": []map[string]interface{}{
					{"name": "John Doe", "message": "wants to connect"},
					{"name": "Sarah Smith", "message": "sent you a message"},
				},
			},
			want: "🔔 **LinkedIn Notifications** (2 new)\n• **John Doe** wants to connect\n• **Sarah Smith** sent you a message",
		},
		{
			name:   "json decoded listings",
			intent: IntentScrapeProductListings,
			data: map[string]interface{}{
				"count": float64(1),
				"listings": []interface{}{
					map[string]interface{}{"name": "Laptop", "price": "$1", "rating": "4/5", "reviews": "10"},
				},
			},
			want: "🛒 **Product Listings** (1 found)\n• **Laptop** - $1 ⭐ 4/5 (10 reviews)",
		},
		{
			name:   "jobs",
			intent: IntentLinkedInJobAlerts,
			data: map[string]interface{}{
				"count": 1,
				"jobs":  []map[string]interface{}{{"title": "Dev", "company": "X", "location": "Remote", "posted": "today"}},
			},
			want: "💼 **Job Alerts** (1 new opportunities)\n• **Dev** at X (Remote) - today",
		},
		{
			name:   "articles",
			intent: IntentScrapeNewsArticles,
			data: map[string]interface{}{
				"count":    1,
				"articles": []map[string]interface{}{{"title": "News", "source": "Paper", "published": "now"}},
			},
			want: "📰 **Latest News** (1 articles)\n• **News** (Paper) - now",
		},
		{
			name:   "price",
			intent: IntentScrapePrice,
			data:   map[string]interface{}{"product": "Widget", "price": "$299.99", "platform": "Amazon", "lastUpdated": "x"},
			want:   "💰 **Price Check Results**\n🏷️ **Widget**: $299.99\n📊 Platform: Amazon",
		},
		{
			name:   "website updates",
			intent: IntentCheckWebsiteUpdates,
			data:   map[string]interface{}{"website": "example.com", "changes": "• a"},
			want:   "🔍 **Website Updates**\n📝 **example.com**: • a",
		},
		{
			name:   "competitors",
			intent: IntentMonitorCompetitors,
			data:   map[string]interface{}{"company": "Acme", "insights": "cheaper"},
			want:   "📊 **Competitor Analysis**\n🏢 **Acme**: cheaper",
		},
		{
			name:   "unread count",
			intent: IntentGmailUnreadCount,
			data:   map[string]interface{}{"unreadCount": 4},
			want:   "📬 **Unread Emails**: 4 messages",
		},
		{
			name:   "missing list renders empty",
			intent: IntentScrapeNewsArticles,
			data:   map[string]interface{}{},
			want:   "📰 **Latest News** (0 articles)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(entryFor(t, tt.intent), tt.data))
		})
	}
}

func TestFormatter_Inbox(t *testing.T) {
	f := NewFormatter(logger.NewNoOpLogger())

	messages := make([]map[string]interface{}, 0, 7)
	for i := 0; i < 7; i++ {
		messages = append(messages, map[string]interface{}{
			"subject":     "Subject",
			"sender":      "a@b.com",
			"bodyPreview": strings.Repeat("b", 150),
			"isUnread":    i == 0,
		})
	}

	out := f.Format(entryFor(t, IntentGmailCheckInbox), map[string]interface{}{
		"count":    7,
		"messages": messages,
	})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "📧 **Gmail Inbox** (7 messages)", lines[0])
	assert.Equal(t, "• **Subject** from a@b.com 🔴", lines[1])
	assert.Equal(t, "  "+strings.Repeat("b", 100)+"...", lines[2])
	assert.Equal(t, "• **Subject** from a@b.com ", lines[3])
	assert.Equal(t, 5, strings.Count(out, "• **Subject**"))
}

func TestFormatter_FallbackOnMalformedData(t *testing.T) {
	tests := []struct {
		name       string
		intent     Intent
		data       map[string]interface{}
		wantPrefix string
	}{
		{
			name:       "item missing key",
			intent:     IntentCheckLinkedInNotifications,
			data:       map[string]interface{}{"count": 1, "notifications": []map[string]interface{}{{"name": "x"}}},
			wantPrefix: "✅ Automation completed successfully\n",
		},
		{
			name:       "list has wrong type",
			intent:     IntentLinkedInJobAlerts,
			data:       map[string]interface{}{"jobs": "not a list"},
			wantPrefix: "✅ Automation completed successfully\n",
		},
		{
			name:       "list item has wrong type",
			intent:     IntentScrapeProductListings,
			data:       map[string]interface{}{"listings": []interface{}{42}},
			wantPrefix: "✅ Automation completed successfully\n",
		},
		{
			name:       "scalar missing",
			intent:     IntentScrapePrice,
			data:       map[string]interface{}{"product": "Widget"},
			wantPrefix: "✅ Automation completed successfully\n",
		},
		{
			name:       "mailbox fallback",
			intent:     IntentGmailUnreadCount,
			data:       map[string]interface{}{},
			wantPrefix: "✅ Gmail automation completed successfully\n",
		},
		{
			name:       "inbox message missing sender",
			intent:     IntentGmailCheckInbox,
			data:       map[string]interface{}{"messages": []map[string]interface{}{{"subject": "s"}}},
			wantPrefix: "✅ Gmail automation completed successfully\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			f := NewFormatter(log)

			var out string
			assert.NotPanics(t, func() {
				out = f.Format(entryFor(t, tt.intent), tt.data)
			})
			assert.True(t, strings.HasPrefix(out, tt.wantPrefix), out)
			assert.Len(t, log.warns, 1)
		})
	}
}

func TestFormatter_UnknownIntentFallsBack(t *testing.T) {
	f := NewFormatter(logger.NewNoOpLogger())

	out := f.Format(TemplateEntry{Intent: "mystery"}, map[string]interface{}{"a": 1})
	assert.Equal(t, "✅ Automation completed successfully\n{\"a\":1}", out)
}

func TestRenderError_StripsUnresolvedPlaceholders(t *testing.T) {
	entry := entryFor(t, IntentScrapePrice)

	withProduct := RenderError(entry, NewIntentRecord(IntentScrapePrice, 1, map[string]interface{}{"product": "Widget"}), "timeout")
	assert.Equal(t, "❌ Unable to find price for Widget: timeout", withProduct)

	withoutProduct := RenderError(entry, NewIntentRecord(IntentScrapePrice, 1, nil), "timeout")
	assert.Equal(t, "❌ Unable to find price for : timeout", withoutProduct)
}
