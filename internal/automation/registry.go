// internal/automation/registry.go
package automation

// TemplateEntry describes how a direct-automation intent is handled and
// rendered.
type TemplateEntry struct {
	Intent          Intent
	Category        Category
	SuccessTemplate string
	ErrorTemplate   string
	StatusMessage   string
}

// Registry maps direct-automation intents to their templates. It is
// read-only after NewRegistry returns.
type Registry struct {
	entries map[Intent]TemplateEntry
}

const defaultStatusMessage = "⚙️ Processing your request..."

func NewRegistry() *Registry {
	entries := []TemplateEntry{
		{
			Intent:          IntentCheckLinkedInNotifications,
			Category:        CategoryLinkedInInsights,
			SuccessTemplate: "🔔 **LinkedIn Notifications** ({count} new)\n{notifications}",
			ErrorTemplate:   "❌ Unable to check LinkedIn notifications: {error}",
			StatusMessage:   "🔔 Checking your LinkedIn notifications...",
		},
		{
			Intent:          IntentScrapePrice,
			Category:        CategoryPriceMonitoring,
			SuccessTemplate: "💰 **Price Check Results**\n🏷️ **{product}**: {price}\n📊 Platform: {platform}",
			ErrorTemplate:   "❌ Unable to find price for {product}: {error}",
			StatusMessage:   "💰 Checking the latest price...",
		},
		{
			Intent:          IntentScrapeProductListings,
			Category:        CategoryDataExtraction,
			SuccessTemplate: "🛒 **Product Listings** ({count} found)\n{listings}",
			ErrorTemplate:   "❌ Unable to scrape product listings: {error}",
			StatusMessage:   "🛒 Collecting product listings...",
		},
		{
			Intent:          IntentLinkedInJobAlerts,
			Category:        CategoryLinkedInInsights,
			SuccessTemplate: "💼 **Job Alerts** ({count} new opportunities)\n{jobs}",
			ErrorTemplate:   "❌ Unable to check job alerts: {error}",
			StatusMessage:   "💼 Looking for new job alerts...",
		},
		{
			Intent:          IntentCheckWebsiteUpdates,
			Category:        CategoryWebScraping,
			SuccessTemplate: "🔍 **Website Updates**\n📝 **{website}**: {changes}",
			ErrorTemplate:   "❌ Unable to check website updates: {error}",
			StatusMessage:   "🔍 Checking the website for updates...",
		},
		{
			Intent:          IntentMonitorCompetitors,
			Category:        CategoryDataExtraction,
			SuccessTemplate: "📊 **Competitor Analysis**\n🏢 **{company}**: {insights}",
			ErrorTemplate:   "❌ Unable to monitor competitor data: {error}",
			StatusMessage:   "📊 Analyzing competitor activity...",
		},
		{
			Intent:          IntentScrapeNewsArticles,
			Category:        CategoryWebScraping,
			SuccessTemplate: "📰 **Latest News** ({count} articles)\n{articles}",
			ErrorTemplate:   "❌ Unable to scrape news articles: {error}",
			StatusMessage:   "📰 Gathering the latest news...",
		},
		{
			Intent:          IntentGmailCheckInbox,
			Category:        CategoryMailboxIntegration,
			SuccessTemplate: "📧 **Gmail Inbox** ({count} messages)\n{messages}",
			ErrorTemplate:   "❌ Unable to check Gmail inbox: {error}",
			StatusMessage:   "📧 Checking your Gmail inbox...",
		},
		{
			Intent:          IntentGmailUnreadCount,
			Category:        CategoryMailboxIntegration,
			SuccessTemplate: "📬 **Unread Emails**: {unread_count} messages",
			ErrorTemplate:   "❌ Unable to get unread count: {error}",
			StatusMessage:   "📬 Counting unread emails...",
		},
	}

	r := &Registry{entries: make(map[Intent]TemplateEntry, len(entries))}
	for _, e := range entries {
		r.entries[e.Intent] = e
	}
	return r
}

func (r *Registry) Lookup(intent Intent) (TemplateEntry, bool) {
	e, ok := r.entries[intent]
	return e, ok
}

// IsDirect reports whether intent is answered without approval.
func (r *Registry) IsDirect(intent Intent) bool {
	_, ok := r.entries[intent]
	return ok
}

// StatusMessage returns the in-progress message shown while intent runs.
func (r *Registry) StatusMessage(intent Intent) string {
	if e, ok := r.entries[intent]; ok {
		return e.StatusMessage
	}
	return defaultStatusMessage
}

func (r *Registry) Intents() []Intent {
	out := make([]Intent, 0, len(r.entries))
	for intent := range r.entries {
		out = append(out, intent)
	}
	return out
}
