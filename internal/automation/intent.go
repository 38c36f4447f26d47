// internal/automation/intent.go
package automation

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Intent names the action a chat message asks for.
type Intent string

const (
	IntentCheckLinkedInNotifications Intent = "check_linkedin_notifications"
	IntentScrapePrice                Intent = "scrape_price"
	IntentScrapeProductListings      Intent = "scrape_product_listings"
	IntentLinkedInJobAlerts          Intent = "linkedin_job_alerts"
	IntentCheckWebsiteUpdates        Intent = "check_website_updates"
	IntentMonitorCompetitors         Intent = "monitor_competitors"
	IntentScrapeNewsArticles         Intent = "scrape_news_articles"
	IntentGmailCheckInbox            Intent = "gmail_check_inbox"
	IntentGmailUnreadCount           Intent = "gmail_unread_count"

	IntentGeneralChat Intent = "general_chat"
	IntentWebScraping Intent = "web_scraping"
)

// Category groups intents that share a handler.
type Category string

const (
	CategoryLinkedInInsights   Category = "linkedin_insights"
	CategoryPriceMonitoring    Category = "price_monitoring"
	CategoryDataExtraction     Category = "data_extraction"
	CategoryWebScraping        Category = "web_scraping"
	CategoryMailboxIntegration Category = "mailbox_integration"
)

const (
	keyIntent     = "intent"
	keyConfidence = "confidence"
)

// IntentRecord is a classified intent plus the parameters extracted with it.
// It is a value type: With and Merge return modified copies.
type IntentRecord struct {
	Intent     Intent
	Confidence float64
	params     map[string]interface{}
}

func NewIntentRecord(intent Intent, confidence float64, params map[string]interface{}) IntentRecord {
	r := IntentRecord{Intent: intent, Confidence: confidence, params: map[string]interface{}{}}
	for k, v := range params {
		r.set(k, v)
	}
	return r
}

// IntentRecordFromMap builds a record from a flat map such as an approval's
// edited parameters.
func IntentRecordFromMap(m map[string]interface{}) IntentRecord {
	return NewIntentRecord("", 0, m)
}

func (r *IntentRecord) set(key string, value interface{}) {
	switch key {
	case keyIntent:
		if s, ok := value.(string); ok {
			r.Intent = Intent(s)
		}
	case keyConfidence:
		if f, ok := toFloat(value); ok {
			r.Confidence = f
		}
	default:
		r.params[key] = value
	}
}

func (r IntentRecord) clone() IntentRecord {
	out := IntentRecord{Intent: r.Intent, Confidence: r.Confidence, params: make(map[string]interface{}, len(r.params)+4)}
	for k, v := range r.params {
		out.params[k] = v
	}
	return out
}

func (r IntentRecord) With(key string, value interface{}) IntentRecord {
	out := r.clone()
	out.set(key, value)
	return out
}

func (r IntentRecord) Merge(fields map[string]interface{}) IntentRecord {
	out := r.clone()
	for k, v := range fields {
		out.set(k, v)
	}
	return out
}

func (r IntentRecord) Param(key string) (interface{}, bool) {
	v, ok := r.params[key]
	return v, ok
}

// String returns the parameter as a string, or def when it is absent, nil or
// empty.
func (r IntentRecord) String(key, def string) string {
	v, ok := r.params[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return def
	}
	return s
}

func (r IntentRecord) Int(key string, def int) int {
	v, ok := r.params[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// Map returns the flat representation, including intent and confidence.
func (r IntentRecord) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.params)+2)
	for k, v := range r.params {
		out[k] = v
	}
	out[keyIntent] = string(r.Intent)
	out[keyConfidence] = r.Confidence
	return out
}

// Params returns a copy of the parameter fields only.
func (r IntentRecord) Params() map[string]interface{} {
	out := make(map[string]interface{}, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

func (r IntentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func (r *IntentRecord) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = NewIntentRecord("", 0, m)
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
