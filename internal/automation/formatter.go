// internal/automation/formatter.go
package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"chat-automation/internal/common/logger"
)

var (
	ErrMissingField = errors.New("MISSING_FIELD")
	ErrInvalidField = errors.New("INVALID_FIELD")
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

const (
	genericFallback = "✅ Automation completed successfully"
	mailboxFallback = "✅ Gmail automation completed successfully"
	inboxPreviewMax = 5
	bodyPreviewMax  = 100
)

// Formatter renders successful handler data into chat replies.
type Formatter struct {
	log logger.Logger
}

func NewFormatter(log logger.Logger) *Formatter {
	return &Formatter{log: log.With(map[string]interface{}{"component": "formatter"})}
}

// Format never fails. Any rendering problem is logged and the generic
// fallback is returned instead.
func (f *Formatter) Format(entry TemplateEntry, data map[string]interface{}) (out string) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("template rendering panicked", map[string]interface{}{
				"intent": string(entry.Intent),
				"panic":  fmt.Sprint(r),
			})
			out = fallback(entry, data)
		}
	}()

	msg, err := render(entry, data)
	if err != nil {
		f.log.Warn("template formatting failed", map[string]interface{}{
			"intent": string(entry.Intent),
			"error":  err.Error(),
		})
		return fallback(entry, data)
	}
	return msg
}

func render(entry TemplateEntry, data map[string]interface{}) (string, error) {
	switch entry.Intent {
	case IntentCheckLinkedInNotifications:
		return renderList(entry.SuccessTemplate, data, "notifications", func(item map[string]interface{}) (string, error) {
			return fill("• **{name}** {message}", item)
		})
	case IntentScrapeProductListings:
		return renderList(entry.SuccessTemplate, data, "listings", func(item map[string]interface{}) (string, error) {
			return fill("• **{name}** - {price} ⭐ {rating} ({reviews} reviews)", item)
		})
	case IntentLinkedInJobAlerts:
		return renderList(entry.SuccessTemplate, data, "jobs", func(item map[string]interface{}) (string, error) {
			return fill("• **{title}** at {company} ({location}) - {posted}", item)
		})
	case IntentScrapeNewsArticles:
		return renderList(entry.SuccessTemplate, data, "articles", func(item map[string]interface{}) (string, error) {
			return fill("• **{title}** ({source}) - {published}", item)
		})
	case IntentGmailCheckInbox:
		return renderInbox(entry.SuccessTemplate, data)
	case IntentScrapePrice, IntentCheckWebsiteUpdates, IntentMonitorCompetitors:
		return fill(entry.SuccessTemplate, data)
	case IntentGmailUnreadCount:
		count, ok := data["unreadCount"]
		if !ok {
			return "", fmt.Errorf("%w: unreadCount", ErrMissingField)
		}
		return fill(entry.SuccessTemplate, map[string]interface{}{"unread_count": count})
	default:
		return "", fmt.Errorf("no renderer for intent %q", entry.Intent)
	}
}

func renderList(tmpl string, data map[string]interface{}, key string, line func(map[string]interface{}) (string, error)) (string, error) {
	list, err := items(data, key)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(list))
	for _, item := range list {
		l, err := line(item)
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		lines = append(lines, l)
	}

	return fill(tmpl, map[string]interface{}{
		"count": countOf(data),
		key:     strings.Join(lines, "\n"),
	})
}

func renderInbox(tmpl string, data map[string]interface{}) (string, error) {
	list, err := items(data, "messages")
	if err != nil {
		return "", err
	}
	if len(list) > inboxPreviewMax {
		list = list[:inboxPreviewMax]
	}

	lines := make([]string, 0, len(list))
	for _, msg := range list {
		subject, err := text(msg, "subject")
		if err != nil {
			return "", err
		}
		sender, err := text(msg, "sender")
		if err != nil {
			return "", err
		}
		body, err := text(msg, "bodyPreview")
		if err != nil {
			return "", err
		}

		marker := ""
		if unread, _ := msg["isUnread"].(bool); unread {
			marker = "🔴"
		}
		lines = append(lines, fmt.Sprintf("• **%s** from %s %s\n  %s...", subject, sender, marker, truncateRunes(body, bodyPreviewMax)))
	}

	return fill(tmpl, map[string]interface{}{
		"count":    countOf(data),
		"messages": strings.Join(lines, "\n"),
	})
}

// items accepts both typed and JSON-decoded lists.
func items(data map[string]interface{}, key string) ([]map[string]interface{}, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []map[string]interface{}:
		return list, nil
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(list))
		for i, v := range list {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T", ErrInvalidField, key, i, v)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T", ErrInvalidField, key, raw)
	}
}

func countOf(data map[string]interface{}) interface{} {
	if c, ok := data["count"]; ok && c != nil {
		return c
	}
	return 0
}

func text(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return stringify(v), nil
}

// fill substitutes every {name} placeholder and fails on the first one
// that has no value.
func fill(tmpl string, values map[string]interface{}) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(ph string) string {
		name := ph[1 : len(ph)-1]
		v, ok := values[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return ph
		}
		return stringify(v)
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, missing)
	}
	return out, nil
}

// fillLenient substitutes known placeholders and strips the rest.
func fillLenient(tmpl string, values map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(ph string) string {
		if v, ok := values[ph[1:len(ph)-1]]; ok {
			return stringify(v)
		}
		return ""
	})
}

// RenderError fills an error template with the record parameters and the
// error text.
func RenderError(entry TemplateEntry, record IntentRecord, errText string) string {
	values := record.Map()
	values["error"] = errText
	return fillLenient(entry.ErrorTemplate, values)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func fallback(entry TemplateEntry, data map[string]interface{}) string {
	prefix := genericFallback
	if entry.Category == CategoryMailboxIntegration {
		prefix = mailboxFallback
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return prefix + "\n" + fmt.Sprint(data)
	}
	return prefix + "\n" + string(raw)
}
