// internal/mailbox/client.go
package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"chat-automation/internal/common/config"
	httpclient "chat-automation/internal/common/http"
	"chat-automation/internal/common/logger"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	ErrRequestFailed = errors.New("MAILBOX_REQUEST_FAILED")
	ErrInvalidHeader = errors.New("MAILBOX_INVALID_HEADER")
)

const (
	defaultInboxQuery = "in:inbox"
	unreadQuery       = "is:unread in:inbox"
	previewLength     = 200
	detailConcurrency = 5
)

// Client talks to the Gmail REST API. Authentication is lazy and happens at
// most once per process; failures are not cached.
type Client struct {
	cfg     config.MailboxConfig
	log     logger.Logger
	baseURL string
	timeout time.Duration
	base    http.RoundTripper

	mu    sync.RWMutex
	api   *httpclient.Client
	group singleflight.Group
}

func NewClient(cfg config.MailboxConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://gmail.googleapis.com"
	}

	return &Client{
		cfg:     cfg,
		log:     log.With(map[string]interface{}{"component": "mailbox"}),
		baseURL: baseURL,
		timeout: timeout,
		base:    http.DefaultTransport,
	}
}

// EnsureAuthenticated loads stored credentials on first use. Concurrent
// callers share a single attempt.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.IsAuthenticated() {
		return nil
	}

	_, err, _ := c.group.Do("authenticate", func() (interface{}, error) {
		if c.IsAuthenticated() {
			return nil, nil
		}

		ts, err := c.newTokenSource(context.Background())
		if err != nil {
			return nil, err
		}

		api := httpclient.NewClient(c.timeout).WithTransport(&oauth2.Transport{
			Source: ts,
			Base:   c.base,
		})

		c.mu.Lock()
		c.api = api
		c.mu.Unlock()

		c.log.Info("mailbox authentication successful", nil)
		return nil, nil
	})
	if err != nil {
		c.log.Error("mailbox authentication failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api != nil
}

func (c *Client) client() (*httpclient.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.api == nil {
		return nil, ErrNotAuthenticated
	}
	return c.api, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/gmail/v1/users/me" + path
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	if err := api.DoJSON(ctx, method, c.endpoint(path), nil, in, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	return nil
}

// InboxMessages lists up to maxResults messages matching query, which
// defaults to the inbox.
func (c *Client) InboxMessages(ctx context.Context, maxResults int, query string) (*MessageList, error) {
	if query == "" {
		query = defaultInboxQuery
	}

	list, err := c.listMessages(ctx, maxResults, query)
	if err != nil {
		return nil, err
	}
	if len(list.Messages) == 0 {
		return &MessageList{
			Messages: []Message{},
			Message:  "No messages found in inbox",
		}, nil
	}

	messages := c.fetchDetails(ctx, list)
	return &MessageList{
		Messages:      messages,
		Count:         len(messages),
		TotalEstimate: list.ResultSizeEstimate,
		Message:       fmt.Sprintf("Retrieved %d messages from inbox", len(messages)),
	}, nil
}

func (c *Client) SearchMessages(ctx context.Context, query string, maxResults int) (*MessageList, error) {
	list, err := c.listMessages(ctx, maxResults, query)
	if err != nil {
		return nil, err
	}
	if len(list.Messages) == 0 {
		return &MessageList{
			Messages: []Message{},
			Query:    query,
			Message:  fmt.Sprintf("No messages found for query: %s", query),
		}, nil
	}

	messages := c.fetchDetails(ctx, list)
	return &MessageList{
		Messages:      messages,
		Count:         len(messages),
		TotalEstimate: list.ResultSizeEstimate,
		Query:         query,
		Message:       fmt.Sprintf("Found %d messages for query: %s", len(messages), query),
	}, nil
}

func (c *Client) UnreadCount(ctx context.Context) (*UnreadCount, error) {
	var list listResponse
	q := url.Values{"q": {unreadQuery}}
	if err := c.call(ctx, http.MethodGet, "/messages?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &UnreadCount{
		UnreadCount: list.ResultSizeEstimate,
		Message:     fmt.Sprintf("You have %d unread messages", list.ResultSizeEstimate),
	}, nil
}

func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	msg, err := buildMIME(req)
	if err != nil {
		return nil, err
	}
	raw := base64.URLEncoding.EncodeToString(msg)

	var resp sendResponse
	if err := c.call(ctx, http.MethodPost, "/messages/send", map[string]string{"raw": raw}, &resp); err != nil {
		return nil, err
	}
	return &SendResult{
		MessageID: resp.ID,
		Message:   fmt.Sprintf("Email sent successfully to %s", req.To),
	}, nil
}

// MarkRead removes the UNREAD label from the given messages.
func (c *Client) MarkRead(ctx context.Context, ids []string) (*MarkReadResult, error) {
	if len(ids) == 0 {
		return &MarkReadResult{Message: "No messages to mark as read"}, nil
	}

	body := batchModifyRequest{IDs: ids, RemoveLabelIDs: []string{"UNREAD"}}
	if err := c.call(ctx, http.MethodPost, "/messages/batchModify", body, nil); err != nil {
		return nil, err
	}
	return &MarkReadResult{
		Count:   len(ids),
		Message: fmt.Sprintf("Marked %d messages as read", len(ids)),
	}, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var wire struct {
		EmailAddress  string `json:"emailAddress"`
		MessagesTotal int    `json:"messagesTotal"`
		ThreadsTotal  int    `json:"threadsTotal"`
		HistoryID     string `json:"historyId"`
	}
	if err := c.call(ctx, http.MethodGet, "/profile", nil, &wire); err != nil {
		return nil, err
	}
	return &Profile{
		EmailAddress:  wire.EmailAddress,
		MessagesTotal: wire.MessagesTotal,
		ThreadsTotal:  wire.ThreadsTotal,
		HistoryID:     wire.HistoryID,
	}, nil
}

func (c *Client) listMessages(ctx context.Context, maxResults int, query string) (*listResponse, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	q := url.Values{"maxResults": {strconv.Itoa(maxResults)}}
	if query != "" {
		q.Set("q", query)
	}

	var list listResponse
	if err := c.call(ctx, http.MethodGet, "/messages?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// fetchDetails loads every listed message concurrently, keeping list order.
// Messages whose details cannot be fetched are skipped.
func (c *Client) fetchDetails(ctx context.Context, list *listResponse) []Message {
	slots := make([]*Message, len(list.Messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, ref := range list.Messages {
		i, id := i, ref.ID
		g.Go(func() error {
			var detail messageResponse
			if err := c.call(gctx, http.MethodGet, "/messages/"+url.PathEscape(id)+"?format=full", nil, &detail); err != nil {
				c.log.Warn("failed to get message details", map[string]interface{}{
					"messageId": id,
					"error":     err.Error(),
				})
				return nil
			}
			msg := toMessage(id, detail)
			slots[i] = &msg
			return nil
		})
	}
	_ = g.Wait()

	messages := make([]Message, 0, len(slots))
	for _, m := range slots {
		if m != nil {
			messages = append(messages, *m)
		}
	}
	return messages
}

func toMessage(id string, detail messageResponse) Message {
	msg := Message{
		ID:          id,
		ThreadID:    detail.ThreadID,
		Subject:     header(detail.Payload, "Subject", "No Subject"),
		Sender:      header(detail.Payload, "From", "Unknown Sender"),
		Date:        header(detail.Payload, "Date", "Unknown Date"),
		BodyPreview: preview(extractBody(detail.Payload), previewLength),
	}
	for _, label := range detail.LabelIDs {
		if label == "UNREAD" {
			msg.IsUnread = true
			break
		}
	}
	return msg
}

func header(p messagePart, name, fallback string) string {
	for _, h := range p.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return fallback
}

// extractBody prefers the first text/plain part and falls back to
// text/html.
func extractBody(p messagePart) string {
	var body string
	var err error

	if len(p.Parts) > 0 {
		for _, part := range p.Parts {
			if part.Body.Data == "" {
				continue
			}
			if part.MimeType == "text/plain" {
				body, err = decodeBody(part.Body.Data)
				break
			}
			if part.MimeType == "text/html" && body == "" {
				body, err = decodeBody(part.Body.Data)
			}
		}
	} else if (p.MimeType == "text/plain" || p.MimeType == "text/html") && p.Body.Data != "" {
		body, err = decodeBody(p.Body.Data)
	}

	if err != nil {
		return "Could not extract message body"
	}
	return strings.TrimSpace(body)
}

func decodeBody(data string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func preview(body string, n int) string {
	runes := []rune(body)
	if len(runes) <= n {
		return body
	}
	return string(runes[:n]) + "..."
}

// buildMIME renders req as an RFC 5322 message. Header values carrying CR or
// LF are rejected.
func buildMIME(req SendRequest) ([]byte, error) {
	for _, h := range []struct{ name, value string }{
		{"To", req.To},
		{"Cc", req.Cc},
		{"Bcc", req.Bcc},
		{"Subject", req.Subject},
	} {
		if strings.ContainsAny(h.value, "\r\n") {
			return nil, fmt.Errorf("%w: %s contains a line break", ErrInvalidHeader, h.name)
		}
	}

	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("To: " + req.To + "\r\n")
	if req.Cc != "" {
		b.WriteString("Cc: " + req.Cc + "\r\n")
	}
	if req.Bcc != "" {
		b.WriteString("Bcc: " + req.Bcc + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", req.Subject) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(req.Body)
	return []byte(b.String()), nil
}
