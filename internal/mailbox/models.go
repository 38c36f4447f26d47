// internal/mailbox/models.go
package mailbox

// Message is the summary of a single mailbox message.
type Message struct {
	ID          string `json:"id"`
	ThreadID    string `json:"threadId,omitempty"`
	Subject     string `json:"subject"`
	Sender      string `json:"sender"`
	Date        string `json:"date"`
	BodyPreview string `json:"bodyPreview"`
	IsUnread    bool   `json:"isUnread"`
}

// MessageList is the result of an inbox listing or a search.
type MessageList struct {
	Messages      []Message `json:"messages"`
	Count         int       `json:"count"`
	TotalEstimate int       `json:"totalInInbox"`
	Query         string    `json:"query,omitempty"`
	Message       string    `json:"message"`
}

type UnreadCount struct {
	UnreadCount int    `json:"unreadCount"`
	Message     string `json:"message"`
}

type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Cc      string `json:"cc,omitempty"`
	Bcc     string `json:"bcc,omitempty"`
}

type SendResult struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

type MarkReadResult struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int    `json:"messagesTotal"`
	ThreadsTotal  int    `json:"threadsTotal"`
	HistoryID     string `json:"historyId"`
}

// Gmail REST wire types.

type listResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	ResultSizeEstimate int `json:"resultSizeEstimate"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Headers  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

type messageResponse struct {
	ID       string      `json:"id"`
	ThreadID string      `json:"threadId"`
	LabelIDs []string    `json:"labelIds"`
	Payload  messagePart `json:"payload"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type batchModifyRequest struct {
	IDs            []string `json:"ids"`
	RemoveLabelIDs []string `json:"removeLabelIds"`
}
