// internal/models/chat.go
package models

import (
	"context"
	"time"

	"chat-automation/internal/automation"
)

const DefaultUserID = "default_user"

// ConversationTurn is one user message with the assistant reply and the
// approval state of the action it may have proposed.
type ConversationTurn struct {
	ID                      string                   `json:"id" db:"id"`
	SessionID               string                   `json:"sessionId" db:"session_id"`
	UserID                  string                   `json:"userId" db:"user_id"`
	Message                 string                   `json:"message" db:"message"`
	Response                string                   `json:"response" db:"response"`
	IntentData              *automation.IntentRecord `json:"intentData" db:"intent_data"`
	NeedsApproval           bool                     `json:"needsApproval" db:"needs_approval"`
	Approved                *bool                    `json:"approved" db:"approved"`
	ExternalExecutionResult map[string]interface{}   `json:"externalExecutionResult,omitempty" db:"external_execution_result"`
	EditedData              map[string]interface{}   `json:"editedData,omitempty" db:"edited_data"`
	Timestamp               time.Time                `json:"timestamp" db:"timestamp"`
}

// IsPending reports whether the turn still awaits a human decision.
func (t *ConversationTurn) IsPending() bool {
	return t.Approved == nil
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// ApprovalUpdate is the write applied when a pending turn is resolved.
type ApprovalUpdate struct {
	Approved                bool
	ExternalExecutionResult map[string]interface{}
	EditedData              map[string]interface{}
}

// ConversationRepository defines conversation turn data access.
type ConversationRepository interface {
	Create(ctx context.Context, turn *ConversationTurn) error
	Get(ctx context.Context, id string) (*ConversationTurn, error)
	ListBySession(ctx context.Context, sessionID string) ([]*ConversationTurn, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
	// Resolve applies update only while the turn is pending and reports
	// whether it did.
	Resolve(ctx context.Context, id string, update ApprovalUpdate) (bool, error)
}
