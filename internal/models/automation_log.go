// internal/models/automation_log.go
package models

import (
	"context"
	"time"
)

// AutomationLogEntry records a single automation execution. Entries are
// write-once.
type AutomationLogEntry struct {
	ID             string                 `json:"id" db:"id"`
	SessionID      string                 `json:"sessionId" db:"session_id"`
	AutomationType string                 `json:"automationType" db:"automation_type"`
	Parameters     map[string]interface{} `json:"parameters" db:"parameters"`
	Result         map[string]interface{} `json:"result" db:"result"`
	Success        bool                   `json:"success" db:"success"`
	Message        string                 `json:"message" db:"message"`
	ExecutionTime  float64                `json:"executionTime" db:"execution_time"`
	Timestamp      time.Time              `json:"timestamp" db:"timestamp"`
}

type AutomationLogRepository interface {
	Insert(ctx context.Context, entry *AutomationLogEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*AutomationLogEntry, error)
}

// AutomationLogSearcher runs full-text queries over indexed log entries.
type AutomationLogSearcher interface {
	Index(ctx context.Context, entry *AutomationLogEntry) error
	Search(ctx context.Context, sessionID, query string, limit int) ([]*AutomationLogEntry, error)
}
