// internal/store/automation_log.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"chat-automation/internal/models"
)

const DefaultLogLimit = 50

// AutomationLogStore appends automation log entries to Postgres.
type AutomationLogStore struct {
	db *sql.DB
}

func NewAutomationLogStore(db *sql.DB) *AutomationLogStore {
	return &AutomationLogStore{db: db}
}

func (s *AutomationLogStore) Insert(ctx context.Context, entry *models.AutomationLogEntry) error {
	params, err := jsonColumn(nonNilMap(entry.Parameters))
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	result, err := jsonColumn(nonNilMap(entry.Result))
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO automation_logs (id, session_id, automation_type, parameters, result, success, message, execution_time, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.SessionID, entry.AutomationType, params, result,
		entry.Success, entry.Message, entry.ExecutionTime, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert automation log: %w", err)
	}
	return nil
}

// ListBySession returns the newest entries first.
func (s *AutomationLogStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.AutomationLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, automation_type, parameters, result, success, message, execution_time, timestamp
		FROM automation_logs
		WHERE session_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list automation logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AutomationLogEntry, 0)
	for rows.Next() {
		var (
			e              models.AutomationLogEntry
			params, result []byte
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.AutomationType, &params, &result,
			&e.Success, &e.Message, &e.ExecutionTime, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan automation log: %w", err)
		}
		if err := decodeObject(params, &e.Parameters); err != nil {
			return nil, fmt.Errorf("decode parameters: %w", err)
		}
		if err := decodeObject(result, &e.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
