// internal/store/conversation.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chat-automation/internal/automation"
	"chat-automation/internal/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("NOT_FOUND")

const historyLimit = 1000

const turnColumns = `id, session_id, user_id, message, response, intent_data, needs_approval, approved, external_execution_result, edited_data, timestamp`

// ConversationStore persists conversation turns in Postgres.
type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) Create(ctx context.Context, turn *models.ConversationTurn) error {
	intentData, err := jsonColumn(turn.IntentData)
	if err != nil {
		return fmt.Errorf("encode intent_data: %w", err)
	}
	execResult, err := jsonColumn(turn.ExternalExecutionResult)
	if err != nil {
		return fmt.Errorf("encode external_execution_result: %w", err)
	}
	edited, err := jsonColumn(turn.EditedData)
	if err != nil {
		return fmt.Errorf("encode edited_data: %w", err)
	}

	var approved sql.NullBool
	if turn.Approved != nil {
		approved = sql.NullBool{Bool: *turn.Approved, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (`+turnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		turn.ID, turn.SessionID, turn.UserID, turn.Message, turn.Response,
		intentData, turn.NeedsApproval, approved, execResult, edited, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// Get returns ErrNotFound for unknown or malformed ids.
func (s *ConversationStore) Get(ctx context.Context, id string) (*models.ConversationTurn, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+turnColumns+` FROM chat_messages WHERE id = $1`, id)
	turn, err := scanTurn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get turn: %w", err)
	}
	return turn, nil
}

// ListBySession returns the oldest turns first.
func (s *ConversationStore) ListBySession(ctx context.Context, sessionID string) ([]*models.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+turnColumns+` FROM chat_messages WHERE session_id = $1 ORDER BY timestamp ASC LIMIT $2`,
		sessionID, historyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*models.ConversationTurn, 0)
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func (s *ConversationStore) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete turns: %w", err)
	}
	return res.RowsAffected()
}

func (s *ConversationStore) Resolve(ctx context.Context, id string, update models.ApprovalUpdate) (bool, error) {
	execResult, err := jsonColumn(update.ExternalExecutionResult)
	if err != nil {
		return false, fmt.Errorf("encode external_execution_result: %w", err)
	}
	edited, err := jsonColumn(update.EditedData)
	if err != nil {
		return false, fmt.Errorf("encode edited_data: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE chat_messages
		SET approved = $2,
		    external_execution_result = COALESCE($3::jsonb, external_execution_result),
		    edited_data = COALESCE($4::jsonb, edited_data)
		WHERE id = $1 AND approved IS NULL`,
		id, update.Approved, execResult, edited,
	)
	if err != nil {
		return false, fmt.Errorf("resolve turn: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTurn(row scanner) (*models.ConversationTurn, error) {
	var (
		turn                           models.ConversationTurn
		intentData, execResult, edited []byte
		approved                       sql.NullBool
	)

	if err := row.Scan(
		&turn.ID, &turn.SessionID, &turn.UserID, &turn.Message, &turn.Response,
		&intentData, &turn.NeedsApproval, &approved, &execResult, &edited, &turn.Timestamp,
	); err != nil {
		return nil, err
	}

	if len(intentData) > 0 && string(intentData) != "null" {
		var rec automation.IntentRecord
		if err := json.Unmarshal(intentData, &rec); err != nil {
			return nil, fmt.Errorf("decode intent_data: %w", err)
		}
		turn.IntentData = &rec
	}
	if approved.Valid {
		turn.Approved = models.BoolPtr(approved.Bool)
	}
	if err := decodeObject(execResult, &turn.ExternalExecutionResult); err != nil {
		return nil, fmt.Errorf("decode external_execution_result: %w", err)
	}
	if err := decodeObject(edited, &turn.EditedData); err != nil {
		return nil, fmt.Errorf("decode edited_data: %w", err)
	}
	return &turn, nil
}

// jsonColumn encodes v as JSON text for a JSONB column; nil values map to
// NULL.
func jsonColumn(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *automation.IntentRecord:
		if t == nil {
			return nil, nil
		}
	case map[string]interface{}:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeObject(raw []byte, dst *map[string]interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
