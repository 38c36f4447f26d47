// internal/store/recorder.go
package store

import (
	"context"
	"time"

	"chat-automation/internal/common/logger"
	"chat-automation/internal/models"

	"github.com/google/uuid"
)

// LogRecorder writes automation log entries to Postgres and mirrors them
// into the search index. Postgres is authoritative; index failures are
// logged and dropped.
type LogRecorder struct {
	repo  models.AutomationLogRepository
	index models.AutomationLogSearcher
	log   logger.Logger
	now   func() time.Time
}

func NewLogRecorder(repo models.AutomationLogRepository, index models.AutomationLogSearcher, log logger.Logger) *LogRecorder {
	return &LogRecorder{
		repo:  repo,
		index: index,
		log:   log.With(map[string]interface{}{"component": "automation_log"}),
		now:   time.Now,
	}
}

// Record assigns an id and timestamp when missing and persists entry.
func (r *LogRecorder) Record(ctx context.Context, entry *models.AutomationLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		return err
	}

	if r.index != nil {
		if err := r.index.Index(ctx, entry); err != nil {
			r.log.Warn("failed to index automation log", map[string]interface{}{
				"id":    entry.ID,
				"error": err.Error(),
			})
		}
	}
	return nil
}
