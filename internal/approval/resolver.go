// internal/approval/resolver.go
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/metrics"
	"chat-automation/internal/models"
	"chat-automation/internal/store"
	"chat-automation/internal/workflow"
)

var (
	ErrTurnNotFound    = errors.New("TURN_NOT_FOUND")
	ErrAlreadyResolved = errors.New("ALREADY_RESOLVED")
)

const (
	EventApprovalResolved = "approval.resolved"

	MessageCancelled      = "Action cancelled"
	MessageExecuted       = "Action executed successfully!"
	MessageExecutorIssues = "Action sent but n8n had issues"

	decisionApproved = "approved"
	decisionRejected = "rejected"
)

type Lock interface {
	Acquire(ctx context.Context, turnID string) (bool, error)
	Release(ctx context.Context, turnID string) error
	Hold(ctx context.Context, turnID string) error
}

type Notifier interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) (string, error)
}

// Resolution is the reply to an approval decision.
type Resolution struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	N8nResponse map[string]interface{} `json:"n8nResponse,omitempty"`
}

type Resolver struct {
	turns    models.ConversationRepository
	executor workflow.Executor
	lock     Lock
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// NewResolver builds a resolver. notifier may be nil.
func NewResolver(turns models.ConversationRepository, executor workflow.Executor, lock Lock, notifier Notifier, log logger.Logger) *Resolver {
	return &Resolver{
		turns:    turns,
		executor: executor,
		lock:     lock,
		notifier: notifier,
		log:      log.With(map[string]interface{}{"component": "approval_resolver"}),
		now:      time.Now,
	}
}

// Resolve applies a human decision to a pending turn. A turn reaches the
// executor at most once.
func (r *Resolver) Resolve(ctx context.Context, turnID string, approved bool, edited map[string]interface{}) (*Resolution, error) {
	turn, err := r.turns.Get(ctx, turnID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTurnNotFound, turnID)
		}
		return nil, fmt.Errorf("load turn: %w", err)
	}
	if !turn.IsPending() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, turnID)
	}

	claimed, err := r.lock.Acquire(ctx, turnID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, turnID)
	}

	if !approved {
		return r.reject(ctx, turn)
	}
	return r.approve(ctx, turn, edited)
}

func (r *Resolver) reject(ctx context.Context, turn *models.ConversationTurn) (*Resolution, error) {
	ok, err := r.turns.Resolve(ctx, turn.ID, models.ApprovalUpdate{Approved: false})
	if err != nil {
		r.release(ctx, turn.ID)
		return nil, fmt.Errorf("store rejection: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, turn.ID)
	}

	metrics.ApprovalsResolved.WithLabelValues(decisionRejected).Inc()
	r.log.Info("action rejected", map[string]interface{}{
		"turnId":    turn.ID,
		"sessionId": turn.SessionID,
	})
	r.publish(ctx, turn, false, nil)

	return &Resolution{Success: true, Message: MessageCancelled}, nil
}

func (r *Resolver) approve(ctx context.Context, turn *models.ConversationTurn, edited map[string]interface{}) (*Resolution, error) {
	effective := edited
	if len(effective) == 0 {
		effective = map[string]interface{}{}
		if turn.IntentData != nil {
			effective = turn.IntentData.Map()
		}
	}

	r.log.Info("sending approved action", map[string]interface{}{
		"turnId":    turn.ID,
		"sessionId": turn.SessionID,
		"edited":    len(edited) > 0,
	})

	result, err := r.executor.Send(ctx, effective, turn.UserID, turn.SessionID)
	if err != nil {
		r.release(ctx, turn.ID)
		return nil, err
	}
	r.hold(ctx, turn.ID)

	execResult := result.Map()
	ok, err := r.turns.Resolve(ctx, turn.ID, models.ApprovalUpdate{
		Approved:                true,
		ExternalExecutionResult: execResult,
		EditedData:              edited,
	})
	if err != nil {
		return nil, fmt.Errorf("store approval: %w", err)
	}
	if !ok {
		r.log.Warn("turn resolved concurrently after execution", map[string]interface{}{
			"turnId": turn.ID,
		})
	}

	metrics.ApprovalsResolved.WithLabelValues(decisionApproved).Inc()
	r.publish(ctx, turn, true, result)

	msg := MessageExecuted
	if !result.Success {
		msg = MessageExecutorIssues
	}
	return &Resolution{Success: true, Message: msg, N8nResponse: execResult}, nil
}

func (r *Resolver) release(ctx context.Context, turnID string) {
	if err := r.lock.Release(ctx, turnID); err != nil {
		r.log.Warn("failed to release approval lock", map[string]interface{}{
			"turnId": turnID,
			"error":  err.Error(),
		})
	}
}

// hold makes the claim permanent once the executor has run for turnID.
func (r *Resolver) hold(ctx context.Context, turnID string) {
	if err := r.lock.Hold(ctx, turnID); err != nil {
		r.log.Error("failed to hold approval lock", map[string]interface{}{
			"turnId": turnID,
			"error":  err.Error(),
		})
	}
}

func (r *Resolver) publish(ctx context.Context, turn *models.ConversationTurn, approved bool, result *workflow.Result) {
	if r.notifier == nil {
		return
	}

	payload := map[string]interface{}{
		"messageId":  turn.ID,
		"sessionId":  turn.SessionID,
		"userId":     turn.UserID,
		"approved":   approved,
		"resolvedAt": r.now().UTC().Format(time.RFC3339),
	}
	if turn.IntentData != nil {
		payload["intent"] = string(turn.IntentData.Intent)
	}
	if result != nil {
		payload["executorSuccess"] = result.Success
	}

	if _, err := r.notifier.PublishEvent(ctx, EventApprovalResolved, payload); err != nil {
		r.log.Warn("failed to publish approval event", map[string]interface{}{
			"turnId": turn.ID,
			"error":  err.Error(),
		})
	}
}
