// internal/workflow/zeebe.go
package workflow

import (
	"context"
	"fmt"

	"chat-automation/internal/common/logger"
)

// ProcessStarter is satisfied by camunda.Client.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

// ZeebeExecutor starts a BPMN process instance per approved action.
type ZeebeExecutor struct {
	starter   ProcessStarter
	processID string
	log       logger.Logger
}

func NewZeebeExecutor(starter ProcessStarter, processID string, log logger.Logger) *ZeebeExecutor {
	return &ZeebeExecutor{
		starter:   starter,
		processID: processID,
		log:       log.With(map[string]interface{}{"component": "zeebe_executor"}),
	}
}

func (e *ZeebeExecutor) Send(ctx context.Context, params map[string]interface{}, userID, sessionID string) (*Result, error) {
	vars := map[string]interface{}{
		"intent":     intentOf(params),
		"actionData": params,
		"userId":     userID,
		"sessionId":  sessionID,
	}

	key, err := e.starter.StartProcess(ctx, e.processID, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: start process %s: %v", ErrExecutorFailed, e.processID, err)
	}

	e.log.Info("process instance created", map[string]interface{}{
		"processId":          e.processID,
		"processInstanceKey": key,
		"intent":             vars["intent"],
	})
	return &Result{Success: true, ProcessInstanceKey: key}, nil
}
