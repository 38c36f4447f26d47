// internal/workflow/executor.go
package workflow

import (
	"context"
	"errors"
)

var ErrExecutorFailed = errors.New("EXTERNAL_EXECUTOR_FAILED")

// Executor forwards an approved action to the external workflow engine.
// A returned error means the action could not be delivered at all; a
// delivered action the engine rejected comes back as Result.Success=false.
type Executor interface {
	Send(ctx context.Context, params map[string]interface{}, userID, sessionID string) (*Result, error)
}

type Result struct {
	Success            bool        `json:"success"`
	StatusCode         int         `json:"statusCode,omitempty"`
	Response           interface{} `json:"response,omitempty"`
	Error              string      `json:"error,omitempty"`
	ProcessInstanceKey int64       `json:"processInstanceKey,omitempty"`
}

// Map returns the result as a JSON-compatible map for persistence.
func (r *Result) Map() map[string]interface{} {
	m := map[string]interface{}{"success": r.Success}
	if r.StatusCode != 0 {
		m["statusCode"] = r.StatusCode
	}
	if r.Response != nil {
		m["response"] = r.Response
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	if r.ProcessInstanceKey != 0 {
		m["processInstanceKey"] = r.ProcessInstanceKey
	}
	return m
}

func intentOf(params map[string]interface{}) string {
	if s, ok := params["intent"].(string); ok && s != "" {
		return s
	}
	return "unknown"
}
