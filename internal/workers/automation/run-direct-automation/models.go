// internal/workers/automation/run-direct-automation/models.go
package rundirectautomation

import "chat-automation/internal/automation"

// Input is read from the job variables. Parameters carry the classifier's
// extracted fields (product, platform, max_results, ...).
type Input struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
	SessionID  string                 `json:"sessionId,omitempty"`
}

// Output is merged back into the process instance.
type Output struct {
	AutomationResult automation.Envelope `json:"automationResult"`
}
