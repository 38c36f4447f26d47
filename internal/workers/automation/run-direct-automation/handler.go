// internal/workers/automation/run-direct-automation/handler.go
package rundirectautomation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"chat-automation/internal/automation"
	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "run-direct-automation"

var (
	ErrInvalidInput  = stderrors.New("INVALID_INPUT")
	ErrUnknownIntent = stderrors.New("UNKNOWN_INTENT")
)

type Dispatcher interface {
	Dispatch(ctx context.Context, record automation.IntentRecord) automation.Envelope
	Registry() *automation.Registry
}

type Handler struct {
	config     *Config
	dispatcher Dispatcher
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, dispatcher Dispatcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		dispatcher: dispatcher,
		errors:     errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return nil
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, toStandardError(input.Intent, err))
		return nil
	}

	return h.completeJob(ctx, client, job, output)
}

// Execute dispatches a single direct-automation intent. A handler-level
// failure is still a completed job; the envelope carries success=false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Intent == "" {
		return nil, fmt.Errorf("%w: intent is required", ErrInvalidInput)
	}

	intent := automation.Intent(input.Intent)
	if !h.dispatcher.Registry().IsDirect(intent) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, input.Intent)
	}

	record := automation.NewIntentRecord(intent, input.Confidence, input.Parameters)
	env := h.dispatcher.Dispatch(ctx, record)

	h.logger.Info("direct automation dispatched", map[string]interface{}{
		"intent":        input.Intent,
		"sessionId":     input.SessionID,
		"success":       env.Success,
		"executionTime": env.ExecutionTimeSeconds,
	})
	return &Output{AutomationResult: env}, nil
}

func toStandardError(intent string, err error) *errors.StandardError {
	switch {
	case stderrors.Is(err, ErrUnknownIntent):
		return errors.NewUnknownIntentError(intent)
	case stderrors.Is(err, ErrInvalidInput):
		return errors.NewValidationFailedError(err.Error())
	default:
		return errors.NewInternalError(err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "ENCODE_ERROR").Inc()
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "COMPLETE_ERROR").Inc()
		return fmt.Errorf("send complete job command: %w", err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, stdErr)
}
