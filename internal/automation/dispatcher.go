// internal/automation/dispatcher.go
package automation

import (
	"context"
	"fmt"
	"time"

	"chat-automation/internal/common/errors"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/metrics"
)

// Envelope is the outcome of one direct-automation dispatch.
type Envelope struct {
	Success              bool                   `json:"success"`
	Message              string                 `json:"message"`
	Data                 map[string]interface{} `json:"data"`
	ExecutionTimeSeconds float64                `json:"executionTime"`
	AutomationIntent     Intent                 `json:"automationIntent,omitempty"`
}

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusError   = "error"
)

// Dispatcher routes direct-automation intents to their category handler and
// formats the result.
type Dispatcher struct {
	registry  *Registry
	formatter *Formatter
	handlers  CategoryHandlers
	log       logger.Logger
	now       func() time.Time
}

func NewDispatcher(registry *Registry, formatter *Formatter, handlers CategoryHandlers, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		formatter: formatter,
		handlers:  handlers,
		log:       log.With(map[string]interface{}{"component": "dispatcher"}),
		now:       time.Now,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch never returns an error: every failure becomes a failed envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, record IntentRecord) Envelope {
	entry, ok := d.registry.Lookup(record.Intent)
	if !ok {
		metrics.AutomationDispatches.WithLabelValues("unknown", statusFailure).Inc()
		return Envelope{
			Success: false,
			Message: fmt.Sprintf("❌ Unknown automation intent: %s", record.Intent),
			Data:    map[string]interface{}{},
		}
	}

	d.log.Info("processing direct automation", map[string]interface{}{
		"intent":   string(record.Intent),
		"category": string(entry.Category),
	})
	start := d.now()

	result, err := d.invoke(ctx, entry, record)
	elapsed := d.now().Sub(start)
	metrics.AutomationDispatchDuration.WithLabelValues(string(record.Intent)).Observe(elapsed.Seconds())

	env := Envelope{
		ExecutionTimeSeconds: elapsed.Seconds(),
		AutomationIntent:     record.Intent,
	}

	switch {
	case err != nil:
		stdErr := errors.NewCategoryHandlerFailedError(string(entry.Category), err)
		d.log.Error("direct automation failed", map[string]interface{}{
			"intent":  string(record.Intent),
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
		metrics.AutomationDispatches.WithLabelValues(string(record.Intent), statusError).Inc()
		env.Success = false
		env.Data = map[string]interface{}{}
		env.Message = RenderError(entry, record, err.Error())

	case result.Success:
		metrics.AutomationDispatches.WithLabelValues(string(record.Intent), statusSuccess).Inc()
		env.Success = true
		env.Data = nonNil(result.Data)
		env.Message = d.formatter.Format(entry, env.Data)

	default:
		metrics.AutomationDispatches.WithLabelValues(string(record.Intent), statusFailure).Inc()
		msg := result.Message
		if msg == "" {
			msg = "Unknown error"
		}
		env.Success = false
		env.Data = nonNil(result.Data)
		env.Message = RenderError(entry, record, msg)
	}

	return env
}

// invoke runs the category handler and converts a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, entry TemplateEntry, record IntentRecord) (result HandlerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch entry.Category {
	case CategoryLinkedInInsights:
		return d.handlers.LinkedIn(ctx, record)
	case CategoryPriceMonitoring:
		return d.handlers.Price(ctx, record)
	case CategoryDataExtraction:
		return d.handlers.DataExtraction(ctx, record)
	case CategoryWebScraping:
		return d.handlers.WebScraping(ctx, record)
	case CategoryMailboxIntegration:
		return d.handlers.Mailbox(ctx, record)
	default:
		return failure("Unknown automation type"), nil
	}
}

func nonNil(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
