// Package errors provides the standardized error taxonomy shared by the HTTP
// surface and the Zeebe job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Automation and approval errors
const (
	ErrCodeUnknownIntent          ErrorCode = "UNKNOWN_INTENT"
	ErrCodeCategoryHandlerFailed  ErrorCode = "CATEGORY_HANDLER_FAILED"
	ErrCodeFormattingFailed       ErrorCode = "FORMATTING_FAILED"
	ErrCodeAuthenticationFailed   ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeTurnNotFound           ErrorCode = "TURN_NOT_FOUND"
	ErrCodeAlreadyResolved        ErrorCode = "ALREADY_RESOLVED"
	ErrCodeExternalExecutorFailed ErrorCode = "EXTERNAL_EXECUTOR_FAILED"

	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeClassifierTimeout    ErrorCode = "CLASSIFIER_TIMEOUT"
	ErrCodeScraperFailed        ErrorCode = "SCRAPER_FAILED"
	ErrCodeMailboxFailed        ErrorCode = "MAILBOX_FAILED"

	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule     ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewUnknownIntentError(intent string) *StandardError {
	return newError(ErrCodeUnknownIntent, "Unknown automation intent", fmt.Sprintf("intent: %s", intent), false)
}

func NewCategoryHandlerFailedError(category string, err error) *StandardError {
	return newError(ErrCodeCategoryHandlerFailed, "Automation category handler failed",
		fmt.Sprintf("category: %s, error: %s", category, err.Error()), false)
}

func NewFormattingFailedError(intent string, err error) *StandardError {
	return newError(ErrCodeFormattingFailed, "Automation result formatting failed",
		fmt.Sprintf("intent: %s, error: %s", intent, err.Error()), false)
}

func NewAuthenticationFailedError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "Authentication failed", details, false)
}

func NewTurnNotFoundError(turnID string) *StandardError {
	return newError(ErrCodeTurnNotFound, "Message not found", fmt.Sprintf("messageId: %s", turnID), false)
}

func NewAlreadyResolvedError(turnID string) *StandardError {
	return newError(ErrCodeAlreadyResolved, "Message has already been resolved", fmt.Sprintf("messageId: %s", turnID), false)
}

func NewExternalExecutorFailedError(err error) *StandardError {
	return newError(ErrCodeExternalExecutorFailed, "Workflow executor call failed", err.Error(), true)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false)
}

func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Intent classification failed", err.Error(), true)
}

func NewClassifierTimeoutError() *StandardError {
	return newError(ErrCodeClassifierTimeout, "Intent classification timeout", "classifier call exceeded timeout", true)
}

func NewScraperFailedError(err error) *StandardError {
	return newError(ErrCodeScraperFailed, "Scraping service call failed", err.Error(), true)
}

func NewMailboxFailedError(err error) *StandardError {
	return newError(ErrCodeMailboxFailed, "Mailbox service call failed", err.Error(), true)
}

func NewPersistenceFailedError(operation string, err error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Persistence operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Classification helpers
// ==========================

// Normalize returns err as a StandardError, unwrapping if needed.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case ErrCodeTurnNotFound, ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyResolved, ErrCodeBusinessRule:
		return http.StatusConflict
	case ErrCodeClassificationFailed, ErrCodeScraperFailed, ErrCodeMailboxFailed, ErrCodeExternalService:
		return http.StatusBadGateway
	case ErrCodeClassifierTimeout, ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeExternalExecutorFailed,
		ErrCodeExternalService,
		ErrCodeScraperFailed,
		ErrCodeMailboxFailed,
		ErrCodeClassificationFailed:
		return 3

	case ErrCodeClassifierTimeout, ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "FORMATTING"):
		return "AUTOMATION"
	case strings.Contains(codeStr, "TURN") || strings.Contains(codeStr, "RESOLVED") || strings.Contains(codeStr, "EXECUTOR"):
		return "APPROVAL"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "SEARCH"):
		return "STORAGE"
	case strings.Contains(codeStr, "CLASSIF") || strings.Contains(codeStr, "SCRAPER") || strings.Contains(codeStr, "MAILBOX") || strings.Contains(codeStr, "EXTERNAL"):
		return "COLLABORATOR"
	case strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
