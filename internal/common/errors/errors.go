// Package errors provides the notification platform's error taxonomy and its
// mapping onto BPMN errors thrown back to the workflow engine.
package errors

import (
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeGlobalTemplateNotFound   ErrorCode = "GLOBAL_TEMPLATE_NOT_FOUND"
	ErrCodeSiteTemplateNotFound     ErrorCode = "SITE_TEMPLATE_NOT_FOUND"
	ErrCodeRuleNotFound             ErrorCode = "AUTOMATION_RULE_NOT_FOUND"
	ErrCodeDuplicateSiteTemplate    ErrorCode = "DUPLICATE_SITE_TEMPLATE"
	ErrCodeSystemTemplateImmutable  ErrorCode = "SYSTEM_TEMPLATE_IMMUTABLE"
	ErrCodeValidationFailed         ErrorCode = "VALIDATION_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeDeliveryFailed           ErrorCode = "DELIVERY_FAILED"
	ErrCodeChannelNotConfigured     ErrorCode = "CHANNEL_NOT_CONFIGURED"
	ErrCodeEventPublishFailed       ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeEngineUnavailable        ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
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

// Is matches another *StandardError by code, so errors.Is(err, &StandardError{Code: X})
// works through wrapping.
func (e *StandardError) Is(target error) bool {
	var t *StandardError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
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

func newStandard(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewGlobalTemplateNotFoundError creates a non-retryable lookup error.
func NewGlobalTemplateNotFoundError(id string) *StandardError {
	return newStandard(ErrCodeGlobalTemplateNotFound, "Global template not found",
		fmt.Sprintf("globalTemplateId: %s", id), false)
}

// NewSiteTemplateNotFoundError creates a non-retryable lookup error.
func NewSiteTemplateNotFoundError(id string) *StandardError {
	return newStandard(ErrCodeSiteTemplateNotFound, "Site template not found",
		fmt.Sprintf("siteTemplateId: %s", id), false)
}

// NewRuleNotFoundError creates a non-retryable lookup error.
func NewRuleNotFoundError(id string) *StandardError {
	return newStandard(ErrCodeRuleNotFound, "Automation rule not found",
		fmt.Sprintf("ruleId: %s", id), false)
}

// NewDuplicateSiteTemplateError is returned when a site already owns a
// template of the given type.
func NewDuplicateSiteTemplateError(siteID, templateType string) *StandardError {
	e := newStandard(ErrCodeDuplicateSiteTemplate, "Template already added to this site",
		fmt.Sprintf("siteId: %s, type: %s", siteID, templateType), false)
	e.Metadata = map[string]interface{}{"siteId": siteID, "type": templateType}
	return e
}

// NewSystemTemplateImmutableError rejects deletion of a system global template.
func NewSystemTemplateImmutableError(id string) *StandardError {
	return newStandard(ErrCodeSystemTemplateImmutable, "System templates cannot be deleted",
		fmt.Sprintf("globalTemplateId: %s", id), false)
}

func NewValidationFailedError(details string) *StandardError {
	return newStandard(ErrCodeValidationFailed, "Input validation failed", details, false)
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newStandard(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newStandard(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewDatabaseError classifies a repository failure: lost or refused
// connections become DATABASE_CONNECTION_FAILED, anything else
// QUERY_EXECUTION_FAILED.
func NewDatabaseError(operation string, err error) *StandardError {
	if isConnectionError(err) {
		return NewDatabaseConnectionFailedError(fmt.Errorf("operation: %s, error: %w", operation, err))
	}
	return NewQueryExecutionFailedError(operation, err)
}

func isConnectionError(err error) bool {
	if stderrors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	// SQLSTATE class 08 is "connection exception".
	var stateErr interface{ SQLState() string }
	if stderrors.As(err, &stateErr) {
		return strings.HasPrefix(stateErr.SQLState(), "08")
	}
	return false
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newStandard(ErrCodeSearchQueryFailed, "History search failed", err.Error(), true)
}

// NewDeliveryFailedError wraps a provider failure for a channel.
func NewDeliveryFailedError(channel string, err error) *StandardError {
	e := newStandard(ErrCodeDeliveryFailed, fmt.Sprintf("Failed to deliver %s notification", channel),
		err.Error(), true)
	e.Metadata = map[string]interface{}{"channel": channel}
	return e
}

// NewChannelNotConfiguredError is returned when no sender is wired for a channel.
func NewChannelNotConfiguredError(channel string) *StandardError {
	return newStandard(ErrCodeChannelNotConfigured, "Channel not configured",
		fmt.Sprintf("channel: %s", channel), false)
}

func NewEventPublishFailedError(err error) *StandardError {
	return newStandard(ErrCodeEventPublishFailed, "Failed to publish history event", err.Error(), true)
}

// NewEngineUnavailableError wraps a transient Zeebe gateway failure.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return newStandard(ErrCodeEngineUnavailable, "Workflow engine unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDeliveryFailed,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeEventPublishFailed:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// Internal and BPMN codes are identical.
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

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard unwraps err into a *StandardError when one is in the chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsNotFound reports whether err is any of the lookup failures.
func IsNotFound(err error) bool {
	stdErr, ok := AsStandard(err)
	if !ok {
		return false
	}
	return strings.HasSuffix(string(stdErr.Code), "_NOT_FOUND")
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Retryable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "RULE"):
		return "AUTOMATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "STORAGE"
	case strings.Contains(codeStr, "DELIVERY") || strings.Contains(codeStr, "CHANNEL") || strings.Contains(codeStr, "EVENT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "ENGINE"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
