// Package errors defines the coded failures reported by the extraction
// pipeline.
//
// Per-image and per-record failures are accumulated into a batch summary
// rather than returned to the caller, so each carries enough context (code,
// source, details) to be reported on its own. Only configuration errors are
// fatal.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode classifies a processing failure.
type ErrorCode string

const (
	// Recognition errors
	ErrorRecognitionFailed  ErrorCode = "RECOGNITION_FAILED"
	ErrorRecognitionTimeout ErrorCode = "RECOGNITION_TIMEOUT"

	// Field errors
	ErrorValidationRejected ErrorCode = "VALIDATION_REJECTED"
	ErrorEmptyRecord        ErrorCode = "EMPTY_RECORD"

	// Image errors
	ErrorUnrecoverableImage ErrorCode = "UNRECOVERABLE_IMAGE"
	ErrorDecodeFailed       ErrorCode = "DECODE_FAILED"

	// Run errors
	ErrorCanceled ErrorCode = "CANCELED"

	// Startup errors
	ErrorInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// ProcessingError represents a structured processing error.
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	Source    string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error should stop a run rather than be
// accumulated into its summary.
func (e *ProcessingError) Fatal() bool {
	return e.Code == ErrorInvalidConfig
}

// Factory functions for common errors

func NewRecognitionFailedError(source, variant, config string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRecognitionFailed,
		Message:   fmt.Sprintf("Recognition failed for %s/%s", variant, config),
		Source:    source,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"variant":       variant,
			"configuration": config,
		},
		Cause: cause,
	}
}

func NewRecognitionTimeoutError(source, variant, config string, timeout time.Duration, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRecognitionTimeout,
		Message:   fmt.Sprintf("Recognition timed out after %v", timeout),
		Source:    source,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"variant":          variant,
			"configuration":    config,
			"timeout_duration": timeout.String(),
		},
		Cause: cause,
	}
}

func NewValidationRejectedError(source string, fields []string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorValidationRejected,
		Message:   fmt.Sprintf("%d field(s) outside their domain", len(fields)),
		Source:    source,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"fields": fields,
		},
	}
}

func NewEmptyRecordError(source string, rejected []string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorEmptyRecord,
		Message:   "Record carries no identity and no valid field",
		Source:    source,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"rejected_fields": rejected,
		},
	}
}

func NewUnrecoverableImageError(source string, attempts int, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorUnrecoverableImage,
		Message:   "No variant produced output and no identity hint is available",
		Source:    source,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"attempts": attempts,
		},
		Cause: cause,
	}
}

func NewDecodeFailedError(source string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorDecodeFailed,
		Message:   "Failed to decode image",
		Source:    source,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewCanceledError(source string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorCanceled,
		Message:   "Run canceled before the item was processed",
		Source:    source,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewInvalidConfigError(key string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorInvalidConfig,
		Message:   fmt.Sprintf("Invalid configuration: %s", key),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"key": key,
		},
		Cause: cause,
	}
}

// ToMap converts the error to a flat map for summaries and tool responses.
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}
	if e.Source != "" {
		result["source"] = e.Source
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}

// CodeOf returns the code of the first ProcessingError in err's chain, or
// the empty code.
func CodeOf(err error) ErrorCode {
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
