package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by the engine.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Engine error constructors ---

// InvalidArgument reports a value rejected by the node it was addressed to.
func InvalidArgument(nodeID, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid input for node %q: %s", nodeID, reason),
		Details: map[string]any{"node": nodeID},
	}
}

// InvalidGraph reports a structural problem that prevents the graph from running.
func InvalidGraph(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidGraph,
		Message: reason,
	}
}

// CapabilityFailed wraps the error returned by a node's processing operation.
// The result is retryable when the cause is a retryable AppError.
func CapabilityFailed(nodeID string, cause error) *AppError {
	retryable := false
	if appErr, ok := AsAppError(cause); ok {
		retryable = appErr.Retryable
	}
	return &AppError{
		Code:      ErrCodeCapabilityFailed,
		Message:   fmt.Sprintf("capability %q failed", nodeID),
		Retryable: retryable,
		Details:   map[string]any{"node": nodeID},
		Cause:     cause,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	msg := fmt.Sprintf("%s not found", resource)
	if id != "" {
		msg = fmt.Sprintf("%s %q not found", resource, id)
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: msg,
		Details: details,
	}
}

// AlreadyExists creates a new AppError for a resource that already exists.
func AlreadyExists(resource, id string) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("%s %q already exists", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// Cancelled converts a context error into an AppError.
// DeadlineExceeded maps to TIMEOUT, everything else to CANCELLED.
func Cancelled(operation string, cause error) *AppError {
	if stderrors.Is(cause, context.DeadlineExceeded) {
		return &AppError{
			Code:      ErrCodeTimeout,
			Message:   fmt.Sprintf("%s exceeded its deadline", operation),
			Retryable: true,
			Details:   map[string]any{"operation": operation},
			Cause:     cause,
		}
	}
	return &AppError{
		Code:    ErrCodeCancelled,
		Message: fmt.Sprintf("%s was cancelled", operation),
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// ServiceUnavailable creates a new AppError for a collaborator that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("%s is temporarily unavailable", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// RateLimited creates a new AppError for a collaborator that throttled the call.
func RateLimited(service string) *AppError {
	return &AppError{
		Code:      ErrCodeRateLimited,
		Message:   fmt.Sprintf("%s rejected the call: rate limited", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}
