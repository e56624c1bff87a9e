package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Engine errors
const (
	// ErrCodeInvalidArgument indicates a value does not satisfy a node's declared input type.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidGraph indicates the graph cannot be ordered or references unknown nodes.
	ErrCodeInvalidGraph ErrorCode = "INVALID_GRAPH"
	// ErrCodeCapabilityFailed indicates a node's processing operation returned an error.
	ErrCodeCapabilityFailed ErrorCode = "CAPABILITY_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested node, capability or pipeline was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Run lifecycle errors
const (
	// ErrCodeCancelled indicates the run context was cancelled.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeTimeout indicates the run context deadline was exceeded.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Collaborator errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a backing service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeRateLimited indicates a backing service rejected the call for rate reasons.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// ErrCodeInternal indicates an unexpected internal error.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeRateLimited:        true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
