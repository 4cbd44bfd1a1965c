// Package errors provides structured error types for the logstash launcher.
//
// Errors carry a machine-readable code, a human message, optional context
// for structured logging and the wrapped cause. Sentinel values support
// errors.Is, and LauncherError supports errors.As.
//
// Error code ranges:
// - 1xxx: Configuration errors
// - 2xxx: Execution errors (the single ExecutionFailure kind)
// - 3xxx: Preflight errors
// - 4xxx: Agent log errors
// - 9xxx: General errors
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error identifier.
type ErrorCode string

// Configuration error codes (1xxx)
const (
	ErrCodeConfigInvalid    ErrorCode = "LAUNCHER_1001"
	ErrCodeConfigMissing    ErrorCode = "LAUNCHER_1002"
	ErrCodeConfigValidation ErrorCode = "LAUNCHER_1003"
)

// Execution error codes (2xxx)
const (
	ErrCodeExecNotFound         ErrorCode = "LAUNCHER_2001"
	ErrCodeExecPermissionDenied ErrorCode = "LAUNCHER_2002"
	ErrCodeExecFailed           ErrorCode = "LAUNCHER_2003"
)

// Preflight error codes (3xxx)
const (
	ErrCodePreflightFailed ErrorCode = "LAUNCHER_3001"
)

// Agent log error codes (4xxx)
const (
	ErrCodeAgentLogReadFailed ErrorCode = "LAUNCHER_4001"
)

// General error codes (9xxx)
const (
	ErrCodeUnknown ErrorCode = "LAUNCHER_9999"
)

// Process exit statuses reported for execution failures, following the
// shell convention.
const (
	ExitGeneric          = 1
	ExitPermissionDenied = 126
	ExitNotFound         = 127
)

// Sentinel errors for type checking with errors.Is()
var (
	// Configuration errors
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrConfigMissing    = errors.New("configuration not found")
	ErrConfigValidation = errors.New("configuration validation failed")

	// ErrExecutionFailure is the cause of every execution error: the
	// interpreter could not be located or started.
	ErrExecutionFailure = errors.New("execution failure")

	// Preflight and agent log errors
	ErrPreflightFailed    = errors.New("preflight check failed")
	ErrAgentLogReadFailed = errors.New("agent log read failed")
)

// LauncherError is the base error type with structured information.
type LauncherError struct {
	Code        ErrorCode
	Message     string
	Context     map[string]interface{}
	IsRetryable bool
	Cause       error
}

// Error implements the error interface.
func (e *LauncherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *LauncherError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error's cause.
func (e *LauncherError) Is(target error) bool {
	if e.Cause != nil {
		return errors.Is(e.Cause, target)
	}
	return false
}

// WithContext adds context information to the error.
func (e *LauncherError) WithContext(key string, value interface{}) *LauncherError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ToMap converts the error to a map for structured logging.
func (e *LauncherError) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"error_code":   string(e.Code),
		"message":      e.Message,
		"is_retryable": e.IsRetryable,
	}
	if e.Context != nil {
		m["context"] = e.Context
	}
	if e.Cause != nil {
		m["cause"] = e.Cause.Error()
	}
	return m
}

// NewLauncherError creates a new LauncherError.
func NewLauncherError(code ErrorCode, message string, cause error) *LauncherError {
	return &LauncherError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Configuration Error constructors

// NewConfigInvalidError creates a configuration invalid error.
func NewConfigInvalidError(message string, cause error) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeConfigInvalid,
		Message:     message,
		Cause:       fmt.Errorf("%w: %w", ErrConfigInvalid, cause),
		IsRetryable: false,
		Context:     make(map[string]interface{}),
	}
}

// NewConfigMissingError creates a configuration missing error.
func NewConfigMissingError(path string) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeConfigMissing,
		Message:     fmt.Sprintf("configuration file not found: %s", path),
		Cause:       ErrConfigMissing,
		IsRetryable: false,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

// NewConfigValidationError creates a configuration validation error.
func NewConfigValidationError(field string, value interface{}, reason string) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeConfigValidation,
		Message:     fmt.Sprintf("validation failed for '%s': %s", field, reason),
		Cause:       ErrConfigValidation,
		IsRetryable: false,
		Context: map[string]interface{}{
			"field":  field,
			"value":  fmt.Sprintf("%v", value),
			"reason": reason,
		},
	}
}

// Execution Error constructors

// NewExecNotFoundError reports an interpreter that is not on the search path.
func NewExecNotFoundError(name string, cause error) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeExecNotFound,
		Message:     fmt.Sprintf("%s: executable file not found", name),
		Cause:       fmt.Errorf("%w: %w", ErrExecutionFailure, cause),
		IsRetryable: false,
		Context: map[string]interface{}{
			"interpreter": name,
		},
	}
}

// NewExecPermissionDeniedError reports an interpreter that cannot be executed.
func NewExecPermissionDeniedError(path string, cause error) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeExecPermissionDenied,
		Message:     fmt.Sprintf("%s: permission denied", path),
		Cause:       fmt.Errorf("%w: %w", ErrExecutionFailure, cause),
		IsRetryable: false,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

// NewExecFailedError reports any other failure of the exec call.
func NewExecFailedError(path string, cause error) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeExecFailed,
		Message:     fmt.Sprintf("failed to execute %s", path),
		Cause:       fmt.Errorf("%w: %w", ErrExecutionFailure, cause),
		IsRetryable: false,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

// Preflight and agent log Error constructors

// NewPreflightError summarizes failed preflight checks.
func NewPreflightError(failed []string) *LauncherError {
	return &LauncherError{
		Code:        ErrCodePreflightFailed,
		Message:     fmt.Sprintf("%d preflight check(s) failed", len(failed)),
		Cause:       ErrPreflightFailed,
		IsRetryable: true,
		Context: map[string]interface{}{
			"failed": failed,
		},
	}
}

// NewAgentLogReadError creates an agent log read error.
func NewAgentLogReadError(path string, cause error) *LauncherError {
	return &LauncherError{
		Code:        ErrCodeAgentLogReadFailed,
		Message:     fmt.Sprintf("failed to read agent log %s", path),
		Cause:       fmt.Errorf("%w: %w", ErrAgentLogReadFailed, cause),
		IsRetryable: true,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	var launcherErr *LauncherError
	if errors.As(err, &launcherErr) {
		return launcherErr.IsRetryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var launcherErr *LauncherError
	if errors.As(err, &launcherErr) {
		return launcherErr.Code
	}
	return ErrCodeUnknown
}

// ExitCode maps an error to the status the launcher exits with.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetErrorCode(err) {
	case ErrCodeExecNotFound:
		return ExitNotFound
	case ErrCodeExecPermissionDenied:
		return ExitPermissionDenied
	default:
		return ExitGeneric
	}
}
