package errorwrapper

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrNetworkFailure indicates network connectivity issues
	ErrNetworkFailure = errors.New("network failure")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrRemoteMessageNotFound indicates the remote status message was deleted or never existed
	ErrRemoteMessageNotFound = errors.New("remote message not found")
	// ErrRemoteTransient indicates a remote failure worth retrying on a later cycle
	ErrRemoteTransient = errors.New("transient remote failure")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigurationError aggregates every problem found while loading one configuration source.
// It is fatal at startup.
type ConfigurationError struct {
	Source   string
	Problems []string
	Err      error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Source != "" {
		fmt.Fprintf(&b, " in '%s'", e.Source)
	}
	if len(e.Problems) > 0 {
		b.WriteString(":\n  ")
		b.WriteString(strings.Join(e.Problems, "\n  "))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewConfigurationError creates a configuration error for the given source
func NewConfigurationError(source string, problems []string, wrapped error) *ConfigurationError {
	return &ConfigurationError{
		Source:   source,
		Problems: problems,
		Err:      wrapped,
	}
}

// TransportError represents a probe that never produced an HTTP response
type TransportError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for URL '%s': %s", e.URL, e.Reason)
}

func (e *TransportError) Unwrap() error {
	return e.Wrapped
}

// NewTransportError creates a new transport error
func NewTransportError(url, reason string, wrapped error) *TransportError {
	return &TransportError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// RemoteMessageNotFound is returned by messengers when an edit targets a message that no longer exists.
type RemoteMessageNotFound struct {
	Destination string
	MessageID   string
}

func (e *RemoteMessageNotFound) Error() string {
	return fmt.Sprintf("message '%s' not found in '%s'", e.MessageID, e.Destination)
}

func (e *RemoteMessageNotFound) Is(target error) bool {
	return target == ErrRemoteMessageNotFound
}

// NewRemoteMessageNotFound creates a new not-found error for a message handle
func NewRemoteMessageNotFound(destination, messageID string) *RemoteMessageNotFound {
	return &RemoteMessageNotFound{
		Destination: destination,
		MessageID:   messageID,
	}
}

// RemoteTransientError represents rate limiting, 5xx answers and network failures of the messaging platform.
type RemoteTransientError struct {
	Operation  string
	StatusCode int
	RetryAfter time.Duration
	Wrapped    error
}

func (e *RemoteTransientError) Error() string {
	msg := fmt.Sprintf("transient remote error during %s", e.Operation)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Wrapped != nil {
		msg += fmt.Sprintf(": %v", e.Wrapped)
	}
	return msg
}

func (e *RemoteTransientError) Unwrap() error {
	return e.Wrapped
}

func (e *RemoteTransientError) Is(target error) bool {
	return target == ErrRemoteTransient
}

// NewRemoteTransientError creates a new transient remote error
func NewRemoteTransientError(operation string, statusCode int, retryAfter time.Duration, wrapped error) *RemoteTransientError {
	return &RemoteTransientError{
		Operation:  operation,
		StatusCode: statusCode,
		RetryAfter: retryAfter,
		Wrapped:    wrapped,
	}
}

// RemoteError represents a permanent rejection by the messaging platform
type RemoteError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("remote error during %s: HTTP %d (code %d): %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote error during %s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// NewRemoteError creates a new permanent remote error
func NewRemoteError(operation string, statusCode, code int, message string) *RemoteError {
	return &RemoteError{
		Operation:  operation,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// PersistenceError represents a failed read or write of the notification state store
type PersistenceError struct {
	Operation string
	SiteID    string
	Wrapped   error
}

func (e *PersistenceError) Error() string {
	if e.SiteID == "" {
		return fmt.Sprintf("persistence error during %s: %v", e.Operation, e.Wrapped)
	}
	return fmt.Sprintf("persistence error during %s for site '%s': %v", e.Operation, e.SiteID, e.Wrapped)
}

func (e *PersistenceError) Unwrap() error {
	return e.Wrapped
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(operation, siteID string, wrapped error) *PersistenceError {
	return &PersistenceError{
		Operation: operation,
		SiteID:    siteID,
		Wrapped:   wrapped,
	}
}

// IsTransient reports whether err should simply be retried on the next cycle.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRemoteTransient)
}

// IsRemoteNotFound reports whether err says the remote message is gone.
func IsRemoteNotFound(err error) bool {
	return errors.Is(err, ErrRemoteMessageNotFound)
}

// IsPersistence reports whether err came from the state store.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
