package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents an empty, blocked or failed page fetch
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSchema represents a missing row store column
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeStorage represents row store I/O errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SyncError represents a pipeline-specific error
type SyncError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if another fetch attempt can recover from the
// error. Schema and configuration problems never recover by retrying.
func (e *SyncError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeParsing:
		return true
	default:
		return false
	}
}

// New creates a new SyncError
func New(errType ErrorType, component, message string, err error) *SyncError {
	return &SyncError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(component, message string, err error) *SyncError {
	return New(ErrorTypeFetch, component, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *SyncError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewSchema creates a new schema error naming the missing column
func NewSchema(component, column string) *SyncError {
	message := fmt.Sprintf("column %q not found in the row store", column)
	return New(ErrorTypeSchema, component, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(component, message string, err error) *SyncError {
	return New(ErrorTypeStorage, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *SyncError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SyncError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is a SyncError of the given type
func IsType(err error, errType ErrorType) bool {
	var syncErr *SyncError
	if stderrors.As(err, &syncErr) {
		return syncErr.Type == errType
	}
	return false
}
