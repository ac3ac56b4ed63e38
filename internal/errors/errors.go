package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema         ErrorType = "SCHEMA"
	ErrTypeEmptySelection ErrorType = "EMPTY_SELECTION"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewSchemaError creates an error for a source missing required columns.
// Fatal: the pipeline returns no partial result.
func NewSchemaError(message string, missing []string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil).WithContext("missing_columns", missing)
}

// NewEmptySelectionError creates an error for a selection matching no entity
// in the source. Distinct from an entity that is present but has no rows in
// the requested range, which yields an empty series instead.
func NewEmptySelectionError(entities []string) *AppError {
	return NewAppError(ErrTypeEmptySelection, "none of the requested entities found in source", nil).
		WithContext("requested_entities", entities)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
