package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes carried in the response envelope
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthentication     = "AUTHENTICATION_ERROR"
	CodeForbidden          = "FORBIDDEN_ERROR"
	CodeNotFound           = "NOT_FOUND_ERROR"
	CodeConflict           = "CONFLICT_ERROR"
	CodeRateLimit          = "RATE_LIMIT_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeDatabase           = "DATABASE_ERROR"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error that maps directly onto an HTTP response
type AppError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails attaches client-visible details
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// NewValidationError creates a validation error listing every field violation
func NewValidationError(message string, fields ValidationErrors) *AppError {
	err := NewAppError(CodeValidation, orDefault(message, "Validation failed"), http.StatusBadRequest)
	if len(fields) > 0 {
		err.Details = fields
	}
	return err
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(CodeAuthentication, orDefault(message, "Authentication required"), http.StatusUnauthorized)
}

// NewForbiddenError creates an authorization error
func NewForbiddenError(message string) *AppError {
	return NewAppError(CodeForbidden, orDefault(message, "Access denied"), http.StatusForbidden)
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", orDefault(resource, "Resource")), http.StatusNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, orDefault(message, "Resource already exists"), http.StatusConflict)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(message string) *AppError {
	return NewAppError(CodeRateLimit, orDefault(message, "Too many requests, please try again later"), http.StatusTooManyRequests)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(CodeInternal, orDefault(message, "Internal server error"), http.StatusInternalServerError)
}

// FieldError is a single field violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple field violations
type ValidationErrors []FieldError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field violation
func (ve *ValidationErrors) Add(field, message string) {
	*ve = append(*ve, FieldError{Field: field, Message: message})
}

// DatabaseErrorKind classifies persistence failures
type DatabaseErrorKind int

const (
	DatabaseErrorOther DatabaseErrorKind = iota
	DatabaseErrorUniqueViolation
	DatabaseErrorRecordNotFound
)

func (k DatabaseErrorKind) String() string {
	switch k {
	case DatabaseErrorUniqueViolation:
		return "unique_violation"
	case DatabaseErrorRecordNotFound:
		return "record_not_found"
	default:
		return "other"
	}
}

// DatabaseError wraps a persistence failure with its kind
type DatabaseError struct {
	Op   string
	Kind DatabaseErrorKind
	Err  error
}

// NewDatabaseError creates a new database error
func NewDatabaseError(op string, kind DatabaseErrorKind, err error) *DatabaseError {
	return &DatabaseError{Op: op, Kind: kind, Err: err}
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// Helper functions

// AsAppError extracts an AppError from the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// AsDatabaseError extracts a DatabaseError from the chain
func AsDatabaseError(err error) (*DatabaseError, bool) {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return hasCode(err, CodeValidation) || errors.As(err, &ve)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool { return hasCode(err, CodeAuthentication) }

// IsForbiddenError checks if an error is an authorization error
func IsForbiddenError(err error) bool { return hasCode(err, CodeForbidden) }

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	if dbErr, ok := AsDatabaseError(err); ok && dbErr.Kind == DatabaseErrorRecordNotFound {
		return true
	}
	return hasCode(err, CodeNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	if dbErr, ok := AsDatabaseError(err); ok && dbErr.Kind == DatabaseErrorUniqueViolation {
		return true
	}
	return hasCode(err, CodeConflict)
}
