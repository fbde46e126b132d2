package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Behavior(t *testing.T) {
	fields := ValidationErrors{{Field: "name", Message: "Name is required"}}
	err := NewValidationError("Invalid request body", fields)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
	assert.Equal(t, "Invalid request body", err.Error())
	assert.Equal(t, fields, err.Details)
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError("").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "Internal server error: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestConstructors_Defaults(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
		msg    string
	}{
		{NewAuthenticationError(""), CodeAuthentication, http.StatusUnauthorized, "Authentication required"},
		{NewForbiddenError(""), CodeForbidden, http.StatusForbidden, "Access denied"},
		{NewNotFoundError("User"), CodeNotFound, http.StatusNotFound, "User not found"},
		{NewNotFoundError(""), CodeNotFound, http.StatusNotFound, "Resource not found"},
		{NewConflictError(""), CodeConflict, http.StatusConflict, "Resource already exists"},
		{NewRateLimitError(""), CodeRateLimit, http.StatusTooManyRequests, "Too many requests, please try again later"},
		{NewInternalError(""), CodeInternal, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPCode)
			assert.Equal(t, tt.msg, tt.err.Message)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	ve.Add("email", "Invalid email address")
	ve.Add("", "Malformed JSON body")
	require.Len(t, ve, 2)
	assert.Equal(t, "validation failed: email: Invalid email address; Malformed JSON body", ve.Error())
	assert.True(t, IsValidationError(ve))
}

func TestDatabaseError_Classification(t *testing.T) {
	dup := NewDatabaseError("create user", DatabaseErrorUniqueViolation, errors.New("duplicated key"))
	wrapped := fmt.Errorf("sign up: %w", dup)
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsNotFoundError(wrapped))

	missing := NewDatabaseError("update user", DatabaseErrorRecordNotFound, nil)
	assert.True(t, IsNotFoundError(missing))
	assert.Equal(t, "update user: record_not_found", missing.Error())

	got, ok := AsDatabaseError(wrapped)
	require.True(t, ok)
	assert.Equal(t, DatabaseErrorUniqueViolation, got.Kind)
}

func TestIsHelpers(t *testing.T) {
	nf := NewNotFoundError("Session")
	assert.True(t, IsNotFoundError(nf))
	assert.False(t, IsValidationError(nf))
	assert.False(t, IsAuthenticationError(nf))
	assert.False(t, IsForbiddenError(nf))

	assert.True(t, IsAuthenticationError(fmt.Errorf("wrap: %w", NewAuthenticationError("bad"))))
	assert.True(t, IsForbiddenError(NewForbiddenError("no")))
	assert.False(t, IsConflictError(errors.New("plain")))
}
