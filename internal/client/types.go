package client

import (
	"encoding/json"
	"strings"
	"time"
)

// User is the account as the API returns it
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         *string   `json:"image,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// FirstName is the part of the name before the first space
func (u User) FirstName() string {
	first, _, _ := strings.Cut(u.Name, " ")
	return first
}

// DisplayName falls back to the email when the name is empty
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session is the session that authenticates the client
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionData is the payload of get-session
type SessionData struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionInfo is one row of the session list
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	IsCurrent bool      `json:"isCurrent"`
}

// ProfileUpdate carries the fields to change; nil fields are left alone
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

// ActivityEvent is one recorded account event
type ActivityEvent struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Pagination mirrors the pagination block of list responses
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// ActivityPage is one page of activity
type ActivityPage struct {
	Events     []ActivityEvent
	Pagination Pagination
}

// StreamMessage is one frame of the event stream
type StreamMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// FieldError is one entry of a validation error's details
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      *errorBody      `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}
