package eventbus

// Account event types
const (
	EventTypeUserSignedUp         = "user.signed_up"
	EventTypeUserSignedIn         = "user.signed_in"
	EventTypeUserSignedOut        = "user.signed_out"
	EventTypePasswordChanged      = "user.password_changed"
	EventTypeProfileUpdated       = "profile.updated"
	EventTypeSessionRevoked       = "session.revoked"
	EventTypeOtherSessionsRevoked = "session.others_revoked"
)

// AccountEvent is the payload of every account event
type AccountEvent struct {
	UserID    string            `json:"userId"`
	SessionID string            `json:"sessionId,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewAccountEvent wraps an AccountEvent payload
func NewAccountEvent(eventType, source string, payload AccountEvent) Event {
	return NewBasicEventWithSource(eventType, payload, source)
}
