package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "lifeops context key " + string(c)
}

const (
	// RequestIDKey is the key for the request id assigned by the request-ID middleware
	RequestIDKey = contextKey("requestID")
	// UserIDKey is the key for the authenticated user id
	UserIDKey = contextKey("userID")
	// IdentityKey is the key for the authenticated user + session pair
	IdentityKey = contextKey("identity")
	// ComponentKey is the key for the component name used by the logger
	ComponentKey = contextKey("component")
)
