package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewRequestID returns a time-sortable id for request correlation.
func NewRequestID() string {
	return ksuid.New().String()
}

// NewSessionID returns a random UUID. The session id is the bearer token.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidUUID reports whether s is a canonical UUID.
func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
