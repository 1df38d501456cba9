// Package ids generates the opaque identifiers used outside of document
// primary keys.
package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewSessionID returns a sortable opaque session identifier.
func NewSessionID() string {
	return ksuid.New().String()
}

// NewVerificationToken returns a token for email verification links.
func NewVerificationToken() string {
	return uuid.NewString()
}
