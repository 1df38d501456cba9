package models

import (
	"time"
)

// MaxSessionAge caps how far out a session may expire, regardless of what
// the caller asked for. The TTL index enforces the same instant server-side.
const MaxSessionAge = 30 * 24 * time.Hour

type Session struct {
	Meta         `bson:",inline"`
	SessionID    string         `bson:"session_id" json:"session_id"`
	UserID       string         `bson:"user_id" json:"user_id"`
	Data         map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	IPAddress    string         `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent    string         `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	IsActive     bool           `bson:"is_active" json:"is_active"`
	ExpiresAt    time.Time      `bson:"expires_at" json:"expires_at"`
	LastAccessed time.Time      `bson:"last_accessed" json:"last_accessed"`
}

func (s Session) Validate() error {
	if s.SessionID == "" {
		return errRequired("session_id")
	}
	if s.UserID == "" {
		return errRequired("user_id")
	}
	return nil
}

// CapExpiry clamps a requested expiry to at most MaxSessionAge past the
// creation instant.
func CapExpiry(createdAt, requested time.Time) time.Time {
	max := createdAt.Add(MaxSessionAge)
	if requested.IsZero() || requested.After(max) {
		return max
	}
	return requested
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
