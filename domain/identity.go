package domain

import "time"

// UserIdentity is the opaque, stable identifier of an authenticated
// principal as reported by the identity provider. It is immutable for the
// life of a session and partitions all persisted linking data.
type UserIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is an established identity-provider session. IDToken is the
// bearer credential downstream HTTP calls attach as
// "Authorization: Bearer <IDToken>".
type Session struct {
	Identity  UserIdentity
	IDToken   string
	ExpiresAt time.Time
}

// Expired reports whether the session's bearer credential has lapsed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
