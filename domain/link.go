package domain

import "time"

// LinkTokenGrant is a freshly issued, short lived link token bound to the
// identity that requested it. Valid for a single linking attempt; never
// persisted beyond the in-flight attempt and never reused after the
// attempt reaches a terminal state.
type LinkTokenGrant struct {
	// AttemptID distinguishes grants in logs without exposing the token.
	AttemptID  string    `json:"attempt_id"`
	UserID     string    `json:"user_id"`
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// Expired reports whether the grant can no longer start a widget session.
func (g *LinkTokenGrant) Expired(now time.Time) bool {
	return !g.Expiration.IsZero() && now.After(g.Expiration)
}
