// Package identity wraps the third-party identity service behind a small
// provider interface and owns the process-wide session state. Establishing
// a session is the precondition for every other part of the linking
// pipeline; downstream calls fail unauthenticated without one.
package identity

import (
	"context"

	"github.com/clarity-cash/claritycash/domain"
)

// Provider is the identity-provider capability surface.
//
// SignIn and SignUp fail with the root sentinel errors
// (claritycash.ErrInvalidCredentials, claritycash.ErrUserExists,
// claritycash.ErrWeakPassword) so callers can branch without knowing which
// provider is behind the interface.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)

	// VerifyIDToken validates a bearer credential server-side and returns
	// the identity it attests. This is the only source of truth for who is
	// calling; a uid supplied in a request body or path is never trusted
	// on its own.
	VerifyIDToken(ctx context.Context, idToken string) (*domain.UserIdentity, error)

	// Lookup fetches profile data for a known uid.
	Lookup(ctx context.Context, uid string) (*domain.UserIdentity, error)
}
