// Package link owns the client side of a linking attempt: the process-wide
// store for the active link token and the controller that drives the
// embedded widget through its state machine.
package link

import (
	"context"

	"github.com/clarity-cash/claritycash/domain"
)

// TokenStore holds at most one active link token grant. Lifecycle is
// explicit: empty at process start, set only by a successful issuer call,
// cleared unconditionally when the controller reaches a terminal state and
// on sign-out. Concurrent reads are safe; a later Put always wins.
type TokenStore interface {
	// Put installs the grant, replacing any previous one (last write wins).
	Put(ctx context.Context, grant *domain.LinkTokenGrant) error

	// Get returns the active grant, or claritycash.ErrLinkTokenNotFound
	// when none is set or the previous one expired.
	Get(ctx context.Context) (*domain.LinkTokenGrant, error)

	// Clear drops the active grant. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
