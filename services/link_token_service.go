// Package services implements the server-side linking pipeline: link token
// issuance, public token exchange, and the spending read models built on
// stored credentials.
package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/errors"
	"github.com/clarity-cash/claritycash/link"
)

// LinkTokenService issues short lived link tokens for the authenticated
// user. Every call produces a brand new token; nothing is cached or reused
// between calls.
type LinkTokenService struct {
	aggregator aggregator.Client
	store      link.TokenStore
}

// NewLinkTokenService wires the issuer. store may be nil when the server
// does not track client link state (stateless API deployments).
func NewLinkTokenService(client aggregator.Client, store link.TokenStore) *LinkTokenService {
	return &LinkTokenService{aggregator: client, store: store}
}

// Create requests a fresh link token for the verified identity in ctx.
// forUID, when non-empty (the /:user_id route variant), must match that
// identity: the uid in the request is never trusted on its own. Fails
// unauthenticated with no side effects when no verified identity exists.
func (s *LinkTokenService) Create(ctx context.Context, forUID string) (*domain.LinkTokenGrant, error) {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, errors.NewUnauthenticated("sign in to request a link token")
	}
	if forUID != "" && forUID != identity.UID {
		return nil, errors.NewUnauthenticated("requested uid does not match the authenticated user")
	}

	grant, err := s.aggregator.CreateLinkToken(ctx, identity.UID)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		// Last write wins: a newer grant simply replaces the previous one.
		if putErr := s.store.Put(ctx, grant); putErr != nil {
			log.Ctx(ctx).Warn().Err(putErr).
				Str("attempt_id", grant.AttemptID).
				Msg("failed to record link token grant in store")
		}
	}

	return grant, nil
}
