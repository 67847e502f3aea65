package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/errors"
)

// ExchangeOutcome is what the caller gets back from a successful exchange.
// The access token itself is never part of it.
type ExchangeOutcome struct {
	ItemID string
}

// ExchangeService trades one-time public tokens for durable access
// credentials and persists them under (user, item).
type ExchangeService struct {
	aggregator  aggregator.Client
	credentials domain.CredentialRepository
	now         func() time.Time
}

// NewExchangeService wires the exchange pipeline.
func NewExchangeService(client aggregator.Client, credentials domain.CredentialRepository) *ExchangeService {
	return &ExchangeService{
		aggregator:  client,
		credentials: credentials,
		now:         time.Now,
	}
}

// Exchange validates the public token, exchanges it at the aggregator and
// upserts the resulting credential at (uid, item_id). Re-linking the same
// institution overwrites the prior credential rather than duplicating it.
//
// A persistence failure after a successful exchange is the one case that
// demands operational attention: the aggregator now believes the item is
// linked while we hold no record of it. It is logged as such and surfaced
// as storage_failure, never swallowed.
func (s *ExchangeService) Exchange(ctx context.Context, publicToken string) (*ExchangeOutcome, error) {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, errors.NewUnauthenticated("sign in to link a bank account")
	}
	if publicToken == "" {
		return nil, errors.NewInvalidArgument("public_token is required")
	}

	result, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		// Includes one-time-token reuse, which the aggregator rejects and
		// which must not be retried.
		return nil, err
	}

	cred := &domain.AccessCredential{
		UserID:      identity.UID,
		ItemID:      result.ItemID,
		AccessToken: result.AccessToken,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.credentials.Upsert(ctx, cred); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("uid", identity.UID).
			Str("item_id", result.ItemID).
			Msg("RECONCILE: credential write failed after successful aggregator exchange")
		return nil, errors.NewStorageFailure("failed to persist access credential").WithCause(err)
	}

	log.Ctx(ctx).Info().
		Str("uid", identity.UID).
		Str("item_id", result.ItemID).
		Msg("bank account linked")

	return &ExchangeOutcome{ItemID: result.ItemID}, nil
}
