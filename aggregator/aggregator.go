// Package aggregator defines the boundary to the third-party financial
// data aggregator that brokers bank connections. The linking services
// depend on this interface only; the concrete Plaid client lives in the
// plaid subpackage.
package aggregator

import (
	"context"
	"time"

	"github.com/clarity-cash/claritycash/domain"
)

// ExchangeResult is the durable outcome of a public token exchange.
type ExchangeResult struct {
	AccessToken string
	ItemID      string
}

// Account is one bank account under a linked item. ItemID is filled by
// the caller that knows which credential the account was fetched with.
type Account struct {
	ItemID       string `json:"item_id,omitempty"`
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name,omitempty"`
	Mask         string `json:"mask,omitempty"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype,omitempty"`
}

// Client is the aggregator capability surface consumed by the linking
// pipeline. Implementations map aggregator failures onto the errors
// package taxonomy: one-time-token rejections become invalid_token,
// transient aggregator outages become upstream_unavailable, and other
// upstream rejections become upstream_rejected with the aggregator's own
// error code attached (never its secrets).
type Client interface {
	// CreateLinkToken issues a brand new short lived link token bound to
	// the given user. Every call produces an independent token; nothing is
	// cached or shared between calls.
	CreateLinkToken(ctx context.Context, userID string) (*domain.LinkTokenGrant, error)

	// ExchangePublicToken trades the one-time public token for a durable
	// access token and item ID. The aggregator enforces one-time use; a
	// reused token fails with invalid_token and must not be retried.
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)

	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]domain.Transaction, error)
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)

	// SandboxCreatePublicToken mints a widget-less public token against the
	// sandbox environment. Only used by the clarityctl demo driver.
	SandboxCreatePublicToken(ctx context.Context) (string, error)
}
