// Package plaid implements the aggregator.Client interface on top of the
// official Plaid Go SDK.
package plaid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plaid/plaid-go/v27/plaid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/errors"
)

const transactionPageSize = 250

// Config carries the Plaid credentials and environment selection.
type Config struct {
	ClientID   string
	Secret     string
	Env        string // "sandbox" or "production"
	ClientName string // shown inside the Link widget
}

// Client is the Plaid-backed aggregator client.
type Client struct {
	api        *plaid.APIClient
	clientName string
}

var _ aggregator.Client = (*Client)(nil)

// NewClient builds an API client pinned to the configured environment.
func NewClient(cfg Config) *Client {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Env {
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		configuration.UseEnvironment(plaid.Sandbox)
	}

	clientName := cfg.ClientName
	if clientName == "" {
		clientName = "Clarity Cash"
	}

	return &Client{
		api:        plaid.NewAPIClient(configuration),
		clientName: clientName,
	}
}

// CreateLinkToken implements aggregator.Client.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (*domain.LinkTokenGrant, error) {
	user := plaid.LinkTokenCreateRequestUser{ClientUserId: userID}
	request := plaid.NewLinkTokenCreateRequest(
		c.clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS, plaid.PRODUCTS_AUTH})

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return nil, c.mapError(ctx, err, "link token create")
	}

	grant := &domain.LinkTokenGrant{
		AttemptID:  uuid.NewString(),
		UserID:     userID,
		LinkToken:  resp.GetLinkToken(),
		Expiration: resp.GetExpiration(),
	}

	log.Ctx(ctx).Debug().
		Str("user_id", userID).
		Str("attempt_id", grant.AttemptID).
		Str("link_token_hash", claritycash.HashToken(grant.LinkToken)).
		Time("expiration", grant.Expiration).
		Msg("link token issued")

	return grant, nil
}

// ExchangePublicToken implements aggregator.Client.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*aggregator.ExchangeResult, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).
		ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return nil, c.mapError(ctx, err, "public token exchange")
	}

	log.Ctx(ctx).Debug().
		Str("item_id", resp.GetItemId()).
		Str("public_token_hash", claritycash.HashToken(publicToken)).
		Msg("public token exchanged")

	return &aggregator.ExchangeResult{
		AccessToken: resp.GetAccessToken(),
		ItemID:      resp.GetItemId(),
	}, nil
}

// GetTransactions implements aggregator.Client.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]domain.Transaction, error) {
	request := plaid.NewTransactionsGetRequest(
		accessToken,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	options := plaid.NewTransactionsGetRequestOptions()
	options.SetCount(transactionPageSize)
	options.SetOffset(0)
	options.SetIncludePersonalFinanceCategory(true)
	request.SetOptions(*options)

	resp, _, err := c.api.PlaidApi.TransactionsGet(ctx).
		TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, c.mapError(ctx, err, "transactions get")
	}

	plaidTxns := resp.GetTransactions()
	txns := make([]domain.Transaction, 0, len(plaidTxns))
	for i := range plaidTxns {
		txns = append(txns, fromPlaidTransaction(&plaidTxns[i]))
	}
	return txns, nil
}

// GetAccounts implements aggregator.Client.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]aggregator.Account, error) {
	request := plaid.NewAccountsGetRequest(accessToken)

	resp, _, err := c.api.PlaidApi.AccountsGet(ctx).
		AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, c.mapError(ctx, err, "accounts get")
	}

	plaidAccounts := resp.GetAccounts()
	accounts := make([]aggregator.Account, 0, len(plaidAccounts))
	for i := range plaidAccounts {
		a := &plaidAccounts[i]
		accounts = append(accounts, aggregator.Account{
			AccountID:    a.GetAccountId(),
			Name:         a.GetName(),
			OfficialName: a.GetOfficialName(),
			Mask:         a.GetMask(),
			Type:         string(a.GetType()),
			Subtype:      string(a.GetSubtype()),
		})
	}
	return accounts, nil
}

// SandboxCreatePublicToken implements aggregator.Client. The fixed
// institution is Plaid's "First Platypus Bank" sandbox fixture.
func (c *Client) SandboxCreatePublicToken(ctx context.Context) (string, error) {
	request := plaid.NewSandboxPublicTokenCreateRequest(
		"ins_109508",
		[]plaid.Products{plaid.PRODUCTS_TRANSACTIONS},
	)

	resp, _, err := c.api.PlaidApi.SandboxPublicTokenCreate(ctx).
		SandboxPublicTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", c.mapError(ctx, err, "sandbox public token create")
	}
	return resp.GetPublicToken(), nil
}

func fromPlaidTransaction(t *plaid.Transaction) domain.Transaction {
	date, _ := time.Parse("2006-01-02", t.GetDate())

	merchant := t.GetMerchantName()
	if merchant == "" {
		merchant = t.GetName()
	}

	return domain.Transaction{
		TransactionID: t.GetTransactionId(),
		Date:          date,
		Merchant:      merchant,
		Categories:    t.GetCategory(),
		Amount:        decimal.NewFromFloat(t.GetAmount()),
		Pending:       t.GetPending(),
	}
}

// mapError translates Plaid SDK failures onto the service error taxonomy.
// One-time-token rejections are fatal to the current attempt; transient
// aggregator trouble is surfaced as unavailable so the caller can start a
// fresh attempt with a new link token.
func (c *Client) mapError(ctx context.Context, err error, op string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		// Transport level failure, no structured aggregator response.
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("aggregator unreachable")
		return errors.NewUpstreamUnavailable("aggregator request failed: " + op).WithCause(err)
	}

	code := plaidErr.GetErrorCode()
	errType := plaidErr.GetErrorType()

	log.Ctx(ctx).Warn().
		Str("op", op).
		Str("plaid_error_code", code).
		Str("plaid_error_type", string(errType)).
		Msg("aggregator rejected request")

	switch code {
	case "INVALID_PUBLIC_TOKEN", "PUBLIC_TOKEN_EXPIRED", "INVALID_ACCESS_TOKEN", "INVALID_LINK_TOKEN":
		return errors.NewInvalidToken(plaidErr.GetErrorMessage(), code).WithCause(err)
	}

	switch errType {
	case "RATE_LIMIT_EXCEEDED", "API_ERROR":
		return errors.NewUpstreamUnavailable(plaidErr.GetErrorMessage()).WithCause(err)
	}

	return errors.NewUpstreamRejected(plaidErr.GetErrorMessage(), code).WithCause(err)
}
