// Package dto defines the JSON request and response shapes of the linking
// API.
package dto

import (
	"time"

	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
)

// LinkTokenResponse is the body of GET /api/plaid/link-token.
type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// ExchangeRequest is the body of POST /api/plaid/sandbox-exchange-token.
// UID is optional and, when present, must equal the authenticated user's
// uid; the server never derives identity from it.
type ExchangeRequest struct {
	UID         string `json:"uid,omitempty"`
	PublicToken string `json:"public_token"`
}

// ExchangeResponse is the body of a successful exchange. It carries the
// item id only, never the access token.
type ExchangeResponse struct {
	Success bool   `json:"success"`
	ItemID  string `json:"item_id"`
}

// TransactionsResponse is the body of GET /api/plaid/transactions/{uid}.
type TransactionsResponse struct {
	Transactions []domain.ScoredTransaction `json:"transactions"`
}

// PaycheckSpendingResponse is the body of
// GET /api/plaid/paycheck-spending/{uid}.
type PaycheckSpendingResponse struct {
	LastPaycheckAmount string                     `json:"last_paycheck_amount"`
	LastPaycheckDate   string                     `json:"last_paycheck_date,omitempty"`
	SpentSincePaycheck string                     `json:"spent_since_paycheck"`
	Transactions       []domain.ScoredTransaction `json:"transactions"`
}

// FromPaycheckSummary renders the decimal fields as strings so clients
// never round money through float64.
func FromPaycheckSummary(summary *domain.PaycheckSummary) *PaycheckSpendingResponse {
	resp := &PaycheckSpendingResponse{
		LastPaycheckAmount: summary.LastPaycheckAmount.StringFixed(2),
		SpentSincePaycheck: summary.SpentSincePaycheck.StringFixed(2),
		Transactions:       summary.Transactions,
	}
	if !summary.LastPaycheckDate.IsZero() {
		resp.LastPaycheckDate = summary.LastPaycheckDate.Format("2006-01-02")
	}
	return resp
}

// MonthlyScoresResponse is the body of
// GET /api/plaid/mean-spending-scores-month/{uid}.
type MonthlyScoresResponse struct {
	Months []domain.MonthlyScore `json:"months"`
}

// AccountsResponse is the body of GET /api/plaid/accounts.
type AccountsResponse struct {
	Accounts []aggregator.Account `json:"accounts"`
}

// UserResponse is the body of GET /api/users/me.
type UserResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
