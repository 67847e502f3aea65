// Package client is the HTTP client clarityctl uses against the
// claritycash API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clarity-cash/claritycash/dto"
	apperr "github.com/clarity-cash/claritycash/errors"
)

// Client calls the claritycash HTTP API with a bearer ID token.
type Client struct {
	baseURL    string
	idToken    string
	httpClient *http.Client
}

// New creates a client for the given server. idToken may be empty for
// unauthenticated calls such as Health.
func New(baseURL, idToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		idToken:    idToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLinkToken requests a fresh link token for the authenticated user.
func (c *Client) CreateLinkToken(ctx context.Context) (*dto.LinkTokenResponse, error) {
	var resp dto.LinkTokenResponse
	if err := c.do(ctx, http.MethodGet, "/api/plaid/link-token", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken trades a one-time public token for a stored
// credential and returns the linked item id.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*dto.ExchangeResponse, error) {
	req := &dto.ExchangeRequest{PublicToken: publicToken}
	var resp dto.ExchangeResponse
	if err := c.do(ctx, http.MethodPost, "/api/plaid/sandbox-exchange-token", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Accounts lists accounts across the user's linked items.
func (c *Client) Accounts(ctx context.Context) (*dto.AccountsResponse, error) {
	var resp dto.AccountsResponse
	if err := c.do(ctx, http.MethodGet, "/api/plaid/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transactions fetches scored transactions for the given user.
func (c *Client) Transactions(ctx context.Context, uid string) (*dto.TransactionsResponse, error) {
	var resp dto.TransactionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/plaid/transactions/"+uid, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PaycheckSpending fetches the paycheck spending summary.
func (c *Client) PaycheckSpending(ctx context.Context, uid string) (*dto.PaycheckSpendingResponse, error) {
	var resp dto.PaycheckSpendingResponse
	if err := c.do(ctx, http.MethodGet, "/api/plaid/paycheck-spending/"+uid, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MonthlyScores fetches mean spending scores per month.
func (c *Client) MonthlyScores(ctx context.Context, uid string) (*dto.MonthlyScoresResponse, error) {
	var resp dto.MonthlyScoresResponse
	if err := c.do(ctx, http.MethodGet, "/api/plaid/mean-spending-scores-month/"+uid, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&body).Encode(reqBody); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.idToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apperr.Error
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr != nil || apiErr.Kind == "" {
			return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
