// Package echo exposes the linking pipeline over HTTP.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/dto"
	apperr "github.com/clarity-cash/claritycash/errors"
	"github.com/clarity-cash/claritycash/identity"
	"github.com/clarity-cash/claritycash/middleware"
	"github.com/clarity-cash/claritycash/services"
)

// LinkAPI holds the service dependencies of the HTTP surface.
type LinkAPI struct {
	linkTokens *services.LinkTokenService
	exchange   *services.ExchangeService
	spending   *services.SpendingService
	provider   identity.Provider
}

// NewLinkAPI initializes the API.
func NewLinkAPI(
	linkTokens *services.LinkTokenService,
	exchange *services.ExchangeService,
	spending *services.SpendingService,
	provider identity.Provider,
) *LinkAPI {
	return &LinkAPI{
		linkTokens: linkTokens,
		exchange:   exchange,
		spending:   spending,
		provider:   provider,
	}
}

// RegisterRoutes mounts the API. Everything under /api requires a bearer
// ID token; /healthz does not.
func (a *LinkAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", a.HealthHandler)

	api := e.Group("/api", middleware.RequireAuth(a.provider))
	api.GET("/users/me", a.CurrentUserHandler)

	api.GET("/plaid/link-token", a.LinkTokenHandler)
	api.GET("/plaid/link-token/:user_id", a.LinkTokenHandler)
	api.POST("/plaid/sandbox-exchange-token", a.ExchangeHandler)
	api.GET("/plaid/accounts", a.AccountsHandler)
	api.GET("/plaid/transactions/:user_id", a.TransactionsHandler)
	api.GET("/plaid/paycheck-spending/:user_id", a.PaycheckSpendingHandler)
	api.GET("/plaid/mean-spending-scores-month/:user_id", a.MonthlyScoresHandler)
}

// HealthHandler reports liveness.
func (a *LinkAPI) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CurrentUserHandler returns the profile of the authenticated user. The
// uid always comes from the verified bearer token.
func (a *LinkAPI) CurrentUserHandler(c echo.Context) error {
	ctx := c.Request().Context()
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return a.renderError(c, apperr.NewUnauthenticated("no verified identity"))
	}

	profile, err := a.provider.Lookup(ctx, identity.UID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("uid", identity.UID).Msg("profile lookup failed")
		// The verified token alone is enough to answer.
		profile = identity
	}

	return c.JSON(http.StatusOK, &dto.UserResponse{
		UID:         profile.UID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	})
}

// LinkTokenHandler issues a fresh link token for the authenticated user.
// The optional :user_id path variant must match the bearer identity.
func (a *LinkAPI) LinkTokenHandler(c echo.Context) error {
	grant, err := a.linkTokens.Create(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.LinkTokenResponse{
		LinkToken:  grant.LinkToken,
		Expiration: grant.Expiration,
	})
}

// ExchangeHandler exchanges a one-time public token for a stored access
// credential. Identity derives solely from the verified bearer token: a
// body uid is accepted only when it matches, closing the forged-uid hole.
func (a *LinkAPI) ExchangeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ExchangeRequest
	if err := c.Bind(&req); err != nil {
		return a.renderError(c, apperr.NewInvalidArgument("malformed request body"))
	}

	if req.UID != "" {
		identity, ok := domain.IdentityFromContext(ctx)
		if !ok {
			return a.renderError(c, apperr.NewUnauthenticated("no verified identity"))
		}
		if req.UID != identity.UID {
			return a.renderError(c, apperr.NewInvalidArgument("uid does not match the authenticated user"))
		}
	}

	outcome, err := a.exchange.Exchange(ctx, req.PublicToken)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.ExchangeResponse{
		Success: true,
		ItemID:  outcome.ItemID,
	})
}

// AccountsHandler lists accounts across the user's linked items.
func (a *LinkAPI) AccountsHandler(c echo.Context) error {
	accounts, err := a.spending.Accounts(c.Request().Context(), "")
	if err != nil {
		return a.renderError(c, err)
	}
	return c.JSON(http.StatusOK, &dto.AccountsResponse{Accounts: accounts})
}

// TransactionsHandler returns scored transactions for the user.
func (a *LinkAPI) TransactionsHandler(c echo.Context) error {
	txns, err := a.spending.Transactions(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return a.renderError(c, err)
	}
	return c.JSON(http.StatusOK, &dto.TransactionsResponse{Transactions: txns})
}

// PaycheckSpendingHandler returns the paycheck spending summary.
func (a *LinkAPI) PaycheckSpendingHandler(c echo.Context) error {
	summary, err := a.spending.PaycheckSpending(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return a.renderError(c, err)
	}
	return c.JSON(http.StatusOK, dto.FromPaycheckSummary(summary))
}

// MonthlyScoresHandler returns mean spending scores per month.
func (a *LinkAPI) MonthlyScoresHandler(c echo.Context) error {
	months, err := a.spending.MeanMonthlyScores(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return a.renderError(c, err)
	}
	return c.JSON(http.StatusOK, &dto.MonthlyScoresResponse{Months: months})
}

// renderError serializes service failures as structured error bodies.
// Unknown errors become opaque internals: details are logged, not leaked.
func (a *LinkAPI) renderError(c echo.Context, err error) error {
	var linkErr *apperr.Error
	if errors.As(err, &linkErr) {
		return c.JSON(linkErr.HTTPStatus(), linkErr)
	}

	log.Ctx(c.Request().Context()).Error().Err(err).Msg("unclassified handler error")
	internal := apperr.NewInternal("internal error")
	return c.JSON(internal.HTTPStatus(), internal)
}
