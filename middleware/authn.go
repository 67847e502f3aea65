// Package middleware provides the HTTP authentication layer: bearer ID
// token verification through the identity provider adapter.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clarity-cash/claritycash/domain"
	apperr "github.com/clarity-cash/claritycash/errors"
	"github.com/clarity-cash/claritycash/identity"
)

// RequireAuth verifies the "Authorization: Bearer <idToken>" header via
// the identity provider and stores the verified identity in the request
// context. The identity in context is the only uid the handlers trust.
func RequireAuth(provider identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return respondError(c, apperr.NewUnauthenticated("missing authorization header"))
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return respondError(c, apperr.NewUnauthenticated("authorization header must be a bearer token"))
			}

			ctx := c.Request().Context()
			verified, err := provider.VerifyIDToken(ctx, parts[1])
			if err != nil {
				log.Ctx(ctx).Debug().Err(err).Msg("bearer token verification failed")
				return respondError(c, apperr.NewUnauthenticated("invalid or expired session"))
			}

			c.SetRequest(c.Request().WithContext(domain.ContextWithIdentity(ctx, verified)))
			return next(c)
		}
	}
}

func respondError(c echo.Context, err *apperr.Error) error {
	return c.JSON(err.HTTPStatus(), err)
}
