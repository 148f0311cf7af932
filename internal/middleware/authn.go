// Package middleware provides the per-request authentication and
// authorization steps shared by protected route groups.
package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/auth"
	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/service"
)

const (
	principalKey = "principal"
	authErrorKey = "auth_error"
	tokenKey     = "access_token"
)

// Authenticate resolves the Bearer token, checks it against the revocation
// blacklist, validates it and attaches the member as the request principal.
// It never aborts the request itself: failures are attached to the context
// and surfaced by RequireAuth, so public handlers behind the same chain
// keep working for anonymous callers.
//
// The blacklist check runs before validation on purpose: a revoked token
// that is still otherwise valid must be rejected before a principal is
// built from it.
func Authenticate(codec *auth.Codec, cache auth.TokenCache, members service.MemberStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := auth.ResolveFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}
			ctx := c.Request().Context()

			revoked, err := cache.IsBlacklisted(ctx, token)
			if err != nil {
				return next(c) // cache trouble: treat as unauthenticated
			}
			if revoked {
				c.Set(authErrorKey, errs.LogoutUser)
				return next(c)
			}

			valid, err := codec.Validate(token)
			if err != nil {
				// Expired carries its own code so clients can refresh.
				c.Set(authErrorKey, err)
				return next(c)
			}
			if !valid {
				return next(c)
			}

			claims, err := codec.ParseClaims(token)
			if err != nil {
				return next(c)
			}
			m, err := members.GetByEmail(ctx, claims.Email)
			if err != nil {
				return next(c)
			}
			if !m.IsActive() {
				c.Set(authErrorKey, errs.InactiveMember)
				return next(c)
			}

			c.Set(principalKey, &auth.Principal{
				ID:     m.ID,
				Email:  m.Email,
				Role:   string(m.Role),
				Active: true,
			})
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// RequireAuth is the 401 entry point: it turns an attached authentication
// error into its response and rejects requests with no principal.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v := c.Get(authErrorKey); v != nil {
				if err, ok := v.(error); ok {
					return failJSON(c, err)
				}
			}
			if Principal(c) == nil {
				return failJSON(c, errs.Unauthorized)
			}
			return next(c)
		}
	}
}

// RequireRole rejects authenticated callers whose role is not in the
// allowed set. It must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil || !allowed[p.Role] {
				return failJSON(c, errs.AccessDenied)
			}
			return next(c)
		}
	}
}

// Principal returns the authenticated caller, or nil for anonymous
// requests.
func Principal(c echo.Context) *auth.Principal {
	if p, ok := c.Get(principalKey).(*auth.Principal); ok {
		return p
	}
	return nil
}

// AccessToken returns the raw validated token of the current request; ok is
// false for anonymous requests.
func AccessToken(c echo.Context) (string, bool) {
	t, ok := c.Get(tokenKey).(string)
	return t, ok && t != ""
}

func failJSON(c echo.Context, err error) error {
	var be *errs.Error
	if !errors.As(err, &be) {
		be = errs.Internal
	}
	return c.JSON(be.Status, echo.Map{
		"success": false,
		"error":   echo.Map{"code": string(be.Code), "message": be.Message},
	})
}
