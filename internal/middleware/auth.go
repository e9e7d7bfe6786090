package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

// SessionCookie is the name of the HTTP-only cookie that carries the
// signed session token.
const SessionCookie = "token"

// accountKey is the context key under which the authenticated account
// is stored for downstream handlers.
const accountKey = "account"

// AccountSource resolves a session token's subject to an account
// record.  It is implemented by repository.AccountRepo.
type AccountSource interface {
	GetByID(ctx context.Context, id uint64) (model.Account, error)
}

// SessionAuth returns an Echo middleware that validates the signed
// session token from the request cookie, resolves it to an account
// and attaches the account to the request context.  The password hash
// is blanked before the account is exposed.  A missing, invalid or
// expired token, or a token whose account no longer exists, yields
// 401 with the standard JSON envelope.
func SessionAuth(secret string, accounts AccountSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Not authorized to access this route. Please login.",
				})
			}
			accountID, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Not authorized, token failed",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			acct, err := accounts.GetByID(ctx, accountID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Account not found",
				})
			}
			acct.PasswordHash = "" // never expose the secret downstream
			c.Set(accountKey, acct)
			return next(c)
		}
	}
}

// AccountFrom extracts the authenticated account stored by
// SessionAuth.  The boolean is false when no account is attached,
// which means the route was not wrapped by the session gate.
func AccountFrom(c echo.Context) (model.Account, bool) {
	acct, ok := c.Get(accountKey).(model.Account)
	return acct, ok
}

// SetAccount attaches an account to the context.  It exists for
// handler tests that exercise protected routes without running the
// full session middleware.
func SetAccount(c echo.Context, acct model.Account) {
	c.Set(accountKey, acct)
}
