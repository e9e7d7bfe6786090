package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the
// authenticated account has one of the given roles.  It assumes
// SessionAuth has already attached the account to the context; a
// missing account or a role outside the allowed set yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acct, ok := AccountFrom(c)
			if !ok || !allowed[acct.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "message": "Access denied.",
				})
			}
			return next(c)
		}
	}
}
