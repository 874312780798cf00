package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wak1e7/todolistapp/internal/errors"
)

// Policy is the access requirement of a route. The whole authorization table
// lives in the router; handlers never re-check roles themselves.
type Policy int

const (
	// Public routes accept anonymous requests.
	Public Policy = iota
	// Authenticated routes require a resolved identity.
	Authenticated
	// Admin routes require a resolved identity with the admin role.
	Admin
)

// Require returns middleware enforcing the policy before the handler runs.
// A failed check short-circuits: the handler is never invoked.
func Require(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p == Public {
				return next(c)
			}

			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHENTICATED",
				})
			}
			if p == Admin && !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "admin role required",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
