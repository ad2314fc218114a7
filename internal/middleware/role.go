package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/response"
)

// MsgForbidden is returned when the caller's role is not accepted.
const MsgForbidden = "Akses ditolak!"

// RequireRole only lets requests through whose role, as stored by JWTAuth,
// is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return response.Forbidden(c, MsgForbidden)
			}
			return next(c)
		}
	}
}
