package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(raw string) (*utils.Claims, error)
}

// MsgInvalidToken is returned for a missing or unverifiable token.
const MsgInvalidToken = "Token tidak valid!"

// JWTAuth validates the Bearer access token and stores the account id and
// role in the context, readable through UserID and Role.
func JWTAuth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return response.Unauthorized(c, MsgInvalidToken)
			}
			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				return response.Unauthorized(c, MsgInvalidToken)
			}
			c.Set(ctxUserID, claims.ID)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
