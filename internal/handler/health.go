package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Hello answers the root path.
func Hello(c echo.Context) error {
	return response.OK(c, "Hello World", nil)
}

// Health reports liveness and, when db is set, database reachability.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return response.Fail(c, http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return response.OK(c, "ok", nil)
	}
}
