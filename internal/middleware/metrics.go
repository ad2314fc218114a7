package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/metrics"
)

// Metrics records request counts and latency per route template.  Requests
// that match no route are labelled "unmatched" to keep label cardinality
// bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			done := metrics.RequestStarted()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			done(c.Request().Method, path, c.Response().Status)
			return nil
		}
	}
}
