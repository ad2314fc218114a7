package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request.  The level follows the status:
// info below 400, warn below 500, error otherwise.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			entry := log.WithFields(logrus.Fields{
				"method":    req.Method,
				"uri":       req.URL.Path,
				"route":     c.Path(),
				"status":    res.Status,
				"latency":   time.Since(start).String(),
				"remote_ip": c.RealIP(),
			})
			if id := UserID(c); id != 0 {
				entry = entry.WithFields(logrus.Fields{"account_id": id, "role": Role(c)})
			}
			if err != nil {
				entry = entry.WithError(err)
			}

			switch {
			case res.Status >= 500:
				entry.Error("request")
			case res.Status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
