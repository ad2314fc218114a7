package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/handler"
	"github.com/iliyamo/apparte-kost/internal/metrics"
	"github.com/iliyamo/apparte-kost/internal/middleware"
)

// Deps carries everything the routes are bound to.
type Deps struct {
	Tokens    middleware.TokenParser
	RateLimit echo.MiddlewareFunc // guards credential endpoints; nil disables it
	DB        handler.Pinger

	Account      *handler.AccountHandler
	Boarding     *handler.BoardingHandler
	WebAuth      *handler.WebAuthHandler
	WebBoarding  *handler.WebBoardingHandler
	Transactions *handler.TransactionHandler
	Assets       *handler.AssetHandler // nil when uploads are served elsewhere
}

// Register mounts the platform routes and both surfaces.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d)
	RegisterMobile(e, d)
	RegisterWeb(e, d)
}

// RegisterRoutes registers routes that need no authentication: the hello
// envelope, health, Prometheus metrics and stored uploads.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/", handler.Hello)
	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if d.Assets != nil {
		e.GET("/uploads/*", d.Assets.Serve)
	}
}

func (d Deps) limiter() echo.MiddlewareFunc {
	if d.RateLimit != nil {
		return d.RateLimit
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
