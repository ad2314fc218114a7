package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// RegisterMobile registers the app surface under /api/mobile.  Login and
// registration are public and rate limited; everything else requires a
// USER token.
func RegisterMobile(e *echo.Echo, d Deps) {
	api := e.Group("/api/mobile")
	user := []echo.MiddlewareFunc{middleware.JWTAuth(d.Tokens), middleware.RequireRole(utils.RoleUser)}

	acc := api.Group("/account")
	acc.POST("/login", d.Account.Login, d.limiter())
	acc.POST("/register", d.Account.Register, d.limiter())
	acc.GET("", d.Account.Profile, user...)
	acc.PUT("", d.Account.Edit, user...)
	acc.PATCH("", d.Account.SetPicture, user...)
	acc.DELETE("", d.Account.DeletePicture, user...)
	acc.PUT("/change-password", d.Account.ChangePassword, user...)
	acc.GET("/history", d.Account.History, user...)

	b := api.Group("/boardings", user...)
	b.GET("", d.Boarding.List)
	b.GET("/key-location", d.Boarding.KeyLocations)
	b.PUT("", d.Boarding.Bookmark)
	b.PATCH("", d.Boarding.Review)
	b.POST("", d.Boarding.Book)
	b.GET("/:id", d.Boarding.Detail)
}
