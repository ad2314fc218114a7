package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// RegisterWeb registers the dashboard surface under /api/web for admins and
// listing accounts.
func RegisterWeb(e *echo.Echo, d Deps) {
	api := e.Group("/api/web")

	auth := api.Group("/auth", d.limiter())
	auth.POST("/login", d.WebAuth.Login)
	auth.POST("/register-boarding", d.WebAuth.RegisterBoarding)

	admin := middleware.RequireRole(utils.RoleAdmin)
	owner := middleware.RequireRole(utils.RoleBoardingHouse)
	either := middleware.RequireRole(utils.RoleAdmin, utils.RoleBoardingHouse)

	b := api.Group("/boardings", middleware.JWTAuth(d.Tokens))
	// static paths first so they are not captured by :id
	b.GET("", d.WebBoarding.List, admin)
	b.GET("/dashboard", d.WebBoarding.Dashboard, admin)
	b.PATCH("/owner/picture", d.WebBoarding.OwnerPicture, owner)
	b.GET("/:id", d.WebBoarding.Detail, either)
	b.PUT("/:id", d.WebBoarding.Edit, either)
	b.PATCH("/:id/confirm", d.WebBoarding.Confirm, admin)
	b.PATCH("/:id/active", d.WebBoarding.ToggleActive, either)
	b.PATCH("/:id/panorama", d.WebBoarding.AddPanorama, either)
	b.DELETE("/:id/panorama", d.WebBoarding.DeletePanorama, either)

	tx := api.Group("/transactions", middleware.JWTAuth(d.Tokens), owner)
	tx.GET("", d.Transactions.List)
	tx.PATCH("/:id", d.Transactions.SetInactive)
}
