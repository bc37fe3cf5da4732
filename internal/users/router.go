package users

import (
	"showtix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes configures user profile and favorites routes
func SetupUserRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	user := rg.Group("/users")
	user.Use(middleware.JWTAuth())
	{
		user.GET("/me", ctrl.GetMe)
		user.GET("/favorites", ctrl.GetFavorites)
		user.POST("/favorites", ctrl.ToggleFavorite)
	}
}

// SetupIdentityWebhookRoutes configures the identity provider's user-sync
// webhook. Authentication is the payload signature, not a bearer token.
func SetupIdentityWebhookRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	rg.POST("/webhooks/identity", ctrl.IdentityWebhook)
}
