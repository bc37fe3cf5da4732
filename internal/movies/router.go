package movies

import (
	"showtix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupMovieRoutes configures movie catalog routes. The now-playing proxy is
// admin-only since it exists for the show-creation screen.
func SetupMovieRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	movies := rg.Group("/movies")
	movies.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		movies.GET("/now-playing", ctrl.NowPlaying)
	}
}
