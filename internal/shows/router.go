package shows

import (
	"showtix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupShowRoutes configures show catalog routes. Browsing is public; show
// creation is admin only.
func SetupShowRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	shows := rg.Group("/shows")
	{
		shows.GET("", ctrl.ListMovies)
		shows.GET("/seats/:showId", ctrl.GetOccupiedSeats)
		shows.GET("/:movieId", ctrl.GetMovieShowtimes)

		shows.POST("", middleware.JWTAuth(), middleware.RequireAdmin(), ctrl.AddShows)
	}
}
