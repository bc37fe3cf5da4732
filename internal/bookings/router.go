package bookings

import (
	"showtix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking routes, all of them authenticated
func SetupBookingRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", ctrl.CreateBooking)
		bookings.GET("/me", ctrl.GetMyBookings)
	}
}

// SetupAdminRoutes configures the admin dashboard routes
func SetupAdminRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/is-admin", ctrl.IsAdmin)
		admin.GET("/dashboard", ctrl.Dashboard)
		admin.GET("/all-shows", ctrl.ListAllShows)
		admin.GET("/all-bookings", ctrl.ListAllBookings)
	}
}
