// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"showtix/internal/bookings"
	"showtix/internal/movies"
	"showtix/internal/notifications"
	"showtix/internal/payments"
	"showtix/internal/scheduler"
	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/internal/shows"
	"showtix/internal/users"
	"showtix/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	scheduler *scheduler.Scheduler
	producer  notifications.Producer

	// Shared services for cross-module injection
	movieService   movies.Service
	showRepo       shows.Repository
	userRepo       users.Repository
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, sched *scheduler.Scheduler, producer notifications.Producer) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		scheduler: sched,
		producer:  producer,
	}
}

// SetupRoutes configures all application routes and registers the booking
// lifecycle handlers on the scheduler. Must run before the scheduler starts.
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Movie catalog first: shows and users depend on it
		r.setupMovieRoutes(api)
		r.setupShowRoutes(api)
		r.setupUserRoutes(api)

		if err := r.setupBookingRoutes(api); err != nil {
			return err
		}
	}

	return nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "showtix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "showtix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupMovieRoutes configures movie catalog routes
func (r *Router) setupMovieRoutes(rg *gin.RouterGroup) {
	movieRepo := movies.NewRepository(r.db.GetPostgreSQL())
	catalogClient := movies.NewTMDBClient(r.config.Catalog)
	r.movieService = movies.NewService(movieRepo, catalogClient)

	movieController := movies.NewController(r.movieService)
	movies.SetupMovieRoutes(rg, movieController)
}

// setupShowRoutes configures show catalog routes
func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	r.showRepo = shows.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedisClient())

	showService := shows.NewService(r.showRepo, r.movieService, r.scheduler,
		r.producer, cacheService, r.config.Booking.ReminderLead)

	showController := shows.NewController(showService)
	shows.SetupShowRoutes(rg, showController)
}

// setupUserRoutes configures user profile routes and the identity webhook
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	r.userRepo = users.NewRepository(r.db.GetPostgreSQL())
	userService := users.NewService(r.userRepo, r.config.Identity.WebhookSecret)

	userController := users.NewController(userService, r.movieService)
	users.SetupUserRoutes(rg, userController)
	users.SetupIdentityWebhookRoutes(rg, userController)
}

// setupBookingRoutes configures booking, admin and payment webhook routes,
// and registers the expiry and reminder handlers on the scheduler
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) error {
	provider, err := payments.NewStripeProvider(r.config.Payments)
	if err != nil {
		return err
	}

	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(bookingRepo, r.showRepo, r.userRepo,
		provider, r.scheduler, r.producer, r.config.Booking, r.config.Payments)

	r.scheduler.Register(scheduler.TaskTypeBookingExpiry, r.bookingService.HandleBookingExpiry)
	r.scheduler.Register(scheduler.TaskTypeShowReminder, r.bookingService.HandleShowReminder)

	bookingController := bookings.NewController(r.bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)
	bookings.SetupAdminRoutes(rg, bookingController)

	webhookController := payments.NewWebhookController(r.bookingService, r.config.Payments.WebhookSecret)
	payments.SetupWebhookRoutes(rg, webhookController)

	return nil
}

// FavoritesResolver resolves show_added broadcasts to the users who favorited
// the movie. Built separately from the router because the notification
// service starts before HTTP wiring.
type FavoritesResolver struct {
	repo users.Repository
}

func NewFavoritesResolver(db *database.DB) *FavoritesResolver {
	return &FavoritesResolver{repo: users.NewRepository(db.GetPostgreSQL())}
}

func (f *FavoritesResolver) FavoritesOf(ctx context.Context, movieID string) ([]notifications.Recipient, error) {
	favoriters, err := f.repo.ListByFavoriteMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	recipients := make([]notifications.Recipient, 0, len(favoriters))
	for _, user := range favoriters {
		recipients = append(recipients, notifications.Recipient{
			Email: user.Email,
			Name:  user.Name,
		})
	}
	return recipients, nil
}
