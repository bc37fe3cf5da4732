package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"showtix/internal/movies"
	"showtix/internal/shared/utils/response"
	"showtix/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MovieLookup resolves favorite movie ids to full movie records. The movies
// service satisfies it directly; only this narrow slice of it is needed here.
type MovieLookup interface {
	GetMoviesByIDs(ctx context.Context, ids []string) ([]movies.Movie, error)
}

type Controller struct {
	service Service
	movies  MovieLookup
}

func NewController(service Service, movies MovieLookup) *Controller {
	return &Controller{
		service: service,
		movies:  movies,
	}
}

// GetMe returns the caller's mirrored profile
func (ctrl *Controller) GetMe(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authorised", nil, nil)
		return
	}

	user, err := ctrl.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load user", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User retrieved successfully", user, nil)
}

// ToggleFavorite marks or unmarks a movie as the caller's favorite
func (ctrl *Controller) ToggleFavorite(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authorised", nil, nil)
		return
	}

	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, err.Error())
		return
	}

	added, err := ctrl.service.ToggleFavorite(c.Request.Context(), userID, req.MovieID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update favorites", nil, err.Error())
		return
	}

	message := "Movie removed from favorites"
	if added {
		message = "Movie added to favorites"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, gin.H{"favorited": added}, nil)
}

// GetFavorites returns the caller's favorite movies with full metadata
func (ctrl *Controller) GetFavorites(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authorised", nil, nil)
		return
	}

	favorites, err := ctrl.service.GetFavorites(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "User not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load favorites", nil, err.Error())
		return
	}

	favoriteMovies, err := ctrl.movies.GetMoviesByIDs(c.Request.Context(), favorites)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load favorite movies", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Favorites retrieved successfully", favoriteMovies, nil)
}

// IdentityWebhook consumes user-sync events from the identity provider. The
// raw body is verified against the shared secret before anything is parsed.
func (ctrl *Controller) IdentityWebhook(c *gin.Context) {
	appLogger := logger.GetDefault()

	payload, err := c.GetRawData()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Failed to read payload", nil, nil)
		return
	}

	signature := c.GetHeader("X-Identity-Signature")
	if err := ctrl.service.VerifyWebhookSignature(payload, signature); err != nil {
		appLogger.LogWebhookRejected(c.Request.Context(), "identity", "signature verification failed")
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid signature", nil, nil)
		return
	}

	var event IdentityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payload", nil, nil)
		return
	}

	if err := ctrl.service.ProcessIdentityEvent(c.Request.Context(), event); err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to process event", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event processed", nil, nil)
}
