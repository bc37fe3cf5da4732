package shows

import (
	"errors"
	"net/http"

	"showtix/internal/movies"
	"showtix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// AddShows bulk-creates shows for a movie (admin only)
func (ctrl *Controller) AddShows(c *gin.Context) {
	var req AddShowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	created, err := ctrl.service.AddShows(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidShowTime):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show dates or times", nil, err.Error())
		case errors.Is(err, movies.ErrMovieNotInCatalog):
			response.RespondJSON(c, "error", http.StatusNotFound, "Movie not found in catalog", nil, err.Error())
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create shows", nil, err.Error())
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Shows created successfully", gin.H{
		"shows_created": len(created),
		"shows":         created,
	}, nil)
}

// ListMovies returns every movie with at least one upcoming show
func (ctrl *Controller) ListMovies(c *gin.Context) {
	result, err := ctrl.service.ListMoviesWithUpcomingShows(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve movies", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Movies retrieved successfully", result, nil)
}

// GetMovieShowtimes returns a movie's upcoming screenings grouped by date
func (ctrl *Controller) GetMovieShowtimes(c *gin.Context) {
	movieID := c.Param("movieId")

	result, err := ctrl.service.GetMovieShowtimes(c.Request.Context(), movieID)
	if err != nil {
		if errors.Is(err, movies.ErrMovieNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Movie not found", nil, err.Error())
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve showtimes", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Showtimes retrieved successfully", result, nil)
}

// GetOccupiedSeats returns the claimed seat labels for a show
func (ctrl *Controller) GetOccupiedSeats(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("showId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, err.Error())
		return
	}

	result, err := ctrl.service.GetOccupiedSeats(c.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Show not found", nil, err.Error())
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve occupied seats", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Occupied seats retrieved successfully", result, nil)
}
