package bookings

import (
	"errors"
	"net/http"
	"regexp"

	"showtix/internal/shared/utils/response"
	"showtix/internal/shows"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// seatLabelPattern matches labels like "A1" or "AB12"
var seatLabelPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,3}$`)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	v := validator.New()
	v.RegisterValidation("seatlabel", func(fl validator.FieldLevel) bool {
		return seatLabelPattern.MatchString(fl.Field().String())
	})
	return &Controller{
		service:   service,
		validator: v,
	}
}

// CreateBooking reserves seats and returns the payment redirect URL
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, shows.ErrShowNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Show not found", nil, err.Error())
		case errors.Is(err, shows.ErrSeatsUnavailable):
			response.RespondJSON(c, "error", http.StatusConflict, "Selected seats are no longer available", nil, err.Error())
		case errors.Is(err, ErrShowAlreadyStarted):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Show has already started", nil, err.Error())
		case errors.Is(err, ErrPaymentUnavailable):
			response.RespondJSON(c, "error", http.StatusBadGateway, "Payment provider unavailable, please try again", nil, err.Error())
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create booking", nil, err.Error())
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", gin.H{
		"booking":     booking,
		"payment_url": booking.PaymentURL,
	}, nil)
}

// GetMyBookings returns the caller's bookings, newest first
func (ctrl *Controller) GetMyBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	bookings, err := ctrl.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve bookings", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// Admin handlers

// IsAdmin confirms the caller passed the admin middleware
func (ctrl *Controller) IsAdmin(c *gin.Context) {
	response.RespondJSON(c, "success", http.StatusOK, "Admin access confirmed", gin.H{"is_admin": true}, nil)
}

// Dashboard returns aggregate numbers for the admin landing screen
func (ctrl *Controller) Dashboard(c *gin.Context) {
	dashboard, err := ctrl.service.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to build dashboard", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Dashboard retrieved successfully", dashboard, nil)
}

// ListAllShows returns every upcoming show for the admin screen
func (ctrl *Controller) ListAllShows(c *gin.Context) {
	result, err := ctrl.service.ListAllShows(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve shows", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Shows retrieved successfully", result, nil)
}

// ListAllBookings returns every booking for the admin screen
func (ctrl *Controller) ListAllBookings(c *gin.Context) {
	result, err := ctrl.service.ListAllBookings(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to retrieve bookings", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}
