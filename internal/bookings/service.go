package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"showtix/internal/notifications"
	"showtix/internal/payments"
	"showtix/internal/scheduler"
	"showtix/internal/shared/config"
	"showtix/internal/shows"
	"showtix/internal/users"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrShowAlreadyStarted = errors.New("show has already started")
	ErrPaymentUnavailable = errors.New("payment session could not be created")
)

// Service is the reservation engine. CreateBooking claims seats, opens a
// payment session and arms the expiry reaper; SettleBooking and the expiry
// handler race to decide the booking's fate, with the is_paid guard in the
// repository as the tiebreaker.
type Service interface {
	CreateBooking(ctx context.Context, userID string, req *CreateBookingRequest) (*Booking, error)
	SettleBooking(ctx context.Context, bookingID, sessionID string) error
	GetUserBookings(ctx context.Context, userID string) ([]Booking, error)

	// Scheduler handlers
	HandleBookingExpiry(ctx context.Context, task scheduler.Task) error
	HandleShowReminder(ctx context.Context, task scheduler.Task) error

	// Admin
	Dashboard(ctx context.Context) (*DashboardResponse, error)
	ListAllShows(ctx context.Context) ([]shows.Show, error)
	ListAllBookings(ctx context.Context) ([]Booking, error)
}

type service struct {
	repo      Repository
	showsRepo shows.Repository
	usersRepo users.Repository
	provider  payments.Provider
	scheduler scheduler.Client
	producer  notifications.Producer

	paymentDeadline time.Duration
	frontendURL     string
}

func NewService(repo Repository, showsRepo shows.Repository, usersRepo users.Repository,
	provider payments.Provider, schedulerClient scheduler.Client, producer notifications.Producer,
	bookingCfg config.BookingConfig, paymentsCfg config.PaymentsConfig) Service {
	return &service{
		repo:            repo,
		showsRepo:       showsRepo,
		usersRepo:       usersRepo,
		provider:        provider,
		scheduler:       schedulerClient,
		producer:        producer,
		paymentDeadline: bookingCfg.PaymentDeadline,
		frontendURL:     paymentsCfg.FrontendURL,
	}
}

// CreateBooking reserves seats and opens a payment session. The seat claim is
// all-or-nothing; everything after it is compensated on failure so no seat
// stays claimed without a live booking behind it.
func (s *service) CreateBooking(ctx context.Context, userID string, req *CreateBookingRequest) (*Booking, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, shows.ErrShowNotFound
	}

	show, err := s.showsRepo.GetByIDWithMovie(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show.StartTime.Before(time.Now()) {
		return nil, ErrShowAlreadyStarted
	}

	if err := s.showsRepo.ClaimSeats(ctx, showID, req.Seats, userID); err != nil {
		return nil, err
	}

	booking := &Booking{
		ID:          uuid.New(),
		UserID:      userID,
		ShowID:      showID,
		BookedSeats: SeatList(req.Seats),
		Amount:      show.Price * float64(len(req.Seats)),
		IsPaid:      false,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.compensateClaim(ctx, showID, req.Seats)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	productName := "Movie tickets"
	if show.Movie != nil {
		productName = show.Movie.Title
	}

	checkout, err := s.provider.CreateSession(ctx, &payments.SessionRequest{
		Amount:      booking.Amount,
		ProductName: productName,
		SuccessURL:  s.frontendURL + "/loading/my-bookings",
		CancelURL:   s.frontendURL + "/my-bookings",
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
		},
	})
	if err != nil {
		// Roll back: the seats must not stay claimed for a booking that can
		// never be paid
		if _, delErr := s.repo.DeleteUnpaid(ctx, booking.ID); delErr != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Failed to delete booking during rollback", delErr, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
		s.compensateClaim(ctx, showID, req.Seats)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	if err := s.repo.SetPaymentSession(ctx, booking.ID, checkout.SessionID, checkout.RedirectURL); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to store payment session", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
	booking.PaymentSessionID = &checkout.SessionID
	booking.PaymentURL = checkout.RedirectURL

	// Arm the reaper. If scheduling fails the booking still works, it just
	// holds its seats until the task is re-armed manually.
	expiryTask := scheduler.Task{
		Type:   scheduler.TaskTypeBookingExpiry,
		Key:    booking.ID.String(),
		FireAt: time.Now().Add(s.paymentDeadline),
	}
	if err := s.scheduler.Schedule(ctx, expiryTask); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to schedule booking expiry", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}

	logger.GetDefault().LogBookingCreated(ctx, booking.ID.String(), showID.String(), userID)
	return booking, nil
}

func (s *service) compensateClaim(ctx context.Context, showID uuid.UUID, seats []string) {
	if err := s.showsRepo.ReleaseSeats(ctx, showID, seats); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to release seats during rollback", err, map[string]interface{}{
			"show_id": showID.String(),
		})
	}
}

// SettleBooking marks a booking paid after the payment gateway confirms the
// charge. Settlement of a reaped booking is discarded: the money side is the
// gateway's problem to refund, the seats are already free again.
func (s *service) SettleBooking(ctx context.Context, bookingID, sessionID string) error {
	appLogger := logger.GetDefault()

	id, err := uuid.Parse(bookingID)
	if err != nil {
		appLogger.LogWebhookRejected(ctx, "payments", "malformed booking id in metadata")
		return nil
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			appLogger.InfoWithContext(ctx, "Settlement for reaped booking discarded", map[string]interface{}{
				"booking_id": bookingID,
				"session_id": sessionID,
			})
			return nil
		}
		return err
	}

	transitioned, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	if !transitioned {
		// Already settled by an earlier delivery of the same event
		return nil
	}

	if err := s.scheduler.Cancel(ctx, scheduler.TaskTypeBookingExpiry, bookingID); err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to cancel expiry task", err, map[string]interface{}{
			"booking_id": bookingID,
		})
	}

	appLogger.LogBookingSettled(ctx, bookingID)
	s.sendBookingConfirmation(ctx, booking)
	return nil
}

func (s *service) sendBookingConfirmation(ctx context.Context, booking *Booking) {
	appLogger := logger.GetDefault()

	user, err := s.usersRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to load user for confirmation email", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
		return
	}

	show, err := s.showsRepo.GetByIDWithMovie(ctx, booking.ShowID)
	if err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to load show for confirmation email", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
		return
	}

	movieTitle := ""
	if show.Movie != nil {
		movieTitle = show.Movie.Title
	}

	notification := notifications.NewBookingConfirmed(
		user.Email,
		user.Name,
		movieTitle,
		show.StartTime.Format(time.RFC1123),
		strings.Join(booking.BookedSeats, ", "),
		strconv.FormatFloat(booking.Amount, 'f', 2, 64),
	)
	if err := s.producer.Publish(ctx, notification); err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to publish booking confirmation", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
}

func (s *service) GetUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// HandleBookingExpiry reaps a booking that outlived its payment deadline. The
// handler is idempotent: redelivery, a booking that was paid in the meantime,
// or one already reaped all land in a no-op.
func (s *service) HandleBookingExpiry(ctx context.Context, task scheduler.Task) error {
	id, err := uuid.Parse(task.Key)
	if err != nil {
		// Not retryable, drop it
		return nil
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		return err
	}
	if booking.IsPaid {
		return nil
	}

	// The guarded delete is the commit point: it races MarkPaid at the row
	// level and exactly one of them wins. Seats are freed only once the
	// booking row is actually gone, so a settlement landing after the load
	// above keeps its seats occupied.
	reaped, err := s.repo.DeleteUnpaid(ctx, id)
	if err != nil {
		return err
	}
	if !reaped {
		// Paid between the load and the delete
		return nil
	}

	if err := s.showsRepo.ReleaseSeats(ctx, booking.ShowID, booking.BookedSeats); err != nil {
		if !errors.Is(err, shows.ErrShowNotFound) {
			return err
		}
	}

	logger.GetDefault().LogBookingReaped(ctx, booking.ID.String(), booking.ShowID.String(), len(booking.BookedSeats))
	return nil
}

// HandleShowReminder sends reminder emails to every paid booking of a show
func (s *service) HandleShowReminder(ctx context.Context, task scheduler.Task) error {
	showID, err := uuid.Parse(task.Payload["show_id"])
	if err != nil {
		return nil
	}

	show, err := s.showsRepo.GetByIDWithMovie(ctx, showID)
	if err != nil {
		if errors.Is(err, shows.ErrShowNotFound) {
			return nil
		}
		return err
	}

	paid, err := s.repo.ListPaidByShow(ctx, showID)
	if err != nil {
		return err
	}

	movieTitle := ""
	if show.Movie != nil {
		movieTitle = show.Movie.Title
	}

	appLogger := logger.GetDefault()
	reminded := make(map[string]bool)
	for _, booking := range paid {
		if reminded[booking.UserID] {
			continue
		}
		reminded[booking.UserID] = true

		user, err := s.usersRepo.GetByID(ctx, booking.UserID)
		if err != nil {
			appLogger.ErrorWithContext(ctx, "Failed to load user for reminder", err, map[string]interface{}{
				"user_id": booking.UserID,
			})
			continue
		}

		notification := notifications.NewShowReminder(user.Email, user.Name, movieTitle, show.StartTime.Format(time.RFC1123))
		if err := s.producer.Publish(ctx, notification); err != nil {
			appLogger.ErrorWithContext(ctx, "Failed to publish show reminder", err, map[string]interface{}{
				"show_id": showID.String(),
			})
		}
	}

	return nil
}

// Dashboard aggregates the numbers for the admin landing screen
func (s *service) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	totalBookings, err := s.repo.CountPaid(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.SumPaidAmount(ctx)
	if err != nil {
		return nil, err
	}

	activeShows, err := s.showsRepo.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.usersRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		TotalBookings: totalBookings,
		TotalRevenue:  revenue,
		ActiveShows:   activeShows,
		TotalUsers:    totalUsers,
	}, nil
}

func (s *service) ListAllShows(ctx context.Context) ([]shows.Show, error) {
	return s.showsRepo.ListUpcoming(ctx)
}

func (s *service) ListAllBookings(ctx context.Context) ([]Booking, error) {
	return s.repo.ListAll(ctx)
}
