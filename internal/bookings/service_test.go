package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"showtix/internal/movies"
	"showtix/internal/notifications"
	"showtix/internal/payments"
	"showtix/internal/scheduler"
	"showtix/internal/shared/config"
	"showtix/internal/shows"
	"showtix/internal/users"

	"github.com/google/uuid"
)

// In-memory fakes. The show store serializes seat mutations with a mutex the
// same way the real repository serializes them with row locks.

type fakeShowRepo struct {
	mu    sync.Mutex
	shows map[uuid.UUID]*shows.Show
}

func newFakeShowRepo() *fakeShowRepo {
	return &fakeShowRepo{shows: make(map[uuid.UUID]*shows.Show)}
}

func (f *fakeShowRepo) add(show *shows.Show) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if show.OccupiedSeats == nil {
		show.OccupiedSeats = shows.SeatMap{}
	}
	f.shows[show.ID] = show
}

func (f *fakeShowRepo) GetByID(ctx context.Context, id uuid.UUID) (*shows.Show, error) {
	return f.GetByIDWithMovie(ctx, id)
}

func (f *fakeShowRepo) GetByIDWithMovie(ctx context.Context, id uuid.UUID) (*shows.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return nil, shows.ErrShowNotFound
	}
	copied := *show
	copiedSeats := shows.SeatMap{}
	for seat, user := range show.OccupiedSeats {
		copiedSeats[seat] = user
	}
	copied.OccupiedSeats = copiedSeats
	return &copied, nil
}

func (f *fakeShowRepo) ListUpcoming(ctx context.Context) ([]shows.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []shows.Show
	for _, show := range f.shows {
		result = append(result, *show)
	}
	return result, nil
}

func (f *fakeShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string) ([]shows.Show, error) {
	return nil, nil
}

func (f *fakeShowRepo) CreateBatch(ctx context.Context, batch []shows.Show) error {
	for i := range batch {
		f.add(&batch[i])
	}
	return nil
}

func (f *fakeShowRepo) ClaimSeats(ctx context.Context, id uuid.UUID, seats []string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return shows.ErrShowNotFound
	}
	if show.OccupiedSeats.AnyClaimed(seats) {
		return shows.ErrSeatsUnavailable
	}
	for _, seat := range seats {
		show.OccupiedSeats[seat] = userID
	}
	return nil
}

func (f *fakeShowRepo) ReleaseSeats(ctx context.Context, id uuid.UUID, seats []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return shows.ErrShowNotFound
	}
	for _, seat := range seats {
		delete(show.OccupiedSeats, seat)
	}
	return nil
}

func (f *fakeShowRepo) occupied(id uuid.UUID) shows.SeatMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shows[id].OccupiedSeats
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking

	// beforeDeleteUnpaid, when set, runs before the guarded delete takes the
	// lock. Lets a test land a settlement inside the reaper's race window.
	beforeDeleteUnpaid func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	booking.PaymentSessionID = &sessionID
	booking.PaymentURL = paymentURL
	return nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.IsPaid {
		return false, nil
	}
	booking.IsPaid = true
	booking.PaymentSessionID = nil
	booking.PaymentURL = ""
	return true, nil
}

func (f *fakeBookingRepo) DeleteUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.beforeDeleteUnpaid != nil {
		f.beforeDeleteUnpaid()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.IsPaid {
		return false, nil
	}
	delete(f.bookings, id)
	return true, nil
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) ListPaidByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, booking := range f.bookings {
		if booking.ShowID == showID && booking.IsPaid {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) ListAll(ctx context.Context) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, booking := range f.bookings {
		result = append(result, *booking)
	}
	return result, nil
}

func (f *fakeBookingRepo) CountPaid(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, booking := range f.bookings {
		if booking.IsPaid {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) SumPaidAmount(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, booking := range f.bookings {
		if booking.IsPaid {
			total += booking.Amount
		}
	}
	return total, nil
}

type fakeUserRepo struct {
	users map[string]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*users.User)}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *users.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UpdateFavorites(ctx context.Context, id string, favorites users.StringList) error {
	return nil
}

func (f *fakeUserRepo) ListByFavoriteMovie(ctx context.Context, movieID string) ([]users.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeProvider struct {
	mu       sync.Mutex
	fail     bool
	sessions int
}

func (f *fakeProvider) CreateSession(ctx context.Context, req *payments.SessionRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, payments.ErrProviderUnavailable
	}
	f.sessions++
	return &payments.CheckoutSession{
		SessionID:   "cs_test_123",
		RedirectURL: "https://pay.example.com/cs_test_123",
	}, nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduler.Task
	cancelled []string
}

func (f *fakeScheduler) Schedule(ctx context.Context, task scheduler.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, task)
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, taskType, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, taskType+":"+key)
	return nil
}

type fakeProducer struct {
	mu        sync.Mutex
	published []*notifications.Notification
}

func (f *fakeProducer) Publish(ctx context.Context, notification *notifications.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, notification)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type engineFixture struct {
	service   Service
	showRepo  *fakeShowRepo
	repo      *fakeBookingRepo
	userRepo  *fakeUserRepo
	provider  *fakeProvider
	scheduler *fakeScheduler
	producer  *fakeProducer
	show      *shows.Show
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	showRepo := newFakeShowRepo()
	repo := newFakeBookingRepo()
	userRepo := newFakeUserRepo()
	provider := &fakeProvider{}
	sched := &fakeScheduler{}
	producer := &fakeProducer{}

	show := &shows.Show{
		ID:        uuid.New(),
		MovieID:   "603",
		StartTime: time.Now().Add(24 * time.Hour),
		Price:     12.50,
		Movie:     &movies.Movie{ID: "603", Title: "The Matrix"},
	}
	showRepo.add(show)

	userRepo.Upsert(context.Background(), &users.User{
		ID:    "user-1",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})

	service := NewService(repo, showRepo, userRepo, provider, sched, producer,
		config.BookingConfig{PaymentDeadline: 10 * time.Minute},
		config.PaymentsConfig{FrontendURL: "http://localhost:5173"})

	return &engineFixture{
		service:   service,
		showRepo:  showRepo,
		repo:      repo,
		userRepo:  userRepo,
		provider:  provider,
		scheduler: sched,
		producer:  producer,
		show:      show,
	}
}

func TestCreateBookingComputesAmountFromSeats(t *testing.T) {
	f := newEngineFixture(t)

	booking, err := f.service.CreateBooking(context.Background(), "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A1", "A2", "A3"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if want := 3 * 12.50; booking.Amount != want {
		t.Errorf("amount = %v, want %v", booking.Amount, want)
	}
	if booking.IsPaid {
		t.Error("new booking must start unpaid")
	}
	if booking.PaymentURL == "" {
		t.Error("expected a payment redirect URL")
	}

	occupied := f.showRepo.occupied(f.show.ID)
	for _, seat := range []string{"A1", "A2", "A3"} {
		if occupied[seat] != "user-1" {
			t.Errorf("seat %s not claimed by user-1", seat)
		}
	}

	if len(f.scheduler.scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(f.scheduler.scheduled))
	}
	task := f.scheduler.scheduled[0]
	if task.Type != scheduler.TaskTypeBookingExpiry || task.Key != booking.ID.String() {
		t.Errorf("unexpected expiry task %+v", task)
	}
}

func TestCreateBookingRejectsTakenSeats(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"B1", "B2"},
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := f.service.CreateBooking(ctx, "user-2", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"B2", "B3"},
	})
	if !errors.Is(err, shows.ErrSeatsUnavailable) {
		t.Fatalf("overlapping booking: got %v, want ErrSeatsUnavailable", err)
	}

	// The failed attempt must not have claimed its non-overlapping seat
	if _, taken := f.showRepo.occupied(f.show.ID)["B3"]; taken {
		t.Error("seat B3 claimed by a failed booking")
	}
}

func TestConcurrentBookings(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Disjoint seat sets: both must succeed
	var wg sync.WaitGroup
	errs := make([]error, 2)
	seatSets := [][]string{{"C1", "C2"}, {"C3", "C4"}}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
				ShowID: f.show.ID.String(),
				Seats:  seatSets[i],
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("disjoint booking %d failed: %v", i, err)
		}
	}

	// Overlapping seat sets: exactly one wins
	overlap := [][]string{{"D1", "D2"}, {"D2", "D3"}}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
				ShowID: f.show.ID.String(),
				Seats:  overlap[i],
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if errors.Is(err, shows.ErrSeatsUnavailable) {
			failures++
		} else if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if failures != 1 {
		t.Errorf("overlapping claims: %d failures, want exactly 1", failures)
	}
}

func TestCreateBookingRollsBackOnPaymentFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.provider.fail = true

	_, err := f.service.CreateBooking(context.Background(), "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"E1", "E2"},
	})
	if !errors.Is(err, ErrPaymentUnavailable) {
		t.Fatalf("got %v, want ErrPaymentUnavailable", err)
	}

	if len(f.showRepo.occupied(f.show.ID)) != 0 {
		t.Error("seats still claimed after payment failure rollback")
	}
	if all, _ := f.repo.ListAll(context.Background()); len(all) != 0 {
		t.Error("booking row survived payment failure rollback")
	}
}

func TestCreateBookingRejectsMissingAndStartedShows(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: uuid.New().String(),
		Seats:  []string{"A1"},
	})
	if !errors.Is(err, shows.ErrShowNotFound) {
		t.Errorf("unknown show: got %v, want ErrShowNotFound", err)
	}

	started := &shows.Show{
		ID:        uuid.New(),
		MovieID:   "603",
		StartTime: time.Now().Add(-time.Hour),
		Price:     10,
	}
	f.showRepo.add(started)

	_, err = f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: started.ID.String(),
		Seats:  []string{"A1"},
	})
	if !errors.Is(err, ErrShowAlreadyStarted) {
		t.Errorf("started show: got %v, want ErrShowAlreadyStarted", err)
	}
}

func TestSettleBookingMarksPaidOnce(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"F1"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if err := f.service.SettleBooking(ctx, booking.ID.String(), "cs_test_123"); err != nil {
		t.Fatalf("SettleBooking failed: %v", err)
	}

	settled, err := f.repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("booking vanished after settlement: %v", err)
	}
	if !settled.IsPaid {
		t.Error("booking not marked paid")
	}
	if settled.PaymentSessionID != nil {
		t.Error("payment session reference not cleared on settlement")
	}

	if len(f.scheduler.cancelled) != 1 {
		t.Errorf("expiry task not cancelled, cancellations: %v", f.scheduler.cancelled)
	}
	if f.producer.count() != 1 {
		t.Errorf("confirmation notifications = %d, want 1", f.producer.count())
	}

	// Redelivered settlement is a no-op
	if err := f.service.SettleBooking(ctx, booking.ID.String(), "cs_test_123"); err != nil {
		t.Fatalf("replayed settlement failed: %v", err)
	}
	if f.producer.count() != 1 {
		t.Errorf("replayed settlement sent another confirmation")
	}
}

func TestExpiryReapsUnpaidBooking(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"G1", "G2"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	task := scheduler.Task{Type: scheduler.TaskTypeBookingExpiry, Key: booking.ID.String()}
	if err := f.service.HandleBookingExpiry(ctx, task); err != nil {
		t.Fatalf("expiry handler failed: %v", err)
	}

	if _, err := f.repo.GetByID(ctx, booking.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Error("unpaid booking survived the reaper")
	}
	if len(f.showRepo.occupied(f.show.ID)) != 0 {
		t.Error("seats still claimed after reap")
	}

	// Redelivery of the expiry task is a no-op
	if err := f.service.HandleBookingExpiry(ctx, task); err != nil {
		t.Fatalf("redelivered expiry failed: %v", err)
	}
}

func TestExpirySparesPaidBooking(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"H1"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if err := f.service.SettleBooking(ctx, booking.ID.String(), "cs_test_123"); err != nil {
		t.Fatalf("SettleBooking failed: %v", err)
	}

	task := scheduler.Task{Type: scheduler.TaskTypeBookingExpiry, Key: booking.ID.String()}
	if err := f.service.HandleBookingExpiry(ctx, task); err != nil {
		t.Fatalf("expiry handler failed: %v", err)
	}

	settled, err := f.repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatal("paid booking was reaped")
	}
	if !settled.IsPaid {
		t.Error("booking lost its paid flag")
	}
	if occupied := f.showRepo.occupied(f.show.ID); occupied["H1"] == "" {
		t.Error("paid booking's seat was released")
	}
}

func TestSettlementDuringReapKeepsSeats(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"M1", "M2"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Land the settlement after the reaper has loaded the booking but before
	// its guarded delete
	f.repo.beforeDeleteUnpaid = func() {
		f.repo.beforeDeleteUnpaid = nil
		if err := f.service.SettleBooking(ctx, booking.ID.String(), "cs_test_123"); err != nil {
			t.Errorf("mid-reap settlement failed: %v", err)
		}
	}

	task := scheduler.Task{Type: scheduler.TaskTypeBookingExpiry, Key: booking.ID.String()}
	if err := f.service.HandleBookingExpiry(ctx, task); err != nil {
		t.Fatalf("expiry handler failed: %v", err)
	}

	settled, err := f.repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatal("booking reaped despite winning settlement")
	}
	if !settled.IsPaid {
		t.Error("booking lost its paid flag")
	}
	occupied := f.showRepo.occupied(f.show.ID)
	for _, seat := range []string{"M1", "M2"} {
		if occupied[seat] != "user-1" {
			t.Errorf("seat %s of a paid booking was released", seat)
		}
	}
}

func TestSettlementAfterReapIsDiscarded(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"J1"},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	task := scheduler.Task{Type: scheduler.TaskTypeBookingExpiry, Key: booking.ID.String()}
	if err := f.service.HandleBookingExpiry(ctx, task); err != nil {
		t.Fatalf("expiry handler failed: %v", err)
	}

	// The late webhook must be acknowledged, not retried forever
	if err := f.service.SettleBooking(ctx, booking.ID.String(), "cs_test_123"); err != nil {
		t.Fatalf("late settlement returned error: %v", err)
	}
	if f.producer.count() != 0 {
		t.Error("discarded settlement still sent a confirmation")
	}
	if _, taken := f.showRepo.occupied(f.show.ID)["J1"]; taken {
		t.Error("seat re-claimed by discarded settlement")
	}
}

func TestShowReminderNotifiesPaidBookingsOnce(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	paid1, _ := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(), Seats: []string{"K1"},
	})
	paid2, _ := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(), Seats: []string{"K2"},
	})
	unpaid, _ := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(), Seats: []string{"K3"},
	})
	_ = unpaid

	f.service.SettleBooking(ctx, paid1.ID.String(), "cs_1")
	f.service.SettleBooking(ctx, paid2.ID.String(), "cs_2")
	confirmations := f.producer.count()

	task := scheduler.Task{
		Type:    scheduler.TaskTypeShowReminder,
		Key:     f.show.ID.String(),
		Payload: map[string]string{"show_id": f.show.ID.String()},
	}
	if err := f.service.HandleShowReminder(ctx, task); err != nil {
		t.Fatalf("reminder handler failed: %v", err)
	}

	// Two paid bookings, one user: one reminder
	reminders := f.producer.count() - confirmations
	if reminders != 1 {
		t.Errorf("reminders sent = %d, want 1", reminders)
	}
}

func TestDashboardAggregates(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	b1, _ := f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(), Seats: []string{"L1", "L2"},
	})
	f.service.CreateBooking(ctx, "user-1", &CreateBookingRequest{
		ShowID: f.show.ID.String(), Seats: []string{"L3"},
	})
	f.service.SettleBooking(ctx, b1.ID.String(), "cs_1")

	dashboard, err := f.service.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if dashboard.TotalBookings != 1 {
		t.Errorf("TotalBookings = %d, want 1 (only paid bookings count)", dashboard.TotalBookings)
	}
	if want := 2 * 12.50; dashboard.TotalRevenue != want {
		t.Errorf("TotalRevenue = %v, want %v", dashboard.TotalRevenue, want)
	}
	if dashboard.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", dashboard.TotalUsers)
	}
}
