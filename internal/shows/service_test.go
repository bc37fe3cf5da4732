package shows

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"showtix/internal/movies"
	"showtix/internal/notifications"
	"showtix/internal/scheduler"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu      sync.Mutex
	created []Show
	shows   map[uuid.UUID]*Show
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{shows: make(map[uuid.UUID]*Show)}
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return nil, ErrShowNotFound
	}
	return show, nil
}

func (f *fakeRepo) GetByIDWithMovie(ctx context.Context, id uuid.UUID) (*Show, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) ListUpcoming(ctx context.Context) ([]Show, error) {
	var result []Show
	for _, show := range f.shows {
		result = append(result, *show)
	}
	return result, nil
}

func (f *fakeRepo) ListUpcomingByMovie(ctx context.Context, movieID string) ([]Show, error) {
	var result []Show
	for _, show := range f.shows {
		if show.MovieID == movieID {
			result = append(result, *show)
		}
	}
	return result, nil
}

func (f *fakeRepo) CreateBatch(ctx context.Context, batch []Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, batch...)
	for i := range batch {
		show := batch[i]
		f.shows[show.ID] = &show
	}
	return nil
}

func (f *fakeRepo) ClaimSeats(ctx context.Context, id uuid.UUID, seats []string, userID string) error {
	return nil
}

func (f *fakeRepo) ReleaseSeats(ctx context.Context, id uuid.UUID, seats []string) error {
	return nil
}

type fakeMovieService struct {
	movie *movies.Movie
}

func (f *fakeMovieService) GetOrFetch(ctx context.Context, movieID string) (*movies.Movie, error) {
	if f.movie == nil || f.movie.ID != movieID {
		return nil, movies.ErrMovieNotInCatalog
	}
	return f.movie, nil
}

func (f *fakeMovieService) GetMovie(ctx context.Context, movieID string) (*movies.Movie, error) {
	if f.movie == nil || f.movie.ID != movieID {
		return nil, movies.ErrMovieNotFound
	}
	return f.movie, nil
}

func (f *fakeMovieService) GetMoviesByIDs(ctx context.Context, ids []string) ([]movies.Movie, error) {
	return nil, nil
}

func (f *fakeMovieService) NowPlaying(ctx context.Context) ([]movies.CatalogMovie, error) {
	return nil, nil
}

type fakeSchedulerClient struct {
	mu    sync.Mutex
	tasks []scheduler.Task
}

func (f *fakeSchedulerClient) Schedule(ctx context.Context, task scheduler.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeSchedulerClient) Cancel(ctx context.Context, taskType, key string) error {
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

// passthroughCache always misses and forwards to the fetcher
type passthroughCache struct{}

func (passthroughCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("cache miss")
}

func (passthroughCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (passthroughCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (passthroughCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (passthroughCache) Exists(ctx context.Context, key string) bool { return false }

func (passthroughCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (passthroughCache) Ping(ctx context.Context) error { return nil }

func newTestService(repo *fakeRepo, movieService *fakeMovieService) (Service, *fakeSchedulerClient, *fakeProducer) {
	sched := &fakeSchedulerClient{}
	producer := &fakeProducer{}
	service := NewService(repo, movieService, sched, producer, passthroughCache{}, 8*time.Hour)
	return service, sched, producer
}

func TestAddShowsExpandsDateTimeGroups(t *testing.T) {
	repo := newFakeRepo()
	movieService := &fakeMovieService{movie: &movies.Movie{ID: "603", Title: "The Matrix"}}
	service, sched, producer := newTestService(repo, movieService)

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")
	dayAfter := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")

	created, err := service.AddShows(context.Background(), &AddShowsRequest{
		MovieID: "603",
		ShowsInput: []ShowInput{
			{Date: tomorrow, Times: []string{"14:00", "18:30"}},
			{Date: dayAfter, Times: []string{"20:00"}},
		},
		ShowPrice: 15,
	})
	if err != nil {
		t.Fatalf("AddShows failed: %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created %d shows, want 3", len(created))
	}
	for _, show := range created {
		if show.Price != 15 {
			t.Errorf("show price = %v, want 15", show.Price)
		}
		if show.MovieID != "603" {
			t.Errorf("show movie = %q, want 603", show.MovieID)
		}
		if len(show.OccupiedSeats) != 0 {
			t.Error("new show has occupied seats")
		}
	}

	// One reminder task per show
	if len(sched.tasks) != 3 {
		t.Errorf("scheduled %d reminder tasks, want 3", len(sched.tasks))
	}
	for _, task := range sched.tasks {
		if task.Type != scheduler.TaskTypeShowReminder {
			t.Errorf("task type = %q, want %q", task.Type, scheduler.TaskTypeShowReminder)
		}
	}

	// One show_added broadcast for the movie
	if len(producer.published) != 1 {
		t.Fatalf("published %d notifications, want 1", len(producer.published))
	}
	if producer.published[0].Type != notifications.TypeShowAdded {
		t.Errorf("notification type = %q, want %q", producer.published[0].Type, notifications.TypeShowAdded)
	}
}

func TestAddShowsRejectsUnknownMovieAndBadInput(t *testing.T) {
	repo := newFakeRepo()
	movieService := &fakeMovieService{movie: &movies.Movie{ID: "603", Title: "The Matrix"}}
	service, _, _ := newTestService(repo, movieService)
	ctx := context.Background()

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")

	_, err := service.AddShows(ctx, &AddShowsRequest{
		MovieID:    "99999",
		ShowsInput: []ShowInput{{Date: tomorrow, Times: []string{"14:00"}}},
		ShowPrice:  10,
	})
	if !errors.Is(err, movies.ErrMovieNotInCatalog) {
		t.Errorf("unknown movie: got %v, want ErrMovieNotInCatalog", err)
	}

	_, err = service.AddShows(ctx, &AddShowsRequest{
		MovieID:    "603",
		ShowsInput: []ShowInput{{Date: "not-a-date", Times: []string{"14:00"}}},
		ShowPrice:  10,
	})
	if !errors.Is(err, ErrInvalidShowTime) {
		t.Errorf("bad date: got %v, want ErrInvalidShowTime", err)
	}

	// All times in the past: nothing to create
	_, err = service.AddShows(ctx, &AddShowsRequest{
		MovieID:    "603",
		ShowsInput: []ShowInput{{Date: "2020-01-01", Times: []string{"14:00"}}},
		ShowPrice:  10,
	})
	if !errors.Is(err, ErrInvalidShowTime) {
		t.Errorf("past times: got %v, want ErrInvalidShowTime", err)
	}
}

func TestGroupShowtimesByDate(t *testing.T) {
	day1 := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	day1Early := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 2, 20, 0, 0, 0, time.UTC)

	grouped := GroupShowtimesByDate([]Show{
		{ID: uuid.New(), StartTime: day1, Price: 10},
		{ID: uuid.New(), StartTime: day2, Price: 10},
		{ID: uuid.New(), StartTime: day1Early, Price: 10},
	})

	if len(grouped) != 2 {
		t.Fatalf("got %d date groups, want 2", len(grouped))
	}

	first := grouped["2026-09-01"]
	if len(first) != 2 {
		t.Fatalf("2026-09-01 has %d entries, want 2", len(first))
	}
	if !first[0].Time.Before(first[1].Time) {
		t.Error("entries within a date are not sorted by time")
	}

	if len(grouped["2026-09-02"]) != 1 {
		t.Errorf("2026-09-02 has %d entries, want 1", len(grouped["2026-09-02"]))
	}
}

func TestGetOccupiedSeats(t *testing.T) {
	repo := newFakeRepo()
	movieService := &fakeMovieService{}
	service, _, _ := newTestService(repo, movieService)

	show := Show{
		ID:            uuid.New(),
		MovieID:       "603",
		StartTime:     time.Now().Add(time.Hour),
		OccupiedSeats: SeatMap{"B2": "user-1", "A1": "user-2"},
	}
	repo.CreateBatch(context.Background(), []Show{show})

	result, err := service.GetOccupiedSeats(context.Background(), show.ID)
	if err != nil {
		t.Fatalf("GetOccupiedSeats failed: %v", err)
	}

	if len(result.OccupiedSeats) != 2 {
		t.Fatalf("got %d occupied seats, want 2", len(result.OccupiedSeats))
	}
	// Sorted for stable responses
	if result.OccupiedSeats[0] != "A1" || result.OccupiedSeats[1] != "B2" {
		t.Errorf("occupied seats = %v, want [A1 B2]", result.OccupiedSeats)
	}

	if _, err := service.GetOccupiedSeats(context.Background(), uuid.New()); !errors.Is(err, ErrShowNotFound) {
		t.Errorf("unknown show: got %v, want ErrShowNotFound", err)
	}
}

func TestSeatMapRoundTrip(t *testing.T) {
	original := SeatMap{"A1": "user-1", "A2": "user-2"}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var restored SeatMap
	if err := restored.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(restored) != 2 || restored["A1"] != "user-1" || restored["A2"] != "user-2" {
		t.Errorf("round trip produced %v", restored)
	}

	var fromNil SeatMap
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if fromNil == nil {
		t.Error("Scan(nil) left the map nil")
	}

	if original.AnyClaimed([]string{"A3", "A1"}) != true {
		t.Error("AnyClaimed missed an occupied seat")
	}
	if original.AnyClaimed([]string{"B1"}) != false {
		t.Error("AnyClaimed flagged a free seat")
	}
}
