package shows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"showtix/internal/movies"
	"showtix/internal/notifications"
	"showtix/internal/scheduler"
	"showtix/pkg/cache"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

var ErrInvalidShowTime = errors.New("invalid show date or time")

const listCacheTTL = 2 * time.Minute

// Service interface defines the contract for the show catalog
type Service interface {
	// Admin writes
	AddShows(ctx context.Context, req *AddShowsRequest) ([]Show, error)

	// Public reads
	ListMoviesWithUpcomingShows(ctx context.Context) ([]movies.Movie, error)
	GetMovieShowtimes(ctx context.Context, movieID string) (*MovieShowtimesResponse, error)
	GetOccupiedSeats(ctx context.Context, showID uuid.UUID) (*OccupiedSeatsResponse, error)
}

type service struct {
	repo         Repository
	movies       movies.Service
	scheduler    scheduler.Client
	producer     notifications.Producer
	cache        cache.Service
	reminderLead time.Duration
}

func NewService(repo Repository, movieService movies.Service, schedulerClient scheduler.Client,
	producer notifications.Producer, cacheService cache.Service, reminderLead time.Duration) Service {
	return &service{
		repo:         repo,
		movies:       movieService,
		scheduler:    schedulerClient,
		producer:     producer,
		cache:        cacheService,
		reminderLead: reminderLead,
	}
}

// AddShows bulk-creates shows for a movie. The movie is pulled from the
// external catalog on first reference; a show_added broadcast goes out to
// users who favorited it, and a reminder task is scheduled per show.
func (s *service) AddShows(ctx context.Context, req *AddShowsRequest) ([]Show, error) {
	movie, err := s.movies.GetOrFetch(ctx, req.MovieID)
	if err != nil {
		return nil, err
	}

	newShows, err := buildShows(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateBatch(ctx, newShows); err != nil {
		return nil, fmt.Errorf("failed to create shows: %w", err)
	}

	appLogger := logger.GetDefault()
	appLogger.LogShowsAdded(ctx, movie.ID, len(newShows))

	// Side effects are best-effort: shows are already committed
	s.scheduleReminders(ctx, newShows)

	if err := s.producer.Publish(ctx, notifications.NewShowAdded(movie.ID, movie.Title)); err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to publish show_added notification", err, map[string]interface{}{
			"movie_id": movie.ID,
		})
	}

	s.invalidateListCaches(ctx, movie.ID)

	return newShows, nil
}

// buildShows expands date/time groups into show rows, skipping times already
// in the past
func buildShows(req *AddShowsRequest) ([]Show, error) {
	var result []Show
	now := time.Now().UTC()

	for _, input := range req.ShowsInput {
		day, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidShowTime, input.Date)
		}

		for _, t := range input.Times {
			clock, err := time.Parse("15:04", t)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidShowTime, t)
			}

			startTime := time.Date(day.Year(), day.Month(), day.Day(),
				clock.Hour(), clock.Minute(), 0, 0, time.UTC)
			if startTime.Before(now) {
				continue
			}

			result = append(result, Show{
				ID:            uuid.New(),
				MovieID:       req.MovieID,
				StartTime:     startTime,
				Price:         req.ShowPrice,
				OccupiedSeats: SeatMap{},
			})
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no upcoming showtimes in request", ErrInvalidShowTime)
	}
	return result, nil
}

func (s *service) scheduleReminders(ctx context.Context, newShows []Show) {
	appLogger := logger.GetDefault()
	for _, show := range newShows {
		fireAt := show.StartTime.Add(-s.reminderLead)
		if fireAt.Before(time.Now()) {
			continue
		}
		task := scheduler.Task{
			Type:   scheduler.TaskTypeShowReminder,
			Key:    show.ID.String(),
			FireAt: fireAt,
			Payload: map[string]string{
				"show_id": show.ID.String(),
			},
		}
		if err := s.scheduler.Schedule(ctx, task); err != nil {
			appLogger.ErrorWithContext(ctx, "Failed to schedule show reminder", err, map[string]interface{}{
				"show_id": show.ID.String(),
			})
		}
	}
}

// ListMoviesWithUpcomingShows returns each movie that has at least one
// upcoming show, deduplicated
func (s *service) ListMoviesWithUpcomingShows(ctx context.Context) ([]movies.Movie, error) {
	var result []movies.Movie
	err := s.cache.GetOrSet(ctx, cache.KeyUpcomingShows, listCacheTTL, func() (interface{}, error) {
		upcoming, err := s.repo.ListUpcoming(ctx)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool)
		list := make([]movies.Movie, 0)
		for _, show := range upcoming {
			if show.Movie == nil || seen[show.MovieID] {
				continue
			}
			seen[show.MovieID] = true
			list = append(list, *show.Movie)
		}
		return list, nil
	}, &result)
	return result, err
}

// GetMovieShowtimes returns the movie plus its upcoming screenings grouped by
// date
func (s *service) GetMovieShowtimes(ctx context.Context, movieID string) (*MovieShowtimesResponse, error) {
	var result MovieShowtimesResponse
	err := s.cache.GetOrSet(ctx, cache.KeyMovieShowtimes(movieID), listCacheTTL, func() (interface{}, error) {
		movie, err := s.movies.GetMovie(ctx, movieID)
		if err != nil {
			return nil, err
		}

		upcoming, err := s.repo.ListUpcomingByMovie(ctx, movieID)
		if err != nil {
			return nil, err
		}

		return &MovieShowtimesResponse{
			Movie:    movie,
			DateTime: GroupShowtimesByDate(upcoming),
		}, nil
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GroupShowtimesByDate buckets shows under their "2006-01-02" date key with
// entries sorted by start time
func GroupShowtimesByDate(upcoming []Show) map[string][]ShowtimeEntry {
	grouped := make(map[string][]ShowtimeEntry)
	for _, show := range upcoming {
		date := show.StartTime.UTC().Format("2006-01-02")
		grouped[date] = append(grouped[date], ShowtimeEntry{
			Time:   show.StartTime,
			ShowID: show.ID,
			Price:  show.Price,
		})
	}
	for date := range grouped {
		entries := grouped[date]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Time.Before(entries[j].Time)
		})
		grouped[date] = entries
	}
	return grouped
}

// GetOccupiedSeats returns the claimed seat labels for a show. Not cached:
// occupancy changes on every booking and stale reads would invite doomed
// claim attempts.
func (s *service) GetOccupiedSeats(ctx context.Context, showID uuid.UUID) (*OccupiedSeatsResponse, error) {
	show, err := s.repo.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	seats := show.OccupiedSeats.Seats()
	sort.Strings(seats)

	return &OccupiedSeatsResponse{
		ShowID:        show.ID,
		OccupiedSeats: seats,
	}, nil
}

func (s *service) invalidateListCaches(ctx context.Context, movieID string) {
	if err := s.cache.Delete(ctx, cache.KeyUpcomingShows, cache.KeyMovieShowtimes(movieID)); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to invalidate show caches", err, nil)
	}
}
