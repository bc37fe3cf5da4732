package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrShowNotFound     = errors.New("show not found")
	ErrSeatsUnavailable = errors.New("selected seats are not available")
)

type Repository interface {
	// Catalog reads
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	GetByIDWithMovie(ctx context.Context, id uuid.UUID) (*Show, error)
	ListUpcoming(ctx context.Context) ([]Show, error)
	ListUpcomingByMovie(ctx context.Context, movieID string) ([]Show, error)

	// Admin writes
	CreateBatch(ctx context.Context, shows []Show) error

	// Seat occupancy. These are the only two mutation paths for
	// OccupiedSeats and both are linearizable per show.
	ClaimSeats(ctx context.Context, id uuid.UUID, seats []string, userID string) error
	ReleaseSeats(ctx context.Context, id uuid.UUID, seats []string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).First(&show, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) GetByIDWithMovie(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Preload("Movie").First(&show, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListUpcoming(ctx context.Context) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("start_time >= ?", time.Now().UTC()).
		Order("start_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) ListUpcomingByMovie(ctx context.Context, movieID string) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Where("start_time >= ?", time.Now().UTC()).
		Order("start_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) CreateBatch(ctx context.Context, shows []Show) error {
	if len(shows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shows).Error
}

// lockShow loads the show row under SELECT ... FOR UPDATE inside tx.
// ClaimSeats and ReleaseSeats share this single locking path.
func lockShow(tx *gorm.DB, dest *Show, id uuid.UUID) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, "id = ?", id)
}

// ClaimSeats atomically marks the given seats as occupied by userID. The show
// row is locked for the duration of the transaction, so two overlapping
// claims serialize: the second sees the first's writes and fails. Either
// every requested seat is claimed or none is.
func (r *repository) ClaimSeats(ctx context.Context, id uuid.UUID, seats []string, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var show Show
		if err := lockShow(tx, &show, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShowNotFound
			}
			return fmt.Errorf("failed to lock show: %w", err)
		}

		if show.OccupiedSeats == nil {
			show.OccupiedSeats = SeatMap{}
		}
		if show.OccupiedSeats.AnyClaimed(seats) {
			return ErrSeatsUnavailable
		}

		for _, seat := range seats {
			show.OccupiedSeats[seat] = userID
		}

		return tx.Model(&Show{}).
			Where("id = ?", id).
			Update("occupied_seats", show.OccupiedSeats).Error
	})
}

// ReleaseSeats removes the given seat labels from the show's occupancy map.
// Releasing an already-free seat is a no-op, so the expiry reaper can run
// more than once for the same booking.
func (r *repository) ReleaseSeats(ctx context.Context, id uuid.UUID, seats []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var show Show
		if err := lockShow(tx, &show, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShowNotFound
			}
			return fmt.Errorf("failed to lock show: %w", err)
		}

		changed := false
		for _, seat := range seats {
			if _, taken := show.OccupiedSeats[seat]; taken {
				delete(show.OccupiedSeats, seat)
				changed = true
			}
		}
		if !changed {
			return nil
		}

		return tx.Model(&Show{}).
			Where("id = ?", id).
			Update("occupied_seats", show.OccupiedSeats).Error
	})
}
