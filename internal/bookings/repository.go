package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBookingNotFound = errors.New("booking not found")

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentURL string) error

	// MarkPaid flips is_paid exactly once; the bool reports whether this call
	// performed the transition
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteUnpaid removes a booking only while it is still unpaid; the bool
	// reports whether this call deleted the row
	DeleteUnpaid(ctx context.Context, id uuid.UUID) (bool, error)

	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListPaidByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)

	// Dashboard aggregates
	CountPaid(ctx context.Context) (int64, error)
	SumPaidAmount(ctx context.Context) (float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentURL string) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_session_id": sessionID,
			"payment_url":        paymentURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// MarkPaid is guarded on is_paid = false so a replayed settlement webhook and
// a concurrent reaper cannot both win
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid":            true,
			"payment_session_id": nil,
			"payment_url":        "",
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteUnpaid is guarded on is_paid = false: once a booking is paid the
// reaper must not touch it. Like MarkPaid it reports whether this call won
// the transition, so the caller can tell a reap from a lost race.
func (r *repository) DeleteUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_paid = ?", id, false).
		Delete(&Booking{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (r *repository) ListPaidByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Where("show_id = ? AND is_paid = ?", showID, true).
		Find(&result).Error
	return result, err
}

func (r *repository) ListAll(ctx context.Context) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (r *repository) CountPaid(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("is_paid = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repository) SumPaidAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("is_paid = ?", true).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
