package bookings

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"showtix/internal/shows"

	"github.com/google/uuid"
)

// SeatList holds the seat labels a booking claimed, stored as a JSONB column
type SeatList []string

// Value implements driver.Valuer for JSONB storage
func (l SeatList) Value() (driver.Value, error) {
	if l == nil {
		l = SeatList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *SeatList) Scan(value interface{}) error {
	if value == nil {
		*l = SeatList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for SeatList")
	}
}

// Booking is a reservation of seats for a show. It starts unpaid with its
// seats already claimed on the show; payment flips IsPaid, expiry deletes the
// row and frees the seats.
type Booking struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID           string    `json:"user_id" gorm:"size:64;index;not null"`
	ShowID           uuid.UUID `json:"show_id" gorm:"type:uuid;index;not null"`
	BookedSeats      SeatList  `json:"booked_seats" gorm:"type:jsonb;not null"`
	Amount           float64   `json:"amount" gorm:"not null;check:amount >= 0"`
	IsPaid           bool      `json:"is_paid" gorm:"default:false;index"`
	PaymentSessionID *string   `json:"-" gorm:"size:255"`
	PaymentURL       string    `json:"payment_url,omitempty" gorm:"size:512"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	Show *shows.Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:RESTRICT;"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest reserves seats for a show. Seat labels must be unique
// within one request; overlap with other bookings is checked at claim time.
type CreateBookingRequest struct {
	ShowID string   `json:"show_id" binding:"required" validate:"required,uuid"`
	Seats  []string `json:"seats" binding:"required" validate:"required,min=1,max=10,unique,dive,seatlabel"`
}

// DashboardResponse summarizes the system for the admin dashboard
type DashboardResponse struct {
	TotalBookings int64        `json:"total_bookings"`
	TotalRevenue  float64      `json:"total_revenue"`
	ActiveShows   []shows.Show `json:"active_shows"`
	TotalUsers    int64        `json:"total_users"`
}
