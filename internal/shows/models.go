package shows

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"showtix/internal/movies"

	"github.com/google/uuid"
)

// SeatMap maps a seat label (e.g. "A1") to the claiming user's id. A seat
// label absent from the map is free. Stored as a JSONB column.
type SeatMap map[string]string

// Value implements driver.Valuer for JSONB storage
func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		m = SeatMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *SeatMap) Scan(value interface{}) error {
	if value == nil {
		*m = SeatMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for SeatMap")
	}
}

// Seats returns the occupied seat labels
func (m SeatMap) Seats() []string {
	seats := make([]string, 0, len(m))
	for seat := range m {
		seats = append(seats, seat)
	}
	return seats
}

// AnyClaimed reports whether any of the given seats is already occupied
func (m SeatMap) AnyClaimed(seats []string) bool {
	for _, seat := range seats {
		if _, taken := m[seat]; taken {
			return true
		}
	}
	return false
}

// Show is one screening of a movie. OccupiedSeats is mutated only through
// Repository.ClaimSeats and Repository.ReleaseSeats so that seat uniqueness
// is enforced in one place.
type Show struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieID       string    `json:"movie_id" gorm:"size:32;index;not null"`
	StartTime     time.Time `json:"start_time" gorm:"index;not null"`
	Price         float64   `json:"price" gorm:"not null;check:price >= 0"`
	OccupiedSeats SeatMap   `json:"occupied_seats" gorm:"type:jsonb;default:'{}'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Movie *movies.Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:RESTRICT;"`
}

// TableName specifies the table name for GORM
func (Show) TableName() string {
	return "shows"
}
