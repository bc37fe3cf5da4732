package shows

import (
	"time"

	"showtix/internal/movies"

	"github.com/google/uuid"
)

// ShowtimeEntry is one bookable screening inside a date group
type ShowtimeEntry struct {
	Time   time.Time `json:"time"`
	ShowID uuid.UUID `json:"show_id"`
	Price  float64   `json:"price"`
}

// MovieShowtimesResponse is a movie with its upcoming screenings grouped by
// date ("2006-01-02" keys, entries sorted by time)
type MovieShowtimesResponse struct {
	Movie    *movies.Movie              `json:"movie"`
	DateTime map[string][]ShowtimeEntry `json:"date_time"`
}

// OccupiedSeatsResponse lists the seat labels currently claimed for a show
type OccupiedSeatsResponse struct {
	ShowID        uuid.UUID `json:"show_id"`
	OccupiedSeats []string  `json:"occupied_seats"`
}
