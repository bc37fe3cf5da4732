package database

import (
	"showtix/internal/bookings"
	"showtix/internal/movies"
	"showtix/internal/shows"
	"showtix/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&movies.Movie{},
		&shows.Show{},
		&bookings.Booking{},
	)
}
