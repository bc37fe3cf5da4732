package users

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
	UpdateFavorites(ctx context.Context, id string, favorites StringList) error
	ListByFavoriteMovie(ctx context.Context, movieID string) ([]User, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert inserts the user or updates the mutable attributes on conflict.
// The identity provider redelivers sync events at least once, so this has
// to be safe to replay.
func (r *repository) Upsert(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "image", "role", "updated_at"}),
		}).
		Create(user).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&User{}, "id = ?", id).Error
}

func (r *repository) UpdateFavorites(ctx context.Context, id string, favorites StringList) error {
	result := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("favorites", favorites)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListByFavoriteMovie returns users who favorited the given movie, using
// JSONB containment on the favorites column
func (r *repository) ListByFavoriteMovie(ctx context.Context, movieID string) ([]User, error) {
	needle, err := json.Marshal([]string{movieID})
	if err != nil {
		return nil, err
	}

	var result []User
	err = r.db.WithContext(ctx).
		Where("favorites @> ?", string(needle)).
		Find(&result).Error
	return result, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Count(&count).Error
	return count, err
}
