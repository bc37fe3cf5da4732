package movies

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrMovieNotFound = errors.New("movie not found")

type Repository interface {
	Create(ctx context.Context, movie *Movie) error
	GetByID(ctx context.Context, id string) (*Movie, error)
	GetByIDs(ctx context.Context, ids []string) ([]Movie, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, movie *Movie) error {
	return r.db.WithContext(ctx).Create(movie).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Movie, error) {
	var movie Movie
	err := r.db.WithContext(ctx).First(&movie, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &movie, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) ([]Movie, error) {
	if len(ids) == 0 {
		return []Movie{}, nil
	}
	var result []Movie
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&result).Error
	return result, err
}
