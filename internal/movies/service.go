package movies

import (
	"context"
	"errors"
	"fmt"
)

// Service interface defines the contract for movie metadata access
type Service interface {
	// GetOrFetch returns the stored movie, fetching and storing it from the
	// external catalog on first reference.
	GetOrFetch(ctx context.Context, movieID string) (*Movie, error)
	GetMovie(ctx context.Context, movieID string) (*Movie, error)
	GetMoviesByIDs(ctx context.Context, ids []string) ([]Movie, error)
	NowPlaying(ctx context.Context) ([]CatalogMovie, error)
}

type service struct {
	repo    Repository
	catalog CatalogClient
}

func NewService(repo Repository, catalog CatalogClient) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
	}
}

func (s *service) GetOrFetch(ctx context.Context, movieID string) (*Movie, error) {
	movie, err := s.repo.GetByID(ctx, movieID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, ErrMovieNotFound) {
		return nil, err
	}

	// First reference: pull details and credits from the external catalog
	details, err := s.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie details: %w", err)
	}
	cast, err := s.catalog.MovieCredits(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie credits: %w", err)
	}

	genres := make(StringList, 0, len(details.Genres))
	for _, g := range details.Genres {
		genres = append(genres, g.Name)
	}

	movie = &Movie{
		ID:               details.CatalogID(),
		Title:            details.Title,
		Overview:         details.Overview,
		PosterPath:       details.PosterPath,
		BackdropPath:     details.BackdropPath,
		Genres:           genres,
		Casts:            cast,
		ReleaseDate:      details.ReleaseDate,
		OriginalLanguage: details.OriginalLanguage,
		Tagline:          details.Tagline,
		VoteAverage:      details.VoteAverage,
		Runtime:          details.Runtime,
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to store movie: %w", err)
	}
	return movie, nil
}

func (s *service) GetMovie(ctx context.Context, movieID string) (*Movie, error) {
	return s.repo.GetByID(ctx, movieID)
}

func (s *service) GetMoviesByIDs(ctx context.Context, ids []string) ([]Movie, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) NowPlaying(ctx context.Context) ([]CatalogMovie, error) {
	return s.catalog.NowPlaying(ctx)
}
