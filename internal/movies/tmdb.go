package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"showtix/internal/shared/config"
)

var ErrMovieNotInCatalog = errors.New("movie not found in external catalog")

// CatalogMovie is the external catalog's representation of a movie
type CatalogMovie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Tagline          string  `json:"tagline"`
	VoteAverage      float64 `json:"vote_average"`
	Runtime          int     `json:"runtime"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// CatalogClient is the read-only boundary to the external movie catalog
type CatalogClient interface {
	NowPlaying(ctx context.Context) ([]CatalogMovie, error)
	MovieDetails(ctx context.Context, movieID string) (*CatalogMovie, error)
	MovieCredits(ctx context.Context, movieID string) ([]CastMember, error)
}

// TMDBClient implements CatalogClient against the TMDB v3 API
type TMDBClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTMDBClient creates a catalog client from configuration
func NewTMDBClient(cfg config.CatalogConfig) *TMDBClient {
	return &TMDBClient{
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (t *TMDBClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrMovieNotInCatalog
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

// NowPlaying returns the catalog's currently running movies
func (t *TMDBClient) NowPlaying(ctx context.Context) ([]CatalogMovie, error) {
	var payload struct {
		Results []CatalogMovie `json:"results"`
	}
	if err := t.get(ctx, "/movie/now_playing", &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// MovieDetails fetches full metadata for one movie
func (t *TMDBClient) MovieDetails(ctx context.Context, movieID string) (*CatalogMovie, error) {
	var movie CatalogMovie
	if err := t.get(ctx, "/movie/"+movieID, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// MovieCredits fetches the cast list for one movie
func (t *TMDBClient) MovieCredits(ctx context.Context, movieID string) ([]CastMember, error) {
	var payload struct {
		Cast []CastMember `json:"cast"`
	}
	if err := t.get(ctx, "/movie/"+movieID+"/credits", &payload); err != nil {
		return nil, err
	}
	return payload.Cast, nil
}

// CatalogID renders the catalog's numeric movie id as the string key used
// throughout this service
func (m *CatalogMovie) CatalogID() string {
	return strconv.FormatInt(m.ID, 10)
}
