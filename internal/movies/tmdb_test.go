package movies

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showtix/internal/shared/config"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTMDBClient(config.CatalogConfig{
		BaseURL:  server.URL,
		APIToken: "test-token",
		Timeout:  5 * time.Second,
	})
}

func TestMovieDetails(t *testing.T) {
	client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"overview": "A computer hacker learns the truth.",
			"runtime": 136,
			"vote_average": 8.2,
			"genres": [{"name": "Action"}, {"name": "Science Fiction"}]
		}`))
	})

	movie, err := client.MovieDetails(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieDetails failed: %v", err)
	}

	if movie.Title != "The Matrix" || movie.Runtime != 136 {
		t.Errorf("movie = %+v", movie)
	}
	if movie.CatalogID() != "603" {
		t.Errorf("CatalogID = %q, want 603", movie.CatalogID())
	}
	if len(movie.Genres) != 2 || movie.Genres[0].Name != "Action" {
		t.Errorf("genres = %+v", movie.Genres)
	}
}

func TestMovieDetailsNotFound(t *testing.T) {
	client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.MovieDetails(context.Background(), "99999999")
	if !errors.Is(err, ErrMovieNotInCatalog) {
		t.Errorf("got %v, want ErrMovieNotInCatalog", err)
	}
}

func TestMovieDetailsUpstreamError(t *testing.T) {
	client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.MovieDetails(context.Background(), "603")
	if err == nil || errors.Is(err, ErrMovieNotInCatalog) {
		t.Errorf("got %v, want a generic upstream error", err)
	}
}

func TestNowPlaying(t *testing.T) {
	client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/now_playing" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": 603, "title": "The Matrix"}, {"id": 27205, "title": "Inception"}]}`))
	})

	movies, err := client.NowPlaying(context.Background())
	if err != nil {
		t.Fatalf("NowPlaying failed: %v", err)
	}
	if len(movies) != 2 || movies[1].Title != "Inception" {
		t.Errorf("movies = %+v", movies)
	}
}

func TestMovieCredits(t *testing.T) {
	client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603/credits" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cast": [{"name": "Keanu Reeves", "character": "Neo", "profile_path": "/keanu.jpg"}]}`))
	})

	cast, err := client.MovieCredits(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieCredits failed: %v", err)
	}
	if len(cast) != 1 || cast[0].Name != "Keanu Reeves" || cast[0].Character != "Neo" {
		t.Errorf("cast = %+v", cast)
	}
}
