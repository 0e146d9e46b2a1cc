package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/moviegraph/moviegraph/internal/models"
)

func newMovieData(st *fakeStore, src *fakeSource) *MovieData {
	return NewMovieData(st, src, NewCompleteness(testConfig()), testLogger)
}

func TestGetMovieCacheHit(t *testing.T) {
	st := newFakeStore()
	src := newFakeSource()
	st.movies[550] = completeMovie(550)
	src.movies[550] = completeMovie(550)

	svc := newMovieData(st, src)

	movie, err := svc.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if movie.Title != "Fight Club" {
		t.Errorf("unexpected movie: %+v", movie)
	}
	if src.fetchCalls != 0 {
		t.Errorf("complete cached movie must not hit the source, got %d fetches", src.fetchCalls)
	}
}

func TestGetMovieCacheMissFetchesAndPersists(t *testing.T) {
	st := newFakeStore()
	src := newFakeSource()
	src.movies[550] = completeMovie(550)

	svc := newMovieData(st, src)

	if _, err := svc.GetMovie(context.Background(), 550); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if src.fetchCalls != 1 {
		t.Fatalf("expected one source fetch, got %d", src.fetchCalls)
	}
	if _, ok := st.movies[550]; !ok {
		t.Fatal("fetched movie was not persisted")
	}

	// Second call is served from cache.
	if _, err := svc.GetMovie(context.Background(), 550); err != nil {
		t.Fatal(err)
	}
	if src.fetchCalls != 1 {
		t.Errorf("expected cached serve on second call, got %d fetches", src.fetchCalls)
	}
}

func TestGetMovieIncompleteCacheRefetches(t *testing.T) {
	st := newFakeStore()
	src := newFakeSource()

	stale := completeMovie(550)
	stale.Trailers = nil
	st.movies[550] = stale
	src.movies[550] = completeMovie(550)

	svc := newMovieData(st, src)

	movie, err := svc.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(movie.Trailers) == 0 {
		t.Error("refetched movie must have trailers")
	}
	if src.fetchCalls != 1 {
		t.Errorf("expected one refetch, got %d", src.fetchCalls)
	}
	if cached := st.movies[550]; len(cached.Trailers) == 0 {
		t.Error("refetch must update the cached record")
	}
}

func TestGetMovieNotFoundAnywhere(t *testing.T) {
	svc := newMovieData(newFakeStore(), newFakeSource())

	_, err := svc.GetMovie(context.Background(), 999)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncPopularAdvancesTracker(t *testing.T) {
	st := newFakeStore()
	src := newFakeSource()
	src.pages[1] = []models.Movie{*completeMovie(1), *completeMovie(2)}
	src.pages[2] = []models.Movie{*completeMovie(3)}

	svc := newMovieData(st, src)

	movies, err := svc.SyncPopular(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies from page 1, got %d", len(movies))
	}
	if st.pages[models.CategoryPopular] != 1 {
		t.Errorf("expected tracker at page 1, got %d", st.pages[models.CategoryPopular])
	}

	movies, err = svc.SyncPopular(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 1 || movies[0].ID != 3 {
		t.Errorf("expected page 2 contents, got %v", movies)
	}
	if st.pages[models.CategoryPopular] != 2 {
		t.Errorf("expected tracker at page 2, got %d", st.pages[models.CategoryPopular])
	}
	if len(st.movies) != 3 {
		t.Errorf("expected 3 persisted movies, got %d", len(st.movies))
	}
}

func TestSyncCategoriesTrackIndependently(t *testing.T) {
	st := newFakeStore()
	src := newFakeSource()
	src.pages[1] = []models.Movie{*completeMovie(1)}

	svc := newMovieData(st, src)

	if _, err := svc.SyncPopular(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SyncTopRated(context.Background()); err != nil {
		t.Fatal(err)
	}

	if st.pages[models.CategoryPopular] != 1 || st.pages[models.CategoryTopRated] != 1 {
		t.Errorf("expected independent cursors at 1, got %v", st.pages)
	}
}
