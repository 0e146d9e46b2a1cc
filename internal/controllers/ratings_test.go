package controllers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/services/scraper"
)

// fakeIMDbScraper serves canned scores by imdb id; ids without an entry get
// ErrRatingNotFound.
type fakeIMDbScraper struct {
	scores map[string]float64
	errs   map[string]error
	calls  int
}

func (f *fakeIMDbScraper) Fetch(ctx context.Context, imdbID string) (float64, error) {
	f.calls++
	if err, ok := f.errs[imdbID]; ok {
		return 0, err
	}
	score, ok := f.scores[imdbID]
	if !ok {
		return 0, scraper.ErrRatingNotFound
	}
	return score, nil
}

type fakeRTScraper struct {
	scores map[string]float64
	years  map[string]string
}

func (f *fakeRTScraper) Fetch(ctx context.Context, title, releaseYear string) (float64, error) {
	f.years[title] = releaseYear
	score, ok := f.scores[title]
	if !ok {
		return 0, scraper.ErrRatingNotFound
	}
	return score, nil
}

func backfillMovie(id int64) *models.Movie {
	m := completeMovie(id)
	m.ImdbID = fmt.Sprintf("tt%07d", id)
	m.Title = fmt.Sprintf("Movie %d", id)
	return m
}

func newBackfill(st *fakeStore, imdb *fakeIMDbScraper, rt *fakeRTScraper) (*RatingBackfill, *int) {
	bf := NewRatingBackfill(st, imdb, rt, testConfig(), testLogger)
	sleeps := new(int)
	bf.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps++
		return ctx.Err()
	}
	return bf, sleeps
}

func TestBackfillIMDbWritesRatings(t *testing.T) {
	st := newFakeStore()
	st.movies[1] = backfillMovie(1)
	st.movies[2] = backfillMovie(2)
	rated := backfillMovie(3)
	rated.Ratings = []models.Rating{{Provider: models.ProviderIMDb, Score: 7.7}}
	st.movies[3] = rated

	imdb := &fakeIMDbScraper{scores: map[string]float64{"tt0000001": 8.2}}
	bf, sleeps := newBackfill(st, imdb, &fakeRTScraper{years: map[string]string{}})

	if err := bf.RunIMDb(context.Background()); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	got, _ := st.MovieByID(context.Background(), 1)
	if score := got.RatingByProvider(models.ProviderIMDb); score != 8.2 {
		t.Errorf("expected rating 8.2 written, got %v", score)
	}
	got, _ = st.MovieByID(context.Background(), 2)
	if score := got.RatingByProvider(models.ProviderIMDb); score != 0 {
		t.Errorf("expected movie without provider rating untouched, got %v", score)
	}
	// Already-rated movies never reach the scraper.
	if imdb.calls != 2 {
		t.Errorf("expected 2 scrapes, got %d", imdb.calls)
	}
	// A delay between each pair of movies, none after the last.
	if *sleeps != 1 {
		t.Errorf("expected 1 inter-movie delay, got %d", *sleeps)
	}
}

func TestBackfillPreservesOtherProviders(t *testing.T) {
	st := newFakeStore()
	m := backfillMovie(1)
	m.Ratings = []models.Rating{{Provider: models.ProviderRottenTomatoes, Score: 9.6}}
	st.movies[1] = m

	imdb := &fakeIMDbScraper{scores: map[string]float64{"tt0000001": 8.2}}
	bf, _ := newBackfill(st, imdb, &fakeRTScraper{years: map[string]string{}})

	if err := bf.RunIMDb(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, _ := st.MovieByID(context.Background(), 1)
	if score := got.RatingByProvider(models.ProviderRottenTomatoes); score != 9.6 {
		t.Errorf("expected RottenTomatoes rating preserved, got %v", score)
	}
	if score := got.RatingByProvider(models.ProviderIMDb); score != 8.2 {
		t.Errorf("expected IMDb rating added, got %v", score)
	}
}

func TestBackfillContinuesAfterScrapeError(t *testing.T) {
	st := newFakeStore()
	st.movies[1] = backfillMovie(1)
	st.movies[2] = backfillMovie(2)

	imdb := &fakeIMDbScraper{
		scores: map[string]float64{"tt0000002": 6.4},
		errs:   map[string]error{"tt0000001": models.ErrExternalService},
	}
	bf, _ := newBackfill(st, imdb, &fakeRTScraper{years: map[string]string{}})

	if err := bf.RunIMDb(context.Background()); err != nil {
		t.Fatalf("expected batch to survive a scrape failure, got %v", err)
	}

	got, _ := st.MovieByID(context.Background(), 2)
	if score := got.RatingByProvider(models.ProviderIMDb); score != 6.4 {
		t.Errorf("expected later movie still updated, got %v", score)
	}
}

func TestBackfillStopsOnCancellation(t *testing.T) {
	st := newFakeStore()
	st.movies[1] = backfillMovie(1)
	st.movies[2] = backfillMovie(2)
	st.movies[3] = backfillMovie(3)

	imdb := &fakeIMDbScraper{scores: map[string]float64{
		"tt0000001": 8.0, "tt0000002": 8.0, "tt0000003": 8.0,
	}}
	bf, _ := newBackfill(st, imdb, &fakeRTScraper{years: map[string]string{}})

	ctx, cancel := context.WithCancel(context.Background())
	bf.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := bf.RunIMDb(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if imdb.calls != 1 {
		t.Errorf("expected batch to stop after first movie, got %d scrapes", imdb.calls)
	}
}

func TestBackfillRTPassesReleaseYear(t *testing.T) {
	st := newFakeStore()
	m := backfillMovie(1)
	m.ReleaseDate = "1999-10-15"
	st.movies[1] = m

	rt := &fakeRTScraper{
		scores: map[string]float64{"Movie 1": 7.9},
		years:  map[string]string{},
	}
	bf, _ := newBackfill(st, &fakeIMDbScraper{}, rt)

	if err := bf.RunRT(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rt.years["Movie 1"] != "1999" {
		t.Errorf("expected release year 1999, got %q", rt.years["Movie 1"])
	}
	got, _ := st.MovieByID(context.Background(), 1)
	if score := got.RatingByProvider(models.ProviderRottenTomatoes); score != 7.9 {
		t.Errorf("expected RottenTomatoes rating 7.9, got %v", score)
	}
}
