package controllers

import (
	"context"
	"math"
	"testing"

	"github.com/moviegraph/moviegraph/internal/models"
)

func addMovies(st *fakeStore, n int, mutate func(i int, m *models.Movie)) {
	for i := 0; i < n; i++ {
		m := completeMovie(int64(i + 1))
		mutate(i, m)
		st.movies[m.ID] = m
	}
}

func TestPopularityThresholdPercentile(t *testing.T) {
	st := newFakeStore()
	addMovies(st, 10, func(i int, m *models.Movie) {
		m.Popularity = float64(i+1) * 10
	})

	svc := NewThresholds(st, testConfig(), testLogger)

	got, err := svc.PopularityThreshold(context.Background(), 90)
	if err != nil {
		t.Fatalf("threshold failed: %v", err)
	}
	if math.Abs(got-91) > 1e-9 {
		t.Errorf("expected 90th percentile of 10..100 to be 91, got %v", got)
	}
}

func TestCachedPopularWalksDown(t *testing.T) {
	st := newFakeStore()
	// 12 movies: at the 90th percentile only ~2 qualify, so the walk-down
	// must relax the bar until 10 or more do.
	addMovies(st, 12, func(i int, m *models.Movie) {
		m.Popularity = float64(i+1) * 10
	})

	svc := NewThresholds(st, testConfig(), testLogger)

	movies, err := svc.CachedPopular(context.Background())
	if err != nil {
		t.Fatalf("cached popular failed: %v", err)
	}
	if len(movies) < 10 {
		t.Errorf("expected walk-down to yield at least 10 movies, got %d", len(movies))
	}
	for i := 1; i < len(movies); i++ {
		if movies[i].Popularity > movies[i-1].Popularity {
			t.Fatal("expected descending popularity order")
		}
	}
}

func TestCachedPopularZeroStepTerminates(t *testing.T) {
	st := newFakeStore()
	addMovies(st, 12, func(i int, m *models.Movie) {
		m.Popularity = float64(i+1) * 10
	})

	// A step of zero can never lower the percentile; the listing must still
	// return instead of retrying forever.
	cfg := testConfig()
	cfg.PopularityPercentileStep = 0
	svc := NewThresholds(st, cfg, testLogger)

	movies, err := svc.CachedPopular(context.Background())
	if err != nil {
		t.Fatalf("cached popular failed: %v", err)
	}
	if len(movies) == 0 {
		t.Error("expected the movies above the starting threshold")
	}
}

func TestCachedPopularStopsAtFloor(t *testing.T) {
	st := newFakeStore()
	// Only 3 movies exist, so even at the floor fewer than 10 qualify. The
	// walk must stop rather than loop.
	addMovies(st, 3, func(i int, m *models.Movie) {
		m.Popularity = float64(i+1) * 10
	})

	svc := NewThresholds(st, testConfig(), testLogger)

	movies, err := svc.CachedPopular(context.Background())
	if err != nil {
		t.Fatalf("cached popular failed: %v", err)
	}
	if len(movies) == 0 {
		t.Error("expected a non-empty listing at the floor")
	}
}

func TestCachedPopularEmptyStore(t *testing.T) {
	svc := NewThresholds(newFakeStore(), testConfig(), testLogger)

	movies, err := svc.CachedPopular(context.Background())
	if err != nil {
		t.Fatalf("expected no error on empty store, got %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("expected empty listing, got %d", len(movies))
	}
}

func TestBayesianScoreDegenerate(t *testing.T) {
	// A movie with zero votes regresses exactly to the global mean.
	if got := bayesianScore(100, 7.0, 0, 9.9); math.Abs(got-7.0) > 1e-9 {
		t.Errorf("expected global mean 7.0 for zero votes, got %v", got)
	}
	// Votes far above the global average pull the blend toward the movie.
	got := bayesianScore(100, 7.0, 10000, 9.0)
	if got <= 8.9 || got >= 9.0 {
		t.Errorf("expected blend close to 9.0, got %v", got)
	}
}

func TestRatingThresholdsMinVotesFloor(t *testing.T) {
	st := newFakeStore()
	addMovies(st, 10, func(i int, m *models.Movie) {
		m.VoteCount = (i + 1) * 100
	})

	svc := NewThresholds(st, testConfig(), testLogger)

	_, minVotes, err := svc.RatingThresholds(context.Background())
	if err != nil {
		t.Fatalf("thresholds failed: %v", err)
	}
	// 80th percentile of 100..1000 interpolates to 820.
	if minVotes != 820 {
		t.Errorf("expected vote floor 820, got %d", minVotes)
	}
}

func TestRatingThresholdsEmptyStore(t *testing.T) {
	svc := NewThresholds(newFakeStore(), testConfig(), testLogger)

	threshold, minVotes, err := svc.RatingThresholds(context.Background())
	if err != nil {
		t.Fatalf("expected no error on empty store, got %v", err)
	}
	if threshold != 0 || minVotes != 0 {
		t.Errorf("expected zero thresholds, got %v/%d", threshold, minVotes)
	}
}

func TestCachedTopRatedRankModes(t *testing.T) {
	st := newFakeStore()

	a := completeMovie(1)
	a.VoteAverage = 8.0
	a.VoteCount = 1000
	a.Ratings = []models.Rating{{Provider: models.ProviderIMDb, Score: 9.5}}

	b := completeMovie(2)
	b.VoteAverage = 9.0
	b.VoteCount = 1000
	// No IMDb rating: falls back to vote average in imdb mode.

	st.movies[1], st.movies[2] = a, b

	svc := NewThresholds(st, testConfig(), testLogger)

	byAverage, err := svc.CachedTopRated(context.Background(), models.RankByVoteAverage)
	if err != nil {
		t.Fatalf("top rated failed: %v", err)
	}
	if len(byAverage) != 2 || byAverage[0].ID != 2 {
		t.Errorf("vote-average mode: expected movie 2 first, got %v", byAverage)
	}

	byIMDb, err := svc.CachedTopRated(context.Background(), models.RankByIMDb)
	if err != nil {
		t.Fatal(err)
	}
	// Movie 1 ranks 9.5 by IMDb; movie 2 falls back to 9.0.
	if len(byIMDb) != 2 || byIMDb[0].ID != 1 {
		t.Errorf("imdb mode: expected movie 1 first, got %v", byIMDb)
	}
}

func TestCachedTopRatedTieBreakVoteCount(t *testing.T) {
	st := newFakeStore()

	a := completeMovie(1)
	a.VoteAverage = 8.0
	a.VoteCount = 500
	b := completeMovie(2)
	b.VoteAverage = 8.0
	b.VoteCount = 900
	st.movies[1], st.movies[2] = a, b

	// Relax the vote floor so both movies are eligible and only the
	// tie-break separates them.
	cfg := testConfig()
	cfg.VoteCountPercentile = 0
	svc := NewThresholds(st, cfg, testLogger)

	movies, err := svc.CachedTopRated(context.Background(), models.RankByVoteAverage)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 2 || movies[0].ID != 2 {
		t.Errorf("expected higher vote count first on tie, got %v", movies)
	}
}

func TestTopRatedLimited(t *testing.T) {
	st := newFakeStore()
	addMovies(st, 6, func(i int, m *models.Movie) {
		m.VoteCount = 1000
		m.VoteAverage = float64(i) + 4
	})

	svc := NewThresholds(st, testConfig(), testLogger)

	movies, err := svc.TopRatedLimited(context.Background(), models.RankByVoteAverage)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != limitedListSize {
		t.Errorf("expected %d movies, got %d", limitedListSize, len(movies))
	}
}
