package controllers

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/store"
)

// Thresholds computes the self-adjusting popularity and rating cutoffs from
// the current distribution of stored movies. Nothing is cached: every call
// recomputes against the live catalog.
type Thresholds struct {
	store  store.Store
	logger *logrus.Logger

	percentileStart float64
	percentileFloor float64
	percentileStep  float64
	popularMin      int

	voteCountPct    float64
	adjustedPct     float64
}

func NewThresholds(st store.Store, cfg *config.Config, logger *logrus.Logger) *Thresholds {
	return &Thresholds{
		store:           st,
		logger:          logger,
		percentileStart: float64(cfg.PopularityPercentileStart),
		percentileFloor: float64(cfg.PopularityPercentileFloor),
		percentileStep:  float64(cfg.PopularityPercentileStep),
		popularMin:      cfg.PopularMinResults,
		voteCountPct:    float64(cfg.VoteCountPercentile),
		adjustedPct:     float64(cfg.AdjustedScorePercentile),
	}
}

// PopularityThreshold returns the pct-th percentile of popularity across the
// stored catalog.
func (s *Thresholds) PopularityThreshold(ctx context.Context, pct float64) (float64, error) {
	return s.store.PercentileOf(ctx, models.FieldPopularity, pct)
}

// CachedPopular lists cached movies above the popularity threshold. It starts
// at the configured percentile and walks down one step at a time until enough
// movies qualify or the floor is reached, so a sparse cache still yields a
// non-empty listing.
func (s *Thresholds) CachedPopular(ctx context.Context) ([]models.MovieSummary, error) {
	pct := s.percentileStart
	for {
		threshold, err := s.PopularityThreshold(ctx, pct)
		if err != nil {
			return nil, err
		}
		movies, err := s.store.MoviesPopularAbove(ctx, threshold)
		if err != nil {
			return nil, err
		}
		if len(movies) >= s.popularMin || pct <= s.percentileFloor {
			s.logger.WithFields(logrus.Fields{
				"percentile": pct,
				"threshold":  threshold,
				"movies":     len(movies),
			}).Debug("Resolved popularity threshold")
			return movies, nil
		}
		next := pct - s.percentileStep
		if next < s.percentileFloor {
			next = s.percentileFloor
		}
		if next >= pct {
			// A non-positive step cannot lower the percentile; serve what
			// qualified instead of looping.
			return movies, nil
		}
		pct = next
	}
}

// PopularLimited returns the top few popular movies for the home page.
func (s *Thresholds) PopularLimited(ctx context.Context) ([]models.MovieSummary, error) {
	movies, err := s.CachedPopular(ctx)
	if err != nil {
		return nil, err
	}
	return limitMovies(movies), nil
}

// RatingThresholds computes the pair that gates the top-rated listing: the
// vote-count floor (80th percentile of voteCount by default) and the rating
// threshold (90th percentile of the Bayesian-adjusted score among movies
// meeting the floor).
func (s *Thresholds) RatingThresholds(ctx context.Context) (ratingThreshold float64, minVotes int, err error) {
	floor, err := s.store.PercentileOf(ctx, models.FieldVoteCount, s.voteCountPct)
	if err != nil {
		return 0, 0, err
	}
	minVotes = int(floor)

	avgVotes, err := s.store.AverageOf(ctx, models.FieldVoteCount)
	if err != nil {
		return 0, 0, err
	}
	avgScore, err := s.store.AverageOf(ctx, models.FieldVoteAverage)
	if err != nil {
		return 0, 0, err
	}

	candidates, err := s.store.TopRatedCandidates(ctx, minVotes)
	if err != nil {
		return 0, 0, err
	}
	if len(candidates) == 0 {
		return 0, minVotes, nil
	}

	adjusted := make([]float64, 0, len(candidates))
	for _, m := range candidates {
		adjusted = append(adjusted, bayesianScore(avgVotes, avgScore, float64(m.VoteCount), m.VoteAverage))
	}
	sort.Float64s(adjusted)
	return percentileOfSorted(adjusted, s.adjustedPct/100), minVotes, nil
}

// bayesianScore blends the movie's own average with the global average,
// weighted by sample size. A movie with zero votes regresses exactly to the
// global mean.
func bayesianScore(avgVotes, avgScore, votes, score float64) float64 {
	denom := avgVotes + votes
	if denom == 0 {
		return 0
	}
	return (avgVotes*avgScore + votes*score) / denom
}

// percentileOfSorted interpolates linearly over already-sorted values, p in
// [0,1]. Mirrors the store backends' percentile semantics.
func percentileOfSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	frac := rank - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// CachedTopRated lists cached movies meeting the vote-count floor whose
// external ratings (when present) clear the rating threshold, ranked by the
// requested mode with vote count as tie-break.
func (s *Thresholds) CachedTopRated(ctx context.Context, mode models.RankMode) ([]models.RatedMovie, error) {
	threshold, minVotes, err := s.RatingThresholds(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.TopRatedCandidates(ctx, minVotes)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.RatedMovie, 0, len(candidates))
	for _, m := range candidates {
		if clearsThreshold(m, threshold) {
			eligible = append(eligible, m)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := rankScore(eligible[i], mode), rankScore(eligible[j], mode)
		if a != b {
			return a > b
		}
		return eligible[i].VoteCount > eligible[j].VoteCount
	})
	return eligible, nil
}

// TopRatedLimited returns the top few top-rated movies for the home page.
func (s *Thresholds) TopRatedLimited(ctx context.Context, mode models.RankMode) ([]models.RatedMovie, error) {
	movies, err := s.CachedTopRated(ctx, mode)
	if err != nil {
		return nil, err
	}
	return limitRated(movies), nil
}

// clearsThreshold keeps movies with no external rating at all, and movies
// where at least one external provider's score meets the threshold. A score
// of 0 means "unknown" and neither qualifies nor disqualifies.
func clearsThreshold(m models.RatedMovie, threshold float64) bool {
	hasExternal := false
	for _, r := range m.Ratings {
		if r.Provider == models.ProviderTMDB || r.Score == 0 {
			continue
		}
		hasExternal = true
		if r.Score >= threshold {
			return true
		}
	}
	return !hasExternal
}

func rankScore(m models.RatedMovie, mode models.RankMode) float64 {
	var provider models.RatingProvider
	switch mode {
	case models.RankByIMDb:
		provider = models.ProviderIMDb
	case models.RankByRottenTomatoes:
		provider = models.ProviderRottenTomatoes
	default:
		return m.VoteAverage
	}
	for _, r := range m.Ratings {
		if r.Provider == provider && r.Score > 0 {
			return r.Score
		}
	}
	// The provider has not rated this movie; fall back to the source score.
	return m.VoteAverage
}
