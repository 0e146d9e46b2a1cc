package controllers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/store"
)

// similarUserLimit caps the neighborhood used for collaborative filtering.
const similarUserLimit = 10

// Recommender computes collaborative-filtering recommendations from the
// interaction graph, request-scoped with no state between calls.
type Recommender struct {
	store  store.Store
	logger *logrus.Logger
}

func NewRecommender(st store.Store, logger *logrus.Logger) *Recommender {
	return &Recommender{store: st, logger: logger}
}

// Recommend returns one page of scored candidates plus the total candidate
// count before pagination. Scores are relative: the strongest candidate in
// the full set scores 100. A user with no similar-interaction neighbors gets
// an empty result and total 0, not an error.
func (s *Recommender) Recommend(ctx context.Context, authID string, skip, limit int) ([]models.ScoredMovie, int, error) {
	if skip < 0 || limit <= 0 {
		return nil, 0, models.ErrValidation
	}

	neighbors, err := s.store.SimilarUsers(ctx, authID, similarUserLimit)
	if err != nil {
		return nil, 0, err
	}
	if len(neighbors) == 0 {
		return nil, 0, nil
	}

	neighborIDs := make([]string, len(neighbors))
	for i, n := range neighbors {
		neighborIDs[i] = n.UserID
	}

	candidates, err := s.store.CandidateMovies(ctx, authID, neighborIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	// Candidates arrive ordered by weight descending, so the first one
	// carries the maximum.
	maxWeight := candidates[0].Weight
	if maxWeight <= 0 {
		return nil, 0, nil
	}

	total := len(candidates)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}

	page := make([]models.ScoredMovie, 0, end-skip)
	for _, c := range candidates[skip:end] {
		page = append(page, models.ScoredMovie{
			MovieSummary: c.Movie,
			Score:        c.Weight / maxWeight * 100,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"user":       authID,
		"neighbors":  len(neighbors),
		"candidates": total,
		"returned":   len(page),
	}).Debug("Computed recommendations")
	return page, total, nil
}
