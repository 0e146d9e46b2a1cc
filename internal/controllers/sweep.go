package controllers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/store"
)

// CompletionSweep walks the stored catalog and refetches any movie whose
// cached record is incomplete, keeping detail pages servable without an
// on-request refetch.
type CompletionSweep struct {
	store     store.Store
	movieData *MovieData
	logger    *logrus.Logger
}

func NewCompletionSweep(st store.Store, movieData *MovieData, logger *logrus.Logger) *CompletionSweep {
	return &CompletionSweep{store: st, movieData: movieData, logger: logger}
}

// Run checks every stored movie and refetches the incomplete ones. Per-movie
// failures are logged and the sweep continues.
func (s *CompletionSweep) Run(ctx context.Context) error {
	summaries, err := s.store.AllMovies(ctx)
	if err != nil {
		return err
	}

	var refetched int
	for _, summary := range summaries {
		if err := ctx.Err(); err != nil {
			return err
		}

		movie, err := s.store.MovieByID(ctx, summary.ID)
		if err != nil {
			s.logger.WithField("movie_id", summary.ID).WithError(err).Error("Sweep load failed, continuing")
			continue
		}
		if s.movieData.completeness.IsComplete(movie) {
			continue
		}

		if _, err := s.movieData.GetMovie(ctx, summary.ID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WithField("movie_id", summary.ID).WithError(err).Error("Sweep refetch failed, continuing")
			continue
		}
		refetched++
	}

	s.logger.WithFields(logrus.Fields{
		"movies":    len(summaries),
		"refetched": refetched,
	}).Info("Finished completion sweep")
	return nil
}
