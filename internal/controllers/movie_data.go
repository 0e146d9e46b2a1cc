package controllers

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/store"
)

// limitedListSize is the number of items the home-page "limited" listings
// return.
const limitedListSize = 3

// MovieSource is the narrow contract the orchestrator needs from the external
// movie database client.
type MovieSource interface {
	FetchMovie(ctx context.Context, movieID int64) (*models.Movie, error)
	FetchPopularPage(ctx context.Context, page int) ([]models.Movie, error)
	FetchTopRatedPage(ctx context.Context, page int) ([]models.Movie, error)
}

// MovieData coordinates fetch-or-serve logic per movie and the paged bulk
// syncs from the movie source.
type MovieData struct {
	store        store.Store
	source       MovieSource
	completeness *Completeness
	logger       *logrus.Logger
}

func NewMovieData(st store.Store, source MovieSource, completeness *Completeness, logger *logrus.Logger) *MovieData {
	return &MovieData{
		store:        st,
		source:       source,
		completeness: completeness,
		logger:       logger,
	}
}

// GetMovie serves the cached record when it is complete, otherwise fetches
// fresh data from the source, persists it and returns it. A source failure on
// the fetch path propagates: with an incomplete or absent cache entry there
// is no fallback worth serving.
func (s *MovieData) GetMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	cached, err := s.store.MovieByID(ctx, movieID)
	switch {
	case err == nil:
		if s.completeness.IsComplete(cached) {
			return cached, nil
		}
		s.logger.WithField("movie_id", movieID).Debug("Cached movie incomplete, refetching")
	case errors.Is(err, models.ErrNotFound):
		// Cache miss, fall through to the source.
	default:
		return nil, err
	}

	fresh, err := s.source.FetchMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMovie(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// SyncPopular fetches the next popular page from the source, persists every
// movie and advances the page cursor.
func (s *MovieData) SyncPopular(ctx context.Context) ([]models.Movie, error) {
	return s.syncPage(ctx, models.CategoryPopular, s.source.FetchPopularPage)
}

// SyncTopRated fetches the next top-rated page from the source, persists
// every movie and advances the page cursor.
func (s *MovieData) SyncTopRated(ctx context.Context) ([]models.Movie, error) {
	return s.syncPage(ctx, models.CategoryTopRated, s.source.FetchTopRatedPage)
}

func (s *MovieData) syncPage(ctx context.Context, category models.SyncCategory,
	fetch func(context.Context, int) ([]models.Movie, error)) ([]models.Movie, error) {

	lastPage, err := s.store.LastPage(ctx, category)
	if err != nil {
		return nil, err
	}
	page := lastPage + 1

	movies, err := fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	for i := range movies {
		if err := s.store.SaveMovie(ctx, &movies[i]); err != nil {
			return nil, err
		}
	}

	if err := s.store.SetLastPage(ctx, category, page); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category": category,
		"page":     page,
		"movies":   len(movies),
	}).Info("Synced listing page from movie source")
	return movies, nil
}

// Genres lists the genres seen across the stored catalog.
func (s *MovieData) Genres(ctx context.Context) ([]models.Genre, error) {
	return s.store.Genres(ctx)
}

func limitMovies(movies []models.MovieSummary) []models.MovieSummary {
	if len(movies) > limitedListSize {
		return movies[:limitedListSize]
	}
	return movies
}

func limitRated(movies []models.RatedMovie) []models.RatedMovie {
	if len(movies) > limitedListSize {
		return movies[:limitedListSize]
	}
	return movies
}
