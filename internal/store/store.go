// Package store defines the narrow ports the core uses to talk to the graph
// store. Two backends implement them: boltstore (embedded, default) and
// neo4jstore. The core never sees raw store records; adapters deserialize
// into models types at this boundary.
package store

import (
	"context"

	"github.com/moviegraph/moviegraph/internal/models"
)

// MovieStore persists movies and their relation fan-out.
type MovieStore interface {
	// SaveMovie upserts by id. Known fields are overwritten and relation sets
	// are replaced wholesale, so edges removed upstream do not linger. The
	// whole write is atomic.
	SaveMovie(ctx context.Context, movie *models.Movie) error

	// MovieByID returns the movie with all relations loaded, or
	// models.ErrNotFound.
	MovieByID(ctx context.Context, id int64) (*models.Movie, error)

	// AllMovies returns essential fields only, for sweeps and listings.
	AllMovies(ctx context.Context) ([]models.MovieSummary, error)

	// MoviesMissingRating returns movies that have no rating row from the
	// provider, or whose stored score is exactly 0. For IMDb the movie must
	// carry an imdb id; for Rotten Tomatoes a title.
	MoviesMissingRating(ctx context.Context, provider models.RatingProvider) ([]models.Movie, error)

	// UpsertRating writes one provider's rating, replacing that provider's
	// row only. The merge happens inside the store transaction so concurrent
	// writers for other providers are never clobbered.
	UpsertRating(ctx context.Context, movieID int64, rating models.Rating) error

	// MoviesPopularAbove returns summaries of movies whose popularity is at
	// least threshold.
	MoviesPopularAbove(ctx context.Context, threshold float64) ([]models.MovieSummary, error)

	// TopRatedCandidates returns movies with their ratings whose vote count
	// meets the floor.
	TopRatedCandidates(ctx context.Context, minVotes int) ([]models.RatedMovie, error)

	// Genres returns the genres seen across all stored movies.
	Genres(ctx context.Context) ([]models.Genre, error)
}

// StatsReader exposes the aggregations the threshold services need, so those
// algorithms stay store-agnostic and unit-testable against a fake.
type StatsReader interface {
	// PercentileOf returns the pct-th percentile (linear interpolation) of the
	// field across all movies. An empty store yields 0, not an error.
	PercentileOf(ctx context.Context, field models.StatField, pct float64) (float64, error)

	// AverageOf returns the mean of the field across all movies, 0 when empty.
	AverageOf(ctx context.Context, field models.StatField) (float64, error)
}

// PageTracker records the last externally-fetched page per sync category.
type PageTracker interface {
	LastPage(ctx context.Context, category models.SyncCategory) (int, error)
	SetLastPage(ctx context.Context, category models.SyncCategory, page int) error
}

// UserStore persists users and their weighted interaction edges.
type UserStore interface {
	// UserByAuthID returns models.ErrNotFound when the subject is unknown.
	UserByAuthID(ctx context.Context, authID string) (*models.User, error)

	// UpsertUser creates or refreshes the user record.
	UpsertUser(ctx context.Context, user *models.User) error

	// AddBookmark marks the edge bookmarked and adds the bookmark weight
	// contribution. Idempotent: a second call on an already-bookmarked edge
	// changes nothing.
	AddBookmark(ctx context.Context, authID string, movieID int64) error

	// RemoveBookmark clears the bookmark flag and subtracts its weight
	// contribution, floored at zero. A no-op when not bookmarked.
	RemoveBookmark(ctx context.Context, authID string, movieID int64) error

	// Watchlist lists the movie ids the user has bookmarked.
	Watchlist(ctx context.Context, authID string) ([]int64, error)

	// RecordView adds the view weight contribution to the edge, creating it
	// if needed.
	RecordView(ctx context.Context, authID string, movieID int64) error

	// SimilarUsers ranks other users by the number of distinct movies they
	// share an edge with, descending, capped at limit.
	SimilarUsers(ctx context.Context, authID string, limit int) ([]models.SimilarUser, error)

	// CandidateMovies returns, for each movie touched by any of the given
	// users but not by authID, the summed edge weight across those users.
	CandidateMovies(ctx context.Context, authID string, userIDs []string) ([]WeightedMovie, error)
}

// WeightedMovie is a recommendation candidate before normalization.
type WeightedMovie struct {
	Movie  models.MovieSummary
	Weight float64
}

// Store aggregates every port a backend provides.
type Store interface {
	MovieStore
	StatsReader
	PageTracker
	UserStore

	Close() error
}
