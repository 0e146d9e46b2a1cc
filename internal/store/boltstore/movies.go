package boltstore

import (
	"context"
	"errors"
	"sort"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/moviegraph/moviegraph/internal/models"
)

// SaveMovie upserts a movie by id. The record carries its relations, so the
// previous genre/company/backdrop/video/credit sets are replaced in the same
// write. Ratings already stored for the movie are preserved unless the
// incoming movie carries its own.
func (s *Store) SaveMovie(ctx context.Context, movie *models.Movie) error {
	if movie == nil || movie.ID == 0 {
		return models.ErrValidation
	}

	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var existing models.Movie
		err := s.store.TxGet(tx, movie.ID, &existing)
		if err != nil && !errors.Is(err, bolthold.ErrNotFound) {
			return err
		}
		if err == nil && len(movie.Ratings) == 0 {
			movie.Ratings = existing.Ratings
		}
		return s.store.TxUpsert(tx, movie.ID, movie)
	})
	if err != nil {
		return storeErr("save movie", err)
	}
	return nil
}

// MovieByID returns the movie with all relations, or models.ErrNotFound.
func (s *Store) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	err := s.store.Get(id, &movie)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get movie", err)
	}
	return &movie, nil
}

// AllMovies returns essential fields for every stored movie.
func (s *Store) AllMovies(ctx context.Context) ([]models.MovieSummary, error) {
	movies, err := s.allMovies()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MovieSummary, len(movies))
	for i, m := range movies {
		summaries[i] = summarize(m)
	}
	return summaries, nil
}

// MoviesMissingRating returns movies without a usable rating from the
// provider. A stored score of exactly 0 counts as missing.
func (s *Store) MoviesMissingRating(ctx context.Context, provider models.RatingProvider) ([]models.Movie, error) {
	movies, err := s.allMovies()
	if err != nil {
		return nil, err
	}

	var missing []models.Movie
	for _, m := range movies {
		if provider == models.ProviderIMDb && m.ImdbID == "" {
			continue
		}
		if provider == models.ProviderRottenTomatoes && m.Title == "" {
			continue
		}
		if m.RatingByProvider(provider) == 0 {
			missing = append(missing, *m)
		}
	}
	return missing, nil
}

// UpsertRating writes one provider's rating row inside a single transaction.
// The stored list is re-read under the write lock, so a rating another
// provider's job wrote in the meantime survives.
func (s *Store) UpsertRating(ctx context.Context, movieID int64, rating models.Rating) error {
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var movie models.Movie
		if err := s.store.TxGet(tx, movieID, &movie); err != nil {
			return err
		}

		kept := make([]models.Rating, 0, len(movie.Ratings)+1)
		for _, r := range movie.Ratings {
			if r.Provider != rating.Provider {
				kept = append(kept, r)
			}
		}
		movie.Ratings = append(kept, rating)

		return s.store.TxUpsert(tx, movieID, &movie)
	})
	if errors.Is(err, bolthold.ErrNotFound) {
		return models.ErrNotFound
	}
	if err != nil {
		return storeErr("upsert rating", err)
	}
	return nil
}

// MoviesPopularAbove returns movies whose popularity meets the threshold.
func (s *Store) MoviesPopularAbove(ctx context.Context, threshold float64) ([]models.MovieSummary, error) {
	var movies []*models.Movie
	err := s.store.Find(&movies, bolthold.Where("Popularity").Ge(threshold))
	if err != nil {
		return nil, storeErr("popular movies", err)
	}

	summaries := make([]models.MovieSummary, len(movies))
	for i, m := range movies {
		summaries[i] = summarize(m)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Popularity > summaries[j].Popularity
	})
	return summaries, nil
}

// TopRatedCandidates returns movies meeting the vote-count floor, with their
// ratings attached.
func (s *Store) TopRatedCandidates(ctx context.Context, minVotes int) ([]models.RatedMovie, error) {
	var movies []*models.Movie
	err := s.store.Find(&movies, bolthold.Where("VoteCount").Ge(minVotes))
	if err != nil {
		return nil, storeErr("top rated candidates", err)
	}

	rated := make([]models.RatedMovie, len(movies))
	for i, m := range movies {
		rated[i] = models.RatedMovie{
			MovieSummary: summarize(m),
			Runtime:      m.Runtime,
			Genres:       m.Genres,
			Ratings:      m.Ratings,
		}
	}
	return rated, nil
}

// Genres returns the distinct genres across all stored movies, ordered by id.
func (s *Store) Genres(ctx context.Context) ([]models.Genre, error) {
	movies, err := s.allMovies()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Genre)
	for _, m := range movies {
		for _, g := range m.Genres {
			byID[g.ID] = g
		}
	}

	genres := make([]models.Genre, 0, len(byID))
	for _, g := range byID {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

func (s *Store) allMovies() ([]*models.Movie, error) {
	var movies []*models.Movie
	if err := s.store.Find(&movies, nil); err != nil {
		return nil, storeErr("list movies", err)
	}
	return movies, nil
}

func summarize(m *models.Movie) models.MovieSummary {
	return models.MovieSummary{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
		Popularity:  m.Popularity,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
	}
}
