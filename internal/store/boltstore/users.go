package boltstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/store"
)

// UserByAuthID returns the user, or models.ErrNotFound.
func (s *Store) UserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var user models.User
	err := s.store.Get(authID, &user)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &user, nil
}

// UpsertUser creates or refreshes the user record keyed by auth subject id.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	if user == nil || user.AuthID == "" {
		return models.ErrValidation
	}

	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var existing models.User
		err := s.store.TxGet(tx, user.AuthID, &existing)
		now := time.Now()
		if errors.Is(err, bolthold.ErrNotFound) {
			user.CreatedAt = now
		} else if err != nil {
			return err
		} else {
			user.CreatedAt = existing.CreatedAt
		}
		user.UpdatedAt = now
		return s.store.TxUpsert(tx, user.AuthID, user)
	})
	if err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

// AddBookmark marks the (user, movie) edge bookmarked and adds the bookmark
// weight contribution. Calling it twice leaves the edge unchanged.
func (s *Store) AddBookmark(ctx context.Context, authID string, movieID int64) error {
	err := s.updateEdge(authID, movieID, func(edge *models.Interaction) {
		if edge.Bookmarked {
			return
		}
		edge.Bookmarked = true
		edge.Weight += models.BookmarkWeight
	})
	if err != nil {
		return storeErr("add bookmark", err)
	}
	return nil
}

// RemoveBookmark clears the bookmark flag and subtracts its contribution,
// floored at zero. A no-op when the edge is not bookmarked.
func (s *Store) RemoveBookmark(ctx context.Context, authID string, movieID int64) error {
	err := s.updateEdge(authID, movieID, func(edge *models.Interaction) {
		if !edge.Bookmarked {
			return
		}
		edge.Bookmarked = false
		edge.Weight -= models.BookmarkWeight
		if edge.Weight < 0 {
			edge.Weight = 0
		}
	})
	if err != nil {
		return storeErr("remove bookmark", err)
	}
	return nil
}

// RecordView adds the view weight contribution to the edge.
func (s *Store) RecordView(ctx context.Context, authID string, movieID int64) error {
	err := s.updateEdge(authID, movieID, func(edge *models.Interaction) {
		edge.Weight += models.ViewWeight
	})
	if err != nil {
		return storeErr("record view", err)
	}
	return nil
}

// updateEdge applies mutate to the (user, movie) interaction edge inside one
// transaction, creating the edge when absent.
func (s *Store) updateEdge(authID string, movieID int64, mutate func(*models.Interaction)) error {
	return s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var edge models.Interaction
		err := s.store.TxFindOne(tx, &edge,
			bolthold.Where("UserID").Eq(authID).And("MovieID").Eq(movieID))
		now := time.Now()
		if errors.Is(err, bolthold.ErrNotFound) {
			edge = models.Interaction{
				UserID:    authID,
				MovieID:   movieID,
				CreatedAt: now,
			}
			mutate(&edge)
			edge.UpdatedAt = now
			return s.store.TxInsert(tx, bolthold.NextSequence(), &edge)
		}
		if err != nil {
			return err
		}
		mutate(&edge)
		edge.UpdatedAt = now
		return s.store.TxUpdate(tx, edge.ID, &edge)
	})
}

// Watchlist lists the movie ids the user has bookmarked.
func (s *Store) Watchlist(ctx context.Context, authID string) ([]int64, error) {
	var edges []*models.Interaction
	err := s.store.Find(&edges,
		bolthold.Where("UserID").Eq(authID).And("Bookmarked").Eq(true))
	if err != nil {
		return nil, storeErr("watchlist", err)
	}

	ids := make([]int64, len(edges))
	for i, e := range edges {
		ids[i] = e.MovieID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SimilarUsers ranks other users by the number of distinct movies shared with
// authID, descending, capped at limit. Zero-weight edges do not count as
// interactions.
func (s *Store) SimilarUsers(ctx context.Context, authID string, limit int) ([]models.SimilarUser, error) {
	own, err := s.interactedMovies(authID)
	if err != nil {
		return nil, err
	}
	if len(own) == 0 {
		return nil, nil
	}

	var edges []*models.Interaction
	if err := s.store.Find(&edges, nil); err != nil {
		return nil, storeErr("similar users", err)
	}

	shared := make(map[string]map[int64]struct{})
	for _, e := range edges {
		if e.UserID == authID || e.Weight <= 0 {
			continue
		}
		if _, ok := own[e.MovieID]; !ok {
			continue
		}
		if shared[e.UserID] == nil {
			shared[e.UserID] = make(map[int64]struct{})
		}
		shared[e.UserID][e.MovieID] = struct{}{}
	}

	neighbors := make([]models.SimilarUser, 0, len(shared))
	for userID, movies := range shared {
		neighbors = append(neighbors, models.SimilarUser{
			UserID:      userID,
			SharedCount: len(movies),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].SharedCount != neighbors[j].SharedCount {
			return neighbors[i].SharedCount > neighbors[j].SharedCount
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// CandidateMovies sums edge weights per movie across the given users,
// excluding movies authID has already interacted with.
func (s *Store) CandidateMovies(ctx context.Context, authID string, userIDs []string) ([]store.WeightedMovie, error) {
	own, err := s.interactedMovies(authID)
	if err != nil {
		return nil, err
	}

	members := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		members[id] = struct{}{}
	}

	var edges []*models.Interaction
	if err := s.store.Find(&edges, nil); err != nil {
		return nil, storeErr("candidate movies", err)
	}

	weights := make(map[int64]float64)
	for _, e := range edges {
		if _, ok := members[e.UserID]; !ok {
			continue
		}
		if _, ok := own[e.MovieID]; ok {
			continue
		}
		if e.Weight <= 0 {
			continue
		}
		weights[e.MovieID] += e.Weight
	}

	candidates := make([]store.WeightedMovie, 0, len(weights))
	for movieID, weight := range weights {
		var movie models.Movie
		err := s.store.Get(movieID, &movie)
		if errors.Is(err, bolthold.ErrNotFound) {
			// Edge to a movie that was never cached; nothing to recommend.
			continue
		}
		if err != nil {
			return nil, storeErr("candidate movies", err)
		}
		candidates = append(candidates, store.WeightedMovie{
			Movie:  summarize(&movie),
			Weight: weight,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		return candidates[i].Movie.ID < candidates[j].Movie.ID
	})
	return candidates, nil
}

func (s *Store) interactedMovies(authID string) (map[int64]struct{}, error) {
	var edges []*models.Interaction
	err := s.store.Find(&edges, bolthold.Where("UserID").Eq(authID))
	if err != nil {
		return nil, storeErr("user interactions", err)
	}

	movies := make(map[int64]struct{}, len(edges))
	for _, e := range edges {
		if e.Weight > 0 || e.Bookmarked {
			movies[e.MovieID] = struct{}{}
		}
	}
	return movies, nil
}
