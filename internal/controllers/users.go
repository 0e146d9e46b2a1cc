package controllers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/services/auth"
	"github.com/moviegraph/moviegraph/internal/store"
)

// IdentityProvider resolves an access token to the caller's profile.
type IdentityProvider interface {
	UserInfo(ctx context.Context, accessToken string) (*auth.UserInfo, error)
}

// Users handles registration-on-login and the bookmark/watchlist operations.
type Users struct {
	store    store.Store
	identity IdentityProvider
	logger   *logrus.Logger
}

func NewUsers(st store.Store, identity IdentityProvider, logger *logrus.Logger) *Users {
	return &Users{store: st, identity: identity, logger: logger}
}

// RegisterOrUpdate resolves the token against the identity provider and
// upserts the user record. Called on every authenticated login, so profile
// changes upstream propagate on the next request.
func (s *Users) RegisterOrUpdate(ctx context.Context, accessToken string) (*models.User, error) {
	info, err := s.identity.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		AuthID:        info.Sub,
		Email:         info.Email,
		FullName:      info.Name,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified,
		Role:          models.RoleUser,
		Locale:        info.Locale,
	}
	if existing, err := s.store.UserByAuthID(ctx, info.Sub); err == nil {
		// Role assignments outlive profile refreshes.
		user.Role = existing.Role
	}

	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user", info.Sub).Debug("Registered or refreshed user")
	return user, nil
}

// Bookmark adds the movie to the user's watchlist.
func (s *Users) Bookmark(ctx context.Context, authID string, movieID int64) error {
	if _, err := s.store.MovieByID(ctx, movieID); err != nil {
		return err
	}
	return s.store.AddBookmark(ctx, authID, movieID)
}

// Unbookmark removes the movie from the user's watchlist.
func (s *Users) Unbookmark(ctx context.Context, authID string, movieID int64) error {
	return s.store.RemoveBookmark(ctx, authID, movieID)
}

// Watchlist lists the user's bookmarked movie ids.
func (s *Users) Watchlist(ctx context.Context, authID string) ([]int64, error) {
	return s.store.Watchlist(ctx, authID)
}

// RecordView adds a view interaction, feeding the recommendation graph.
func (s *Users) RecordView(ctx context.Context, authID string, movieID int64) error {
	if _, err := s.store.MovieByID(ctx, movieID); err != nil {
		return err
	}
	return s.store.RecordView(ctx, authID, movieID)
}
