package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/api/middleware"
	"github.com/moviegraph/moviegraph/internal/controllers"
	"github.com/moviegraph/moviegraph/internal/models"
)

const defaultRecommendationLimit = 20

// UsersHandler serves the authenticated user endpoints: registration,
// bookmarks, the watchlist and recommendations.
type UsersHandler struct {
	users       *controllers.Users
	recommender *controllers.Recommender
	logger      *logrus.Logger
}

func NewUsersHandler(users *controllers.Users, recommender *controllers.Recommender, logger *logrus.Logger) *UsersHandler {
	return &UsersHandler{users: users, recommender: recommender, logger: logger}
}

// Register upserts the caller's profile from the identity provider.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.RegisterOrUpdate(r.Context(), middleware.AccessToken(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Bookmark adds a movie to the caller's watchlist.
func (h *UsersHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.Bookmark(r.Context(), middleware.AuthID(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unbookmark removes a movie from the caller's watchlist.
func (h *UsersHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.Unbookmark(r.Context(), middleware.AuthID(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordView feeds a view interaction into the recommendation graph.
func (h *UsersHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.RecordView(r.Context(), middleware.AuthID(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Watchlist serves the caller's bookmarked movie ids.
func (h *UsersHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	ids, err := h.users.Watchlist(r.Context(), middleware.AuthID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"movie_ids": ids})
}

// Recommendations serves one page of personalized recommendations.
func (h *UsersHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultRecommendationLimit)

	movies, total, err := h.recommender.Recommend(r.Context(), middleware.AuthID(r.Context()), skip, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if movies == nil {
		movies = []models.ScoredMovie{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"movies": movies,
		"total":  total,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
