package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/controllers"
	"github.com/moviegraph/moviegraph/internal/models"
)

// MoviesHandler serves the catalog endpoints: single movies, the cached
// popular and top-rated listings and the bulk-sync triggers.
type MoviesHandler struct {
	movies     *controllers.MovieData
	thresholds *controllers.Thresholds
	logger     *logrus.Logger
}

func NewMoviesHandler(movies *controllers.MovieData, thresholds *controllers.Thresholds, logger *logrus.Logger) *MoviesHandler {
	return &MoviesHandler{movies: movies, thresholds: thresholds, logger: logger}
}

func movieID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ErrValidation
	}
	return id, nil
}

// GetMovie serves one movie, fetching from the source when the cached record
// is missing or incomplete.
func (h *MoviesHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// Popular serves the cached popular listing.
func (h *MoviesHandler) Popular(w http.ResponseWriter, r *http.Request) {
	movies, err := h.thresholds.CachedPopular(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// PopularLimited serves the short home-page popular listing.
func (h *MoviesHandler) PopularLimited(w http.ResponseWriter, r *http.Request) {
	movies, err := h.thresholds.PopularLimited(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// rankMode maps the optional `rating` query parameter onto a rank mode,
// defaulting to the source's own vote average.
func rankMode(r *http.Request) models.RankMode {
	switch r.URL.Query().Get("rating") {
	case "imdb":
		return models.RankByIMDb
	case "rotten-tomatoes":
		return models.RankByRottenTomatoes
	default:
		return models.RankByVoteAverage
	}
}

// TopRated serves the cached top-rated listing, ordered per the `rating`
// query parameter.
func (h *MoviesHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	movies, err := h.thresholds.CachedTopRated(r.Context(), rankMode(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// TopRatedLimited serves the short home-page top-rated listing.
func (h *MoviesHandler) TopRatedLimited(w http.ResponseWriter, r *http.Request) {
	movies, err := h.thresholds.TopRatedLimited(r.Context(), rankMode(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// SyncPopular pulls the next popular page from the movie source into the
// store and returns the fetched movies.
func (h *MoviesHandler) SyncPopular(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.SyncPopular(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// SyncTopRated pulls the next top-rated page from the movie source into the
// store and returns the fetched movies.
func (h *MoviesHandler) SyncTopRated(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.SyncTopRated(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// Genres serves the distinct genres across the stored catalog.
func (h *MoviesHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.movies.Genres(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
