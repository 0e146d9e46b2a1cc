package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/api/handlers"
	"github.com/moviegraph/moviegraph/internal/api/middleware"
	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/controllers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	movieData *controllers.MovieData,
	thresholds *controllers.Thresholds,
	users *controllers.Users,
	recommender *controllers.Recommender,
	identity controllers.IdentityProvider,
	logger *logrus.Logger,
) *Server {
	s := &Server{logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Metrics)

	s.setupRoutes(router, movieData, thresholds, users, recommender, identity)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(
	router chi.Router,
	movieData *controllers.MovieData,
	thresholds *controllers.Thresholds,
	users *controllers.Users,
	recommender *controllers.Recommender,
	identity controllers.IdentityProvider,
) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	router.Get("/health", healthHandler.ServeHTTP)
	router.Handle("/metrics", promhttp.Handler())

	moviesHandler := handlers.NewMoviesHandler(movieData, thresholds, s.logger)
	router.Route("/movies", func(r chi.Router) {
		r.Get("/popular", moviesHandler.Popular)
		r.Get("/popular/limited", moviesHandler.PopularLimited)
		r.Get("/top-rated", moviesHandler.TopRated)
		r.Get("/top-rated/limited", moviesHandler.TopRatedLimited)
		r.Get("/tmdb/popular", moviesHandler.SyncPopular)
		r.Get("/tmdb/top-rated", moviesHandler.SyncTopRated)
		r.Get("/{id}", moviesHandler.GetMovie)
	})
	router.Get("/genres", moviesHandler.Genres)

	auth := middleware.NewAuthenticator(identity, s.logger)
	usersHandler := handlers.NewUsersHandler(users, recommender, s.logger)
	router.Route("/user", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/register", usersHandler.Register)
		r.Post("/movies/{id}/bookmark", usersHandler.Bookmark)
		r.Delete("/movies/{id}/bookmark", usersHandler.Unbookmark)
		r.Post("/movies/{id}/view", usersHandler.RecordView)
		r.Get("/watchlist", usersHandler.Watchlist)
		r.Get("/recommendations", usersHandler.Recommendations)
	})
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
