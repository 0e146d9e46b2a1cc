package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/services/scraper"
	"github.com/moviegraph/moviegraph/internal/store"
)

// IMDbScraper returns the 0-10 aggregate rating for an imdb id.
type IMDbScraper interface {
	Fetch(ctx context.Context, imdbID string) (float64, error)
}

// RTScraper returns the tomatometer normalized to 0-10 for a title and
// release year.
type RTScraper interface {
	Fetch(ctx context.Context, title, releaseYear string) (float64, error)
}

// RatingBackfill runs the per-provider batches that fill in missing scraped
// ratings. One batch walks every movie missing that provider's rating,
// scrapes it and writes the rating row, sleeping a jittered delay between
// movies so the scraped site sees human-looking traffic.
type RatingBackfill struct {
	store  store.Store
	imdb   IMDbScraper
	rt     RTScraper
	logger *logrus.Logger

	imdbBaseDelay time.Duration
	rtBaseDelay   time.Duration
	jitter        scraper.JitterConfig

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRatingBackfill(st store.Store, imdb IMDbScraper, rt RTScraper, cfg *config.Config, logger *logrus.Logger) *RatingBackfill {
	return &RatingBackfill{
		store:         st,
		imdb:          imdb,
		rt:            rt,
		logger:        logger,
		imdbBaseDelay: time.Duration(cfg.IMDbBackfillBaseDelayMs) * time.Millisecond,
		rtBaseDelay:   time.Duration(cfg.RTBackfillBaseDelayMs) * time.Millisecond,
		jitter: scraper.JitterConfig{
			PeakWindowMs:    cfg.PeakJitterMs,
			OffPeakWindowMs: cfg.OffPeakJitterMs,
			PeakHourStart:   cfg.PeakHourStart,
			PeakHourEnd:     cfg.PeakHourEnd,
		},
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunIMDb backfills IMDb ratings for every movie that has an imdb id but no
// usable IMDb score.
func (s *RatingBackfill) RunIMDb(ctx context.Context) error {
	return s.run(ctx, models.ProviderIMDb, s.imdbBaseDelay, func(ctx context.Context, m *models.Movie) (float64, error) {
		return s.imdb.Fetch(ctx, m.ImdbID)
	})
}

// RunRT backfills Rotten Tomatoes ratings for every titled movie without a
// usable RT score.
func (s *RatingBackfill) RunRT(ctx context.Context) error {
	return s.run(ctx, models.ProviderRottenTomatoes, s.rtBaseDelay, func(ctx context.Context, m *models.Movie) (float64, error) {
		return s.rt.Fetch(ctx, m.Title, releaseYear(m.ReleaseDate))
	})
}

func releaseYear(releaseDate string) string {
	if len(releaseDate) >= 4 {
		return releaseDate[:4]
	}
	return ""
}

func (s *RatingBackfill) run(ctx context.Context, provider models.RatingProvider, baseDelay time.Duration,
	scrape func(context.Context, *models.Movie) (float64, error)) error {

	movies, err := s.store.MoviesMissingRating(ctx, provider)
	if err != nil {
		return err
	}

	log := s.logger.WithField("provider", provider)
	log.WithField("movies", len(movies)).Info("Starting rating backfill batch")

	var updated int
	for i := range movies {
		if err := ctx.Err(); err != nil {
			log.WithField("updated", updated).Info("Backfill batch cancelled")
			return err
		}
		movie := &movies[i]

		score, err := scrape(ctx, movie)
		switch {
		case errors.Is(err, scraper.ErrRatingNotFound):
			// Expected for obscure titles; not a failure.
			log.WithField("movie_id", movie.ID).Warn("Provider has no rating for movie")
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			log.WithField("movie_id", movie.ID).WithError(err).Error("Scrape failed, continuing batch")
		default:
			// Only this provider's row is written; the store merges under
			// its own lock so a concurrent other-provider batch is safe.
			rating := models.Rating{Provider: provider, Score: score}
			if err := s.store.UpsertRating(ctx, movie.ID, rating); err != nil {
				log.WithField("movie_id", movie.ID).WithError(err).Error("Rating update failed, continuing batch")
			} else {
				updated++
			}
		}

		if i == len(movies)-1 {
			break
		}
		if err := s.sleep(ctx, s.jitter.Delay(baseDelay, time.Now())); err != nil {
			log.WithField("updated", updated).Info("Backfill batch cancelled")
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"movies":  len(movies),
		"updated": updated,
	}).Info("Finished rating backfill batch")
	return nil
}
