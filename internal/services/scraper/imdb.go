package scraper

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const imdbBaseURL = "https://www.imdb.com"

// IMDb scrapes the aggregate rating from a title page.
type IMDb struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewIMDb(logger *logrus.Logger) *IMDb {
	return &IMDb{
		baseURL:    imdbBaseURL,
		httpClient: newHTTPClient(),
		logger:     logger,
	}
}

// Fetch returns the 0-10 aggregate rating for the imdb id, or
// ErrRatingNotFound when the page carries no rating.
func (s *IMDb) Fetch(ctx context.Context, imdbID string) (float64, error) {
	url := s.baseURL + "/title/" + imdbID + "/"
	doc, err := fetchDocument(ctx, s.httpClient, url)
	if err != nil {
		return 0, err
	}

	text := doc.Find(`div[data-testid="hero-rating-bar__aggregate-rating__score"] span`).First().Text()
	rating, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || rating == 0 {
		s.logger.WithField("imdb_id", imdbID).Debug("No aggregate rating on title page")
		return 0, ErrRatingNotFound
	}
	return rating, nil
}
