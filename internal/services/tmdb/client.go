package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
)

const (
	genreCacheKey = "genre-catalog"
	genreCacheTTL = 24 * time.Hour
)

// Client talks to the TMDB v3 API with bearer-token auth. Transient failures
// (429, 5xx, network errors) are retried with exponential backoff; 4xx
// responses are not.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
	cache      *gocache.Cache
}

// NewClient creates a new TMDB API client.
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAccessToken == "" {
		return nil, fmt.Errorf("TMDB access token is required")
	}

	return &Client{
		baseURL:    cfg.TMDBBaseURL,
		token:      cfg.TMDBAccessToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		cache:      gocache.New(genreCacheTTL, 10*time.Minute),
	}, nil
}

// doGET performs an authenticated GET and decodes the JSON response into
// result. A 404 maps to models.ErrNotFound, other failures to
// models.ErrExternalService, an undecodable body to models.ErrDataFormat.
func (c *Client) doGET(ctx context.Context, path string, result interface{}) error {
	fullURL := c.baseURL + path
	c.logger.WithFields(logrus.Fields{
		"url": fullURL,
	}).Debug("Making TMDB API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w: %w", models.ErrDataFormat, err))
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(models.ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("status %d", resp.StatusCode)
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(
				fmt.Errorf("status %d: %s: %w", resp.StatusCode, string(body), models.ErrExternalService))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, models.ErrNotFound) ||
			errors.Is(err, models.ErrDataFormat) ||
			errors.Is(err, models.ErrExternalService) {
			return err
		}
		return fmt.Errorf("GET %s: %w: %w", path, models.ErrExternalService, err)
	}
	return nil
}

// movieListPage is one page of a TMDB listing endpoint. Listing entries carry
// genre ids only; the full genre objects are resolved from the cached catalog.
type movieListPage struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []listEntry `json:"results"`
}

type listEntry struct {
	models.Movie
	GenreIDs []int64 `json:"genre_ids"`
}

type videosResponse struct {
	Results []models.Video `json:"results"`
}

type imagesResponse struct {
	Backdrops []models.Backdrop `json:"backdrops"`
}

type genresResponse struct {
	Genres []models.Genre `json:"genres"`
}

// FetchMovie retrieves the full movie record: details plus curated backdrops,
// trailers and credits. Returns models.ErrNotFound for unknown ids.
func (c *Client) FetchMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	var movie models.Movie
	if err := c.doGET(ctx, "/movie/"+strconv.FormatInt(movieID, 10), &movie); err != nil {
		return nil, err
	}

	backdrops, err := c.fetchBackdrops(ctx, movieID)
	if err != nil {
		return nil, err
	}
	movie.Backdrops = selectBackdrops(backdrops, maxBackdrops)

	videos, err := c.fetchVideos(ctx, movieID)
	if err != nil {
		return nil, err
	}
	movie.Trailers = organizeVideos(videos)

	credits, err := c.fetchCredits(ctx, movieID)
	if err != nil {
		return nil, err
	}
	movie.Credits = credits

	return &movie, nil
}

func (c *Client) fetchBackdrops(ctx context.Context, movieID int64) ([]models.Backdrop, error) {
	var images imagesResponse
	if err := c.doGET(ctx, "/movie/"+strconv.FormatInt(movieID, 10)+"/images", &images); err != nil {
		return nil, err
	}
	return images.Backdrops, nil
}

func (c *Client) fetchVideos(ctx context.Context, movieID int64) ([]models.Video, error) {
	var videos videosResponse
	if err := c.doGET(ctx, "/movie/"+strconv.FormatInt(movieID, 10)+"/videos", &videos); err != nil {
		return nil, err
	}
	return videos.Results, nil
}

func (c *Client) fetchCredits(ctx context.Context, movieID int64) (*models.Credits, error) {
	var credits models.Credits
	if err := c.doGET(ctx, "/movie/"+strconv.FormatInt(movieID, 10)+"/credits", &credits); err != nil {
		return nil, err
	}
	credits.Crew = filterKeyCrew(credits.Crew)
	return &credits, nil
}

// FetchPopularPage retrieves one page of the popular listing with genre
// objects resolved from the cached catalog.
func (c *Client) FetchPopularPage(ctx context.Context, page int) ([]models.Movie, error) {
	return c.fetchListPage(ctx, "/movie/popular", page)
}

// FetchTopRatedPage retrieves one page of the top-rated listing with genre
// objects resolved from the cached catalog.
func (c *Client) FetchTopRatedPage(ctx context.Context, page int) ([]models.Movie, error) {
	return c.fetchListPage(ctx, "/movie/top_rated", page)
}

func (c *Client) fetchListPage(ctx context.Context, path string, page int) ([]models.Movie, error) {
	catalog, err := c.GenreCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var result movieListPage
	if err := c.doGET(ctx, path+"?page="+strconv.Itoa(page), &result); err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0, len(result.Results))
	for _, entry := range result.Results {
		movie := entry.Movie
		for _, id := range entry.GenreIDs {
			if genre, ok := catalog[id]; ok {
				movie.Genres = append(movie.Genres, genre)
			}
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// GenreCatalog returns the id-to-genre lookup, cached for a day so listing
// syncs do not refetch it per page.
func (c *Client) GenreCatalog(ctx context.Context) (map[int64]models.Genre, error) {
	if cached, ok := c.cache.Get(genreCacheKey); ok {
		return cached.(map[int64]models.Genre), nil
	}

	var result genresResponse
	if err := c.doGET(ctx, "/genre/movie/list", &result); err != nil {
		return nil, err
	}

	catalog := make(map[int64]models.Genre, len(result.Genres))
	for _, genre := range result.Genres {
		catalog[genre.ID] = genre
	}
	c.cache.Set(genreCacheKey, catalog, gocache.DefaultExpiration)
	return catalog, nil
}
