// Package scraper fetches movie ratings from provider sites that expose no
// API. Each scraper returns a 0-10 score; ErrRatingNotFound means the page or
// the score is genuinely absent, which backfill jobs treat as a normal
// outcome rather than a failure.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/moviegraph/moviegraph/internal/models"
)

// ErrRatingNotFound reports that the provider has no rating for the movie.
var ErrRatingNotFound = errors.New("rating not found")

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// fetchDocument retrieves the page and parses it. A 404 maps to
// ErrRatingNotFound, other non-2xx statuses to models.ErrExternalService.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", url, models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRatingNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d: %w", url, resp.StatusCode, models.ErrExternalService)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", url, models.ErrDataFormat, err)
	}
	return doc, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
