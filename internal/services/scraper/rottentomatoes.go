package scraper

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	rtBaseURL = "https://www.rottentomatoes.com"

	// Page titles within this edit distance of the requested title are
	// accepted; beyond it the slug resolved to a different movie.
	rtTitleDistanceMax = 3
)

// RottenTomatoes scrapes the tomatometer from a movie page. Slugs are
// guessed from the title, so every hit is verified against the page's own
// title and release year before the score is trusted.
type RottenTomatoes struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewRottenTomatoes(logger *logrus.Logger) *RottenTomatoes {
	return &RottenTomatoes{
		baseURL:    rtBaseURL,
		httpClient: newHTTPClient(),
		logger:     logger,
	}
}

// Fetch returns the tomatometer normalized to a 0-10 score. The slug with
// the release year appended is tried first, then the bare slug. Returns
// ErrRatingNotFound when neither page exists or the page is for a different
// movie.
func (s *RottenTomatoes) Fetch(ctx context.Context, title, releaseYear string) (float64, error) {
	slug := Slugify(title)
	if slug == "" {
		return 0, ErrRatingNotFound
	}

	candidates := []string{s.baseURL + "/m/" + slug}
	if releaseYear != "" {
		candidates = []string{
			s.baseURL + "/m/" + slug + "_" + releaseYear,
			s.baseURL + "/m/" + slug,
		}
	}

	for _, url := range candidates {
		score, err := s.scrapePage(ctx, url, title, releaseYear)
		if errors.Is(err, ErrRatingNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return score, nil
	}
	return 0, ErrRatingNotFound
}

func (s *RottenTomatoes) scrapePage(ctx context.Context, url, title, releaseYear string) (float64, error) {
	doc, err := fetchDocument(ctx, s.httpClient, url)
	if err != nil {
		return 0, err
	}

	board := doc.Find("score-board-deprecated").First()
	if board.Length() == 0 {
		return 0, ErrRatingNotFound
	}

	pageTitle := strings.TrimSpace(doc.Find(`[slot="title"]`).First().Text())
	if pageTitle != "" && !titlesMatch(title, pageTitle) {
		s.logger.WithFields(logrus.Fields{
			"requested": title,
			"page":      pageTitle,
		}).Debug("Slug resolved to a different movie")
		return 0, ErrRatingNotFound
	}

	if releaseYear != "" {
		info := doc.Find("p.info").First().Text()
		if info != "" && !strings.Contains(info, releaseYear) {
			return 0, ErrRatingNotFound
		}
	}

	raw, ok := board.Attr("tomatometerscore")
	if !ok {
		return 0, ErrRatingNotFound
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || score == 0 {
		return 0, ErrRatingNotFound
	}
	// Tomatometer is 0-100; stored ratings are 0-10 across providers.
	return score / 10, nil
}

func titlesMatch(requested, page string) bool {
	a := strings.ToLower(strings.TrimSpace(requested))
	b := strings.ToLower(strings.TrimSpace(page))
	if a == b {
		return true
	}
	return levenshtein.ComputeDistance(a, b) <= rtTitleDistanceMax
}

// Slugify turns a movie title into a Rotten Tomatoes URL slug: diacritics
// folded away, lowercased, runs of non-alphanumerics collapsed to single
// underscores.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
