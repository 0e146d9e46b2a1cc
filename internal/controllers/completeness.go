package controllers

import (
	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
)

// Completeness decides whether a cached movie record has enough data to be
// served without a refetch. The media facets (credits, trailers, backdrops)
// can be relaxed through config for deployments that do not render them.
type Completeness struct {
	requireCredits   bool
	requireTrailers  bool
	requireBackdrops bool
}

func NewCompleteness(cfg *config.Config) *Completeness {
	return &Completeness{
		requireCredits:   cfg.RequireCredits,
		requireTrailers:  cfg.RequireTrailers,
		requireBackdrops: cfg.RequireBackdrops,
	}
}

// IsComplete reports whether every required facet of the movie is populated.
// Deliberately conservative: any missing facet forces a refetch, since a
// partial record degrades the detail page.
func (c *Completeness) IsComplete(m *models.Movie) bool {
	if m == nil {
		return false
	}
	if m.Title == "" || m.Overview == "" || m.ReleaseDate == "" || m.PosterPath == "" {
		return false
	}
	if len(m.Genres) == 0 || m.Runtime <= 0 || m.Status == "" || m.VoteAverage <= 0 {
		return false
	}
	if c.requireBackdrops && len(m.Backdrops) == 0 {
		return false
	}
	if c.requireTrailers && len(m.Trailers) == 0 {
		return false
	}
	if c.requireCredits {
		if m.Credits == nil || len(m.Credits.Cast) == 0 || len(m.Credits.Crew) == 0 {
			return false
		}
	}
	return true
}
