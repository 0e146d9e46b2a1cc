package tmdb

import (
	"math"
	"sort"

	"github.com/moviegraph/moviegraph/internal/models"
)

const (
	maxTrailers  = 5
	maxBackdrops = 10

	// Backdrops within this aspect-ratio band are treated as one group.
	aspectRatioTolerance = 0.2
)

// videoTypePriority orders trailer-like video types. Teasers are kept since
// they often stand in for trailers on smaller titles.
var videoTypePriority = map[string]int{
	"Trailer": 1,
	"Teaser":  2,
}

// organizeVideos keeps official YouTube trailers and teasers, newest first,
// trailers before teasers at the same timestamp, larger first as final
// tie-break, capped at maxTrailers.
func organizeVideos(videos []models.Video) []models.Video {
	kept := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if _, ok := videoTypePriority[v.Type]; !ok {
			continue
		}
		if !v.Official || v.Site != "YouTube" {
			continue
		}
		kept = append(kept, v)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].PublishedAt != kept[j].PublishedAt {
			return kept[i].PublishedAt > kept[j].PublishedAt
		}
		if videoTypePriority[kept[i].Type] != videoTypePriority[kept[j].Type] {
			return videoTypePriority[kept[i].Type] < videoTypePriority[kept[j].Type]
		}
		return kept[i].Size > kept[j].Size
	})

	if len(kept) > maxTrailers {
		kept = kept[:maxTrailers]
	}
	return kept
}

// selectBackdrops groups backdrops by rounded aspect ratio, orders the groups
// by their mean vote average, then takes the best-voted backdrops group by
// group until maxTotal is reached.
func selectBackdrops(backdrops []models.Backdrop, maxTotal int) []models.Backdrop {
	if len(backdrops) == 0 {
		return nil
	}

	groups := make(map[float64][]models.Backdrop)
	for _, b := range backdrops {
		key := math.Round(b.AspectRatio/aspectRatioTolerance) * aspectRatioTolerance
		groups[key] = append(groups[key], b)
	}

	type ratioGroup struct {
		meanVote  float64
		backdrops []models.Backdrop
	}
	ordered := make([]ratioGroup, 0, len(groups))
	for _, members := range groups {
		var sum float64
		for _, b := range members {
			sum += b.VoteAverage
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].VoteAverage > members[j].VoteAverage
		})
		ordered = append(ordered, ratioGroup{
			meanVote:  sum / float64(len(members)),
			backdrops: members,
		})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].meanVote > ordered[j].meanVote
	})

	selected := make([]models.Backdrop, 0, maxTotal)
	for _, group := range ordered {
		remaining := maxTotal - len(selected)
		if remaining <= 0 {
			break
		}
		if len(group.backdrops) > remaining {
			group.backdrops = group.backdrops[:remaining]
		}
		selected = append(selected, group.backdrops...)
	}
	return selected
}

// keyCrewRoles are the jobs worth keeping from the full crew listing.
var keyCrewRoles = map[string]bool{
	"Director": true,
	"Writer":   true,
	"Producer": true,
}

func filterKeyCrew(crew []models.CrewMember) []models.CrewMember {
	kept := make([]models.CrewMember, 0, len(crew))
	for _, member := range crew {
		if keyCrewRoles[member.Job] {
			kept = append(kept, member)
		}
	}
	return kept
}
