package tmdb

import (
	"testing"

	"github.com/moviegraph/moviegraph/internal/models"
)

func TestOrganizeVideosFiltersAndOrders(t *testing.T) {
	videos := []models.Video{
		{ID: "unofficial", Site: "YouTube", Type: "Trailer", Official: false, PublishedAt: "2024-06-01"},
		{ID: "vimeo", Site: "Vimeo", Type: "Trailer", Official: true, PublishedAt: "2024-06-01"},
		{ID: "clip", Site: "YouTube", Type: "Clip", Official: true, PublishedAt: "2024-06-01"},
		{ID: "old-trailer", Site: "YouTube", Type: "Trailer", Official: true, PublishedAt: "2024-01-01"},
		{ID: "teaser", Site: "YouTube", Type: "Teaser", Official: true, PublishedAt: "2024-05-01"},
		{ID: "new-trailer", Site: "YouTube", Type: "Trailer", Official: true, PublishedAt: "2024-05-01"},
	}

	got := organizeVideos(videos)

	if len(got) != 3 {
		t.Fatalf("expected 3 videos after filtering, got %d", len(got))
	}
	// Same publish date: the trailer outranks the teaser.
	if got[0].ID != "new-trailer" || got[1].ID != "teaser" || got[2].ID != "old-trailer" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestOrganizeVideosCapsAtFive(t *testing.T) {
	var videos []models.Video
	for i := 0; i < 8; i++ {
		videos = append(videos, models.Video{
			ID: string(rune('a' + i)), Site: "YouTube", Type: "Trailer",
			Official: true, PublishedAt: "2024-01-01",
		})
	}

	if got := organizeVideos(videos); len(got) != 5 {
		t.Errorf("expected cap of 5, got %d", len(got))
	}
}

func TestSelectBackdropsPrefersBestVotedGroup(t *testing.T) {
	backdrops := []models.Backdrop{
		// Wide group, strong votes.
		{FilePath: "/wide1.jpg", AspectRatio: 1.78, VoteAverage: 6.0},
		{FilePath: "/wide2.jpg", AspectRatio: 1.77, VoteAverage: 5.0},
		// Square-ish group, weak votes.
		{FilePath: "/square.jpg", AspectRatio: 1.0, VoteAverage: 2.0},
	}

	got := selectBackdrops(backdrops, 10)

	if len(got) != 3 {
		t.Fatalf("expected all 3 backdrops, got %d", len(got))
	}
	if got[0].FilePath != "/wide1.jpg" || got[1].FilePath != "/wide2.jpg" {
		t.Errorf("expected wide group first ordered by vote, got %v", got)
	}
	if got[2].FilePath != "/square.jpg" {
		t.Errorf("expected weak group last, got %v", got)
	}
}

func TestSelectBackdropsCapsTotal(t *testing.T) {
	var backdrops []models.Backdrop
	for i := 0; i < 15; i++ {
		backdrops = append(backdrops, models.Backdrop{
			FilePath:    "/b.jpg",
			AspectRatio: 1.78,
			VoteAverage: float64(i),
		})
	}

	if got := selectBackdrops(backdrops, 10); len(got) != 10 {
		t.Errorf("expected cap of 10, got %d", len(got))
	}
}

func TestFilterKeyCrew(t *testing.T) {
	crew := []models.CrewMember{
		{Name: "A", Job: "Director"},
		{Name: "B", Job: "Gaffer"},
		{Name: "C", Job: "Writer"},
		{Name: "D", Job: "Producer"},
		{Name: "E", Job: "Editor"},
	}

	got := filterKeyCrew(crew)

	if len(got) != 3 {
		t.Fatalf("expected 3 key crew members, got %d", len(got))
	}
	for _, member := range got {
		if !keyCrewRoles[member.Job] {
			t.Errorf("unexpected job kept: %s", member.Job)
		}
	}
}
