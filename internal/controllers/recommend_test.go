package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/moviegraph/moviegraph/internal/models"
)

// seedGraph builds a small interaction graph around "auth0|me".
//
// me:   bookmark 1, view 2
// nina: bookmark 1, bookmark 2, bookmark 3, bookmark 4 (shares 1 and 2)
// omar: view 1, bookmark 3                             (shares 1)
//
// Candidates for me are movies 3 and 4: movie 3 carries weight 6.0
// (nina 3.0 + omar 3.0), movie 4 carries 3.0.
func seedGraph(t *testing.T, st *fakeStore) {
	t.Helper()
	ctx := context.Background()
	for id := int64(1); id <= 4; id++ {
		st.movies[id] = completeMovie(id)
	}
	if err := st.AddBookmark(ctx, "auth0|me", 1); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordView(ctx, "auth0|me", 2); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{1, 2, 3, 4} {
		if err := st.AddBookmark(ctx, "auth0|nina", id); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.RecordView(ctx, "auth0|omar", 1); err != nil {
		t.Fatal(err)
	}
	if err := st.AddBookmark(ctx, "auth0|omar", 3); err != nil {
		t.Fatal(err)
	}
}

func TestRecommendScoresRelativeToStrongest(t *testing.T) {
	st := newFakeStore()
	seedGraph(t, st)
	rec := NewRecommender(st, testLogger)

	page, total, err := rec.Recommend(context.Background(), "auth0|me", 0, 10)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 candidates, got %d", total)
	}
	if page[0].ID != 3 || page[1].ID != 4 {
		t.Fatalf("expected order [3 4], got [%d %d]", page[0].ID, page[1].ID)
	}
	if page[0].Score != 100 {
		t.Errorf("expected strongest candidate to score 100, got %v", page[0].Score)
	}
	if page[1].Score != 50 {
		t.Errorf("expected movie 4 to score 50, got %v", page[1].Score)
	}
}

func TestRecommendExcludesOwnInteractions(t *testing.T) {
	st := newFakeStore()
	seedGraph(t, st)
	rec := NewRecommender(st, testLogger)

	page, _, err := rec.Recommend(context.Background(), "auth0|me", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range page {
		if m.ID == 1 || m.ID == 2 {
			t.Errorf("movie %d already interacted with, must not be recommended", m.ID)
		}
	}
}

func TestRecommendPaging(t *testing.T) {
	st := newFakeStore()
	seedGraph(t, st)
	rec := NewRecommender(st, testLogger)
	ctx := context.Background()

	page, total, err := rec.Recommend(ctx, "auth0|me", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(page) != 1 || page[0].ID != 4 {
		t.Fatalf("expected second page to hold movie 4, got %+v", page)
	}

	// Skipping past the end keeps the total but returns nothing.
	page, total, err = rec.Recommend(ctx, "auth0|me", 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(page) != 0 {
		t.Errorf("expected (0 results, total 2), got (%d, %d)", len(page), total)
	}
}

func TestRecommendNoNeighbors(t *testing.T) {
	st := newFakeStore()
	st.movies[1] = completeMovie(1)
	rec := NewRecommender(st, testLogger)

	page, total, err := rec.Recommend(context.Background(), "auth0|loner", 0, 10)
	if err != nil {
		t.Fatalf("expected no error for user without neighbors, got %v", err)
	}
	if total != 0 || len(page) != 0 {
		t.Errorf("expected empty result, got %d movies total %d", len(page), total)
	}
}

func TestRecommendValidatesPaging(t *testing.T) {
	rec := NewRecommender(newFakeStore(), testLogger)
	ctx := context.Background()

	if _, _, err := rec.Recommend(ctx, "auth0|me", -1, 10); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for negative skip, got %v", err)
	}
	if _, _, err := rec.Recommend(ctx, "auth0|me", 0, 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for zero limit, got %v", err)
	}
}
