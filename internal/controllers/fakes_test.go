package controllers

import (
	"context"
	"sort"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/services/auth"
	"github.com/moviegraph/moviegraph/internal/store"
	"github.com/moviegraph/moviegraph/internal/utils"
)

// fakeStore is an in-memory store.Store for controller tests.
type fakeStore struct {
	movies    map[int64]*models.Movie
	users     map[string]*models.User
	edges     []*models.Interaction
	pages     map[models.SyncCategory]int
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		movies: make(map[int64]*models.Movie),
		users:  make(map[string]*models.User),
		pages:  make(map[models.SyncCategory]int),
	}
}

func (f *fakeStore) SaveMovie(ctx context.Context, movie *models.Movie) error {
	f.saveCalls++
	copied := *movie
	if existing, ok := f.movies[movie.ID]; ok && len(copied.Ratings) == 0 {
		copied.Ratings = existing.Ratings
	}
	f.movies[movie.ID] = &copied
	return nil
}

func (f *fakeStore) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	movie, ok := f.movies[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *movie
	return &copied, nil
}

func (f *fakeStore) AllMovies(ctx context.Context) ([]models.MovieSummary, error) {
	var out []models.MovieSummary
	for _, m := range f.movies {
		out = append(out, summary(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func summary(m *models.Movie) models.MovieSummary {
	return models.MovieSummary{
		ID: m.ID, Title: m.Title, PosterPath: m.PosterPath,
		ReleaseDate: m.ReleaseDate, Overview: m.Overview,
		Popularity: m.Popularity, VoteAverage: m.VoteAverage, VoteCount: m.VoteCount,
	}
}

func (f *fakeStore) MoviesMissingRating(ctx context.Context, provider models.RatingProvider) ([]models.Movie, error) {
	var out []models.Movie
	for _, m := range f.movies {
		if provider == models.ProviderIMDb && m.ImdbID == "" {
			continue
		}
		if provider == models.ProviderRottenTomatoes && m.Title == "" {
			continue
		}
		if m.RatingByProvider(provider) == 0 {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpsertRating(ctx context.Context, movieID int64, rating models.Rating) error {
	movie, ok := f.movies[movieID]
	if !ok {
		return models.ErrNotFound
	}
	kept := make([]models.Rating, 0, len(movie.Ratings)+1)
	for _, r := range movie.Ratings {
		if r.Provider != rating.Provider {
			kept = append(kept, r)
		}
	}
	movie.Ratings = append(kept, rating)
	return nil
}

func (f *fakeStore) MoviesPopularAbove(ctx context.Context, threshold float64) ([]models.MovieSummary, error) {
	var out []models.MovieSummary
	for _, m := range f.movies {
		if m.Popularity >= threshold {
			out = append(out, summary(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	return out, nil
}

func (f *fakeStore) TopRatedCandidates(ctx context.Context, minVotes int) ([]models.RatedMovie, error) {
	var out []models.RatedMovie
	for _, m := range f.movies {
		if m.VoteCount < minVotes {
			continue
		}
		out = append(out, models.RatedMovie{
			MovieSummary: summary(m),
			Runtime:      m.Runtime,
			Genres:       m.Genres,
			Ratings:      m.Ratings,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Genres(ctx context.Context) ([]models.Genre, error) {
	seen := make(map[int64]models.Genre)
	for _, m := range f.movies {
		for _, g := range m.Genres {
			seen[g.ID] = g
		}
	}
	var out []models.Genre
	for _, g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) PercentileOf(ctx context.Context, field models.StatField, pct float64) (float64, error) {
	values := f.fieldValues(field)
	if len(values) == 0 {
		return 0, nil
	}
	sort.Float64s(values)
	p := pct / 100
	if p <= 0 {
		return values[0], nil
	}
	if p >= 1 {
		return values[len(values)-1], nil
	}
	rank := p * float64(len(values)-1)
	lower := int(rank)
	frac := rank - float64(lower)
	if lower+1 >= len(values) {
		return values[lower], nil
	}
	return values[lower] + frac*(values[lower+1]-values[lower]), nil
}

func (f *fakeStore) AverageOf(ctx context.Context, field models.StatField) (float64, error) {
	values := f.fieldValues(field)
	if len(values) == 0 {
		return 0, nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

func (f *fakeStore) fieldValues(field models.StatField) []float64 {
	var values []float64
	for _, m := range f.movies {
		switch field {
		case models.FieldPopularity:
			values = append(values, m.Popularity)
		case models.FieldVoteAverage:
			values = append(values, m.VoteAverage)
		case models.FieldVoteCount:
			values = append(values, float64(m.VoteCount))
		}
	}
	return values
}

func (f *fakeStore) LastPage(ctx context.Context, category models.SyncCategory) (int, error) {
	return f.pages[category], nil
}

func (f *fakeStore) SetLastPage(ctx context.Context, category models.SyncCategory, page int) error {
	f.pages[category] = page
	return nil
}

func (f *fakeStore) UserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	user, ok := f.users[authID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) UpsertUser(ctx context.Context, user *models.User) error {
	copied := *user
	f.users[user.AuthID] = &copied
	return nil
}

func (f *fakeStore) edge(authID string, movieID int64) *models.Interaction {
	for _, e := range f.edges {
		if e.UserID == authID && e.MovieID == movieID {
			return e
		}
	}
	return nil
}

func (f *fakeStore) AddBookmark(ctx context.Context, authID string, movieID int64) error {
	e := f.edge(authID, movieID)
	if e == nil {
		e = &models.Interaction{UserID: authID, MovieID: movieID}
		f.edges = append(f.edges, e)
	}
	if !e.Bookmarked {
		e.Bookmarked = true
		e.Weight += models.BookmarkWeight
	}
	return nil
}

func (f *fakeStore) RemoveBookmark(ctx context.Context, authID string, movieID int64) error {
	e := f.edge(authID, movieID)
	if e == nil || !e.Bookmarked {
		return nil
	}
	e.Bookmarked = false
	e.Weight -= models.BookmarkWeight
	if e.Weight < 0 {
		e.Weight = 0
	}
	return nil
}

func (f *fakeStore) Watchlist(ctx context.Context, authID string) ([]int64, error) {
	var ids []int64
	for _, e := range f.edges {
		if e.UserID == authID && e.Bookmarked {
			ids = append(ids, e.MovieID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) RecordView(ctx context.Context, authID string, movieID int64) error {
	e := f.edge(authID, movieID)
	if e == nil {
		e = &models.Interaction{UserID: authID, MovieID: movieID}
		f.edges = append(f.edges, e)
	}
	e.Weight += models.ViewWeight
	return nil
}

func (f *fakeStore) interacted(authID string) map[int64]bool {
	out := make(map[int64]bool)
	for _, e := range f.edges {
		if e.UserID == authID && (e.Weight > 0 || e.Bookmarked) {
			out[e.MovieID] = true
		}
	}
	return out
}

func (f *fakeStore) SimilarUsers(ctx context.Context, authID string, limit int) ([]models.SimilarUser, error) {
	own := f.interacted(authID)
	shared := make(map[string]map[int64]bool)
	for _, e := range f.edges {
		if e.UserID == authID || e.Weight <= 0 || !own[e.MovieID] {
			continue
		}
		if shared[e.UserID] == nil {
			shared[e.UserID] = make(map[int64]bool)
		}
		shared[e.UserID][e.MovieID] = true
	}
	var out []models.SimilarUser
	for userID, movies := range shared {
		out = append(out, models.SimilarUser{UserID: userID, SharedCount: len(movies)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SharedCount != out[j].SharedCount {
			return out[i].SharedCount > out[j].SharedCount
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CandidateMovies(ctx context.Context, authID string, userIDs []string) ([]store.WeightedMovie, error) {
	own := f.interacted(authID)
	members := make(map[string]bool)
	for _, id := range userIDs {
		members[id] = true
	}
	weights := make(map[int64]float64)
	for _, e := range f.edges {
		if !members[e.UserID] || own[e.MovieID] || e.Weight <= 0 {
			continue
		}
		weights[e.MovieID] += e.Weight
	}
	var out []store.WeightedMovie
	for movieID, weight := range weights {
		movie, ok := f.movies[movieID]
		if !ok {
			continue
		}
		out = append(out, store.WeightedMovie{Movie: summary(movie), Weight: weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Movie.ID < out[j].Movie.ID
	})
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeSource is a counting MovieSource.
type fakeSource struct {
	movies     map[int64]*models.Movie
	pages      map[int][]models.Movie
	fetchCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		movies: make(map[int64]*models.Movie),
		pages:  make(map[int][]models.Movie),
	}
}

func (f *fakeSource) FetchMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	f.fetchCalls++
	movie, ok := f.movies[movieID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *movie
	return &copied, nil
}

func (f *fakeSource) FetchPopularPage(ctx context.Context, page int) ([]models.Movie, error) {
	return f.pages[page], nil
}

func (f *fakeSource) FetchTopRatedPage(ctx context.Context, page int) ([]models.Movie, error) {
	return f.pages[page], nil
}

// fakeIdentity returns a canned userinfo response.
type fakeIdentity struct {
	info *auth.UserInfo
	err  error
}

func (f *fakeIdentity) UserInfo(ctx context.Context, accessToken string) (*auth.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RequireCredits:            true,
		RequireTrailers:           true,
		RequireBackdrops:          true,
		PopularityPercentileStart: 90,
		PopularityPercentileFloor: 50,
		PopularityPercentileStep:  10,
		PopularMinResults:         10,
		VoteCountPercentile:       80,
		AdjustedScorePercentile:   90,
		IMDbBackfillBaseDelayMs:   0,
		RTBackfillBaseDelayMs:     0,
		PeakHourStart:             8,
		PeakHourEnd:               18,
	}
}

func completeMovie(id int64) *models.Movie {
	return &models.Movie{
		ID:          id,
		ImdbID:      "tt0137523",
		Title:       "Fight Club",
		Overview:    "An insomniac office worker...",
		ReleaseDate: "1999-10-15",
		Runtime:     139,
		Status:      "Released",
		Popularity:  61.4,
		VoteAverage: 8.4,
		VoteCount:   26280,
		PosterPath:  "/poster.jpg",
		Genres:      []models.Genre{{ID: 18, Name: "Drama"}},
		Backdrops:   []models.Backdrop{{FilePath: "/b.jpg", AspectRatio: 1.78}},
		Trailers:    []models.Video{{ID: "v1", Site: "YouTube", Type: "Trailer", Official: true}},
		Credits: &models.Credits{
			Cast: []models.CastMember{{ID: 819, Name: "Edward Norton"}},
			Crew: []models.CrewMember{{ID: 7467, Name: "David Fincher", Job: "Director"}},
		},
	}
}

var testLogger = utils.NewLogger("error")
