package models

// RatingProvider identifies where a rating came from. At most one rating per
// (movie, provider) pair exists; updates replace.
type RatingProvider string

const (
	ProviderTMDB           RatingProvider = "TMDB"
	ProviderIMDb           RatingProvider = "IMDb"
	ProviderRottenTomatoes RatingProvider = "RottenTomatoes"
)

// SyncCategory names a bulk-sync cursor in the pagination tracker.
type SyncCategory string

const (
	CategoryPopular  SyncCategory = "popular"
	CategoryTopRated SyncCategory = "top-rated"
)

// RankMode selects how the top-rated listing orders movies.
type RankMode string

const (
	// RankByVoteAverage orders purely by the movie source's own vote average.
	RankByVoteAverage RankMode = "vote-average"
	// RankByIMDb and RankByRottenTomatoes order by that provider's score,
	// falling back to the vote average for movies the provider has not rated.
	RankByIMDb           RankMode = "imdb"
	RankByRottenTomatoes RankMode = "rotten-tomatoes"
)

// StatField names a numeric movie field the store can aggregate over.
type StatField string

const (
	FieldPopularity  StatField = "popularity"
	FieldVoteAverage StatField = "voteAverage"
	FieldVoteCount   StatField = "voteCount"
)
