package models

// Movie is a cached movie record keyed by its TMDB id. Relations are stored
// alongside the node and replaced wholesale on every save, so a re-fetch never
// leaves stale genre/backdrop/video edges behind.
type Movie struct {
	ID     int64  `boltholdKey:"ID" json:"id"`
	ImdbID string `boltholdIndex:"ImdbID" json:"imdb_id,omitempty"`

	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime"`
	Status           string  `json:"status"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	Budget           int64   `json:"budget,omitempty"`
	Revenue          int64   `json:"revenue,omitempty"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`

	Genres              []Genre             `json:"genres,omitempty"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	ProductionCountries []ProductionCountry `json:"production_countries,omitempty"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages,omitempty"`
	Backdrops           []Backdrop          `json:"backdrops,omitempty"`
	Trailers            []Video             `json:"trailers,omitempty"`
	Credits             *Credits            `json:"credits,omitempty"`
	Ratings             []Rating            `json:"ratings,omitempty"`
}

// Genre is shared across movies (many-to-many).
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductionCompany struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path,omitempty"`
	OriginCountry string `json:"origin_country,omitempty"`
}

type ProductionCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

type SpokenLanguage struct {
	ISO6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name,omitempty"`
}

// Backdrop is one backdrop image, ranked at fetch time.
type Backdrop struct {
	FilePath    string  `json:"file_path"`
	AspectRatio float64 `json:"aspect_ratio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
}

// Video is a trailer or teaser attached to a movie.
type Video struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at,omitempty"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character,omitempty"`
	Order       int     `json:"order"`
	Popularity  float64 `json:"popularity"`
	ProfilePath string  `json:"profile_path,omitempty"`
}

type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Rating is one provider's score for a movie. A score of 0 means "unknown":
// threshold queries and the backfill jobs treat it the same as a missing row.
type Rating struct {
	Provider RatingProvider `json:"provider"`
	Score    float64        `json:"score"`
}

// RatingByProvider returns the movie's rating from the given provider, or 0 if
// the provider has none.
func (m *Movie) RatingByProvider(provider RatingProvider) float64 {
	for _, r := range m.Ratings {
		if r.Provider == provider {
			return r.Score
		}
	}
	return 0
}

// MovieSummary carries the essential fields used by listings and the
// completion sweep, without the relation fan-out.
type MovieSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// RatedMovie pairs a movie summary with its per-provider ratings for the
// top-rated listing.
type RatedMovie struct {
	MovieSummary
	Runtime int      `json:"runtime"`
	Genres  []Genre  `json:"genres,omitempty"`
	Ratings []Rating `json:"ratings"`
}

// ScoredMovie is a recommendation result. Score is relative: the strongest
// candidate in the full result set scores 100.
type ScoredMovie struct {
	MovieSummary
	Score float64 `json:"score"`
}
