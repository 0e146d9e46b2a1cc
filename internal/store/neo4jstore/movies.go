package neo4jstore

import (
	"context"
	"errors"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/moviegraph/moviegraph/internal/models"
)

const movieNodeSet = `
	m.imdbId = $imdbId,
	m.title = $title,
	m.originalTitle = $originalTitle,
	m.originalLanguage = $originalLanguage,
	m.overview = $overview,
	m.tagline = $tagline,
	m.homepage = $homepage,
	m.releaseDate = $releaseDate,
	m.runtime = $runtime,
	m.status = $status,
	m.popularity = $popularity,
	m.voteAverage = $voteAverage,
	m.voteCount = $voteCount,
	m.posterPath = $posterPath,
	m.backdropPath = $backdropPath,
	m.budget = $budget,
	m.revenue = $revenue,
	m.adult = $adult,
	m.video = $video`

// SaveMovie upserts the movie node and replaces its relation fan-out in one
// transaction. Rating nodes are left alone unless the incoming movie carries
// ratings, so backfilled scores survive a refetch.
func (s *Store) SaveMovie(ctx context.Context, movie *models.Movie) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		if _, err := tx.Run(ctx,
			`MERGE (m:Movie {id: $id}) ON CREATE SET`+movieNodeSet+` ON MATCH SET`+movieNodeSet,
			movieParams(movie)); err != nil {
			return nil, err
		}
		if err := saveGenres(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveCompanies(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveCountries(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveLanguages(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveBackdrops(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveVideos(ctx, tx, movie); err != nil {
			return nil, err
		}
		if err := saveCredits(ctx, tx, movie); err != nil {
			return nil, err
		}
		if len(movie.Ratings) > 0 {
			if err := writeRatings(ctx, tx, movie.ID, movie.Ratings); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return storeErr("save movie", err)
	}
	return nil
}

func movieParams(m *models.Movie) map[string]any {
	return map[string]any{
		"id":               m.ID,
		"imdbId":           m.ImdbID,
		"title":            m.Title,
		"originalTitle":    m.OriginalTitle,
		"originalLanguage": m.OriginalLanguage,
		"overview":         m.Overview,
		"tagline":          m.Tagline,
		"homepage":         m.Homepage,
		"releaseDate":      m.ReleaseDate,
		"runtime":          m.Runtime,
		"status":           m.Status,
		"popularity":       m.Popularity,
		"voteAverage":      m.VoteAverage,
		"voteCount":        m.VoteCount,
		"posterPath":       m.PosterPath,
		"backdropPath":     m.BackdropPath,
		"budget":           m.Budget,
		"revenue":          m.Revenue,
		"adult":            m.Adult,
		"video":            m.Video,
	}
}

// detachThenAttach drops every relationship of the given type from the movie
// before the caller merges the fresh set, so edges removed upstream do not
// linger.
func detachThenAttach(ctx context.Context, tx neo4j.ManagedTransaction, movieID int64, rel, targetLabel string) error {
	_, err := tx.Run(ctx,
		`MATCH (m:Movie {id: $movieId})-[r:`+rel+`]->(:`+targetLabel+`) DELETE r`,
		map[string]any{"movieId": movieID})
	return err
}

func saveGenres(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_GENRE", "Genre"); err != nil {
		return err
	}
	for _, g := range movie.Genres {
		_, err := tx.Run(ctx,
			`MERGE (g:Genre {id: $id})
			 ON CREATE SET g.name = $name
			 ON MATCH SET g.name = $name
			 WITH g
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_GENRE]->(g)`,
			map[string]any{"id": g.ID, "name": g.Name, "movieId": movie.ID})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveCompanies(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "PRODUCED_BY", "Company"); err != nil {
		return err
	}
	for _, c := range movie.ProductionCompanies {
		_, err := tx.Run(ctx,
			`MERGE (c:Company {id: $id})
			 ON CREATE SET c.name = $name, c.logoPath = $logoPath, c.originCountry = $originCountry
			 ON MATCH SET c.name = $name, c.logoPath = $logoPath, c.originCountry = $originCountry
			 WITH c
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:PRODUCED_BY]->(c)`,
			map[string]any{
				"id": c.ID, "name": c.Name, "logoPath": c.LogoPath,
				"originCountry": c.OriginCountry, "movieId": movie.ID,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveCountries(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "PRODUCED_IN", "Country"); err != nil {
		return err
	}
	for _, c := range movie.ProductionCountries {
		_, err := tx.Run(ctx,
			`MERGE (c:Country {iso31661: $iso31661})
			 ON CREATE SET c.name = $name
			 ON MATCH SET c.name = $name
			 WITH c
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:PRODUCED_IN]->(c)`,
			map[string]any{"iso31661": c.ISO31661, "name": c.Name, "movieId": movie.ID})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveLanguages(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_LANGUAGE", "Language"); err != nil {
		return err
	}
	for _, l := range movie.SpokenLanguages {
		_, err := tx.Run(ctx,
			`MERGE (l:Language {iso6391: $iso6391})
			 ON CREATE SET l.name = $name, l.englishName = $englishName
			 ON MATCH SET l.name = $name, l.englishName = $englishName
			 WITH l
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_LANGUAGE]->(l)`,
			map[string]any{
				"iso6391": l.ISO6391, "name": l.Name,
				"englishName": l.EnglishName, "movieId": movie.ID,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveBackdrops(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_BACKDROP", "Backdrop"); err != nil {
		return err
	}
	for _, b := range movie.Backdrops {
		_, err := tx.Run(ctx,
			`MERGE (b:Backdrop {filePath: $filePath})
			 ON CREATE SET b.aspectRatio = $aspectRatio, b.width = $width, b.height = $height, b.voteAverage = $voteAverage
			 ON MATCH SET b.aspectRatio = $aspectRatio, b.width = $width, b.height = $height, b.voteAverage = $voteAverage
			 WITH b
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_BACKDROP]->(b)`,
			map[string]any{
				"filePath": b.FilePath, "aspectRatio": b.AspectRatio,
				"width": b.Width, "height": b.Height,
				"voteAverage": b.VoteAverage, "movieId": movie.ID,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveVideos(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_VIDEO", "Video"); err != nil {
		return err
	}
	for _, v := range movie.Trailers {
		_, err := tx.Run(ctx,
			`MERGE (v:Video {id: $id})
			 ON CREATE SET v.name = $name, v.key = $key, v.site = $site, v.type = $type,
			               v.size = $size, v.official = $official, v.publishedAt = $publishedAt
			 ON MATCH SET v.name = $name, v.key = $key, v.site = $site, v.type = $type,
			              v.size = $size, v.official = $official, v.publishedAt = $publishedAt
			 WITH v
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_VIDEO]->(v)`,
			map[string]any{
				"id": v.ID, "name": v.Name, "key": v.Key, "site": v.Site,
				"type": v.Type, "size": v.Size, "official": v.Official,
				"publishedAt": v.PublishedAt, "movieId": movie.ID,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func saveCredits(ctx context.Context, tx neo4j.ManagedTransaction, movie *models.Movie) error {
	if movie.Credits == nil {
		return nil
	}
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_CAST", "Cast"); err != nil {
		return err
	}
	if err := detachThenAttach(ctx, tx, movie.ID, "HAS_CREW", "Crew"); err != nil {
		return err
	}
	for _, c := range movie.Credits.Cast {
		_, err := tx.Run(ctx,
			`MERGE (c:Cast {id: $id, movieId: $movieId})
			 SET c.name = $name, c.character = $character, c.order = $order,
			     c.popularity = $popularity, c.profilePath = $profilePath
			 WITH c
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_CAST]->(c)`,
			map[string]any{
				"id": c.ID, "movieId": movie.ID, "name": c.Name,
				"character": c.Character, "order": c.Order,
				"popularity": c.Popularity, "profilePath": c.ProfilePath,
			})
		if err != nil {
			return err
		}
	}
	for _, c := range movie.Credits.Crew {
		_, err := tx.Run(ctx,
			`MERGE (c:Crew {id: $id, movieId: $movieId, job: $job})
			 SET c.name = $name, c.department = $department, c.profilePath = $profilePath
			 WITH c
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_CREW]->(c)`,
			map[string]any{
				"id": c.ID, "movieId": movie.ID, "job": c.Job, "name": c.Name,
				"department": c.Department, "profilePath": c.ProfilePath,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// MovieByID loads the movie with its full relation fan-out in one query.
func (s *Store) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (m:Movie {id: $id})
			 OPTIONAL MATCH (m)-[:HAS_GENRE]->(g:Genre)
			 OPTIONAL MATCH (m)-[:PRODUCED_BY]->(c:Company)
			 OPTIONAL MATCH (m)-[:PRODUCED_IN]->(pc:Country)
			 OPTIONAL MATCH (m)-[:HAS_LANGUAGE]->(sl:Language)
			 OPTIONAL MATCH (m)-[:HAS_BACKDROP]->(b:Backdrop)
			 OPTIONAL MATCH (m)-[:HAS_VIDEO]->(v:Video)
			 OPTIONAL MATCH (m)-[:HAS_CAST]->(cast:Cast)
			 OPTIONAL MATCH (m)-[:HAS_CREW]->(crew:Crew)
			 OPTIONAL MATCH (m)-[:HAS_RATING]->(r:Rating)
			 RETURN m,
			        COLLECT(DISTINCT g) AS genres,
			        COLLECT(DISTINCT c) AS companies,
			        COLLECT(DISTINCT pc) AS countries,
			        COLLECT(DISTINCT sl) AS languages,
			        COLLECT(DISTINCT b) AS backdrops,
			        COLLECT(DISTINCT v) AS videos,
			        COLLECT(DISTINCT cast) AS castMembers,
			        COLLECT(DISTINCT crew) AS crewMembers,
			        COLLECT(DISTINCT r) AS ratings`,
			map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !cursor.Next(ctx) {
			if err := cursor.Err(); err != nil {
				return nil, err
			}
			return (*models.Movie)(nil), nil
		}
		return recordToMovie(cursor.Record()), nil
	})
	if err != nil {
		return nil, storeErr("get movie", err)
	}
	movie := result.(*models.Movie)
	if movie == nil {
		return nil, models.ErrNotFound
	}
	return movie, nil
}

func recordToMovie(record *neo4j.Record) *models.Movie {
	node, _ := record.Get("m")
	movie := nodeToMovie(node.(neo4j.Node))

	genres, _ := record.Get("genres")
	for _, n := range nodeList(genres) {
		movie.Genres = append(movie.Genres, models.Genre{
			ID:   propInt(n.Props, "id"),
			Name: propString(n.Props, "name"),
		})
	}
	companies, _ := record.Get("companies")
	for _, n := range nodeList(companies) {
		movie.ProductionCompanies = append(movie.ProductionCompanies, models.ProductionCompany{
			ID:            propInt(n.Props, "id"),
			Name:          propString(n.Props, "name"),
			LogoPath:      propString(n.Props, "logoPath"),
			OriginCountry: propString(n.Props, "originCountry"),
		})
	}
	countries, _ := record.Get("countries")
	for _, n := range nodeList(countries) {
		movie.ProductionCountries = append(movie.ProductionCountries, models.ProductionCountry{
			ISO31661: propString(n.Props, "iso31661"),
			Name:     propString(n.Props, "name"),
		})
	}
	languages, _ := record.Get("languages")
	for _, n := range nodeList(languages) {
		movie.SpokenLanguages = append(movie.SpokenLanguages, models.SpokenLanguage{
			ISO6391:     propString(n.Props, "iso6391"),
			Name:        propString(n.Props, "name"),
			EnglishName: propString(n.Props, "englishName"),
		})
	}
	backdrops, _ := record.Get("backdrops")
	for _, n := range nodeList(backdrops) {
		movie.Backdrops = append(movie.Backdrops, models.Backdrop{
			FilePath:    propString(n.Props, "filePath"),
			AspectRatio: propFloat(n.Props, "aspectRatio"),
			Width:       int(propInt(n.Props, "width")),
			Height:      int(propInt(n.Props, "height")),
			VoteAverage: propFloat(n.Props, "voteAverage"),
		})
	}
	videos, _ := record.Get("videos")
	for _, n := range nodeList(videos) {
		movie.Trailers = append(movie.Trailers, models.Video{
			ID:          propString(n.Props, "id"),
			Name:        propString(n.Props, "name"),
			Key:         propString(n.Props, "key"),
			Site:        propString(n.Props, "site"),
			Type:        propString(n.Props, "type"),
			Size:        int(propInt(n.Props, "size")),
			Official:    propBool(n.Props, "official"),
			PublishedAt: propString(n.Props, "publishedAt"),
		})
	}

	castNodes, _ := record.Get("castMembers")
	crewNodes, _ := record.Get("crewMembers")
	cast := nodeList(castNodes)
	crew := nodeList(crewNodes)
	if len(cast) > 0 || len(crew) > 0 {
		credits := &models.Credits{}
		for _, n := range cast {
			credits.Cast = append(credits.Cast, models.CastMember{
				ID:          propInt(n.Props, "id"),
				Name:        propString(n.Props, "name"),
				Character:   propString(n.Props, "character"),
				Order:       int(propInt(n.Props, "order")),
				Popularity:  propFloat(n.Props, "popularity"),
				ProfilePath: propString(n.Props, "profilePath"),
			})
		}
		sort.SliceStable(credits.Cast, func(i, j int) bool {
			return credits.Cast[i].Popularity > credits.Cast[j].Popularity
		})
		for _, n := range crew {
			credits.Crew = append(credits.Crew, models.CrewMember{
				ID:          propInt(n.Props, "id"),
				Name:        propString(n.Props, "name"),
				Job:         propString(n.Props, "job"),
				Department:  propString(n.Props, "department"),
				ProfilePath: propString(n.Props, "profilePath"),
			})
		}
		movie.Credits = credits
	}

	ratings, _ := record.Get("ratings")
	movie.Ratings = nodesToRatings(nodeList(ratings))
	return movie
}

func nodeToMovie(n neo4j.Node) *models.Movie {
	return &models.Movie{
		ID:               propInt(n.Props, "id"),
		ImdbID:           propString(n.Props, "imdbId"),
		Title:            propString(n.Props, "title"),
		OriginalTitle:    propString(n.Props, "originalTitle"),
		OriginalLanguage: propString(n.Props, "originalLanguage"),
		Overview:         propString(n.Props, "overview"),
		Tagline:          propString(n.Props, "tagline"),
		Homepage:         propString(n.Props, "homepage"),
		ReleaseDate:      propString(n.Props, "releaseDate"),
		Runtime:          int(propInt(n.Props, "runtime")),
		Status:           propString(n.Props, "status"),
		Popularity:       propFloat(n.Props, "popularity"),
		VoteAverage:      propFloat(n.Props, "voteAverage"),
		VoteCount:        int(propInt(n.Props, "voteCount")),
		PosterPath:       propString(n.Props, "posterPath"),
		BackdropPath:     propString(n.Props, "backdropPath"),
		Budget:           propInt(n.Props, "budget"),
		Revenue:          propInt(n.Props, "revenue"),
		Adult:            propBool(n.Props, "adult"),
		Video:            propBool(n.Props, "video"),
	}
}

func nodeToSummary(n neo4j.Node) models.MovieSummary {
	return models.MovieSummary{
		ID:          propInt(n.Props, "id"),
		Title:       propString(n.Props, "title"),
		PosterPath:  propString(n.Props, "posterPath"),
		ReleaseDate: propString(n.Props, "releaseDate"),
		Overview:    propString(n.Props, "overview"),
		Popularity:  propFloat(n.Props, "popularity"),
		VoteAverage: propFloat(n.Props, "voteAverage"),
		VoteCount:   int(propInt(n.Props, "voteCount")),
	}
}

func nodesToRatings(nodes []neo4j.Node) []models.Rating {
	var ratings []models.Rating
	for _, n := range nodes {
		ratings = append(ratings, models.Rating{
			Provider: models.RatingProvider(propString(n.Props, "provider")),
			Score:    propFloat(n.Props, "score"),
		})
	}
	return ratings
}

// AllMovies returns essential fields for every stored movie.
func (s *Store) AllMovies(ctx context.Context) ([]models.MovieSummary, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx, `MATCH (m:Movie) RETURN m ORDER BY m.id`, nil)
		if err != nil {
			return nil, err
		}
		var movies []models.MovieSummary
		for cursor.Next(ctx) {
			node, _ := cursor.Record().Get("m")
			movies = append(movies, nodeToSummary(node.(neo4j.Node)))
		}
		return movies, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("all movies", err)
	}
	return result.([]models.MovieSummary), nil
}

// MoviesMissingRating returns movies the provider has not scored yet. A
// stored score of 0 counts as missing. Movies lacking the identifier the
// provider needs (imdb id, title) are skipped.
func (s *Store) MoviesMissingRating(ctx context.Context, provider models.RatingProvider) ([]models.Movie, error) {
	identifierClause := `m.title IS NOT NULL AND m.title <> ''`
	if provider == models.ProviderIMDb {
		identifierClause = `m.imdbId IS NOT NULL AND m.imdbId <> ''`
	}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (m:Movie)
			 WHERE `+identifierClause+`
			 OPTIONAL MATCH (m)-[:HAS_RATING]->(r:Rating {provider: $provider})
			 WITH m, r
			 WHERE r IS NULL OR r.score = 0
			 RETURN m ORDER BY m.id`,
			map[string]any{"provider": string(provider)})
		if err != nil {
			return nil, err
		}
		var movies []models.Movie
		for cursor.Next(ctx) {
			node, _ := cursor.Record().Get("m")
			movies = append(movies, *nodeToMovie(node.(neo4j.Node)))
		}
		return movies, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("movies missing rating", err)
	}
	return result.([]models.Movie), nil
}

// UpsertRating merges one provider's rating node without touching the other
// providers' nodes. Returns models.ErrNotFound when the movie is not stored.
func (s *Store) UpsertRating(ctx context.Context, movieID int64, rating models.Rating) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (m:Movie {id: $movieId}) RETURN m.id`,
			map[string]any{"movieId": movieID})
		if err != nil {
			return nil, err
		}
		if !cursor.Next(ctx) {
			return nil, models.ErrNotFound
		}
		_, err = tx.Run(ctx,
			`MERGE (r:Rating {provider: $provider, movieId: $movieId})
			 SET r.score = $score
			 WITH r
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_RATING]->(r)`,
			map[string]any{
				"provider": string(rating.Provider),
				"movieId":  movieID,
				"score":    rating.Score,
			})
		return nil, err
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return storeErr("upsert rating", err)
	}
	return nil
}

// writeRatings detaches and deletes the movie's rating nodes, then merges the
// new set. Rating nodes are keyed by (movieId, provider) so a later write for
// the same provider wins.
func writeRatings(ctx context.Context, tx neo4j.ManagedTransaction, movieID int64, ratings []models.Rating) error {
	_, err := tx.Run(ctx,
		`MATCH (m:Movie {id: $movieId})-[:HAS_RATING]->(r:Rating) DETACH DELETE r`,
		map[string]any{"movieId": movieID})
	if err != nil {
		return err
	}
	for _, r := range ratings {
		_, err := tx.Run(ctx,
			`MERGE (r:Rating {provider: $provider, movieId: $movieId})
			 SET r.score = $score
			 WITH r
			 MATCH (m:Movie {id: $movieId})
			 MERGE (m)-[:HAS_RATING]->(r)`,
			map[string]any{
				"provider": string(r.Provider),
				"movieId":  movieID,
				"score":    r.Score,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// MoviesPopularAbove returns summaries of movies at or above the popularity
// threshold, most popular first.
func (s *Store) MoviesPopularAbove(ctx context.Context, threshold float64) ([]models.MovieSummary, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (m:Movie)
			 WHERE m.popularity >= $threshold
			 RETURN m ORDER BY m.popularity DESC`,
			map[string]any{"threshold": threshold})
		if err != nil {
			return nil, err
		}
		var movies []models.MovieSummary
		for cursor.Next(ctx) {
			node, _ := cursor.Record().Get("m")
			movies = append(movies, nodeToSummary(node.(neo4j.Node)))
		}
		return movies, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("popular movies", err)
	}
	return result.([]models.MovieSummary), nil
}

// TopRatedCandidates returns movies meeting the vote-count floor with their
// genres and per-provider ratings attached.
func (s *Store) TopRatedCandidates(ctx context.Context, minVotes int) ([]models.RatedMovie, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (m:Movie)
			 WHERE m.voteCount >= $minVotes
			 OPTIONAL MATCH (m)-[:HAS_GENRE]->(g:Genre)
			 OPTIONAL MATCH (m)-[:HAS_RATING]->(r:Rating)
			 RETURN m,
			        COLLECT(DISTINCT g) AS genres,
			        COLLECT(DISTINCT r) AS ratings
			 ORDER BY m.voteAverage DESC, m.voteCount DESC`,
			map[string]any{"minVotes": minVotes})
		if err != nil {
			return nil, err
		}
		var movies []models.RatedMovie
		for cursor.Next(ctx) {
			record := cursor.Record()
			node, _ := record.Get("m")
			movieNode := node.(neo4j.Node)

			rated := models.RatedMovie{
				MovieSummary: nodeToSummary(movieNode),
				Runtime:      int(propInt(movieNode.Props, "runtime")),
			}
			genres, _ := record.Get("genres")
			for _, n := range nodeList(genres) {
				rated.Genres = append(rated.Genres, models.Genre{
					ID:   propInt(n.Props, "id"),
					Name: propString(n.Props, "name"),
				})
			}
			ratings, _ := record.Get("ratings")
			rated.Ratings = nodesToRatings(nodeList(ratings))
			movies = append(movies, rated)
		}
		return movies, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("top rated candidates", err)
	}
	return result.([]models.RatedMovie), nil
}

// Genres lists every genre node, ordered by id.
func (s *Store) Genres(ctx context.Context) ([]models.Genre, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx, `MATCH (g:Genre) RETURN g ORDER BY g.id`, nil)
		if err != nil {
			return nil, err
		}
		var genres []models.Genre
		for cursor.Next(ctx) {
			node, _ := cursor.Record().Get("g")
			n := node.(neo4j.Node)
			genres = append(genres, models.Genre{
				ID:   propInt(n.Props, "id"),
				Name: propString(n.Props, "name"),
			})
		}
		return genres, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("genres", err)
	}
	return result.([]models.Genre), nil
}
