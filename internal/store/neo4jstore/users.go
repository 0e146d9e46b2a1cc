package neo4jstore

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/moviegraph/moviegraph/internal/models"
	"github.com/moviegraph/moviegraph/internal/store"
)

// UserByAuthID returns the user, or models.ErrNotFound.
func (s *Store) UserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId}) RETURN u`,
			map[string]any{"authId": authID})
		if err != nil {
			return nil, err
		}
		if !cursor.Next(ctx) {
			return (*models.User)(nil), cursor.Err()
		}
		node, _ := cursor.Record().Get("u")
		return nodeToUser(node.(neo4j.Node)), nil
	})
	if err != nil {
		return nil, storeErr("get user", err)
	}
	user := result.(*models.User)
	if user == nil {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func nodeToUser(n neo4j.Node) *models.User {
	user := &models.User{
		AuthID:        propString(n.Props, "auth0Id"),
		Email:         propString(n.Props, "email"),
		FullName:      propString(n.Props, "fullName"),
		Picture:       propString(n.Props, "profilePicture"),
		EmailVerified: propBool(n.Props, "emailVerified"),
		Role:          models.Role(propString(n.Props, "role")),
		Locale:        propString(n.Props, "language"),
	}
	if v, ok := n.Props["createdAt"].(time.Time); ok {
		user.CreatedAt = v
	}
	if v, ok := n.Props["updatedAt"].(time.Time); ok {
		user.UpdatedAt = v
	}
	return user
}

// UpsertUser creates or refreshes the user node keyed by auth subject id.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	if user == nil || user.AuthID == "" {
		return models.ErrValidation
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx,
			`MERGE (u:User {auth0Id: $authId})
			 ON CREATE SET u.createdAt = $now
			 SET u.email = $email, u.fullName = $fullName,
			     u.profilePicture = $profilePicture, u.emailVerified = $emailVerified,
			     u.role = $role, u.language = $language, u.updatedAt = $now`,
			map[string]any{
				"authId":         user.AuthID,
				"email":          user.Email,
				"fullName":       user.FullName,
				"profilePicture": user.Picture,
				"emailVerified":  user.EmailVerified,
				"role":           string(user.Role),
				"language":       user.Locale,
				"now":            time.Now(),
			})
		return nil, err
	})
	if err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

// AddBookmark marks the interaction edge bookmarked and adds the bookmark
// weight contribution. Idempotent on an already-bookmarked edge.
func (s *Store) AddBookmark(ctx context.Context, authID string, movieID int64) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId}), (m:Movie {id: $movieId})
			 MERGE (u)-[i:INTERACTED]->(m)
			 ON CREATE SET i.weight = 0.0, i.bookmarked = false, i.createdAt = $now
			 WITH i
			 SET i.weight = CASE WHEN i.bookmarked THEN i.weight ELSE i.weight + $delta END
			 SET i.bookmarked = true, i.updatedAt = $now`,
			map[string]any{
				"authId":  authID,
				"movieId": movieID,
				"delta":   models.BookmarkWeight,
				"now":     time.Now(),
			})
		return nil, err
	})
	if err != nil {
		return storeErr("add bookmark", err)
	}
	return nil
}

// RemoveBookmark clears the bookmark flag and subtracts its contribution,
// floored at zero. A no-op when the edge is absent or not bookmarked.
func (s *Store) RemoveBookmark(ctx context.Context, authID string, movieID int64) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId})-[i:INTERACTED]->(m:Movie {id: $movieId})
			 WHERE i.bookmarked
			 SET i.weight = CASE WHEN i.weight - $delta < 0 THEN 0.0 ELSE i.weight - $delta END
			 SET i.bookmarked = false, i.updatedAt = $now`,
			map[string]any{
				"authId":  authID,
				"movieId": movieID,
				"delta":   models.BookmarkWeight,
				"now":     time.Now(),
			})
		return nil, err
	})
	if err != nil {
		return storeErr("remove bookmark", err)
	}
	return nil
}

// RecordView adds the view weight contribution to the edge, creating it if
// needed.
func (s *Store) RecordView(ctx context.Context, authID string, movieID int64) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId}), (m:Movie {id: $movieId})
			 MERGE (u)-[i:INTERACTED]->(m)
			 ON CREATE SET i.weight = 0.0, i.bookmarked = false, i.createdAt = $now
			 WITH i
			 SET i.weight = i.weight + $delta, i.updatedAt = $now`,
			map[string]any{
				"authId":  authID,
				"movieId": movieID,
				"delta":   models.ViewWeight,
				"now":     time.Now(),
			})
		return nil, err
	})
	if err != nil {
		return storeErr("record view", err)
	}
	return nil
}

// Watchlist lists the movie ids the user has bookmarked, ascending.
func (s *Store) Watchlist(ctx context.Context, authID string) ([]int64, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId})-[i:INTERACTED {bookmarked: true}]->(m:Movie)
			 RETURN m.id AS id ORDER BY id`,
			map[string]any{"authId": authID})
		if err != nil {
			return nil, err
		}
		var ids []int64
		for cursor.Next(ctx) {
			value, _ := cursor.Record().Get("id")
			if id, ok := value.(int64); ok {
				ids = append(ids, id)
			}
		}
		return ids, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("watchlist", err)
	}
	return result.([]int64), nil
}

// SimilarUsers ranks other users by distinct shared movies, descending, with
// the user id as tie-break. Zero-weight edges do not count.
func (s *Store) SimilarUsers(ctx context.Context, authID string, limit int) ([]models.SimilarUser, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (u:User {auth0Id: $authId})-[i:INTERACTED]->(m:Movie)<-[j:INTERACTED]-(o:User)
			 WHERE (i.weight > 0 OR i.bookmarked) AND j.weight > 0
			 RETURN o.auth0Id AS userId, count(DISTINCT m) AS shared
			 ORDER BY shared DESC, userId ASC
			 LIMIT $limit`,
			map[string]any{"authId": authID, "limit": limit})
		if err != nil {
			return nil, err
		}
		var neighbors []models.SimilarUser
		for cursor.Next(ctx) {
			record := cursor.Record()
			userID, _ := record.Get("userId")
			shared, _ := record.Get("shared")
			neighbors = append(neighbors, models.SimilarUser{
				UserID:      userID.(string),
				SharedCount: int(shared.(int64)),
			})
		}
		return neighbors, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("similar users", err)
	}
	return result.([]models.SimilarUser), nil
}

// CandidateMovies sums edge weights per movie across the given users,
// excluding movies authID has already interacted with.
func (s *Store) CandidateMovies(ctx context.Context, authID string, userIDs []string) ([]store.WeightedMovie, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (o:User)-[j:INTERACTED]->(m:Movie)
			 WHERE o.auth0Id IN $userIds AND j.weight > 0
			   AND NOT EXISTS {
			     MATCH (me:User {auth0Id: $authId})-[k:INTERACTED]->(m)
			     WHERE k.weight > 0 OR k.bookmarked
			   }
			 WITH m, sum(j.weight) AS weight
			 RETURN m, weight
			 ORDER BY weight DESC, m.id ASC`,
			map[string]any{"authId": authID, "userIds": userIDs})
		if err != nil {
			return nil, err
		}
		var candidates []store.WeightedMovie
		for cursor.Next(ctx) {
			record := cursor.Record()
			node, _ := record.Get("m")
			weight, _ := record.Get("weight")
			candidates = append(candidates, store.WeightedMovie{
				Movie:  nodeToSummary(node.(neo4j.Node)),
				Weight: weight.(float64),
			})
		}
		return candidates, cursor.Err()
	})
	if err != nil {
		return nil, storeErr("candidate movies", err)
	}
	return result.([]store.WeightedMovie), nil
}
