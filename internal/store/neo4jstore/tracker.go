package neo4jstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/moviegraph/moviegraph/internal/models"
)

// LastPage returns the last externally-fetched page for the category, 0 when
// the category has never been synced.
func (s *Store) LastPage(ctx context.Context, category models.SyncCategory) (int, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx,
			`MATCH (p:PaginationTracker {category: $category})
			 RETURN p.lastFetchedPage AS lastFetchedPage`,
			map[string]any{"category": string(category)})
		if err != nil {
			return nil, err
		}
		if !cursor.Next(ctx) {
			return 0, cursor.Err()
		}
		value, _ := cursor.Record().Get("lastFetchedPage")
		page, _ := value.(int64)
		return int(page), nil
	})
	if err != nil {
		return 0, storeErr("get page cursor", err)
	}
	return result.(int), nil
}

// SetLastPage records the page just fetched for the category.
func (s *Store) SetLastPage(ctx context.Context, category models.SyncCategory, page int) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx,
			`MERGE (p:PaginationTracker {category: $category})
			 ON CREATE SET p.lastFetchedPage = $page
			 ON MATCH SET p.lastFetchedPage = $page`,
			map[string]any{"category": string(category), "page": page})
		return nil, err
	})
	if err != nil {
		return storeErr("set page cursor", err)
	}
	return nil
}
