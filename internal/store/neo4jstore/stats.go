package neo4jstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/moviegraph/moviegraph/internal/models"
)

func statProperty(field models.StatField) (string, error) {
	switch field {
	case models.FieldPopularity:
		return "popularity", nil
	case models.FieldVoteAverage:
		return "voteAverage", nil
	case models.FieldVoteCount:
		return "voteCount", nil
	}
	return "", models.ErrValidation
}

// PercentileOf runs percentileCont over the field. Neo4j returns null on an
// empty catalog, which maps to 0.
func (s *Store) PercentileOf(ctx context.Context, field models.StatField, pct float64) (float64, error) {
	prop, err := statProperty(field)
	if err != nil {
		return 0, err
	}
	return s.scalarQuery(ctx, "percentile",
		`MATCH (m:Movie) RETURN percentileCont(m.`+prop+`, $p) AS value`,
		map[string]any{"p": pct / 100})
}

// AverageOf runs avg over the field, 0 on an empty catalog.
func (s *Store) AverageOf(ctx context.Context, field models.StatField) (float64, error) {
	prop, err := statProperty(field)
	if err != nil {
		return 0, err
	}
	return s.scalarQuery(ctx, "average",
		`MATCH (m:Movie) RETURN avg(m.`+prop+`) AS value`, nil)
}

func (s *Store) scalarQuery(ctx context.Context, op, query string, params map[string]any) (float64, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cursor, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		if !cursor.Next(ctx) {
			return float64(0), cursor.Err()
		}
		value, _ := cursor.Record().Get("value")
		switch v := value.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
		return float64(0), nil
	})
	if err != nil {
		return 0, storeErr(op, err)
	}
	return result.(float64), nil
}
