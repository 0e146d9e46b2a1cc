package boltstore

import (
	"context"
	"math"
	"sort"

	"github.com/moviegraph/moviegraph/internal/models"
)

// PercentileOf computes the pct-th percentile of the field with linear
// interpolation, matching Neo4j's percentileCont so both backends agree.
// An empty store yields 0.
func (s *Store) PercentileOf(ctx context.Context, field models.StatField, pct float64) (float64, error) {
	values, err := s.fieldValues(field)
	if err != nil {
		return 0, err
	}
	return percentileCont(values, pct/100), nil
}

// AverageOf computes the mean of the field, 0 when no movies are stored.
func (s *Store) AverageOf(ctx context.Context, field models.StatField) (float64, error) {
	values, err := s.fieldValues(field)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

func (s *Store) fieldValues(field models.StatField) ([]float64, error) {
	movies, err := s.allMovies()
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(movies))
	for _, m := range movies {
		switch field {
		case models.FieldPopularity:
			values = append(values, m.Popularity)
		case models.FieldVoteAverage:
			values = append(values, m.VoteAverage)
		case models.FieldVoteCount:
			values = append(values, float64(m.VoteCount))
		default:
			return nil, models.ErrValidation
		}
	}
	return values, nil
}

// percentileCont interpolates between the two closest ranks, p in [0,1].
func percentileCont(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
