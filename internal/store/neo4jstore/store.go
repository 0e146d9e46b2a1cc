// Package neo4jstore implements the store ports on a Neo4j graph. Movies,
// users, genres and ratings are nodes; relations and interaction edges are
// relationships. The embedded boltstore backend is the default; this one is
// selected with STORE_BACKEND=neo4j.
package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/moviegraph/moviegraph/internal/models"
)

// Store talks to a Neo4j instance through the official driver. All methods
// open a short-lived session and run inside a managed transaction.
type Store struct {
	driver neo4j.DriverWithContext
}

// Open connects to the Neo4j instance and verifies connectivity before
// returning, so a bad URI or credential fails at startup rather than on the
// first query.
func Open(ctx context.Context, uri, username, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, storeErr("connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, storeErr("verify connectivity", err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStore, err)
}

// Property readers for records coming back from the driver. Neo4j integers
// arrive as int64 and absent properties as nil, so every read goes through
// one of these.

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propInt(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propBool(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func nodeList(value any) []neo4j.Node {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	nodes := make([]neo4j.Node, 0, len(raw))
	for _, item := range raw {
		if n, ok := item.(neo4j.Node); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
