// Package pgload populates an in-memory graph from PostgreSQL. It expects
// a vertex table (id, label, properties) and an edge table (id, label,
// out_id, in_id, properties) with JSONB properties, the shape produced by
// most relational exports of property graphs.
//
// JSON numbers decode as float64. Predicate matching widens numeric types,
// so traversals like has("age", 29) behave the same over loaded graphs.
package pgload

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wander-lang/wander/graph"
	"github.com/wander-lang/wander/internal/locale"
)

const (
	defaultVertexTable = "vertices"
	defaultEdgeTable   = "edges"
)

// Options name the tables to read and the logger the loader and the
// resulting graph report through.
type Options struct {
	VertexTable string
	EdgeTable   string
	Log         zerolog.Logger
}

func (o Options) vertexTable() string {
	if o.VertexTable == "" {
		return defaultVertexTable
	}
	return o.VertexTable
}

func (o Options) edgeTable() string {
	if o.EdgeTable == "" {
		return defaultEdgeTable
	}
	return o.EdgeTable
}

// Load reads both tables and returns the populated graph. Edges referring
// to vertices outside the vertex table fail the load.
func Load(ctx context.Context, pool *pgxpool.Pool, opts Options) (*graph.Graph, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}

	opts.Log.Debug().
		Str("vertex_table", opts.vertexTable()).
		Str("edge_table", opts.edgeTable()).
		Msg(locale.Message("pgload.loading", map[string]any{"Source": "postgres"}))

	g := graph.New(graph.WithLogger(opts.Log))

	vertices, err := loadVertices(ctx, pool, g, opts.vertexTable())
	if err != nil {
		return nil, err
	}
	edges, err := loadEdges(ctx, pool, g, opts.edgeTable())
	if err != nil {
		return nil, err
	}

	opts.Log.Info().
		Int("vertices", vertices).
		Int("edges", edges).
		Msg(locale.Message("pgload.loaded", map[string]any{"Source": "postgres"}))
	return g, nil
}

func loadVertices(ctx context.Context, pool *pgxpool.Pool, g *graph.Graph, table string) (int, error) {
	rows, err := pool.Query(ctx, vertexQuery(table))
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		var label string
		var raw []byte
		if err := rows.Scan(&id, &label, &raw); err != nil {
			return count, fmt.Errorf("scan %s: %w", table, err)
		}
		properties, err := decodeProperties(raw)
		if err != nil {
			return count, fmt.Errorf("vertex %d: %w", id, err)
		}
		if _, err := g.AddVertexWithID(id, label, properties); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

func loadEdges(ctx context.Context, pool *pgxpool.Pool, g *graph.Graph, table string) (int, error) {
	rows, err := pool.Query(ctx, edgeQuery(table))
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, outID, inID int64
		var label string
		var raw []byte
		if err := rows.Scan(&id, &label, &outID, &inID, &raw); err != nil {
			return count, fmt.Errorf("scan %s: %w", table, err)
		}
		properties, err := decodeProperties(raw)
		if err != nil {
			return count, fmt.Errorf("edge %d: %w", id, err)
		}
		out, ok := g.Vertex(outID)
		if !ok {
			return count, fmt.Errorf("edge %d references missing vertex %d", id, outID)
		}
		in, ok := g.Vertex(inID)
		if !ok {
			return count, fmt.Errorf("edge %d references missing vertex %d", id, inID)
		}
		if _, err := g.AddEdgeWithID(id, label, out, in, properties); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

func vertexQuery(table string) string {
	return fmt.Sprintf("SELECT id, label, properties FROM %s ORDER BY id",
		pgx.Identifier{table}.Sanitize())
}

func edgeQuery(table string) string {
	return fmt.Sprintf("SELECT id, label, out_id, in_id, properties FROM %s ORDER BY id",
		pgx.Identifier{table}.Sanitize())
}

func decodeProperties(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("invalid properties: %w", err)
	}
	return m, nil
}
