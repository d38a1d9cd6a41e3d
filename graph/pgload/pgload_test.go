package pgload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableDefaults(t *testing.T) {
	var opts Options
	require.Equal(t, "vertices", opts.vertexTable())
	require.Equal(t, "edges", opts.edgeTable())

	opts = Options{VertexTable: "nodes", EdgeTable: "links"}
	require.Equal(t, "nodes", opts.vertexTable())
	require.Equal(t, "links", opts.edgeTable())
}

func TestQueriesQuoteIdentifiers(t *testing.T) {
	require.Equal(t,
		`SELECT id, label, properties FROM "vertices" ORDER BY id`,
		vertexQuery("vertices"))
	require.Equal(t,
		`SELECT id, label, out_id, in_id, properties FROM "edges" ORDER BY id`,
		edgeQuery("edges"))

	// Embedded quotes cannot break out of the identifier.
	require.Equal(t,
		`SELECT id, label, properties FROM "weird ""table""" ORDER BY id`,
		vertexQuery(`weird "table"`))
}

func TestDecodeProperties(t *testing.T) {
	m, err := decodeProperties([]byte(`{"name": "marko", "age": 29}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "marko", "age": float64(29)}, m)

	m, err = decodeProperties(nil)
	require.NoError(t, err)
	require.Nil(t, m)

	_, err = decodeProperties([]byte(`[1, 2]`))
	require.ErrorContains(t, err, "invalid properties")
}
