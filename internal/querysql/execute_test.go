package querysql_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/querysql"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/testutil"
)

// openSeededStore writes a small tree to a file-backed SQLite store.
func openSeededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	nodes := []struct {
		path, nodeType string
		props          []ir.Property
	}{
		{"/docs/b", "doc", []ir.Property{testutil.Str("title", "Goodbye World")}},
		{"/docs/a", "doc", []ir.Property{testutil.Str("title", "Hello World"), testutil.Str("body", "greetings")}},
		{"/docs/c", "note", []ir.Property{testutil.Str("title", "Hello again")}},
		{"/docs/B", "doc", []ir.Property{testutil.Str("body", "hello")}},
	}
	for _, n := range nodes {
		require.NoError(t, s.PutNode(ctx, n.path, n.nodeType, n.props))
	}
	return s
}

func TestCompile_ExecutesAgainstStore(t *testing.T) {
	s := openSeededStore(t)
	c := querysql.NewSQLCompiler()
	ctx := context.Background()

	tests := []struct {
		name  string
		query queryir.Query
		want  []string
	}{
		{
			name:  "type only",
			query: queryir.Select{From: "doc"},
			want:  []string{"/docs/B", "/docs/a", "/docs/b"},
		},
		{
			name:  "not null",
			query: queryir.Select{From: "doc", Filter: queryir.PropertyNotNull{Name: "title"}},
			want:  []string{"/docs/a", "/docs/b"},
		},
		{
			name:  "token in property",
			query: queryir.Select{Filter: queryir.HasToken{Property: "title", Token: "hello"}},
			want:  []string{"/docs/a", "/docs/c"},
		},
		{
			name:  "token in any property",
			query: queryir.Select{From: "doc", Filter: queryir.HasToken{Token: "hello"}},
			want:  []string{"/docs/B", "/docs/a"},
		},
		{
			name:  "prefix",
			query: queryir.Select{Filter: queryir.HasTokenPrefix{Property: "title", Prefix: "good"}},
			want:  []string{"/docs/b"},
		},
		{
			name: "and or",
			query: queryir.Select{Filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.HasToken{Property: "title", Token: "world"},
				queryir.Or{Predicates: []queryir.Predicate{
					queryir.PropertyNotNull{Name: "body"},
					queryir.HasTokenPrefix{Prefix: "goodb"},
				}},
			}}},
			want: []string{"/docs/a", "/docs/b"},
		},
		{
			name:  "empty or",
			query: queryir.Select{Filter: queryir.Or{}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := c.Compile(tt.query)
			require.NoError(t, err)
			paths, err := s.QueryPaths(ctx, sql, params...)
			require.NoError(t, err, sql)
			if tt.want == nil {
				assert.Empty(t, paths)
			} else {
				assert.Equal(t, tt.want, paths)
			}

			countSQL, countParams, err := c.CompileCount(tt.query)
			require.NoError(t, err)
			n, err := s.QueryCount(ctx, countSQL, countParams...)
			require.NoError(t, err, countSQL)
			assert.Equal(t, int64(len(tt.want)), n)
		})
	}
}
