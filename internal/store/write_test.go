package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/ir"
)

func TestPutNode_CreatesAncestors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a/b/c", "doc", str("title", "x"))

	paths, err := s.AllPaths(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/a", "/a/b", "/a/b/c"}, paths)

	parent, err := s.ReadNode(ctx, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, "", parent.Type)
	assert.Equal(t, "/a", parent.Parent)
	assert.Equal(t, "b", parent.Name)
	assert.Empty(t, parent.Properties)

	root, err := s.ReadNode(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "", root.Parent)
}

func TestPutNode_SequentialIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a", "doc")
	putTestNode(t, s, "/b", "doc")

	root, err := s.ReadNode(ctx, "/")
	require.NoError(t, err)
	a, err := s.ReadNode(ctx, "/a")
	require.NoError(t, err)
	b, err := s.ReadNode(ctx, "/b")
	require.NoError(t, err)

	assert.Equal(t, "node-0001", root.ID)
	assert.Equal(t, "node-0002", a.ID)
	assert.Equal(t, "node-0003", b.ID)
}

func TestPutNode_DefaultUUIDv7(t *testing.T) {
	s, err := Open(t.TempDir() + "/ids.db")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.PutNode(ctx, "/a", "doc", nil))
	n, err := s.ReadNode(ctx, "/a")
	require.NoError(t, err)
	assert.Len(t, n.ID, 36)
	assert.Equal(t, byte('7'), n.ID[14], "version nibble")
}

func TestPutNode_ReplaceKeepsID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a", "doc", str("title", "old"))
	before, err := s.ReadNode(ctx, "/a")
	require.NoError(t, err)

	putTestNode(t, s, "/a", "note", str("body", "new"))
	after, err := s.ReadNode(ctx, "/a")
	require.NoError(t, err)

	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "note", after.Type)
	assert.Equal(t, []ir.Property{str("body", "new")}, after.Properties)
	assert.NotEqual(t, before.ContentHash, after.ContentHash)

	toks, err := s.Tokens(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"body": {"new"}}, toks)
}

func TestPutNode_UnchangedContentSkipsReindex(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a", "doc", str("title", "hello"))

	// Tamper with the token table; an unchanged rewrite must not touch it.
	_, err := s.db.Exec(`UPDATE tokens SET token = 'tampered' WHERE node_path = '/a'`)
	require.NoError(t, err)

	putTestNode(t, s, "/a", "doc", str("title", "hello"))
	toks, err := s.Tokens(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"tampered"}, toks["title"])

	putTestNode(t, s, "/a", "doc", str("title", "hello again"))
	toks, err = s.Tokens(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "again"}, toks["title"])
}

func TestPutNode_TokensInTextOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a", "doc",
		str("title", "The Go Programming Language"),
		strs("tags", "Systems", "open-source"),
		num("year", 2015),
	)

	toks, err := s.Tokens(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"tags":  {"systems", "open", "source"},
		"title": {"the", "go", "programming", "language"},
		"year":  {"2015"},
	}, toks)
}

func TestPutNode_PropertyValuesRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	props := []ir.Property{
		str("title", "café"),
		num("count", 1<<60),
		{Name: "draft", Value: ir.IRBool(true)},
		strs("tags", "a", "b"),
	}
	putTestNode(t, s, "/a", "doc", props...)

	n, err := s.ReadNode(ctx, "/a")
	require.NoError(t, err)
	ir.SortProperties(props)
	assert.Equal(t, props, n.Properties)

	isArray, err := s.QueryCount(ctx, `SELECT is_array FROM properties WHERE node_path = '/a' AND name = 'tags'`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), isArray)
}

func TestPutNode_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		path  string
		props []ir.Property
	}{
		{"relative path", "a/b", nil},
		{"unclean path", "/a/../b", nil},
		{"trailing slash", "/a/", nil},
		{"null value", "/a", []ir.Property{{Name: "x", Value: ir.IRNull{}}}},
		{"nil value", "/a", []ir.Property{{Name: "x"}}},
		{"object value", "/a", []ir.Property{{Name: "x", Value: ir.IRObject{"k": ir.IRInt(1)}}}},
		{"nested array", "/a", []ir.Property{{Name: "x", Value: ir.IRArray{ir.IRArray{}}}}},
		{"duplicate name", "/a", []ir.Property{str("x", "1"), str("x", "2")}},
		{"empty name", "/a", []ir.Property{str("", "1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.PutNode(ctx, tt.path, "doc", tt.props)
			assert.Error(t, err)
		})
	}

	paths, err := s.AllPaths(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, paths, "rejected writes leave nothing behind")
}

func TestDeleteNode_RemovesSubtree(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a/b", "doc", str("title", "x"))
	putTestNode(t, s, "/a/c", "doc")
	putTestNode(t, s, "/ab", "doc")

	require.NoError(t, s.DeleteNode(ctx, "/a"))

	paths, err := s.AllPaths(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/ab"}, paths)

	n, err := s.QueryCount(ctx, `SELECT COUNT(*) FROM tokens`)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteNode_Missing(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.DeleteNode(context.Background(), "/nope"))
}

func TestDeleteNode_Root(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a/b", "doc")
	require.NoError(t, s.DeleteNode(ctx, "/"))

	paths, err := s.AllPaths(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
