package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_CurrentNode(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a", "doc", str("title", "hello"), str("body", "world"))

	c, err := s.Cursor(ctx, "/a")
	require.NoError(t, err)

	assert.Equal(t, "/a", c.CurrentPath())
	p, ok := c.CurrentProperty("title")
	require.True(t, ok)
	assert.Equal(t, str("title", "hello"), p)

	_, ok = c.CurrentProperty("missing")
	assert.False(t, ok)

	props := c.CurrentProperties()
	require.Len(t, props, 2)
	assert.Equal(t, "body", props[0].Name)
}

func TestCursor_Tree(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	putTestNode(t, s, "/a/child", "doc", str("title", "kid"))

	c, err := s.Cursor(ctx, "/a")
	require.NoError(t, err)

	tr, ok, err := c.Tree("/a/child")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/a/child", tr.Path())
	p, ok := tr.Property("title")
	require.True(t, ok)
	assert.Equal(t, str("title", "kid"), p)

	self, ok, err := c.Tree("/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, self.Properties())

	_, ok, err = c.Tree("/a/none")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCursor_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Cursor(context.Background(), "/none")
	assert.True(t, errors.Is(err, ErrNotFound))
}
