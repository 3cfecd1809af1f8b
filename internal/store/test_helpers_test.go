package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/testutil"
)

// createTestStore creates a new temp-dir store with deterministic node ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// putTestNode writes a node and fails the test on error.
func putTestNode(t *testing.T, s *Store, path, nodeType string, props ...ir.Property) {
	t.Helper()
	if err := s.PutNode(context.Background(), path, nodeType, props); err != nil {
		t.Fatalf("PutNode(%s) failed: %v", path, err)
	}
}

var (
	str  = testutil.Str
	num  = testutil.Int
	strs = testutil.Strs
)
