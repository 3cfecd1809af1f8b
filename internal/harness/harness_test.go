package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Queries, len(s.Queries))
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/golden_basic.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: mismatches
content:
  docs:
    a:
      "@type": doc
      title: Hello World
queries:
  - query: contains(d.title, 'hello')
    expect: [/docs/b]
  - query: contains(d.title, 'hello')
    expect_error: INVALID_EXPRESSION
  - query: contains(d.title, '"open')
    expect: [/docs/a]
  - query: contains(d.title, 'hello')
    node_type: doc
    expect_index: traversal
    expect: [/docs/a]
  - query: contains(d.title, 'world')
    expect: [/docs/a]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected paths [/docs/b], got [/docs/a]")
	assert.Contains(t, result.Errors[1], "expected error INVALID_EXPRESSION, got paths [/docs/a]")
	assert.Contains(t, result.Errors[2], "unexpected error")
	assert.Contains(t, result.Errors[3], "expected index traversal, got fulltext")

	assert.Equal(t, "INVALID_EXPRESSION", result.Queries[2].Error)
	assert.Equal(t, []string{"/docs/a"}, result.Queries[4].Paths)
}

func TestRunIndexAgnostic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/library.yaml")
	require.NoError(t, err)

	for _, idx := range []string{"", IndexTraversal} {
		steps := make([]QueryStep, 0, len(s.Queries))
		for _, q := range s.Queries {
			q.ExpectIndex = ""
			q.UseIndex = idx
			steps = append(steps, q)
		}
		run := *s
		run.Queries = steps

		result, err := Run(context.Background(), &run)
		require.NoError(t, err)
		assert.True(t, result.Pass, "index %q: %v", idx, result.Errors)
	}
}

func TestRunBrokenContent(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: broken
content:
  doc:
    price: 1.5
queries:
  - query: a.x = 1
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load content")
}

func TestRunMissingContentFile(t *testing.T) {
	s := &Scenario{
		Name:         "missing",
		ContentFiles: []string{filepath.Join(t.TempDir(), "none.cue")},
		Queries:      []QueryStep{{Query: "a.x = 1"}},
	}
	_, err := Run(context.Background(), s)
	require.Error(t, err)
}

func TestRunBindings(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bindings
content:
  items:
    a:
      count: 3
      label: three
queries:
  - query: i.count = $n
    bind: { n: 3 }
    expect: [/items/a]
  - query: contains(i.label, $q)
    bind: { q: three }
    expect: [/items/a]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot(t *testing.T) {
	r := NewResult()
	r.Queries = append(r.Queries,
		QueryResult{Query: "a.x = 1", Index: "property", Paths: []string{"/a"}, Explain: "query:    a.x = 1"},
		QueryResult{Query: "a.y", Error: "SYNTAX_ERROR"},
	)

	want := "scenario: s\n" +
		"\nquery: a.x = 1\nindex: property\npaths:\n  /a\nplan:\n  query:    a.x = 1\n" +
		"\nquery: a.y\nerror: SYNTAX_ERROR\n"
	assert.Equal(t, want, string(Snapshot("s", r)))
}
