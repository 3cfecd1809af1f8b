package engine

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/constraint"
	"github.com/roach88/treeq/internal/index"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// openLibrary creates a store with a small article collection.
func openLibrary(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "engine.db"),
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	put := func(path, typ string, props ...ir.Property) {
		require.NoError(t, s.PutNode(ctx, path, typ, props))
	}
	put("/lib/go", "article",
		testutil.Str("title", "The Go Programming Language"),
		testutil.Str("body", "Concurrency with goroutines"),
		testutil.Int("year", 2015),
		testutil.Strs("tags", "go", "programming"))
	put("/lib/go/notes", "note", testutil.Str("text", "errata and hello"))
	put("/lib/rust", "article",
		testutil.Str("title", "The Rust Programming Language"),
		testutil.Str("body", "Ownership and borrowing"),
		testutil.Int("year", 2018),
		testutil.Strs("tags", "rust"))
	put("/lib/draft", "article",
		testutil.Str("title", "Untitled draft"),
		testutil.Bool("draft", true))
	put("/lib/sql", "article",
		testutil.Str("title", "SQL Antipatterns"),
		testutil.Str("body", "avoiding the pitfalls of database programming"),
		testutil.Int("year", 2010))
	return s
}

type libraryQuery struct {
	name     string
	query    string
	bindings ir.IRObject
	want     []string
}

var libraryQueries = []libraryQuery{
	{"term in property", `contains(a.title, 'programming')`, nil, []string{"/lib/go", "/lib/rust"}},
	{"all properties", `contains(a, 'programming')`, nil, []string{"/lib/go", "/lib/rust", "/lib/sql"}},
	{"phrase", `contains(a.title, '"go programming"')`, nil, []string{"/lib/go"}},
	{"negated term", `contains(a.title, 'programming -rust')`, nil, []string{"/lib/go"}},
	{"alternation", `contains(a.title, 'rust OR antipatterns')`, nil, []string{"/lib/rust", "/lib/sql"}},
	{"prefix", `contains(a.title, 'prog*')`, nil, []string{"/lib/go", "/lib/rust"}},
	{"relative path", `contains(a.notes/text, 'errata')`, nil, []string{"/lib/go"}},
	{"bind variable", `contains(a.title, $q)`, ir.IRObject{"q": ir.IRString("rust")}, []string{"/lib/rust"}},
	{"with comparison", `contains(a.title, 'language') AND a.year > 2016`, nil, []string{"/lib/rust"}},
	{"or with comparison", `contains(a.title, 'language') OR a.draft = true`, nil, []string{"/lib/draft", "/lib/go", "/lib/rust"}},
	{"negated contains", `NOT contains(a.title, 'language')`, nil, []string{"/lib/draft", "/lib/sql"}},
	{"in list", `a.year IN (2010, 2015)`, nil, []string{"/lib/go", "/lib/sql"}},
	{"array property", `contains(a.tags, 'go')`, nil, []string{"/lib/go"}},
	{"purely negative", `contains(a, '-programming')`, nil, []string{"/lib/draft"}},
	{"two contains", `contains(a.title, 'language') AND contains(a.body, 'ownership')`, nil, []string{"/lib/rust"}},
	{"or of contains", `contains(a.title, 'antipatterns') OR contains(a.body, 'goroutines')`, nil, []string{"/lib/go", "/lib/sql"}},
}

func TestQuery_Library(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))

	for _, tt := range libraryQueries {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := e.Prepare(context.Background(), tt.query, tt.bindings, WithNodeType("article"))
			require.NoError(t, err)

			res, err := plan.Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Paths, "index %s", res.Index)
		})
	}
}

func TestQuery_IndexAgnosticResults(t *testing.T) {
	s := openLibrary(t)
	engines := map[string]*Engine{
		"default":   New(s, WithLogger(discard)),
		"property":  New(s, WithLogger(discard), WithIndexes(index.NewProperty(s), index.NewTraversal(s))),
		"traversal": New(s, WithLogger(discard), WithIndexes(index.NewTraversal(s))),
	}

	for _, tt := range libraryQueries {
		for name, e := range engines {
			res, err := e.Query(context.Background(), tt.query, tt.bindings, WithNodeType("article"))
			require.NoError(t, err, "%s / %s", tt.name, name)
			assert.Equal(t, tt.want, res.Paths, "%s / %s (index %s)", tt.name, name, res.Index)
		}
	}
}

func TestPrepare_ChoosesIndex(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{`contains(a.title, 'rust')`, "fulltext"},
		{`contains(a.title, '-rust')`, "property"},
		{`contains(a.notes/text, 'errata')`, "traversal"},
		{`NOT contains(a.title, 'rust')`, "traversal"},
		{`contains(a.title, 'rust') OR a.draft = true`, "traversal"},
		{`a.year > 2000`, "property"},
	}
	for _, tt := range tests {
		plan, err := e.Prepare(ctx, tt.query, nil, WithNodeType("article"))
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, plan.IndexName(), tt.query)
	}
}

func TestPrepare_AnyNodeType(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))

	res, err := e.Query(context.Background(), `contains(a, 'hello')`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/lib/go/notes"}, res.Paths)
}

func TestPrepare_Errors(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))
	ctx := context.Background()

	t.Run("syntax", func(t *testing.T) {
		_, err := e.Prepare(ctx, `contains(a.title`, nil)
		require.Error(t, err)
		assert.True(t, IsSyntaxError(err))
	})

	t.Run("invalid full-text expression", func(t *testing.T) {
		_, err := e.Prepare(ctx, `contains(a.title, '"unterminated')`, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExpression(err))

		var ie *constraint.InvalidExpressionError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, `"unterminated`, ie.Expression)
	})

	t.Run("invalid expression under NOT", func(t *testing.T) {
		_, err := e.Prepare(ctx, `NOT contains(a.title, 'a OR')`, nil)
		assert.True(t, IsInvalidExpression(err))
	})

	t.Run("unbound variable", func(t *testing.T) {
		_, err := e.Prepare(ctx, `contains(a.title, $q)`, nil)
		require.Error(t, err)
		assert.True(t, IsBindError(err))
	})

	t.Run("two selectors", func(t *testing.T) {
		_, err := e.Prepare(ctx, `a.x = 1 AND b.y = 2`, nil)
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, ErrCodeUnsupported, qe.Code)
	})

	t.Run("no index", func(t *testing.T) {
		only := New(s, WithLogger(discard), WithIndexes(index.NewProperty(s)))
		_, err := only.Prepare(ctx, `contains(a, '-x')`, nil)
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, ErrCodeNoIndex, qe.Code)
	})
}

func TestPlan_ConcurrentExecutions(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))

	plan, err := e.Prepare(context.Background(),
		`contains(a.title, 'language') AND a.year > 2000`, nil, WithNodeType("article"))
	require.NoError(t, err)

	const workers = 16
	results := make([][]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := plan.Execute(context.Background())
			errs[i] = err
			if err == nil {
				results[i] = res.Paths
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"/lib/go", "/lib/rust"}, results[i])
	}
}

func TestPlan_ExecuteIsRepeatable(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))

	plan, err := e.Prepare(context.Background(), `contains(a, 'programming')`, nil, WithNodeType("article"))
	require.NoError(t, err)

	first, err := plan.Execute(context.Background())
	require.NoError(t, err)
	second, err := plan.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPlan_ReflectsDeletes(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard), WithIndexes(index.NewTraversal(s)))
	ctx := context.Background()

	plan, err := e.Prepare(ctx, `contains(a.title, 'language')`, nil, WithNodeType("article"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteNode(ctx, "/lib/rust"))
	res, err := plan.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/lib/go"}, res.Paths)
}

func TestPlan_Cancelled(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard), WithIndexes(index.NewTraversal(s)))

	plan, err := e.Prepare(context.Background(), `a.year > 0`, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = plan.Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_Explain(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))

	plan, err := e.Prepare(context.Background(),
		`contains(a.title, 'language') AND a.year IN (2015, 2018)`, nil, WithNodeType("article"))
	require.NoError(t, err)

	out := plan.Explain()
	assert.Contains(t, out, "query:    contains(a.title, 'language') AND a.year IN (2015, 2018)")
	assert.Contains(t, out, "selector: a (article)")
	assert.Contains(t, out, "index:    fulltext (language)")
	assert.Contains(t, out, "filter:   a [title is not null, year is not null, contains 'language']")
	assert.Contains(t, out, "fulltext: language")
	assert.Contains(t, out, "in:       a.year IN (2015, 2018)")
	assert.Contains(t, out, "contains(a.title, 'language') (index)")
}

func TestEngine_Logging(t *testing.T) {
	s := openLibrary(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(s, WithLogger(logger))

	_, err := e.Query(context.Background(), `contains(a.title, 'rust')`, nil, WithNodeType("article"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "query planned")
	assert.Contains(t, out, "candidate evaluated")
	assert.Contains(t, out, "query executed")
	assert.Contains(t, out, "index=fulltext")
	assert.Contains(t, out, "matches=1")
}

func TestEngine_QueryCachesPlans(t *testing.T) {
	s := openLibrary(t)
	e := New(s, WithLogger(discard))
	ctx := context.Background()

	_, err := e.Query(ctx, `contains(a.title, $q)`, ir.IRObject{"q": ir.IRString("go")})
	require.NoError(t, err)
	_, err = e.Query(ctx, `contains(a.title, $q)`, ir.IRObject{"q": ir.IRString("go")})
	require.NoError(t, err)
	_, err = e.Query(ctx, `contains(a.title, $q)`, ir.IRObject{"q": ir.IRString("rust")})
	require.NoError(t, err)
	assert.Len(t, e.plans, 2)

	e.ResetPlans()
	assert.Empty(t, e.plans)
}

func TestQueryError_Format(t *testing.T) {
	err := &QueryError{Code: ErrCodeNoIndex, Message: "no index", Query: "a.x = 1"}
	assert.Equal(t, "NO_INDEX: no index (query=a.x = 1)", err.Error())

	wrapped := &QueryError{Code: ErrCodeBind, Message: "bind failed", Err: &query.BindError{Selector: "b"}}
	assert.True(t, IsBindError(wrapped))
	assert.True(t, query.IsBindError(wrapped))
}
