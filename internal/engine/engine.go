package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/treeq/internal/constraint"
	"github.com/roach88/treeq/internal/index"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/querylang"
	"github.com/roach88/treeq/internal/store"
)

// Engine prepares and executes constraint queries over a store.
//
// Thread-safety model:
//   - Prepare(): safe from any goroutine; each call plans on its own state
//   - Plan.Execute(): safe from any goroutine, on the same Plan at once
//   - Query(): safe from any goroutine; shares cached plans
//
// INVARIANTS:
//   - indexes order NEVER changes after construction (it breaks cost ties)
//   - A Plan is never mutated after Prepare returns it
type Engine struct {
	store   *store.Store
	indexes []query.Index
	logger  *slog.Logger

	mu    sync.Mutex
	plans map[string]*Plan
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithIndexes sets the indexes the planner chooses from, in tie-breaking
// order.
//
// Default: FullText, Property, Traversal over the engine's store.
// Use WithIndexes(index.NewTraversal(s)) to force row-by-row evaluation.
func WithIndexes(indexes ...query.Index) EngineOption {
	return func(e *Engine) {
		e.indexes = append([]query.Index(nil), indexes...)
	}
}

// WithLogger sets the logger for planning and execution events.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over s.
func New(s *store.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   s,
		indexes: index.Default(s),
		logger:  slog.Default(),
		plans:   make(map[string]*Plan),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// PrepareOption configures a single Prepare call.
type PrepareOption func(*prepareConfig)

type prepareConfig struct {
	nodeType string
}

// WithNodeType limits the query's selector to nodes of one type. By default
// the selector ranges over every node.
func WithNodeType(nodeType string) PrepareOption {
	return func(c *prepareConfig) {
		c.nodeType = nodeType
	}
}

// Prepare parses, binds and plans a query.
//
// Planning is single-threaded and happens here, once:
//  1. Parse the constraint text
//  2. Create the selector the text references and bind the tree to it
//  3. Collect filter restrictions (Restrict and implied property existence)
//  4. Extract the full-text constraint an index may answer
//  5. Push row-level constraints down to the selector
//  6. Choose the cheapest index
//
// Malformed full-text search text fails here, even when no row would ever
// be evaluated.
func (e *Engine) Prepare(ctx context.Context, text string, bindings ir.IRObject, opts ...PrepareOption) (*Plan, error) {
	var cfg prepareConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if bindings == nil {
		bindings = ir.IRObject{}
	}

	root, err := querylang.Parse(text)
	if err != nil {
		return nil, classify(text, "parse failed", err)
	}

	names := constraint.SelectorNames(root)
	if len(names) != 1 {
		return nil, &QueryError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("query must reference exactly one selector, found %v", names),
			Query:   text,
		}
	}

	sel := query.NewSelector(names[0], cfg.nodeType)
	src := query.NewSource(bindings, sel)
	if err := root.Bind(src); err != nil {
		return nil, classify(text, "bind failed", err)
	}
	if err := constraint.ValidateSelectors(root, src); err != nil {
		return nil, classify(text, "bind failed", err)
	}

	filter := query.NewFilter(sel, src.Bindings())
	if err := root.Restrict(filter); err != nil {
		return nil, classify(text, "restrict failed", err)
	}
	for _, cond := range root.PropertyExistenceConditions() {
		if err := cond.Restrict(filter); err != nil {
			return nil, classify(text, "restrict failed", err)
		}
	}

	expr, ok, err := constraint.ExtractFullText(root, sel)
	if err != nil {
		return nil, classify(text, "full-text extraction failed", err)
	}
	if ok {
		filter.SetFullTextConstraint(expr)
	}

	root.RestrictPushDown(sel)

	idx := index.Select(ctx, filter, e.indexes...)
	if idx == nil {
		return nil, &QueryError{
			Code:    ErrCodeNoIndex,
			Message: fmt.Sprintf("no index can answer %s", filter),
			Query:   text,
		}
	}
	sel.SetIndex(idx)

	e.logger.Debug("query planned",
		"query", text,
		"selector", sel.String(),
		"index", idx.Name(),
		"filter", filter.String(),
	)

	return &Plan{
		text:     text,
		root:     root,
		source:   src,
		selector: sel,
		filter:   filter,
		index:    idx,
		store:    e.store,
		logger:   e.logger,
	}, nil
}

// Query prepares and executes a query. Plans are cached by text, node type
// and bindings; a cached plan keeps the index it chose until ResetPlans.
func (e *Engine) Query(ctx context.Context, text string, bindings ir.IRObject, opts ...PrepareOption) (*Result, error) {
	var cfg prepareConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	fp, err := ir.BindingsHash(bindings)
	if err != nil {
		return nil, &QueryError{Code: ErrCodeBind, Message: "invalid bindings", Query: text, Err: err}
	}
	key := cfg.nodeType + "\x00" + text + "\x00" + fp

	e.mu.Lock()
	plan, ok := e.plans[key]
	e.mu.Unlock()

	if !ok {
		plan, err = e.Prepare(ctx, text, bindings, opts...)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.plans[key] = plan
		e.mu.Unlock()
	}

	return plan.Execute(ctx)
}

// ResetPlans drops every cached plan. Call it after bulk content changes so
// later queries are planned against fresh statistics.
func (e *Engine) ResetPlans() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plans = make(map[string]*Plan)
}
