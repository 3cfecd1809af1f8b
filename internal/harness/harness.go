package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/treeq/internal/compiler"
	"github.com/roach88/treeq/internal/engine"
	"github.com/roach88/treeq/internal/index"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/testutil"
)

// Harness runs the queries of one scenario against one store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequential node ids so runs are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile and write the inline content, then the content files
// 3. Prepare and execute every query, comparing against its expectation
// 4. Return result with pass/fail, per-query outcome, and errors
//
// The returned error reports a broken scenario (unloadable content), never
// a failed expectation.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	if err := h.loadContent(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Queries {
		qr, mismatch := h.runQuery(ctx, step)
		result.Queries = append(result.Queries, qr)
		if mismatch != "" {
			result.AddError(fmt.Sprintf("queries[%d] %s: %s", i, step.Query, mismatch))
		}
	}
	return result, nil
}

// loadContent writes the scenario's content tree.
func (h *Harness) loadContent(ctx context.Context, scenario *Scenario) error {
	if scenario.Content.Kind != 0 {
		nodes, err := compiler.CompileYAMLNode(&scenario.Content)
		if err != nil {
			return err
		}
		if err := compiler.Write(ctx, h.store, nodes); err != nil {
			return err
		}
	}
	for _, path := range scenario.ContentFiles {
		nodes, err := compiler.CompileFile(path)
		if err != nil {
			return err
		}
		if err := compiler.Write(ctx, h.store, nodes); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// runQuery prepares and executes one step. It returns the outcome and a
// description of the mismatch, or "" when the expectation holds.
func (h *Harness) runQuery(ctx context.Context, step QueryStep) (QueryResult, string) {
	qr := QueryResult{Query: step.Query, Paths: []string{}}

	bindings, err := toBindings(step.Bind)
	if err != nil {
		return qr, err.Error()
	}

	indexes, err := index.Named(h.store, step.UseIndex)
	if err != nil {
		return qr, err.Error()
	}
	eng := engine.New(h.store, engine.WithLogger(h.logger), engine.WithIndexes(indexes...))
	var opts []engine.PrepareOption
	if step.NodeType != "" {
		opts = append(opts, engine.WithNodeType(step.NodeType))
	}

	plan, err := eng.Prepare(ctx, step.Query, bindings, opts...)
	if err == nil {
		qr.Index = plan.IndexName()
		qr.Explain = plan.Explain()
		var res *engine.Result
		res, err = plan.Execute(ctx)
		if err == nil {
			qr.Paths = res.Paths
		}
	}

	if err != nil {
		var qe *engine.QueryError
		if !errors.As(err, &qe) {
			return qr, fmt.Sprintf("unexpected error: %v", err)
		}
		qr.Error = string(qe.Code)
		if step.ExpectError == "" {
			return qr, fmt.Sprintf("unexpected error: %v", err)
		}
		if qr.Error != step.ExpectError {
			return qr, fmt.Sprintf("expected error %s, got %v", step.ExpectError, err)
		}
		return qr, ""
	}

	if step.ExpectError != "" {
		return qr, fmt.Sprintf("expected error %s, got paths %v", step.ExpectError, qr.Paths)
	}
	if step.ExpectIndex != "" && qr.Index != step.ExpectIndex {
		return qr, fmt.Sprintf("expected index %s, got %s", step.ExpectIndex, qr.Index)
	}
	want := step.Expect
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, qr.Paths) {
		return qr, fmt.Sprintf("expected paths %v, got %v", want, qr.Paths)
	}
	return qr, ""
}

// toBindings converts decoded YAML values to IR.
func toBindings(bind map[string]any) (ir.IRObject, error) {
	out := make(ir.IRObject, len(bind))
	for name, v := range bind {
		val, err := ir.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
