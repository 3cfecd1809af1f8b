package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/treeq/internal/engine"
	"github.com/roach88/treeq/internal/index"
	"github.com/roach88/treeq/internal/ir"
)

// QueryOptions holds flags shared by the query and explain commands.
type QueryOptions struct {
	*RootOptions
	DB       string   // database path
	Bind     []string // name=value bind variables
	NodeType string   // selector node type
	Index    string   // restrict planning to one index
}

// QueryOutput is the result of the query command.
type QueryOutput struct {
	Query      string   `json:"query"`
	Index      string   `json:"index"`
	Candidates int      `json:"candidates"`
	Paths      []string `json:"paths"`
}

// RenderText prints the matching paths, one per line.
func (o QueryOutput) RenderText(w io.Writer) error {
	for _, p := range o.Paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// ExplainOutput is the result of the explain command.
type ExplainOutput struct {
	Query string `json:"query"`
	Index string `json:"index"`
	Plan  string `json:"plan"`
}

// RenderText prints the plan as produced by engine.Plan.Explain.
func (o ExplainOutput) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, o.Plan)
	return err
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <constraint>",
		Short: "Run a constraint query",
		Long: `Plan and run a constraint query, printing the matching paths.

Bind values are parsed as YAML scalars or flow sequences: 2015 is an
integer, true a boolean and [a, b] an array; anything else is a string.

Examples:
  treeq query "contains(a.title, 'go -rust')" --db ./treeq.db
  treeq query "a.year > \$min" --bind min=2010 --type article --db ./treeq.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}
	addQueryFlags(cmd, opts)

	return cmd
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <constraint>",
		Short: "Show the plan for a constraint query",
		Long: `Plan a constraint query without running it and print the chosen
index, the collected filter and the constraint tree.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}
	addQueryFlags(cmd, opts)

	return cmd
}

func addQueryFlags(cmd *cobra.Command, opts *QueryOptions) {
	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringArrayVar(&opts.Bind, "bind", nil, "bind variable as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.NodeType, "type", "", "node type of the selector")
	cmd.Flags().StringVar(&opts.Index, "index", "", "plan with one index only (fulltext|property|traversal)")
	_ = cmd.MarkFlagRequired("db")
}

func runQuery(opts *QueryOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	plan, closeStore, err := prepare(opts, text, cmd)
	if err != nil {
		return outputQueryError(formatter, err)
	}
	defer closeStore()

	res, err := plan.Execute(commandContext(cmd))
	if err != nil {
		return outputQueryError(formatter, err)
	}

	formatter.VerboseLog("index=%s candidates=%d matches=%d", res.Index, res.Candidates, len(res.Paths))
	return formatter.Success(QueryOutput{Query: text, Index: res.Index, Candidates: res.Candidates, Paths: res.Paths})
}

func runExplain(opts *QueryOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	plan, closeStore, err := prepare(opts, text, cmd)
	if err != nil {
		return outputQueryError(formatter, err)
	}
	defer closeStore()

	formatter.VerboseLog("index=%s", plan.IndexName())
	return formatter.Success(ExplainOutput{Query: text, Index: plan.IndexName(), Plan: plan.Explain()})
}

// prepare opens the store and plans text. The returned func closes the store.
func prepare(opts *QueryOptions, text string, cmd *cobra.Command) (*engine.Plan, func(), error) {
	bindings, err := parseBindings(opts.Bind)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(opts.DB, true)
	if err != nil {
		return nil, nil, &storeError{err}
	}
	closeStore := func() { st.Close() }

	indexes, err := index.Named(st, opts.Index)
	if err != nil {
		closeStore()
		return nil, nil, &argError{err}
	}

	eng := engine.New(st, engine.WithLogger(newLogger(opts.RootOptions, cmd)), engine.WithIndexes(indexes...))
	var prepOpts []engine.PrepareOption
	if opts.NodeType != "" {
		prepOpts = append(prepOpts, engine.WithNodeType(opts.NodeType))
	}

	plan, err := eng.Prepare(commandContext(cmd), text, bindings, prepOpts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return plan, closeStore, nil
}

// parseBindings decodes name=value flags. Values are YAML so integers,
// booleans and flow sequences keep their type.
func parseBindings(flags []string) (ir.IRObject, error) {
	bindings := make(ir.IRObject, len(flags))
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, &argError{fmt.Errorf("bind %q: want name=value", f)}
		}
		if raw == "" {
			bindings[name] = ir.IRString("")
			continue
		}
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, &argError{fmt.Errorf("bind %s: %w", name, err)}
		}
		v, err := ir.FromGo(decoded)
		if err != nil {
			return nil, &argError{fmt.Errorf("bind %s: %w", name, err)}
		}
		bindings[name] = v
	}
	return bindings, nil
}

// argError marks a malformed flag value.
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

// storeError marks a database that could not be opened.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// outputQueryError reports a failed query. Engine errors keep their own
// codes, such as SYNTAX_ERROR or NO_INDEX.
func outputQueryError(formatter *OutputFormatter, err error) error {
	code, message, exit := ErrCodeGeneric, err.Error(), ExitCommandError

	var qe *engine.QueryError
	var ae *argError
	var se *storeError
	switch {
	case errors.As(err, &qe):
		code, message = string(qe.Code), qe.Message
		if qe.Code == engine.ErrCodeExecution {
			exit = ExitFailure
		}
	case errors.As(err, &ae):
		code = ErrCodeBadArgument
	case errors.As(err, &se):
		code = ErrCodeStoreFailed
	}

	_ = formatter.Error(code, message, err.Error())
	return WrapExitError(exit, code, err)
}
