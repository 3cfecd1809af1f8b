package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/compiler"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DB string // database path
}

// LoadSummary is the output of a successful load.
type LoadSummary struct {
	DB    string   `json:"db"`
	Files []string `json:"files"`
	Nodes int      `json:"nodes"`
}

// RenderText prints a one-line summary of the load.
func (s LoadSummary) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ Loaded %d node(s) from %d file(s) into %s\n", s.Nodes, len(s.Files), s.DB)
	return err
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <content-dir>",
		Short: "Write content into a database",
		Long: `Compile and validate every content file under a directory, then
write the nodes into the database. Existing nodes at the same paths are
replaced; the database is created when missing.

Example:
  treeq load ./content --db ./treeq.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, validationErrors, err := ValidateContentDir(contentDir)
	if err != nil {
		code, message := parseCompileError(err)
		return outputCompileError(formatter, code, message, nil)
	}
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	st, err := openStore(opts.DB, false)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	if err := compiler.Write(commandContext(cmd), st, loadResult.Nodes); err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Wrote %d node(s) to %s", len(loadResult.Nodes), opts.DB)

	return formatter.Success(LoadSummary{DB: opts.DB, Files: loadResult.Files, Nodes: len(loadResult.Nodes)})
}
