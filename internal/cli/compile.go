package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/compiler"
	"github.com/roach88/treeq/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledNode is the JSON form of one compiled content node.
type CompiledNode struct {
	Path       string      `json:"path"`
	Type       string      `json:"type,omitempty"`
	Properties ir.IRObject `json:"properties"`
}

// CompilationResult holds the compiled content nodes.
type CompilationResult struct {
	Files  []string       `json:"files"`
	Nodes  []CompiledNode `json:"nodes"`
	Output string         `json:"-"` // file the nodes were written to, if any
}

// RenderText lists each node with its type and property count.
func (r *CompilationResult) RenderText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Compiled %d node(s) from %d file(s)\n\n", len(r.Nodes), len(r.Files))
	for _, n := range r.Nodes {
		nodeType := n.Type
		if nodeType == "" {
			nodeType = "-"
		}
		fmt.Fprintf(&b, "  %s (%s): %d property(ies)\n", n.Path, nodeType, len(n.Properties))
	}
	if r.Output != "" {
		fmt.Fprintf(&b, "\nWrote nodes to %s\n", r.Output)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// compileErrors is the report of a failed compilation. It encodes as the
// list of CLIErrors and renders each error with its source position.
type compileErrors []error

func (errs compileErrors) MarshalJSON() ([]byte, error) {
	out := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		out[i] = CLIError{Code: code, Message: message}
	}
	return json.Marshal(out)
}

func (errs compileErrors) RenderText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("✗ Compilation failed\n\n")
	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			switch {
			case loadErr.Pos.IsValid():
				fmt.Fprintf(&b, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
			case loadErr.Line > 0:
				fmt.Fprintf(&b, "line %d\n", loadErr.Line)
			}
		}
		fmt.Fprintf(&b, "  %s: %s\n\n", code, message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <content-dir>",
		Short: "Compile CUE and YAML content to nodes",
		Long: `Compile every CUE and YAML content file under a directory.

Each file describes a tree rooted at "/". The compiler flattens it into
nodes with sorted properties, validates them, and outputs JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadContent(contentDir, LoadModeCollectAll)

	// Directory not found, no files, etc.
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d content file(s) in %s", loadResult.FileCount, contentDir)
	for _, file := range loadResult.Files {
		formatter.VerboseLog("Compiled: %s", file)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}
	if errs := compiler.Validate(loadResult.Nodes); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result := newCompilationResult(loadResult)
	result.Output = opts.Output

	if opts.Output != "" {
		if err := writeNodesToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result)
}

func newCompilationResult(loaded *LoadResult) *CompilationResult {
	result := &CompilationResult{
		Files: loaded.Files,
		Nodes: make([]CompiledNode, len(loaded.Nodes)),
	}
	for i, n := range loaded.Nodes {
		props := make(ir.IRObject, len(n.Properties))
		for _, p := range n.Properties {
			props[p.Name] = p.Value
		}
		result.Nodes[i] = CompiledNode{Path: n.Path, Type: n.Type, Properties: props}
	}
	return result
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	return formatter.Success(result)
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs every compilation error. Compile failures are
// command errors (exit code 2).
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	code, message := parseCompileError(errs[0])
	if err := formatter.Failure(code, message, compileErrors(errs)); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeNodesToFile writes the compilation result to a file as indented JSON.
func writeNodesToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling nodes: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
