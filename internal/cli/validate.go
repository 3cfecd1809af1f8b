package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Nodes  int                        `json:"nodes"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// RenderText prints the success line, or every error with its line number.
func (r ValidationResult) RenderText(w io.Writer) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ All content valid (%d node(s))\n", r.Nodes)
		return err
	}
	var b strings.Builder
	b.WriteString("✗ Validation failed\n\n")
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(&b, "line %d\n", e.Line)
		}
		fmt.Fprintf(&b, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <content-dir>",
		Short: "Validate content without writing it",
		Long: `Validate CUE and YAML content files without writing output.

Checks paths, node types and property values across every file, so a
path defined by two files is reported as a duplicate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, validationErrors, err := ValidateContentDir(contentDir)
	if err != nil {
		code, message := parseCompileError(err)
		return outputValidateError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d content file(s) in %s", loadResult.FileCount, contentDir)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(loadResult.Nodes))
}

// ValidateContentDir loads every content file under dir and validates the
// combined node set. Compile failures are reported as validation errors; the
// returned error is set only when nothing could be loaded.
func ValidateContentDir(dir string) (*LoadResult, []compiler.ValidationError, error) {
	loadResult, loadErrors := LoadContent(dir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, nil, loadErrors[0]
	}

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field: "load", Message: err.Error(), Code: ErrCodeGeneric,
			})
			continue
		}
		line := loadErr.Line
		if loadErr.Pos.IsValid() {
			line = loadErr.Pos.Line()
		}
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    line,
		})
	}
	validationErrors = append(validationErrors, compiler.Validate(loadResult.Nodes)...)

	return loadResult, validationErrors, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, nodes int) error {
	return formatter.Success(ValidationResult{Valid: true, Nodes: nodes})
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every validation error. Validation failures
// exit with code 1.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if err := formatter.Failure(errs[0].Code, errs[0].Message, ValidationResult{Valid: false, Errors: errs}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
