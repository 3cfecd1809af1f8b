package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/treeq/internal/engine"
	"github.com/roach88/treeq/internal/index"
)

// Scenario defines a query conformance scenario: a content tree and the
// queries to run against it.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Content is an inline content tree in the compiler's YAML form.
	Content yaml.Node `yaml:"content,omitempty"`

	// ContentFiles lists .cue or .yaml content files loaded after Content.
	// Paths are relative to the scenario file location.
	ContentFiles []string `yaml:"content_files,omitempty"`

	// Queries run in order against the loaded content.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep is one query with its expectation.
type QueryStep struct {
	// Query is the constraint text.
	Query string `yaml:"query"`

	// NodeType limits the selector to one node type.
	NodeType string `yaml:"node_type,omitempty"`

	// Bind holds bind variable values.
	Bind map[string]any `yaml:"bind,omitempty"`

	// Expect lists the matching paths in order. An empty list expects no
	// match.
	Expect []string `yaml:"expect"`

	// ExpectError is the QueryError code the query must fail with
	// (e.g., "INVALID_EXPRESSION"). Excludes Expect.
	ExpectError string `yaml:"expect_error,omitempty"`

	// UseIndex restricts the planner to one index: fulltext, property or
	// traversal. Results must not depend on it.
	UseIndex string `yaml:"use_index,omitempty"`

	// ExpectIndex is the index the planner must choose.
	ExpectIndex string `yaml:"expect_index,omitempty"`
}

// Index names accepted by use_index and expect_index.
const (
	IndexFullText  = index.NameFullText
	IndexProperty  = index.NameProperty
	IndexTraversal = index.NameTraversal
)

var validErrorCodes = map[string]bool{
	string(engine.ErrCodeSyntax):            true,
	string(engine.ErrCodeBind):              true,
	string(engine.ErrCodeInvalidExpression): true,
	string(engine.ErrCodeUnsupported):       true,
	string(engine.ErrCodeNoIndex):           true,
	string(engine.ErrCodeExecution):         true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Content file paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving content file paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, p := range scenario.ContentFiles {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.ContentFiles[i] = filepath.Join(basePath, p)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "querys:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and option values.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	for i, q := range s.Queries {
		if err := validateQueryStep(i, q); err != nil {
			return err
		}
	}
	return nil
}

func validateQueryStep(i int, q QueryStep) error {
	if q.Query == "" {
		return fmt.Errorf("queries[%d]: query is required", i)
	}
	if q.ExpectError != "" {
		if !validErrorCodes[q.ExpectError] {
			return fmt.Errorf("queries[%d]: unknown error code %q", i, q.ExpectError)
		}
		if len(q.Expect) > 0 {
			return fmt.Errorf("queries[%d]: expect and expect_error are exclusive", i)
		}
	}
	for _, name := range []string{q.UseIndex, q.ExpectIndex} {
		switch name {
		case "", IndexFullText, IndexProperty, IndexTraversal:
		default:
			return fmt.Errorf("queries[%d]: unknown index %q", i, name)
		}
	}
	return nil
}
