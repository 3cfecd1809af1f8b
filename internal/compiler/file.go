package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CompileFile compiles one content file. The extension selects the format:
// .cue, or .yaml/.yml.
func CompileFile(path string) ([]ContentNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		return CompileContent(v)
	case ".yaml", ".yml":
		nodes, err := CompileYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("unsupported content file %s: want .cue, .yaml or .yml", path)
	}
}
