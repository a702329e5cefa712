package hclpreset

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/serumgo/internal/ctxlog"
)

// Loader parses preset definition files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a fresh Loader with its own parser state.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses the definition file at path.
func (l *Loader) Load(ctx context.Context, path string) (*PresetBlock, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing preset definition file.", "path", path)

	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	return decode(hclFile, path)
}

// LoadBytes parses an in-memory definition, attributing diagnostics to
// filename.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*PresetBlock, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return decode(hclFile, filename)
}

func decode(hclFile *hcl.File, name string) (*PresetBlock, error) {
	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", name, diags)
	}
	if file.Preset == nil {
		return nil, fmt.Errorf("%s: no preset block found", name)
	}
	return file.Preset, nil
}
