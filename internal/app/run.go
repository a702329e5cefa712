package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/vk/serumgo/internal/ctxlog"
	"github.com/vk/serumgo/internal/document"
	"github.com/vk/serumgo/internal/fsutil"
	"github.com/vk/serumgo/internal/hclpreset"
	"github.com/vk/serumgo/internal/modmatrix"
	"github.com/vk/serumgo/internal/packer"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	defPath, err := fsutil.ResolveDefinition(cfg.DefinitionPath)
	if err != nil {
		return fmt.Errorf("failed to resolve definition path: %w", err)
	}
	a.logger.Debug("Definition path resolved.", "path", defPath)

	def, err := a.loader.Load(ctx, defPath)
	if err != nil {
		return fmt.Errorf("failed to load preset definition: %w", err)
	}

	template, err := loadTemplate(cfg, defPath, def)
	if err != nil {
		return err
	}
	if template != nil {
		a.logger.Debug("Baseline template loaded.", "bytes", len(template))
	}

	a.logger.Info("🎛️  Building preset...", "name", def.Name)
	p, err := hclpreset.Build(ctx, a.reg, def, template, modmatrix.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to build preset: %w", err)
	}

	out, err := document.Serialize(p)
	if err != nil {
		return fmt.Errorf("failed to serialize preset: %w", err)
	}
	out = pretty.Pretty(out)

	outPath := cfg.OutputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(defPath, ".hcl") + ".json"
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write preset document: %w", err)
	}
	a.logger.Info("🏁 Preset written.", "path", outPath, "bytes", len(out))

	if cfg.Pack {
		binPath := strings.TrimSuffix(outPath, ".json") + ".SerumPreset"
		tool := packer.New(cfg.PackerBin)
		if err := tool.Pack(ctx, outPath, binPath); err != nil {
			return err
		}
		a.logger.Info("Preset packed.", "path", binPath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// loadTemplate reads the baseline document, if any. A -template flag wins
// over the definition's own template attribute, which resolves relative to
// the definition file.
func loadTemplate(cfg *Config, defPath string, def *hclpreset.PresetBlock) ([]byte, error) {
	path := cfg.TemplatePath
	if path == "" && def.Template != "" {
		path = def.Template
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(defPath), path)
		}
	}
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return raw, nil
}
