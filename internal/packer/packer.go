// Package packer wraps the external .SerumPreset packer binary. The tool
// is a black box with one contract: given a conforming JSON document it
// produces a binary container, and vice versa. Nothing here inspects
// either format beyond checking that the expected output file appeared.
package packer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/serumgo/internal/ctxlog"
)

// Tool invokes the configured packer binary.
type Tool struct {
	// Bin is the path to the packer executable.
	Bin string
}

// New returns a Tool for the given binary path.
func New(bin string) *Tool {
	return &Tool{Bin: bin}
}

// Pack converts a JSON preset document into a binary container at outPath.
func (t *Tool) Pack(ctx context.Context, jsonPath, outPath string) error {
	return t.run(ctx, "pack", jsonPath, outPath)
}

// Unpack converts a binary container back into a JSON document at outPath.
func (t *Tool) Unpack(ctx context.Context, binPath, outPath string) error {
	return t.run(ctx, "unpack", binPath, outPath)
}

func (t *Tool) run(ctx context.Context, verb, inPath, outPath string) error {
	if t.Bin == "" {
		return fmt.Errorf("packer: no binary configured")
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking packer.", "bin", t.Bin, "verb", verb, "in", inPath, "out", outPath)

	cmd := exec.CommandContext(ctx, t.Bin, verb, inPath, outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("packer %s failed: %w: %s", verb, err, stderr.String())
		}
		return fmt.Errorf("packer %s failed: %w", verb, err)
	}

	// All-or-nothing: the only success signal we trust is the output
	// file existing.
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("packer %s reported success but produced no output at %s", verb, outPath)
	}
	return nil
}
