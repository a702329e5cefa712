package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("requires a definition path", func(t *testing.T) {
		_, err := NewConfig(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DefinitionPath")
	})

	t.Run("packer binary defaults", func(t *testing.T) {
		cfg, err := NewConfig(Config{DefinitionPath: "preset.hcl"})
		require.NoError(t, err)
		assert.Equal(t, "serum-packer", cfg.PackerBin)
	})

	t.Run("environment fills unset fields", func(t *testing.T) {
		t.Setenv("SERUMGO_DEFINITION", "env.hcl")
		t.Setenv("SERUMGO_PACKER_BIN", "/opt/serum/packer")

		cfg, err := NewConfig(Config{})
		require.NoError(t, err)
		assert.Equal(t, "env.hcl", cfg.DefinitionPath)
		assert.Equal(t, "/opt/serum/packer", cfg.PackerBin)
	})

	t.Run("explicit values win over environment", func(t *testing.T) {
		t.Setenv("SERUMGO_DEFINITION", "env.hcl")

		cfg, err := NewConfig(Config{DefinitionPath: "flag.hcl"})
		require.NoError(t, err)
		assert.Equal(t, "flag.hcl", cfg.DefinitionPath)
	})
}
