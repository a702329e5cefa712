package app

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all the necessary configuration for an App instance to run.
// Fields left empty by the caller fall back to their SERUMGO_* environment
// variables before validation.
type Config struct {
	DefinitionPath string `env:"SERUMGO_DEFINITION"` // .hcl file or directory
	TemplatePath   string `env:"SERUMGO_TEMPLATE"`   // baseline JSON document
	OutputPath     string `env:"SERUMGO_OUTPUT"`

	Pack      bool   `env:"SERUMGO_PACK"`
	PackerBin string `env:"SERUMGO_PACKER_BIN" envDefault:"serum-packer"`

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("failed to read environment configuration: %w", err)
	}

	if cfg.DefinitionPath == "" {
		cfg.DefinitionPath = fromEnv.DefinitionPath
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = fromEnv.TemplatePath
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = fromEnv.OutputPath
	}
	if !cfg.Pack {
		cfg.Pack = fromEnv.Pack
	}
	if cfg.PackerBin == "" {
		cfg.PackerBin = fromEnv.PackerBin
	}

	if cfg.DefinitionPath == "" {
		return nil, errors.New("DefinitionPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
