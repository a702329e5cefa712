// Package hclpreset is the HCL front-end for preset definitions. A .hcl
// file declares the preset's metadata, per-module parameter assignments
// and modulation routes; this package decodes it into typed schema structs
// and drives the builder API with the result.
package hclpreset

import "github.com/hashicorp/hcl/v2"

// ModuleBlock configures one module instance: `module "Oscillator" "0"`.
// The params attribute is an object whose keys are wire parameter names
// (kParamVolume, ...); it stays an expression here so translation can
// report per-parameter errors.
type ModuleBlock struct {
	Type    string         `hcl:"module_type,label"`
	Index   string         `hcl:"instance_index,label"`
	Enabled *bool          `hcl:"enabled,optional"`
	Params  hcl.Expression `hcl:"params,optional"`
}

// ModulateBlock declares one modulation route by friendly source name and
// "InstanceKey.ParamName" target.
type ModulateBlock struct {
	Source  string  `hcl:"source"`
	Target  string  `hcl:"target"`
	Amount  float64 `hcl:"amount"`
	Bipolar bool    `hcl:"bipolar,optional"`
}

// PresetBlock is the single top-level `preset` block of a definition file.
type PresetBlock struct {
	Name        string `hcl:"name"`
	Author      string `hcl:"author,optional"`
	Description string `hcl:"description,optional"`
	// Template points at a baseline document relative to the definition
	// file. Empty means build fresh from schema defaults.
	Template string `hcl:"template,optional"`

	Modules     []*ModuleBlock   `hcl:"module,block"`
	Modulations []*ModulateBlock `hcl:"modulate,block"`
}

// File is the root schema of a preset definition file.
type File struct {
	Preset *PresetBlock `hcl:"preset,block"`
}
