package hclpreset

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/serumgo/internal/ctxlog"
	"github.com/vk/serumgo/internal/modmatrix"
	"github.com/vk/serumgo/internal/preset"
	"github.com/vk/serumgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Build translates a decoded definition into a populated Preset. template
// is the baseline document, or nil to build fresh; routing uses opts.
func Build(ctx context.Context, reg *registry.Registry, def *PresetBlock, template []byte, opts modmatrix.Options) (*preset.Preset, error) {
	logger := ctxlog.FromContext(ctx)

	var p *preset.Preset
	var err error
	if template != nil {
		p, err = preset.FromTemplate(reg, template)
		if err != nil {
			return nil, err
		}
	} else {
		p = preset.New(reg)
	}

	if err := p.SetName(def.Name); err != nil {
		return nil, err
	}
	if def.Author != "" {
		if err := p.SetAuthor(def.Author); err != nil {
			return nil, err
		}
	}
	if def.Description != "" {
		if err := p.SetDescription(def.Description); err != nil {
			return nil, err
		}
	}

	for _, mod := range def.Modules {
		if err := applyModule(p, mod); err != nil {
			return nil, err
		}
	}
	logger.Debug("Module blocks applied.", "count", len(def.Modules))

	router := modmatrix.NewRouter(p, opts)
	for i, route := range def.Modulations {
		if err := applyModulation(p, router, route); err != nil {
			return nil, fmt.Errorf("modulate block %d: %w", i, err)
		}
	}
	logger.Debug("Modulation routes applied.", "count", len(def.Modulations))

	return p, nil
}

func applyModule(p *preset.Preset, mod *ModuleBlock) error {
	index, err := strconv.Atoi(mod.Index)
	if err != nil {
		return fmt.Errorf("module %q: instance index %q is not a number", mod.Type, mod.Index)
	}

	if mod.Enabled != nil {
		if err := p.SetEnabled(mod.Type, index, *mod.Enabled); err != nil {
			return fmt.Errorf("module %s%d: %w", mod.Type, index, err)
		}
	}

	if mod.Params == nil {
		return nil
	}
	val, diags := mod.Params.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("module %s%d: params: %w", mod.Type, index, diags)
	}
	if val.IsNull() {
		return nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return fmt.Errorf("module %s%d: params must be an object", mod.Type, index)
	}

	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		handle, err := p.GetParameter(mod.Type, index, name)
		if err != nil {
			return fmt.Errorf("module %s%d: %w", mod.Type, index, err)
		}
		raw, err := fromCty(v)
		if err != nil {
			return fmt.Errorf("module %s%d: %s: %w", mod.Type, index, name, err)
		}
		if err := p.SetParameter(handle, raw); err != nil {
			return err
		}
	}
	return nil
}

func applyModulation(p *preset.Preset, router *modmatrix.Router, route *ModulateBlock) error {
	src, err := modmatrix.SourceByName(route.Source)
	if err != nil {
		return err
	}
	moduleType, index, paramName, err := splitTarget(route.Target)
	if err != nil {
		return err
	}
	dest, err := p.GetParameter(moduleType, index, paramName)
	if err != nil {
		return err
	}
	_, err = router.AddModulation(src, dest, route.Amount, route.Bipolar)
	return err
}

// splitTarget parses "VoiceFilter0.kParamFreq" into its module type,
// instance index and parameter name.
func splitTarget(target string) (moduleType string, index int, paramName string, err error) {
	instanceKey, paramName, ok := strings.Cut(target, ".")
	if !ok || paramName == "" {
		return "", 0, "", fmt.Errorf("target %q must look like InstanceKey.ParamName", target)
	}
	split := len(instanceKey)
	for split > 0 && instanceKey[split-1] >= '0' && instanceKey[split-1] <= '9' {
		split--
	}
	if split == 0 || split == len(instanceKey) {
		return "", 0, "", fmt.Errorf("target %q has no trailing instance index", target)
	}
	index, err = strconv.Atoi(instanceKey[split:])
	if err != nil {
		return "", 0, "", fmt.Errorf("target %q: %w", target, err)
	}
	return instanceKey[:split], index, paramName, nil
}

// fromCty converts an evaluated params value into the builder's raw
// representation.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("value is null")
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		if v.True() {
			return 1.0, nil
		}
		return 0.0, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
	}
}
