package registry

import "fmt"

// The literal schema tables below come from the reverse-engineered preset
// format notes. Parameter IDs are positional in the synthesizer's internal
// mapping and must not be renumbered; gaps are real (unmapped positions).

var subShapes = []string{"kSine", "kTriangle", "kSquare", "kSaw", "kPulse"}

func oscillatorSchema() *ModuleSchema {
	return newSchema("Oscillator", []*ParamSpec{
		{ID: 0, Name: "kParamEnable", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 1, Name: "kParamVolume", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 2, Name: "kParamPan", Kind: KindFloat, Min: -1, Max: 1, Default: 0.0},
		{ID: 3, Name: "kParamOctave", Kind: KindFloat, Min: -4, Max: 4, Default: 0.0},
		{ID: 4, Name: "kParamPitch", Kind: KindFloat, Min: -48, Max: 48, Default: 0.0},
		{ID: 5, Name: "kParamFine", Kind: KindFloat, Min: -1, Max: 1, Default: 0.0},
		{ID: 6, Name: "kParamCoarsePit", Kind: KindFloat, Min: -48, Max: 48, Default: 0.0},
		{ID: 26, Name: "kParamDetune", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 27, Name: "kParamDetuneWid", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 28, Name: "kParamUnison", Kind: KindFloat, Min: 1, Max: 16, Default: 1.0},
	})
}

func wtOscSchema() *ModuleSchema {
	return newSchema("WTOsc", []*ParamSpec{
		{ID: 0, Name: "kParamWarp", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 1, Name: "kParamWarpMenu", Kind: KindString, Default: "kNone"},
		{ID: 3, Name: "kParamWarp2", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 4, Name: "kParamWarpMenu2", Kind: KindString, Default: "kNone"},
		{ID: 6, Name: "kParamTablePos", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 8, Name: "kParamInitialPhase", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 9, Name: "kParamRandomPhase", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
	})
}

func noiseOscSchema() *ModuleSchema {
	return newSchema("NoiseOsc", []*ParamSpec{
		{ID: 0, Name: "kParamColor", Kind: KindFloat, Min: -1, Max: 1, Default: 0.0},
		{ID: 1, Name: "kParamFine", Kind: KindFloat, Min: -1, Max: 1, Default: 0.0},
		{ID: 2, Name: "kParamInitialPhase", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 3, Name: "kParamRandomPhase", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
	})
}

func subOscSchema() *ModuleSchema {
	return newSchema("SubOsc", []*ParamSpec{
		{ID: 0, Name: "kParamShape", Kind: KindEnum, Enum: subShapes, Default: "kSine"},
		{ID: 2, Name: "kParamInitialPhase", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
	})
}

func voiceFilterSchema() *ModuleSchema {
	return newSchema("VoiceFilter", []*ParamSpec{
		{ID: 0, Name: "kParamEnable", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 1, Name: "kParamWet", Kind: KindFloat, Min: 0, Max: 100, Default: 100.0},
		{ID: 2, Name: "kParamType", Kind: KindString, Default: "kNone"},
		{ID: 3, Name: "kParamFreq", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 4, Name: "kParamReso", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 5, Name: "kParamDrive", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 6, Name: "kParamVar", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
		{ID: 7, Name: "kParamStereo", Kind: KindFloat, Min: -1, Max: 1, Default: 0.0},
		{ID: 8, Name: "kParamLevelOut", Kind: KindFloat, Min: 0, Max: 1, Default: 1.0},
		{ID: 9, Name: "kParamKeyTrack", Kind: KindFloat, Min: 0, Max: 1, Default: 0.0},
	})
}

func newSchema(moduleType string, params []*ParamSpec) *ModuleSchema {
	s := &ModuleSchema{
		ModuleType: moduleType,
		Params:     params,
		byID:       make(map[int]*ParamSpec, len(params)),
		byName:     make(map[string]*ParamSpec, len(params)),
	}
	lastID := -1
	for _, p := range params {
		if p.ID <= lastID {
			panic(fmt.Sprintf("registry: %s parameter %s breaks ascending unique ID order", moduleType, p.Name))
		}
		if _, dup := s.byName[p.Name]; dup {
			panic(fmt.Sprintf("registry: %s declares parameter %s twice", moduleType, p.Name))
		}
		lastID = p.ID
		s.byID[p.ID] = p
		s.byName[p.Name] = p
	}
	return s
}

// New builds the process-wide registry from the literal tables. The result
// is immutable; share it freely.
func New() *Registry {
	osc := oscillatorSchema()
	wt := wtOscSchema()
	noise := noiseOscSchema()
	sub := subOscSchema()
	filter := voiceFilterSchema()

	r := &Registry{
		schemas:    make(map[string]*ModuleSchema),
		composites: make(map[string]*composite),
		order:      []string{"Oscillator", "WTOsc", "NoiseOsc", "SubOsc", "VoiceFilter"},
	}
	for _, s := range []*ModuleSchema{osc, wt, noise, sub, filter} {
		r.schemas[s.ModuleType] = s
	}

	// The "Oscillator" slot is a composite: names resolve against the
	// Oscillator schema first, then WTOsc, NoiseOsc, SubOsc in that fixed
	// order. The merge order is a documented contract, not incidental.
	r.composites["Oscillator"] = &composite{
		moduleType: "Oscillator",
		schemas:    []*ModuleSchema{osc, wt, noise, sub},
		minIndex:   0,
		maxIndex:   4,
	}
	// Oscillator slots 0-2 carry a wavetable engine, slot 3 the noise
	// engine, slot 4 the sub engine. The per-engine index ranges encode
	// that layout, so resolving e.g. kParamTablePos on slot 3 fails with
	// an instance-range error.
	r.composites["WTOsc"] = &composite{moduleType: "WTOsc", schemas: []*ModuleSchema{wt}, minIndex: 0, maxIndex: 2}
	r.composites["NoiseOsc"] = &composite{moduleType: "NoiseOsc", schemas: []*ModuleSchema{noise}, minIndex: 3, maxIndex: 3}
	r.composites["SubOsc"] = &composite{moduleType: "SubOsc", schemas: []*ModuleSchema{sub}, minIndex: 4, maxIndex: 4}
	r.composites["VoiceFilter"] = &composite{moduleType: "VoiceFilter", schemas: []*ModuleSchema{filter}, minIndex: 0, maxIndex: 1}

	return r
}
