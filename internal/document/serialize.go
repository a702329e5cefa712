package document

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/vk/serumgo/internal/preset"
	"github.com/vk/serumgo/internal/registry"
)

// slotRow pins the on-wire field order of one matrix row. encoding/json
// emits struct fields in declaration order, which is exactly the order the
// downstream consumer expects.
type slotRow struct {
	SourceID             int     `json:"sourceId"`
	AuxSourceID          int     `json:"auxSourceId"`
	DestModuleTypeString string  `json:"destModuleTypeString"`
	DestModuleID         int     `json:"destModuleID"`
	DestModuleParamName  string  `json:"destModuleParamName"`
	DestModuleParamID    int     `json:"destModuleParamID"`
	Amount               float64 `json:"amount"`
	Bipolar              bool    `json:"bipolar"`
}

// Serialize emits the canonical document for p. It refuses to produce
// output while Validate reports violations; there is no partial emission.
// On success the preset is sealed.
func Serialize(p *preset.Preset) ([]byte, error) {
	if violations := Validate(p); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	var out []byte
	var err error
	if p.RawTemplate() == nil {
		out, err = emitFresh(p)
	} else {
		out, err = overlayTemplate(p)
	}
	if err != nil {
		return nil, err
	}

	p.Seal()
	return out, nil
}

// emitFresh builds the whole document from the registry: every instance
// present with its complete parameter table at defaults, overlaid with the
// caller's writes.
func emitFresh(p *preset.Preset) ([]byte, error) {
	reg := p.Registry()
	out := []byte(`{}`)

	var err error
	out, err = sjson.SetBytes(out, "name", p.Name())
	if err != nil {
		return nil, err
	}
	if p.Author() != "" {
		if out, err = sjson.SetBytes(out, "presetAuthor", p.Author()); err != nil {
			return nil, err
		}
	}
	if p.Description() != "" {
		if out, err = sjson.SetBytes(out, "presetDescription", p.Description()); err != nil {
			return nil, err
		}
	}

	for _, moduleType := range reg.ConstituentTypes() {
		schema, serr := reg.SchemaFor(moduleType)
		if serr != nil {
			return nil, serr
		}
		min, max, _ := reg.InstanceRange(moduleType)
		for i := min; i <= max; i++ {
			key := fmt.Sprintf("%s%d", moduleType, i)
			obj, oerr := freshInstanceObject(p, schema, key, i)
			if oerr != nil {
				return nil, oerr
			}
			if out, err = sjson.SetRawBytes(out, key, obj); err != nil {
				return nil, err
			}
		}
	}

	return appendSlots(out, p.Slots())
}

// freshInstanceObject emits {"enabled": ..., "params": {...}} with the
// complete schema parameter table in ascending ID order.
func freshInstanceObject(p *preset.Preset, schema *registry.ModuleSchema, key string, index int) ([]byte, error) {
	obj := []byte(`{}`)
	obj, err := sjson.SetBytes(obj, "enabled", p.IsEnabled(schema.ModuleType, index))
	if err != nil {
		return nil, err
	}

	values := map[int]any{}
	if inst := p.Instance(key); inst != nil {
		values = inst.Values()
	}
	for _, spec := range schema.Params {
		v, ok := values[spec.ID]
		if !ok {
			v = spec.Default
		}
		raw, merr := json.Marshal(v)
		if merr != nil {
			return nil, merr
		}
		// The colon prefix forces sjson to treat the numeric key as an
		// object member, not an array index.
		if obj, err = sjson.SetRawBytes(obj, fmt.Sprintf("params.:%d", spec.ID), raw); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// overlayTemplate starts from the template's own bytes and rewrites only
// what the caller touched; everything else survives verbatim.
func overlayTemplate(p *preset.Preset) ([]byte, error) {
	out := append([]byte(nil), p.RawTemplate()...)
	doc := gjson.ParseBytes(p.RawTemplate())

	var err error
	if out, err = setIfChanged(out, doc, "name", p.Name()); err != nil {
		return nil, err
	}
	if out, err = setIfChanged(out, doc, "presetAuthor", p.Author()); err != nil {
		return nil, err
	}
	if out, err = setIfChanged(out, doc, "presetDescription", p.Description()); err != nil {
		return nil, err
	}

	for _, key := range p.TouchedInstances() {
		inst := p.Instance(key)
		if on, set := inst.Enabled(); set {
			if out, err = sjson.SetBytes(out, key+".enabled", on); err != nil {
				return nil, err
			}
		}
		if len(inst.Values()) > 0 {
			params, perr := mergedParamsObject(doc.Get(key+".params"), inst.Values())
			if perr != nil {
				return nil, perr
			}
			if out, err = sjson.SetRawBytes(out, key+".params", params); err != nil {
				return nil, err
			}
		}
	}

	if !p.SlotsTouched() {
		return out, nil
	}
	// The matrix changed: drop every template row, then re-emit dense.
	var stale []string
	doc.ForEach(func(k, _ gjson.Result) bool {
		if _, ok := matrixKeyIndex(k.String()); ok {
			stale = append(stale, k.String())
		}
		return true
	})
	for _, key := range stale {
		if out, err = sjson.DeleteBytes(out, key); err != nil {
			return nil, err
		}
	}
	return appendSlots(out, p.Slots())
}

// mergedParamsObject rebuilds one instance's parameter mapping: template
// values overlaid with explicit writes, keys ascending by ID.
func mergedParamsObject(tmpl gjson.Result, values map[int]any) ([]byte, error) {
	raws := make(map[int][]byte)
	if tmpl.Exists() && tmpl.IsObject() {
		var ferr error
		tmpl.ForEach(func(k, v gjson.Result) bool {
			var id int
			if _, err := fmt.Sscanf(k.String(), "%d", &id); err != nil {
				ferr = fmt.Errorf("non-numeric parameter key %q", k.String())
				return false
			}
			raws[id] = []byte(v.Raw)
			return true
		})
		if ferr != nil {
			return nil, ferr
		}
	}
	for id, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raws[id] = raw
	}

	ids := make([]int, 0, len(raws))
	for id := range raws {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	obj := []byte(`{}`)
	var err error
	for _, id := range ids {
		if obj, err = sjson.SetRawBytes(obj, fmt.Sprintf(":%d", id), raws[id]); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func appendSlots(out []byte, slots []preset.ModSlot) ([]byte, error) {
	var err error
	for i, slot := range slots {
		row, merr := json.Marshal(slotRow{
			SourceID:             slot.SourceID,
			AuxSourceID:          slot.AuxSourceID,
			DestModuleTypeString: slot.Dest.ModuleType,
			DestModuleID:         slot.Dest.Index,
			DestModuleParamName:  slot.Dest.ParamName,
			DestModuleParamID:    slot.Dest.ParamID,
			Amount:               slot.Amount,
			Bipolar:              slot.Bipolar,
		})
		if merr != nil {
			return nil, merr
		}
		if out, err = sjson.SetRawBytes(out, fmt.Sprintf("ModSlot%d", i), row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func setIfChanged(out []byte, doc gjson.Result, key, value string) ([]byte, error) {
	if doc.Get(key).String() == value {
		return out, nil
	}
	return sjson.SetBytes(out, key, value)
}
